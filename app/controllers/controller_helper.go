package controllers

import (
	"errors"
	"net/netip"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/medihub/medihub/internal/pkg/moderation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names in field errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// bindJSON parses the request body into dst and runs its validate tags.
// When handled is true the error response has been written and err must be returned.
func bindJSON(c *fiber.Ctx, dst interface{}) (handled bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return true, errorJSON(c, fiber.StatusBadRequest, "bad_request", "요청 본문을 읽을 수 없습니다.")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return true, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "validation_failed",
				"message": "'" + fe.Field() + "' 값이 올바르지 않습니다.",
				"field":   fe.Field(),
			})
		}
		return true, errorJSON(c, fiber.StatusBadRequest, "bad_request", "요청 형식이 올바르지 않습니다.")
	}
	return false, nil
}

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func invalidID(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusBadRequest, "bad_request", "잘못된 ID입니다.")
}

// handleServiceError maps moderation errors onto the JSON error envelope.
// failMessage is shown for unexpected errors.
func handleServiceError(c *fiber.Ctx, err error, failMessage string) error {
	if ce, ok := moderation.IsConfirmationRequired(err); ok {
		return c.Status(fiber.StatusPreconditionRequired).JSON(fiber.Map{
			"error":        "confirmation_required",
			"message":      "영구 정지는 확인이 필요합니다. 확인 토큰과 함께 다시 요청해 주세요.",
			"action":       ce.Action,
			"confirmToken": ce.Token,
			"expiresAt":    ce.ExpiresAt,
		})
	}
	if ve, ok := moderation.IsValidation(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": ve.Message,
			"field":   ve.Field,
		})
	}

	switch {
	case errors.Is(err, moderation.ErrInvalidFilter):
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "검색 조건이 올바르지 않습니다.")
	case errors.Is(err, moderation.ErrReportNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "신고를 찾을 수 없습니다.")
	case errors.Is(err, moderation.ErrSanctionNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "제재 내역을 찾을 수 없습니다.")
	case errors.Is(err, moderation.ErrProfileNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "회원을 찾을 수 없습니다.")
	case errors.Is(err, moderation.ErrEvidenceNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "증빙 자료를 찾을 수 없습니다.")
	case errors.Is(err, moderation.ErrInvalidTransition):
		return errorJSON(c, fiber.StatusConflict, "invalid_transition", "이미 처리되었거나 현재 상태에서 할 수 없는 작업입니다.")
	case errors.Is(err, moderation.ErrSanctionNotActive):
		return errorJSON(c, fiber.StatusConflict, "invalid_transition", "활성 상태의 제재만 해제할 수 있습니다.")
	case errors.Is(err, moderation.ErrReporterRestricted):
		return errorJSON(c, fiber.StatusForbidden, "forbidden", "이용이 제한된 계정은 신고할 수 없습니다.")
	case errors.Is(err, moderation.ErrNotReporter):
		return errorJSON(c, fiber.StatusForbidden, "forbidden", "신고자만 증빙 자료를 첨부할 수 있습니다.")
	case errors.Is(err, moderation.ErrEvidenceDisabled):
		return errorJSON(c, fiber.StatusServiceUnavailable, "service_unavailable", "증빙 자료 저장소가 설정되지 않았습니다.")
	}

	log.Errorf("[Controller] %s %s: %v", c.Method(), c.Path(), err)
	return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", failMessage)
}

// GetClientIP returns the caller's IPv4 and IPv6 addresses, either may be empty.
// Candidates are taken in order from CF-Connecting-IP, X-Forwarded-For,
// X-Real-IP and the socket address; values that do not parse as an IP are ignored.
func GetClientIP(c *fiber.Ctx) (string, string) {
	var ipv4, ipv6 string
	take := func(raw string) {
		addr, err := netip.ParseAddr(strings.TrimSpace(raw))
		if err != nil {
			return
		}
		// ::ffff:192.0.2.1 is stored as plain IPv4
		addr = addr.Unmap().WithZone("")
		switch {
		case addr.Is4() && ipv4 == "":
			ipv4 = addr.String()
		case addr.Is6() && ipv6 == "":
			ipv6 = addr.String()
		}
	}

	take(c.Get("CF-Connecting-IP"))
	for _, candidate := range c.IPs() {
		take(candidate)
	}
	take(c.Get("X-Real-IP"))
	take(c.IP())

	return ipv4, ipv6
}
