package controllers

import (
	"bytes"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/internal/pkg/evidence"
	"github.com/medihub/medihub/internal/pkg/moderation"
	"github.com/medihub/medihub/internal/pkg/usercontext"
)

type SubmitReportRequest struct {
	TargetType    string `json:"targetType" validate:"required,oneof=review vendor profile"`
	TargetID      uint   `json:"targetId" validate:"required,gt=0"`
	TargetSummary string `json:"targetSummary" validate:"max=255"`
	Reason        string `json:"reason" validate:"required,oneof=spam inappropriate false_info privacy other"`
	Detail        string `json:"detail" validate:"max=1000"`
}

// ReportController serves report intake for authenticated profiles
type ReportController struct {
	svc *moderation.Service
}

func NewReportController(svc *moderation.Service) *ReportController {
	return &ReportController{svc: svc}
}

// POST /api/v1/reports
func (rc *ReportController) HandleSubmitReport(c *fiber.Ctx) error {
	var req SubmitReportRequest
	if handled, err := bindJSON(c, &req); handled {
		return err
	}

	ipv4, ipv6 := GetClientIP(c)
	report, err := rc.svc.SubmitReport(c.UserContext(), usercontext.GetProfileID(c), moderation.SubmitReportInput{
		TargetType:    models.TargetType(req.TargetType),
		TargetID:      req.TargetID,
		TargetSummary: req.TargetSummary,
		Reason:        models.ReportReason(req.Reason),
		Detail:        req.Detail,
		ClientIPv4:    ipv4,
		ClientIPv6:    ipv6,
	})
	if err != nil {
		return handleServiceError(c, err, "신고 접수에 실패했습니다.")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// POST /api/v1/reports/:id/evidence (multipart "file")
func (rc *ReportController) HandleUploadEvidence(c *fiber.Ctx) error {
	reportID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "첨부할 파일을 선택해 주세요.", "field": "file"})
	}
	if err := evidence.ValidateSize(fh.Size); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error(), "field": "file"})
	}

	file, err := fh.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "업로드한 파일을 읽을 수 없습니다.")
	}
	defer file.Close()

	// sniff the real type from the first bytes, then stream the whole file
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "업로드한 파일을 읽을 수 없습니다.")
	}
	head = head[:n]
	contentType, err := evidence.ValidateBySniff(fh.Filename, head)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error(), "field": "file"})
	}

	item, err := rc.svc.AttachEvidence(c.UserContext(), reportID, usercontext.GetProfileID(c), moderation.EvidenceUpload{
		FileName:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		return handleServiceError(c, err, "증빙 자료 업로드에 실패했습니다.")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}
