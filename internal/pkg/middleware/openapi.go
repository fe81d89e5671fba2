package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// LoadOpenAPIRouter loads and validates the OpenAPI document and builds a route matcher for it.
func LoadOpenAPIRouter(specPath string) (routers.Router, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return gorillamux.NewRouter(doc)
}

// OpenAPIValidator rejects requests whose parameters or JSON body do not match the
// documented shape. Undocumented routes pass through untouched.
func OpenAPIValidator(router routers.Router) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := adaptor.ConvertRequest(c, false)
		if err != nil {
			log.Errorf("[OpenAPI] Failed to convert request: %v", err)
			return c.Next()
		}

		route, pathParams, err := router.FindRoute(req)
		if err != nil {
			return c.Next()
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				// multipart bodies are checked by the upload handler
				ExcludeRequestBody: strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm),
			},
		}
		if err := openapi3filter.ValidateRequest(c.UserContext(), input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": validationMessage(err),
			})
		}
		return c.Next()
	}
}

func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			return fmt.Sprintf("요청 파라미터 '%s'이(가) 올바르지 않습니다.", reqErr.Parameter.Name)
		}
		if reqErr.RequestBody != nil {
			return "요청 본문 형식이 올바르지 않습니다."
		}
	}
	return "요청 형식이 올바르지 않습니다."
}
