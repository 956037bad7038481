// Package handler serves the admin API.
package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/config"
	"nomorebugs-admin/internal/dispatch"
	"nomorebugs-admin/internal/document"
	"nomorebugs-admin/internal/logger"
	"nomorebugs-admin/internal/mail"
	"nomorebugs-admin/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	store    store.Store
	dispatch *dispatch.Controller
	mailer   mail.Mailer
	docs     *document.Renderer
	tokens   *config.TokenManager
	validate *validator.Validate
	log      logger.Logger
	currency string
}

type Deps struct {
	Store    store.Store
	Dispatch *dispatch.Controller
	Mailer   mail.Mailer
	Docs     *document.Renderer
	Tokens   *config.TokenManager
	Log      logger.Logger
	Currency string
}

func New(d Deps) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	currency := d.Currency
	if currency == "" {
		currency = "LKR"
	}

	return &Handler{
		store:    d.Store,
		dispatch: d.Dispatch,
		mailer:   d.Mailer,
		docs:     d.Docs,
		tokens:   d.Tokens,
		validate: v,
		log:      d.Log,
		currency: currency,
	}
}

func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{"status": "ok"}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func statusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return fiber.StatusBadRequest
	case apperr.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.CodeNotFound:
		return fiber.StatusNotFound
	case apperr.CodeConflict, apperr.CodeDuplicate:
		return fiber.StatusConflict
	case apperr.CodeDelivery, apperr.CodeRender:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)
	status := statusOf(code)

	if status >= fiber.StatusInternalServerError {
		h.log.WithError(err).Error("request failed", map[string]interface{}{
			"path": c.Path(),
			"code": code,
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": apperr.MessageOf(err),
		"code":    code,
	})
}

// bind parses the JSON body into dst and validates it.
func (h *Handler) bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperr.Validation(validationMessage(verrs[0]))
		}
		return apperr.Validation(err.Error())
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", fe.Field())
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}

// sendPDF writes a PDF as a download.
func sendPDF(c *fiber.Ctx, filename string, pdf []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Status(fiber.StatusOK).Send(pdf)
}
