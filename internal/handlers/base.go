package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"quill/internal/logging"
	"quill/internal/middleware"
	"quill/internal/services"
	"quill/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var apiLog = logging.New("http")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessages keys are "<json field>.<tag>".
var validationMessages = map[string]string{
	"name.required":  "user name has to be provided.",
	"name.max":       "username cannot exceed 64 characters.",
	"name.min":       "user name has to be provided.",
	"pass.required":  "password must be provided.",
	"pass.min":       "password must be provided.",
	"role.oneof":     "role should be one of: author,reader",
	"title.required": "title should have 4 to 56 characters.",
	"title.min":      "title should have 4 to 56 characters.",
	"title.max":      "title should have 4 to 56 characters.",
	"body.required":  "body has to be provided.",
	"body.min":       "body has to be provided.",
	"tldr.max":       "tldr allows for maximum of 64 characters",
}

// Responder writes the JSON envelope. Raw errors are only exposed outside
// production.
type Responder struct {
	ExposeErrors bool
}

func (r Responder) ok(c *gin.Context, status int, message, key string, data any) {
	body := gin.H{"message": message}
	if key != "" {
		body[key] = data
	}
	c.JSON(status, body)
}

func (r Responder) fail(c *gin.Context, err error) {
	var domainErr *services.Error
	if errors.As(err, &domainErr) {
		body := gin.H{"message": domainErr.Message}
		if r.ExposeErrors {
			body["error"] = domainErr.Error()
		}
		c.JSON(domainErr.Status, body)
		return
	}

	apiLog.Error("request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Any("error", err),
	)
	body := gin.H{"message": "Internal server error. Please try again later."}
	if r.ExposeErrors {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// bind decodes the JSON body, lets clean normalize it and validates the result.
func bind[T any](c *gin.Context, clean func(*T)) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, &services.Error{Status: http.StatusBadRequest, Message: "request body is not valid JSON.", Err: err}
	}
	if clean != nil {
		clean(&req)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, validationError(err)
	}
	return &req, nil
}

func validationError(err error) *services.Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &services.Error{Status: http.StatusBadRequest, Message: "invalid request.", Err: err}
	}
	fe := fieldErrs[0]
	msg, ok := validationMessages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = fe.Field() + " is invalid."
	}
	return &services.Error{Status: http.StatusBadRequest, Message: msg, Err: err}
}

// pathID reads a uuid path parameter.
func pathID(c *gin.Context, name string) (string, error) {
	id := strings.TrimSpace(c.Param(name))
	if _, err := uuid.Parse(id); err != nil {
		return "", services.BadRequest("invalid " + name + ".")
	}
	return id, nil
}

// callerID is empty for anonymous requests.
func callerID(c *gin.Context) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}

func page(c *gin.Context) utils.Page {
	return utils.ParsePage(c.Query("page"), c.Query("limit"))
}

func cleanText(s *string) {
	if s != nil {
		*s = utils.SanitizeText(*s)
	}
}

func cleanBody(s *string) {
	if s != nil {
		*s = utils.SanitizeBody(*s)
	}
}
