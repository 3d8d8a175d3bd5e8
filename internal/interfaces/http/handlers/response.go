// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Count: &count})
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// respondError maps err onto its status code. Internal errors are logged
// with their cause and answered with a generic message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := apperror.KindOf(err)
	status := kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ContextRequestID),
			"method":     c.Request.Method,
			"route":      c.FullPath(),
		}).Error("Request failed")
	}

	_ = c.Error(err)
	respondFail(c, status, apperror.Message(err))
}

func init() {
	// Report validation failures by their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, key := range []string{"json", "form"} {
				name, _, _ := strings.Cut(field.Tag.Get(key), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return ""
		})
	}
}

// bindJSON decodes the body into req. Validation failures are reported per
// JSON field; anything else gets the fixed "Invalid request data" message.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, "Invalid request data", err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, "Invalid query parameters", err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, message string, err error) {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		problems := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			problems = append(problems, describeField(fe))
		}
		message += ": " + strings.Join(problems, "; ")
	}
	respondFail(c, http.StatusBadRequest, message)
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min", "gte":
		return field + " must be at least " + fe.Param()
	case "max", "lte":
		return field + " must be at most " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	default:
		return field + " is invalid"
	}
}

// requireUser returns the authenticated user ID or answers 401
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondFail(c, http.StatusUnauthorized, "User not authenticated")
	}
	return userID, ok
}
