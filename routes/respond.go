package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"campus-gms/catalog"
	"campus-gms/forms"
	"campus-gms/services"
)

func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, errMsg, message string, details ...string) {
	body := gin.H{"success": false, "error": errMsg, "message": message}
	if len(details) > 0 {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the body into req, answering 400 with one detail per
// failed field when it does not validate.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		fail(c, http.StatusBadRequest, "Invalid request data", "Request validation failed", details...)
		return false
	}
	fail(c, http.StatusBadRequest, "Invalid request data", err.Error())
	return false
}

// serviceError maps service errors onto HTTP answers.
func serviceError(c *gin.Context, logger *zap.Logger, err error) {
	var ve *forms.ValidationError
	if errors.As(err, &ve) {
		details := make([]string, 0, len(ve.Missing)+len(ve.Invalid))
		for _, m := range ve.Missing {
			details = append(details, "missing: "+m)
		}
		for _, i := range ve.Invalid {
			details = append(details, "invalid: "+i)
		}
		fail(c, http.StatusBadRequest, "Validation failed", err.Error(), details...)
		return
	}
	var weak *services.WeakPasswordError
	if errors.As(err, &weak) {
		fail(c, http.StatusBadRequest, "Weak password", "Password does not meet security requirements", weak.Problems...)
		return
	}

	switch {
	case errors.Is(err, catalog.ErrUnknownCategory):
		fail(c, http.StatusBadRequest, "Unknown category", err.Error())
	case errors.Is(err, services.ErrCategoryDisabled):
		fail(c, http.StatusConflict, "Category disabled", err.Error())
	case errors.Is(err, services.ErrIssueNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		fail(c, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrIncompleteLocation),
		errors.Is(err, services.ErrInvalidItemKind),
		errors.Is(err, services.ErrInvalidImage),
		errors.Is(err, services.ErrPasswordMismatch):
		fail(c, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrStudentIDTaken):
		fail(c, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrClaimOwnItem),
		errors.Is(err, services.ErrAccountDisabled):
		fail(c, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrRefreshTokenInvalid):
		fail(c, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, services.ErrUploadsDisabled):
		fail(c, http.StatusServiceUnavailable, "Uploads unavailable", err.Error())
	default:
		logger.Error("❌ Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error", "Something went wrong, please try again")
	}
}
