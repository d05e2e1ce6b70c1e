package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const unexpectedMessage = "An unexpected error occurred"

// Envelope wraps every response body, success or failure.
type Envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      interface{}       `json:"data"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func NewSuccess(ctx *gin.Context, message string, data interface{}) Envelope {
	return Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestIDFrom(ctx),
		Timestamp: time.Now().UTC(),
	}
}

func NewFailure(ctx *gin.Context, message string, fields map[string]string) Envelope {
	return Envelope{
		Success:   false,
		Message:   message,
		Errors:    fields,
		RequestID: requestIDFrom(ctx),
		Timestamp: time.Now().UTC(),
	}
}

func RespondSuccess(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, NewSuccess(ctx, message, data))
}

func RespondFailure(ctx *gin.Context, status int, message string, fields map[string]string) {
	ctx.JSON(status, NewFailure(ctx, message, fields))
}

func AbortWithFailure(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, NewFailure(ctx, message, nil))
}

func RespondBadRequest(ctx *gin.Context, message string, fields map[string]string) {
	RespondFailure(ctx, http.StatusBadRequest, message, fields)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondFailure(ctx, http.StatusNotFound, message, nil)
}

func RespondInternal(ctx *gin.Context) {
	RespondFailure(ctx, http.StatusInternalServerError, unexpectedMessage, nil)
}

// StatusForKind is the single kind -> HTTP status table.
func StatusForKind(kind user.Kind) int {
	switch kind {
	case user.KindNotFound:
		return http.StatusNotFound
	case user.KindDuplicateEmail:
		return http.StatusBadRequest
	case user.KindValidation:
		return http.StatusBadRequest
	case user.KindUnexpected:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// RespondError renders any service error. Known kinds surface their message;
// everything else is logged and answered with a generic 500.
func RespondError(ctx *gin.Context, err error) {
	kind := user.KindOf(err)
	status := StatusForKind(kind)

	if status >= http.StatusInternalServerError {
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"method", ctx.Request.Method,
			"route", ctx.FullPath(),
			"err", err,
		)
		RespondInternal(ctx)
		return
	}

	RespondFailure(ctx, status, err.Error(), nil)
}
