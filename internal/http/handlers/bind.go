package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const validationFailedMessage = "Validation failed"

var registerOnce sync.Once

// RegisterValidators teaches gin's validator the custom tags used by the request DTOs
// and makes field errors report JSON names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("blankormin", blankOrMin)
		_ = v.RegisterValidation("maxbytes", maxBytes)
	})
}

func jsonFieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

// blankOrMin passes blank strings and strings of at least param characters.
func blankOrMin(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.TrimSpace(s) == "" {
		return true
	}

	min, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len([]rune(s)) >= min
}

// maxBytes limits the UTF-8 encoded length, which is what bcrypt counts.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}

func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		status, message, fields := parseBindError(err)
		RespondFailure(ctx, status, message, fields)

		return false
	}

	return true
}

func parseBindError(err error) (int, string, map[string]string) {
	// validator errors (struct binding tags)

	var validationErrors validator.ValidationErrors

	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))

		for _, fieldError := range validationErrors {
			fields[fieldError.Field()] = validationMessage(fieldError.Tag(), fieldError.Param())
		}

		return http.StatusBadRequest, validationFailedMessage, fields
	}

	var tooLarge *http.MaxBytesError

	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "Request body too large", nil
	}

	if errors.Is(err, io.EOF) {
		return http.StatusBadRequest, "Request body is required", nil
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return http.StatusBadRequest, "Malformed JSON request", map[string]string{
			"body": fmt.Sprintf("invalid JSON syntax at offset %d", syntaxError.Offset),
		}
	}

	// in the event of a type mismatch

	var typeError *json.UnmarshalTypeError

	if errors.As(err, &typeError) {
		field := strings.TrimSpace(typeError.Field)
		if field == "" {
			field = "body"
		}

		return http.StatusBadRequest, validationFailedMessage, map[string]string{
			field: "must be of type " + typeError.Type.String(),
		}
	}

	// final fallback if the error could not be deciphered
	return http.StatusBadRequest, "Invalid request body", nil
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "blankormin":
		return "must be at least " + param + " characters or left blank"
	case "maxbytes":
		return "must be at most " + param + " bytes"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
