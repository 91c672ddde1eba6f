package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BindJSON binds and validates a JSON body, ignoring unknown fields (patch
// and create payloads). On failure it writes the validation envelope and
// returns false. Violations are collected eagerly, one entry per failed
// constraint.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		respondBindError(ctx, err, out)

		return false
	}

	return true
}

// BindJSONStrict additionally rejects unknown fields. Used by the auth
// schemas, which are the only strict ones.
func BindJSONStrict(ctx *gin.Context, out interface{}) bool {
	dec := json.NewDecoder(ctx.Request.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(out)

	if err != nil {
		if field, ok := unknownField(err); ok {
			RespondValidation(ctx, []FieldError{{Field: field, Message: "is not an allowed field"}})
			return false
		}

		respondBindError(ctx, err, out)
		return false
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)

	if !ok {
		RespondInternal(ctx, "Validator unavailable")
		return false
	}

	err = v.Struct(out)

	if err != nil {
		respondBindError(ctx, err, out)
		return false
	}

	return true
}

func respondBindError(ctx *gin.Context, err error, out interface{}) {
	rootType := baseStructType(out)

	// validator errors (struct binding tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			fields = append(fields, FieldError{
				Field:   jsonFieldName(rootType, fieldError.StructField()),
				Message: validationMessage(fieldError.Tag(), fieldError.Param()),
			})
		}

		RespondValidation(ctx, fields)
		return
	}

	// type mismatch inside otherwise valid JSON

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)

		RespondValidation(ctx, []FieldError{{
			Field:   field,
			Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
		}})
		return
	}

	// bad JSON or anything else undecipherable
	RespondBadRequest(ctx, "Invalid request body")
}

func unknownField(err error) (string, bool) {
	const marker = `json: unknown field `

	msg := err.Error()

	if !strings.HasPrefix(msg, marker) {
		return "", false
	}

	return strings.Trim(strings.TrimPrefix(msg, marker), `"`), true
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// jsonFieldName resolves a struct field to its json tag. Request types here
// are flat, so no path walking is needed.
func jsonFieldName(rootType reflect.Type, structField string) string {
	if rootType == nil {
		return structField
	}

	sf, ok := rootType.FieldByName(structField)

	if !ok {
		return structField
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")

	if name == "" || name == "-" {
		return structField
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must not exceed " + param + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "eqfield":
		return "does not match " + strings.ToLower(param)
	case "strongpassword":
		return "must contain an uppercase letter, a lowercase letter, a number and a special character"
	case "todayorlater":
		return "must be today or in the future"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
