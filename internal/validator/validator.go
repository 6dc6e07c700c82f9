package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		en_translations.RegisterDefaultTranslations(v, trans)

		registerDomainTags(v)
	}
}

// enumTags maps a tag to the check run on the field's string value.
var enumTags = map[string]struct {
	valid func(string) bool
	msg   string
}{
	"role":           {func(s string) bool { return model.Role(s).Valid() }, "{0} must be ADMIN, PROFESSOR or STUDENT"},
	"subject":        {func(s string) bool { return model.Subject(s).Valid() }, "{0} is not a known subject"},
	"difficulty":     {func(s string) bool { return model.Difficulty(s).Valid() }, "{0} must be easy, medium or hard"},
	"language_level": {func(s string) bool { return model.LanguageLevel(s).Valid() }, "{0} must be a CEFR level (A1 to C2)"},
}

func registerDomainTags(v *govalidator.Validate) {
	for tag, rule := range enumTags {
		valid := rule.valid
		_ = v.RegisterValidation(tag, func(fl govalidator.FieldLevel) bool {
			return valid(fl.Field().String())
		})

		msg := rule.msg
		_ = v.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error { return ut.Add(tag, msg, true) },
			func(ut ut.Translator, fe govalidator.FieldError) string {
				t, _ := ut.T(fe.Tag(), fe.Field())
				return t
			},
		)
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
