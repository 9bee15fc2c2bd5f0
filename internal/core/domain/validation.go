package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Один валидатор на пакет: он кэширует разобранные теги структур.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// В ошибках отдаем имена полей как в контракте таблицы (snake_case)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return toSnakeCase(fld.Name)
	})
	return v
}

// ValidateDraft проверяет данные для создания объявления.
func ValidateDraft(d PropertyDraft) error {
	var fields []FieldError
	if err := validate.Struct(d); err != nil {
		fields = append(fields, collectFieldErrors(err)...)
	}
	plan := PlanFor(d.PlanType)
	if !plan.AllowsPhotos(len(d.Images)) {
		fields = append(fields, FieldError{
			Field:  "images",
			Reason: fmt.Sprintf("plan %s allows at most %d photos", plan.Type, plan.MaxPhotos),
		})
	}
	fields = append(fields, checkMediaRefs(d.Images, d.Videos)...)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateProperty проверяет полную запись (после слияния с patch).
func ValidateProperty(p Property) error {
	var fields []FieldError
	if err := validate.Struct(p); err != nil {
		fields = append(fields, collectFieldErrors(err)...)
	}
	plan := PlanFor(p.PlanType)
	if !plan.AllowsPhotos(len(p.Images)) {
		fields = append(fields, FieldError{
			Field:  "images",
			Reason: fmt.Sprintf("plan %s allows at most %d photos", plan.Type, plan.MaxPhotos),
		})
	}
	fields = append(fields, checkMediaRefs(p.Images, p.Videos)...)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkMediaRefs(images, videos []string) []FieldError {
	var fields []FieldError
	for i, ref := range images {
		if strings.TrimSpace(ref) == "" {
			fields = append(fields, FieldError{Field: fmt.Sprintf("images[%d]", i), Reason: "empty reference"})
		}
	}
	for i, ref := range videos {
		if strings.TrimSpace(ref) == "" {
			fields = append(fields, FieldError{Field: fmt.Sprintf("videos[%d]", i), Reason: "empty reference"})
		}
	}
	return fields
}

func collectFieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "record", Reason: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Reason: describeTag(fe)})
	}
	return out
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func toSnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
