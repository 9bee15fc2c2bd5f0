package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"listing-service/internal/core/domain"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	PropertyCreate = "PropertyCreate"
	ListingImport  = "ListingImport"
	PropertyEvent  = "PropertyEvent"

	Version1 = "1"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://listing-service.local/schemas/"

var schemaFiles = map[string]string{
	PropertyCreate + "/" + Version1: "property-create-v1.json",
	ListingImport + "/" + Version1:  "listing-import-v1.json",
	PropertyEvent + "/" + Version1:  "property-event-v1.json",
}

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	for key, file := range schemaFiles {
		data, err := schemaFS.ReadFile("schemas/" + file)
		if err != nil {
			log.Fatalf("failed to read embedded schema %s: %v", file, err)
		}
		if err := compiler.AddResource(schemaBaseURL+file, bytes.NewReader(data)); err != nil {
			log.Fatalf("failed to add schema %s: %v", file, err)
		}
		schema, err := compiler.Compile(schemaBaseURL + file)
		if err != nil {
			log.Fatalf("failed to compile schema %s: %v", file, err)
		}
		compiledSchemas[key] = schema
	}
}

// ValidateMessage проверяет JSON-документ по схеме name/version.
// Нарушения схемы возвращаются как *domain.ValidationError.
func ValidateMessage(name, version string, body []byte) error {
	key := fmt.Sprintf("%s/%s", name, version)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' version '%s' not found", name, version)
	}

	v, err := decodeDocument(body)
	if err != nil {
		return domain.NewValidationError("body", "is not a valid JSON document")
	}

	if err := schema.Validate(v); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return toValidationError(verr)
		}
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// decodeDocument читает ровно один JSON-документ. Числа остаются json.Number,
// иначе integer не отличить от 2.0.
func decodeDocument(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// после документа допустимы только пробелы
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON document")
	}
	return v, nil
}

// toValidationError собирает листовые ошибки схемы в поля
func toValidationError(verr *jsonschema.ValidationError) *domain.ValidationError {
	out := &domain.ValidationError{}
	seen := make(map[string]bool)
	for _, e := range verr.BasicOutput().Errors {
		if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
			continue
		}
		field := strings.TrimPrefix(e.InstanceLocation, "/")
		if field == "" {
			field = "body"
		}
		field = strings.ReplaceAll(field, "/", ".")
		key := field + "|" + e.Error
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Fields = append(out.Fields, domain.FieldError{Field: field, Reason: e.Error})
	}
	if len(out.Fields) == 0 {
		out.Fields = append(out.Fields, domain.FieldError{Field: "body", Reason: verr.Message})
	}
	return out
}
