package validation

import (
	"errors"
	"testing"
)

const sampleSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "order": {"type": "integer", "minimum": 0}
  }
}`

func TestValidateDocumentAcceptsConformingPayload(t *testing.T) {
	if err := ValidateDocument([]byte(sampleSchema), []byte(`{"name":"Done","order":3}`)); err != nil {
		t.Fatalf("expected document to validate, got %v", err)
	}
}

func TestValidateDocumentReportsIssues(t *testing.T) {
	err := ValidateDocument([]byte(sampleSchema), []byte(`{"order":-1}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	issues := Issues(err)
	if len(issues) == 0 {
		t.Fatalf("expected at least one issue")
	}
}

func TestValidateDocumentRejectsMalformedJSON(t *testing.T) {
	err := ValidateDocument([]byte(sampleSchema), []byte(`{"name":`))
	if !errors.Is(err, ErrDocumentInvalid) {
		t.Fatalf("expected ErrDocumentInvalid, got %v", err)
	}
}

func TestCompileSchemaRejectsEmptySchema(t *testing.T) {
	if _, err := CompileSchema(nil); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}
