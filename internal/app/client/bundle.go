package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"timeline/internal/domain/journal"
	"timeline/internal/domain/normalize"
)

const bundleSchemaURL = "timeline://bundle.schema.json"

// bundleSchema форма файла импорта. Ссылочную целостность проверяет
// нормализатор, здесь только структура.
const bundleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["entries"],
  "properties": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type", "timestamp"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"enum": ["SESSION_START", "NOTE", "SESSION_END"]},
          "timestamp": {"type": "integer", "minimum": 0},
          "content": {"type": "string"},
          "category": {"type": ["string", "null"]},
          "contentType": {"type": ["string", "null"]},
          "fieldValues": {"type": ["object", "null"]},
          "linkedEntries": {"type": ["array", "null"], "items": {"type": "string"}},
          "tags": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "contentTypes": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "fields": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "required": ["id", "type"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "type": {"enum": ["text", "boolean", "number", "dropdown"]},
                "options": {"type": ["array", "null"], "items": {"type": "string"}}
              }
            }
          },
          "builtIn": {"type": "boolean"},
          "order": {"type": "integer"}
        }
      }
    },
    "mediaItems": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "coverUrl": {"type": ["string", "null"]}
        }
      }
    },
    "lastModified": {"type": ["integer", "null"]}
  }
}`

var compiledBundleSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(bundleSchemaURL, strings.NewReader(bundleSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(bundleSchemaURL)
}()

// DecodeBundle читает и проверяет бандл импорта: JSON-схема, затем
// теги структур и уникальность id. Записи нормализуются.
func DecodeBundle(r io.Reader) (*journal.CloudData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, invalid("bundle", fmt.Sprintf("invalid JSON: %v", err))
	}
	if err := compiledBundleSchema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, schemaError(verr)
		}
		return nil, invalid("bundle", err.Error())
	}

	var bundle journal.CloudData
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&bundle); err != nil {
		return nil, invalid("bundle", err.Error())
	}
	if err := journal.ValidateBundle(&bundle); err != nil {
		return nil, err
	}

	bundle.Entries = normalize.MigrateEntries(bundle.Entries, journal.WithBuiltins(bundle.ContentTypes))
	return &bundle, nil
}

// EncodeBundle пишет бандл с отступами
func EncodeBundle(w io.Writer, bundle *journal.CloudData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}

func invalid(field, msg string) error {
	return &journal.ValidationError{Fields: []journal.FieldError{{Field: field, Message: msg}}}
}

// schemaError переводит ошибки схемы в поля ValidationError
func schemaError(verr *jsonschema.ValidationError) error {
	out := &journal.ValidationError{}
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(e.InstanceLocation, "/")
			if field == "" {
				field = "bundle"
			}
			out.Fields = append(out.Fields, journal.FieldError{Field: field, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return out
}
