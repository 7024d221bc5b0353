package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["modules"],
  "properties": {
    "modules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "level", "sort_order", "title", "flashcards"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "level": {"enum": ["basics", "intermediate", "pro"]},
          "sort_order": {"type": "integer"},
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "estimated_minutes": {"type": "integer", "minimum": 0},
          "published": {"type": "boolean"},
          "flashcards": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "question", "answer"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "sort_order": {"type": "integer"},
                "title": {"type": "string"},
                "question": {"type": "string"},
                "answer": {"type": "string"}
              }
            }
          },
          "quiz": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "question", "options", "correct_answer"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "question": {"type": "string", "minLength": 1},
                "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
                "correct_answer": {"type": "integer", "minimum": 0},
                "explanation": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "badges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "condition"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "image": {"type": "string"},
          "level": {"enum": ["basics", "intermediate", "pro"]},
          "condition": {"enum": ["first_module", "half_modules", "all_modules", "first_quiz", "perfect_score", "custom"]}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// validateDocument 按 schema 校验解析后的课程文档
func validateDocument(doc interface{}) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validating catalog: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("catalog does not match schema: %s", strings.Join(msgs, "; "))
}
