package finmate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Veraticus/finmate/internal/common"
)

const chatSchema = `{
	"type": "object",
	"required": ["response"],
	"properties": {
		"response": {"type": "string", "minLength": 1}
	}
}`

const envelopeSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"error": {"type": ["string", "null"]},
		"message": {"type": ["string", "null"]}
	}
}`

const expensesSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"data": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "amount", "category", "date"],
				"properties": {
					"id": {"type": ["integer", "string"]},
					"amount": {"type": "number", "minimum": 0},
					"category": {"type": "string"},
					"date": {"type": "string", "pattern": "^\\d{2}-\\d{2}-\\d{4}$"},
					"notes": {"type": ["string", "null"]}
				}
			}
		}
	}
}`

const analysisSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"data": {
			"type": "object",
			"required": ["current_month_total", "last_month_total", "percent_change"],
			"properties": {
				"current_month_total": {"type": "number"},
				"last_month_total": {"type": "number"},
				"percent_change": {"type": "number"},
				"categories": {"type": "object", "additionalProperties": {"type": "number"}},
				"monthly_trend": {"type": "array"}
			}
		}
	}
}`

const tipsSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"data": {
			"type": "object",
			"required": ["is_ai_generated"],
			"properties": {
				"is_ai_generated": {"type": "boolean"},
				"ai_tip": {"type": "string"},
				"general_tips": {"type": "array", "items": {"type": "string"}},
				"tips": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`

var (
	chatPayload     = jsonschema.MustCompileString("finmate://chat.json", chatSchema)
	envelopePayload = jsonschema.MustCompileString("finmate://envelope.json", envelopeSchema)
	expensesPayload = jsonschema.MustCompileString("finmate://expenses.json", expensesSchema)
	analysisPayload = jsonschema.MustCompileString("finmate://analysis.json", analysisSchema)
	tipsPayload     = jsonschema.MustCompileString("finmate://tips.json", tipsSchema)
)

// decodeValidated checks body against schema and then decodes it into out.
func decodeValidated(body []byte, schema *jsonschema.Schema, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}
