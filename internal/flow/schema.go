package flow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const summarizeOutputSchema = `{
  "type": "object",
  "properties": {
    "summary": {"type": "string", "minLength": 1, "description": "The summarized text of the PDF document."}
  },
  "required": ["summary"]
}`

const suggestedQuestionsOutputSchema = `{
  "type": "object",
  "properties": {
    "suggestedQuestions": {
      "type": "array",
      "items": {"type": "string"},
      "description": "An array of suggested questions related to the PDF summary."
    }
  },
  "required": ["suggestedQuestions"]
}`

const answerOutputSchema = `{
  "type": "object",
  "properties": {
    "answer": {"type": "string", "minLength": 1, "description": "The answer to the question based on the PDF content."}
  },
  "required": ["answer"]
}`

// outputSchema validates a model reply before it is decoded into a typed result.
type outputSchema struct {
	text   string
	schema *gojsonschema.Schema

	// arrayField receives a bare JSON array reply.
	arrayField string
	// textField receives a reply that is not JSON at all.
	textField string
}

func mustOutputSchema(text, arrayField, textField string) *outputSchema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(text))
	if err != nil {
		panic(fmt.Sprintf("invalid output schema: %v", err))
	}
	return &outputSchema{text: text, schema: schema, arrayField: arrayField, textField: textField}
}

// normalize turns a raw model reply into a JSON object document.
func (s *outputSchema) normalize(raw string) ([]byte, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, errEmptyReply
	}

	if strings.HasPrefix(cleaned, "{") && json.Valid([]byte(cleaned)) {
		return []byte(cleaned), nil
	}
	if strings.HasPrefix(cleaned, "[") && s.arrayField != "" && json.Valid([]byte(cleaned)) {
		return json.Marshal(map[string]json.RawMessage{s.arrayField: json.RawMessage(cleaned)})
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start && json.Valid([]byte(cleaned[start:end+1])) {
		return []byte(cleaned[start : end+1]), nil
	}
	if s.arrayField != "" {
		start = strings.Index(cleaned, "[")
		end = strings.LastIndex(cleaned, "]")
		if start >= 0 && end > start && json.Valid([]byte(cleaned[start:end+1])) {
			return json.Marshal(map[string]json.RawMessage{s.arrayField: json.RawMessage(cleaned[start : end+1])})
		}
	}
	if s.textField != "" {
		return json.Marshal(map[string]string{s.textField: cleaned})
	}
	return nil, fmt.Errorf("reply is not valid JSON")
}

// decode normalizes, validates and unmarshals a reply into out.
func (s *outputSchema) decode(raw string, out interface{}) error {
	doc, err := s.normalize(raw)
	if err != nil {
		return err
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate reply: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("reply does not match output schema: %s", strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	for _, prefix := range []string{"```json", "```JSON", "```"} {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimPrefix(cleaned, prefix)
			break
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
