package notion

import (
	"encoding/json"
	"strings"
)

// Property is one property value in the shape the pages endpoint expects.
type Property map[string]interface{}

// Properties maps property names to values
type Properties map[string]Property

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Text textContent `json:"text"`
}

// Title builds a title property value
func Title(text string) Property {
	return Property{"title": []richText{{Text: textContent{Content: text}}}}
}

// RichText builds a rich text property value
func RichText(text string) Property {
	return Property{"rich_text": []richText{{Text: textContent{Content: text}}}}
}

// DateRange builds a date property value. Start and end are ISO 8601 timestamps.
func DateRange(start, end string) Property {
	date := map[string]string{"start": start}
	if end != "" {
		date["end"] = end
	}
	return Property{"date": date}
}

// Relation builds a relation property value pointing at the given page ids.
func Relation(ids ...string) Property {
	refs := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, map[string]string{"id": id})
	}
	return Property{"relation": refs}
}

// Record is a page returned by a database query
type Record struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type textValue struct {
	PlainText string      `json:"plain_text"`
	Text      textContent `json:"text"`
}

type propertyValue struct {
	Type     string      `json:"type"`
	Title    []textValue `json:"title"`
	RichText []textValue `json:"rich_text"`
}

// Text returns the plain text of a title or rich text property, or "" when the
// property is missing or of another type.
func (r Record) Text(name string) string {
	raw, ok := r.Properties[name]
	if !ok {
		return ""
	}

	var v propertyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}

	parts := v.RichText
	if v.Type == "title" || len(parts) == 0 {
		parts = v.Title
	}

	var b strings.Builder
	for _, p := range parts {
		if p.PlainText != "" {
			b.WriteString(p.PlainText)
		} else {
			b.WriteString(p.Text.Content)
		}
	}
	return b.String()
}
