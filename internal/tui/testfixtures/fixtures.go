package testfixtures

import (
	"time"

	engine "github.com/mark3labs/labwiz/internal/wizard"
)

// Fixed test values for consistent output
const (
	FixedRecordID = "rec-0001"
	FixedForm     = "sample"
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

// SampleSchema returns a four-step form that exercises every input kind:
//
//	0 details:  title (text, required), kind (options), abstract (multiline)
//	1 numbers:  quantity (number, required, checked against limit), limit (number)
//	2 extras:   tags (list), urgent (bool)
//	3 review
func SampleSchema() *engine.Schema {
	return &engine.Schema{
		ID:    FixedForm,
		Title: "Sample",
		Fields: []engine.Field{
			{Name: "title", Label: "Title", Kind: engine.KindText, Placeholder: "Short title"},
			{Name: "kind", Label: "Kind", Kind: engine.KindText, Options: []string{"alpha", "beta"}},
			{Name: "abstract", Label: "Abstract", Kind: engine.KindText, Multiline: true, Help: "A few sentences"},
			{Name: "quantity", Label: "Quantity", Kind: engine.KindNumber},
			{Name: "limit", Label: "Limit", Kind: engine.KindNumber},
			{Name: "tags", Label: "Tags", Kind: engine.KindList},
			{Name: "urgent", Label: "Urgent", Kind: engine.KindBool},
		},
		Steps: []engine.Step{
			{Name: "details", Title: "Details", Fields: []string{"title", "kind", "abstract"}, Required: []string{"title"}},
			{
				Name:     "numbers",
				Title:    "Numbers",
				Fields:   []string{"quantity", "limit"},
				Required: []string{"quantity"},
				Checks: map[string]engine.Check{
					"quantity": QuantityBelowLimit,
				},
			},
			{Name: "extras", Title: "Extras", Fields: []string{"tags", "urgent"}},
			{Name: "review", Title: "Review"},
		},
	}
}

// QuantityBelowLimit fails when quantity is missing or not below a set limit.
func QuantityBelowLimit(r engine.Reader) (string, bool) {
	q := r.Read("quantity")
	if q.IsEmpty() {
		return "Quantity is required", false
	}
	l := r.Read("limit")
	if !l.IsEmpty() && *q.Number >= *l.Number {
		return "Quantity must be below Limit", false
	}
	return "", true
}

// SampleValues returns values that pass every step of SampleSchema.
func SampleValues() engine.Values {
	return engine.Values{
		"title":    engine.TextValue("Centrifuge"),
		"kind":     engine.TextValue("alpha"),
		"quantity": engine.NumberValue(2),
		"limit":    engine.NumberValue(10),
		"tags":     engine.ListValue("lab", "shared"),
	}
}
