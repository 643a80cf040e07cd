package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockSchema() *Schema {
	lessThan := func(r Reader) (string, bool) {
		lo, hi := r.Read("minStock"), r.Read("maxStock")
		if lo.IsEmpty() || hi.IsEmpty() {
			return "Both stock limits are required", false
		}
		if *lo.Number >= *hi.Number {
			return "Minimum stock must be below maximum stock", false
		}
		return "", true
	}
	return &Schema{
		ID:    "reagent",
		Title: "Reagent",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText},
			{Name: "minStock", Label: "Minimum stock", Kind: KindNumber},
			{Name: "maxStock", Label: "Maximum stock", Kind: KindNumber},
			{Name: "notes", Label: "Notes", Kind: KindText},
		},
		Steps: []Step{
			{
				Name:     "stock",
				Title:    "Stock",
				Fields:   []string{"name", "minStock", "maxStock", "notes"},
				Required: []string{"name", "minStock"},
				Checks:   map[string]Check{"minStock": lessThan},
			},
			{Name: "review", Title: "Review"},
		},
	}
}

func TestValidateStep_CheckOverridesPresence(t *testing.T) {
	s := stockSchema()
	store := NewFieldStore(s.Kinds(), nil)

	res := ValidateStep(s, 0, store)
	assert.Equal(t, []string{"minStock", "name"}, res.Fields())
	assert.Equal(t, "Both stock limits are required", res.Failures["minStock"])
	assert.Equal(t, "Name is required", res.Failures["name"])

	store.Update("name", TextValue("Ethanol"))
	store.Update("minStock", NumberValue(10))
	store.Update("maxStock", NumberValue(5))
	res = ValidateStep(s, 0, store)
	assert.Equal(t, map[string]string{"minStock": "Minimum stock must be below maximum stock"}, res.Failures)

	store.Update("maxStock", NumberValue(50))
	res = ValidateStep(s, 0, store)
	assert.True(t, res.IsValid())
	assert.Equal(t, "", res.Message())
}

func TestUpdate_UnconvertibleValueIsEmpty(t *testing.T) {
	for name, v := range map[string]Value{
		"text":  TextValue("abc"),
		"bool":  BoolValue(true),
		"files": FilesValue(File{Name: "sds.pdf"}),
	} {
		t.Run(name, func(t *testing.T) {
			w, err := New(stockSchema())
			require.NoError(t, err)
			w.Update("name", TextValue("Ethanol"))
			w.Update("minStock", NumberValue(1))
			w.Update("maxStock", v)

			got := w.Read("maxStock")
			assert.Equal(t, KindNumber, got.Kind)
			assert.True(t, got.IsEmpty())

			tr := w.GoNext()
			assert.False(t, tr.Moved)
			assert.Equal(t, "Both stock limits are required", tr.Result.Failures["minStock"])
			assert.Equal(t, 0, w.CurrentStep())
		})
	}
}

func TestValidateStep_ZeroIsPresent(t *testing.T) {
	s := stockSchema()
	s.Steps[0].Checks = nil
	store := NewFieldStore(s.Kinds(), Values{"name": TextValue("Water"), "minStock": NumberValue(0)})
	assert.True(t, ValidateStep(s, 0, store).IsValid())
}

func TestValidateStep_PanickingCheck(t *testing.T) {
	s := stockSchema()
	s.Steps[0].Checks["minStock"] = func(r Reader) (string, bool) {
		var m map[string]int
		m["boom"] = 1
		return "", true
	}
	store := NewFieldStore(s.Kinds(), Values{"name": TextValue("Water")})

	var res ValidationResult
	require.NotPanics(t, func() { res = ValidateStep(s, 0, store) })
	assert.Equal(t, "Minimum stock is invalid", res.Failures["minStock"])
}

func TestValidationResult_Message(t *testing.T) {
	res := ValidationResult{Failures: map[string]string{"a": "A is required", "b": "B is required"}}
	assert.Equal(t, "A is required (and 1 more)", res.Message())
}

func TestFieldStore(t *testing.T) {
	store := NewFieldStore(map[string]Kind{"count": KindNumber}, Values{"count": TextValue("3")})
	assert.Equal(t, KindNumber, store.Read("count").Kind, "initial values are coerced")
	assert.Equal(t, 3.0, *store.Read("count").Number)
	assert.True(t, store.Has("count"))
	assert.False(t, store.Has("missing"))
	assert.Equal(t, "", store.Read("missing").Text)

	store.SetError("count", "bad")
	assert.Equal(t, map[string]string{"count": "bad"}, store.Errors())
	store.Update("count", NumberValue(4))
	assert.Empty(t, store.Errors())

	store.Update("extra", ListValue("x"))
	assert.Equal(t, []string{"count", "extra"}, store.Names())

	snap := store.Snapshot()
	snap["count"] = NumberValue(99)
	assert.Equal(t, 4.0, *store.Read("count").Number, "snapshots are copies")
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Schema)
		errMsg string
	}{
		{"valid", func(s *Schema) {}, ""},
		{"missing id", func(s *Schema) { s.ID = "" }, "ID"},
		{"bad base", func(s *Schema) { s.Base = 2 }, "Base"},
		{"bad kind", func(s *Schema) { s.Fields[0].Kind = "date" }, "Kind"},
		{"single step", func(s *Schema) { s.Steps = s.Steps[1:] }, "Steps"},
		{"duplicate field", func(s *Schema) { s.Fields = append(s.Fields, s.Fields[0]) }, "duplicate field"},
		{"duplicate step", func(s *Schema) { s.Steps[1].Name = s.Steps[0].Name }, "duplicate step"},
		{"unknown field", func(s *Schema) { s.Steps[0].Required = append(s.Steps[0].Required, "ghost") }, "unknown field"},
		{"unknown check", func(s *Schema) { s.Steps[0].Checks["ghost"] = nil }, "checks unknown field"},
		{"review with checks", func(s *Schema) {
			s.Steps[1].Checks = map[string]Check{"name": func(Reader) (string, bool) { return "", true }}
		}, "review step"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stockSchema()
			tt.mutate(s)
			err := s.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSchemaAccessors(t *testing.T) {
	s := stockSchema()
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 0, s.First())
	assert.Equal(t, 1, s.Last())
	assert.Equal(t, "Minimum stock", s.Label("minStock"))
	assert.Equal(t, "ghost", s.Label("ghost"))
	_, ok := s.Step(2)
	assert.False(t, ok)
	assert.Equal(t, []string{"name", "minStock"}, s.Steps[0].Checked())
}
