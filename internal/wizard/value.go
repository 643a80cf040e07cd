package wizard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Kind is the declared type of a field.
type Kind string

const (
	KindText   Kind = "text"
	KindList   Kind = "list"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindFiles  Kind = "files"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindList, KindNumber, KindBool, KindFiles:
		return true
	}
	return false
}

// File describes an attachment. Only the descriptor is tracked; file
// contents never pass through the wizard.
type File struct {
	Name      string `json:"name" yaml:"name"`
	Size      int64  `json:"size,omitempty" yaml:"size,omitempty"`
	MediaType string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
}

// Value is a single field value. Kind selects which of the payload fields
// is meaningful.
type Value struct {
	Kind   Kind
	Text   string
	List   []string
	Number *float64
	Bool   bool
	Files  []File
}

// Values maps field names to their values.
type Values map[string]Value

// Clone returns a deep copy of vs.
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v.Clone()
	}
	return out
}

// Plain converts vs into JSON-friendly Go values.
func (vs Values) Plain() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v.Interface()
	}
	return out
}

func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

func ListValue(items ...string) Value {
	return Value{Kind: KindList, List: append([]string{}, items...)}
}

func NumberValue(n float64) Value { return Value{Kind: KindNumber, Number: &n} }

func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func FilesValue(files ...File) Value {
	return Value{Kind: KindFiles, Files: append([]File{}, files...)}
}

// Empty returns the empty default for kind: "", [], an unset number,
// false, or no files.
func Empty(kind Kind) Value {
	switch kind {
	case KindList:
		return Value{Kind: KindList, List: []string{}}
	case KindFiles:
		return Value{Kind: KindFiles, Files: []File{}}
	case KindNumber, KindBool:
		return Value{Kind: kind}
	default:
		return Value{Kind: KindText}
	}
}

// IsEmpty reports whether v counts as absent for a presence check. A number
// is empty only when unset, so an explicit zero is present.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindList:
		for _, item := range v.List {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	case KindNumber:
		return v.Number == nil
	case KindBool:
		return !v.Bool
	case KindFiles:
		return len(v.Files) == 0
	default:
		return strings.TrimSpace(v.Text) == ""
	}
}

// Clone returns a copy of v that shares no slices or pointers with it.
func (v Value) Clone() Value {
	out := v
	if v.List != nil {
		out.List = slices.Clone(v.List)
	}
	if v.Files != nil {
		out.Files = slices.Clone(v.Files)
	}
	if v.Number != nil {
		n := *v.Number
		out.Number = &n
	}
	return out
}

// Equal compares the meaningful payload of two values.
func (v Value) Equal(o Value) bool {
	if v.IsEmpty() || o.IsEmpty() {
		return v.IsEmpty() == o.IsEmpty()
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindList:
		return slices.Equal(v.List, o.List)
	case KindNumber:
		return *v.Number == *o.Number
	case KindBool:
		return v.Bool == o.Bool
	case KindFiles:
		return slices.Equal(v.Files, o.Files)
	default:
		return v.Text == o.Text
	}
}

// String formats v for display. ParseValue accepts the same format back.
func (v Value) String() string {
	switch v.Kind {
	case KindList:
		return strings.Join(v.List, ", ")
	case KindNumber:
		if v.Number == nil {
			return ""
		}
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "yes"
		}
		return "no"
	case KindFiles:
		names := make([]string, len(v.Files))
		for i, f := range v.Files {
			names[i] = f.Name
		}
		return strings.Join(names, ", ")
	default:
		return v.Text
	}
}

// Interface returns v as a plain Go value.
func (v Value) Interface() any {
	switch v.Kind {
	case KindList:
		if v.List == nil {
			return []string{}
		}
		return v.List
	case KindNumber:
		if v.Number == nil {
			return nil
		}
		return *v.Number
	case KindBool:
		return v.Bool
	case KindFiles:
		if v.Files == nil {
			return []File{}
		}
		return v.Files
	default:
		return v.Text
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON infers the kind from the JSON shape. An empty array decodes
// as an empty list; Coerce fixes it up against the declared kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{Kind: KindText}
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if arr, ok := raw.([]any); ok && len(arr) > 0 {
		if _, isObj := arr[0].(map[string]any); isObj {
			var files []File
			if err := json.Unmarshal(data, &files); err != nil {
				return fmt.Errorf("decoding files: %w", err)
			}
			*v = FilesValue(files...)
			return nil
		}
	}
	out, err := FromAny("", raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// FromAny converts a decoded JSON or YAML value into a Value. When kind is
// empty the kind is inferred from the Go type.
func FromAny(kind Kind, raw any) (Value, error) {
	if raw == nil {
		if kind == "" {
			kind = KindText
		}
		return Empty(kind), nil
	}
	if s, ok := raw.(string); ok && kind != "" && kind != KindText {
		return ParseValue(kind, s)
	}

	var v Value
	switch t := raw.(type) {
	case Value:
		v = t
	case string:
		v = TextValue(t)
	case bool:
		v = BoolValue(t)
	case float64:
		v = NumberValue(t)
	case float32:
		v = NumberValue(float64(t))
	case int:
		v = NumberValue(float64(t))
	case int64:
		v = NumberValue(float64(t))
	case []string:
		v = ListValue(t...)
	case []File:
		v = FilesValue(t...)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				if kind == KindFiles || kind == "" {
					return filesFromMaps(t)
				}
				return Value{}, fmt.Errorf("unexpected object %v in list", m)
			}
			items = append(items, fmt.Sprint(item))
		}
		v = ListValue(items...)
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}

	if kind == "" {
		return v, nil
	}
	return v.Coerce(kind)
}

func filesFromMaps(items []any) (Value, error) {
	files := make([]File, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return Value{}, fmt.Errorf("file descriptor must be an object, got %T", item)
		}
		f := File{}
		f.Name, _ = m["name"].(string)
		f.MediaType, _ = m["media_type"].(string)
		switch size := m["size"].(type) {
		case float64:
			f.Size = int64(size)
		case int:
			f.Size = int64(size)
		}
		if f.Name == "" {
			return Value{}, fmt.Errorf("file descriptor missing name")
		}
		files = append(files, f)
	}
	return FilesValue(files...), nil
}

// Coerce converts v to kind. Empty values of any kind become the empty
// default of kind; text converts through ParseValue.
func (v Value) Coerce(kind Kind) (Value, error) {
	if v.Kind == kind {
		return v, nil
	}
	if v.IsEmpty() {
		return Empty(kind), nil
	}
	switch {
	case kind == KindText:
		return TextValue(v.String()), nil
	case v.Kind == KindText:
		return ParseValue(kind, v.Text)
	case kind == KindList && v.Kind == KindFiles:
		return ListValue(strings.Split(v.String(), ", ")...), nil
	case kind == KindFiles && v.Kind == KindList:
		return ParseValue(kind, v.String())
	}
	return Value{}, fmt.Errorf("cannot convert %s value to %s", v.Kind, kind)
}

// ParseValue parses user input for a field of the given kind. Lists and
// files are comma separated.
func ParseValue(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindList:
		return ListValue(splitList(raw)...), nil
	case KindNumber:
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return Empty(KindNumber), nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a number", raw)
		}
		return NumberValue(n), nil
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "no", "n", "off", "false", "0":
			return BoolValue(false), nil
		case "yes", "y", "on", "true", "1":
			return BoolValue(true), nil
		}
		return Value{}, fmt.Errorf("%q is not yes or no", raw)
	case KindFiles:
		names := splitList(raw)
		files := make([]File, len(names))
		for i, name := range names {
			files[i] = File{Name: name, MediaType: mime.TypeByExtension(filepath.Ext(name))}
		}
		return FilesValue(files...), nil
	default:
		return TextValue(raw), nil
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
