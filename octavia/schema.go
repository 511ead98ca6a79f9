package octavia

import "reflect"

// Validator is a named type check the server applies to a document field.
// Only the name travels over the wire; the server resolves it back to
// behavior.
type Validator interface {
	Name() string
}

type namedValidator string

func (v namedValidator) Name() string {
	return string(v)
}

// Built-in validators understood by the Octavia server.
var (
	String  Validator = namedValidator("String")
	Number  Validator = namedValidator("Number")
	Boolean Validator = namedValidator("Boolean")
	Array   Validator = namedValidator("Array")
	Object  Validator = namedValidator("Object")
	Date    Validator = namedValidator("Date")
	Any     Validator = namedValidator("Any")
)

// NewValidator returns a validator with a custom name registered on the server.
func NewValidator(name string) Validator {
	return namedValidator(name)
}

// Schema describes the shape of documents in a collection. Values are
// Validators, nested Schemas (or map[string]any), slices of those, or
// literals that are sent unchanged.
type Schema map[string]any

// EncodedSchema is the wire form of a Schema: validators replaced by their
// names.
type EncodedSchema map[string]any

// EncodeSchema converts s into its wire form. The result has the same keys
// and nesting as s. Maps with string keys become objects and slices or
// arrays become JSON arrays in the same order; arrays are not turned into
// index-keyed objects. A nil schema encodes to an empty, non-nil map.
func EncodeSchema(s Schema) EncodedSchema {
	return encodeMap(s)
}

func encodeMap(m map[string]any) EncodedSchema {
	out := make(EncodedSchema, len(m))
	for k, v := range m {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Validator:
		return val.Name()
	case Schema:
		return map[string]any(encodeMap(val))
	case EncodedSchema:
		return map[string]any(encodeMap(val))
	case map[string]any:
		return map[string]any(encodeMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	}
	return encodeReflect(v)
}

// encodeReflect handles typed containers such as map[string]Validator or
// []Schema. Anything else is a literal and passes through.
func encodeReflect(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = encodeValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v
		}
		// []byte is a literal; encoding/json sends it as base64.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = encodeValue(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}
