package octavia

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payload holds the method-specific fields of an envelope.
type Payload map[string]any

// Payload field names.
const (
	FieldCollectionName = "collectionName"
	FieldEncrypt        = "encrypt"
	FieldData           = "data"
	FieldNewData        = "newData"
	FieldDataScheme     = "dataScheme"
)

// normalizePayload rewrites BSON values (bson.D, bson.M, bson.A and the
// primitive scalar types) into relaxed Extended JSON so documents built for
// mongo-driver can be sent as-is. Plain Go values pass through.
func normalizePayload(p Payload) (Payload, error) {
	out := make(Payload, len(p))
	for k, v := range p {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case bson.D, bson.M:
		b, err := bson.MarshalExtJSON(val, false, false)
		if err != nil {
			return nil, fmt.Errorf("failed to encode document: %w", err)
		}
		return json.RawMessage(b), nil
	case bson.A:
		return normalizeSlice(val)
	case []bson.D:
		items := make([]any, len(val))
		for i := range val {
			items[i] = val[i]
		}
		return normalizeSlice(items)
	case []bson.M:
		items := make([]any, len(val))
		for i := range val {
			items[i] = val[i]
		}
		return normalizeSlice(items)
	case primitive.ObjectID, primitive.DateTime, primitive.Decimal128:
		return normalizeScalar(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			nv, err := normalizeValue(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		return normalizeSlice(val)
	default:
		return v, nil
	}
}

func normalizeSlice(items []any) ([]any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		nv, err := normalizeValue(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = nv
	}
	return out, nil
}

// normalizeScalar encodes a lone BSON scalar by wrapping it in a document,
// since Extended JSON is only defined for documents.
func normalizeScalar(v any) (any, error) {
	b, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}

	var wrapped struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return wrapped.V, nil
}
