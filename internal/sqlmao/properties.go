package sqlmao

import (
	"encoding/json"
	"fmt"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
)

// jsonValue is the wire shape of an mdtype.Value inside a JSON properties
// blob: a type tag plus whichever field is populated.
type jsonValue struct {
	Type   string               `json:"type"`
	Int    int64                `json:"int,omitempty"`
	Double float64              `json:"double,omitempty"`
	String string               `json:"string,omitempty"`
	Struct map[string]jsonValue `json:"struct,omitempty"`
}

func toJSONValue(v mdtype.Value) jsonValue {
	jv := jsonValue{Type: v.Type.String()}
	switch v.Type {
	case mdtype.Int:
		jv.Int = v.IntValue
	case mdtype.Double:
		jv.Double = v.DoubleVal
	case mdtype.String:
		jv.String = v.StringVal
	case mdtype.Struct:
		jv.Struct = make(map[string]jsonValue, len(v.StructVal))
		for k, sv := range v.StructVal {
			jv.Struct[k] = toJSONValue(sv)
		}
	}
	return jv
}

func fromJSONValue(jv jsonValue) mdtype.Value {
	switch jv.Type {
	case "INT":
		return mdtype.IntValue(jv.Int)
	case "DOUBLE":
		return mdtype.DoubleValue(jv.Double)
	case "STRING":
		return mdtype.StringValue(jv.String)
	case "STRUCT":
		m := make(map[string]mdtype.Value, len(jv.Struct))
		for k, sv := range jv.Struct {
			m[k] = fromJSONValue(sv)
		}
		return mdtype.StructValue(m)
	default:
		return mdtype.Value{}
	}
}

func encodeProperties(props map[string]mdtype.Value) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	wire := make(map[string]jsonValue, len(props))
	for k, v := range props {
		wire[k] = toJSONValue(v)
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode properties: %w", err)
	}
	return string(b), nil
}

func decodeProperties(blob string) (map[string]mdtype.Value, error) {
	if blob == "" {
		return map[string]mdtype.Value{}, nil
	}
	var wire map[string]jsonValue
	if err := json.Unmarshal([]byte(blob), &wire); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	props := make(map[string]mdtype.Value, len(wire))
	for k, jv := range wire {
		props[k] = fromJSONValue(jv)
	}
	return props, nil
}

func encodePropertyTypes(props map[string]mdtype.PropertyType) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	wire := make(map[string]string, len(props))
	for k, v := range props {
		wire[k] = v.String()
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode property types: %w", err)
	}
	return string(b), nil
}

func decodePropertyTypes(blob string) (map[string]mdtype.PropertyType, error) {
	if blob == "" {
		return map[string]mdtype.PropertyType{}, nil
	}
	var wire map[string]string
	if err := json.Unmarshal([]byte(blob), &wire); err != nil {
		return nil, fmt.Errorf("decode property types: %w", err)
	}
	props := make(map[string]mdtype.PropertyType, len(wire))
	for k, v := range wire {
		props[k] = propertyTypeFromString(v)
	}
	return props, nil
}

func propertyTypeFromString(s string) mdtype.PropertyType {
	switch s {
	case "INT":
		return mdtype.Int
	case "DOUBLE":
		return mdtype.Double
	case "STRING":
		return mdtype.String
	case "STRUCT":
		return mdtype.Struct
	default:
		return mdtype.Unknown
	}
}
