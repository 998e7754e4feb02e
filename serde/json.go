package serde

import "encoding/json"

func init() {
	Register(FormatJSON, encodeJSON, decodeJSON)
}

func encodeJSON(v any) ([]byte, error) {
	return json.Marshal(ToTagged(v))
}

func decodeJSON(b []byte) (any, error) {
	tree, err := decodeJSONTree(b)
	if err != nil {
		return nil, err
	}
	return FromTagged(tree)
}
