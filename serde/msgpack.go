package serde

import "github.com/vmihailenco/msgpack/v5"

func init() {
	Register(FormatMsgpack, encodeMsgpack, decodeMsgpack)
}

// Msgpack carries the exact tagged structure the json format produces, so
// both formats round-trip the same set of rich types.
func encodeMsgpack(v any) ([]byte, error) {
	return msgpack.Marshal(ToTagged(v))
}

func decodeMsgpack(b []byte) (any, error) {
	var tree any
	if err := msgpack.Unmarshal(b, &tree); err != nil {
		return nil, err
	}
	return FromTagged(tree)
}
