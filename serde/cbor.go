package serde

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR uses RFC 8949 Core Deterministic encoding so equal canonical trees
// always produce identical bytes. Decoding maps to map[string]any and
// prefers int64 for integers so the revived tree matches what the json
// path produces.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := (cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSigned,
	}).DecMode()
	if err != nil {
		panic(err)
	}
	cborEnc, cborDec = em, dm

	Register(FormatCBOR, encodeCBOR, decodeCBOR)
}

func encodeCBOR(v any) ([]byte, error) {
	return cborEnc.Marshal(ToTagged(v))
}

func decodeCBOR(b []byte) (any, error) {
	var tree any
	if err := cborDec.Unmarshal(b, &tree); err != nil {
		return nil, err
	}
	return FromTagged(tree)
}
