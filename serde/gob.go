package serde

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	gob.Register(time.Time{})
	gob.Register(time.Duration(0))
	gob.Register(uuid.UUID{})
	gob.Register(decimal.Decimal{})
	gob.Register(map[string]any{})
	gob.Register([]any{})

	Register(FormatGob, encodeGob, decodeGob)
}

// Gob is the native binary format. It skips canonicalization entirely and
// instantiates whatever concrete types were registered with encoding/gob,
// so it must only be used against trusted backends; callers cache their own
// struct types by calling gob.Register for them at startup.
func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(b []byte) (any, error) {
	var v any
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
