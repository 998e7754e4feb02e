// Package serde implements the value serialization used by fncache.
//
// Values are encoded through a closed canonicalization step that rewrites
// rich types (time.Time, time.Duration, uuid.UUID, decimal.Decimal, byte
// strings, registered record types) into a tagged representation, so the
// originating type is reconstructed on decode regardless of the byte format
// used. The json, msgpack and cbor formats all carry the same tagged
// structure; gob bypasses canonicalization and encodes Go values natively.
//
// The format registry is mutable: Register adds a format at runtime, and
// the process-wide default is settable once at startup via the fncache
// registry. Unknown formats are an error, never a silent fallback.
package serde

import (
	"errors"
	"fmt"
	"sync"
)

// Format identifies a registered serialization format.
type Format string

const (
	// FormatJSON is the plain-text structured format and the process default.
	FormatJSON Format = "json"

	// FormatGob is the native binary format. It bypasses canonicalization
	// and decodes into whatever concrete types were registered with
	// encoding/gob. Only use it with trusted cache backends.
	FormatGob Format = "gob"

	// FormatMsgpack is the compact binary format. It is layered on the same
	// tagged canonical structure as FormatJSON, not an independent encoding.
	FormatMsgpack Format = "msgpack"

	// FormatCBOR carries the tagged canonical structure as deterministic
	// CBOR (RFC 8949 Core Deterministic).
	FormatCBOR Format = "cbor"
)

// ErrUnknownFormat reports an encode/decode against a format that was never
// registered.
var ErrUnknownFormat = errors.New("fncache: unknown serialization format")

// Error is the single error kind returned by Encode and Decode. It names
// the attempted format and wraps the original cause; underlying library
// errors never surface directly.
type Error struct {
	Format Format
	Op     string // "encode" or "decode"
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fncache: %s with format %q failed: %v", e.Op, e.Format, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// EncodeFunc serializes a value to bytes.
type EncodeFunc func(any) ([]byte, error)

// DecodeFunc deserializes bytes produced by the matching EncodeFunc.
type DecodeFunc func([]byte) (any, error)

var (
	regMu    sync.RWMutex
	encoders = map[Format]EncodeFunc{}
	decoders = map[Format]DecodeFunc{}

	defMu         sync.RWMutex
	defaultFormat = FormatJSON
)

// maxFormatLen is the longest format id the storage framing can carry;
// its length field is a single byte.
const maxFormatLen = 255

// Register adds or replaces a format's encode/decode pair. The format id
// must be non-empty and at most 255 bytes, the limit of the storage
// framing; longer ids are rejected here so they can never reach the
// store path.
func Register(f Format, enc EncodeFunc, dec DecodeFunc) {
	if f == "" || enc == nil || dec == nil {
		panic("serde: Register requires a format id and both functions")
	}
	if len(f) > maxFormatLen {
		panic("serde: format id exceeds 255 bytes")
	}
	regMu.Lock()
	encoders[f] = enc
	decoders[f] = dec
	regMu.Unlock()
}

// Known reports whether f is a registered format.
func Known(f Format) bool {
	regMu.RLock()
	_, ok := encoders[f]
	regMu.RUnlock()
	return ok
}

// SetDefault replaces the process-wide default format. Unknown formats are
// rejected.
func SetDefault(f Format) error {
	if !Known(f) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	defMu.Lock()
	defaultFormat = f
	defMu.Unlock()
	return nil
}

// Default returns the process-wide default format.
func Default() Format {
	defMu.RLock()
	f := defaultFormat
	defMu.RUnlock()
	return f
}

// Encode serializes v with the given format; the zero Format means the
// process default.
func Encode(v any, f Format) ([]byte, error) {
	if f == "" {
		f = Default()
	}
	regMu.RLock()
	enc, ok := encoders[f]
	regMu.RUnlock()
	if !ok {
		return nil, &Error{Format: f, Op: "encode", Cause: ErrUnknownFormat}
	}
	b, err := enc(v)
	if err != nil {
		return nil, &Error{Format: f, Op: "encode", Cause: err}
	}
	return b, nil
}

// Decode deserializes b with the given format; the zero Format means the
// process default.
func Decode(b []byte, f Format) (any, error) {
	if f == "" {
		f = Default()
	}
	regMu.RLock()
	dec, ok := decoders[f]
	regMu.RUnlock()
	if !ok {
		return nil, &Error{Format: f, Op: "decode", Cause: ErrUnknownFormat}
	}
	v, err := dec(b)
	if err != nil {
		return nil, &Error{Format: f, Op: "decode", Cause: err}
	}
	return v, nil
}
