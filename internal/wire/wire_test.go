package wire

import (
	"bytes"
	"testing"
)

func mustDecode(t *testing.T, b []byte) (string, []byte) {
	t.Helper()
	f, p, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return f, p
}

func TestRoundTripEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		format  string
		payload []byte
	}{
		{"json", nil},
		{"msgpack", []byte("hello")},
		{"gob", []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := Encode(tc.format, tc.payload)
		f, p := mustDecode(t, enc)
		if f != tc.format {
			t.Fatalf("format mismatch: got %q want %q", f, tc.format)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode("json", []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestRejectsForeignAndTruncated(t *testing.T) {
	if _, _, err := Decode([]byte("not a cache entry")); err != ErrCorrupt {
		t.Fatalf("foreign bytes: want ErrCorrupt, got %v", err)
	}
	enc := Encode("cbor", []byte("abcdef"))
	for cut := 1; cut < len(enc); cut++ {
		if _, _, err := Decode(enc[:cut]); err != ErrCorrupt {
			t.Fatalf("truncated at %d: want ErrCorrupt, got %v", cut, err)
		}
	}
}

func TestRejectsBadVersionAndMagic(t *testing.T) {
	enc := Encode("json", []byte("v"))

	bad := append([]byte(nil), enc...)
	bad[4] = version + 1
	if _, _, err := Decode(bad); err != ErrCorrupt {
		t.Fatalf("bad version: want ErrCorrupt, got %v", err)
	}

	bad = append([]byte(nil), enc...)
	bad[0] = 'X'
	if _, _, err := Decode(bad); err != ErrCorrupt {
		t.Fatalf("bad magic: want ErrCorrupt, got %v", err)
	}
}

func TestEncodePanicsOnEmptyFormat(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on empty format")
		}
	}()
	Encode("", []byte("x"))
}
