package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("fncache: corrupt entry")
	magic4     = [...]byte{'F', 'N', 'C', 'H'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames a serialized payload for storage:
//
//	magic(4) | ver(1) | flen(1) | format(flen) | vlen(u32 be) | payload(vlen)
//
// The format identifier travels with the bytes so reads decode with the
// format the entry was written in, not whatever the process default is now.
func Encode(format string, payload []byte) []byte {
	if len(format) == 0 || len(format) > 0xFF {
		panic("fncache: invalid format length in wire entry")
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + len(format) + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(byte(len(format)))
	buf.WriteString(format)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the framing and returns the embedded format identifier
// and payload. Foreign or truncated bytes return ErrCorrupt.
func Decode(b []byte) (format string, payload []byte, err error) {
	const hdr = 4 + 1 + 1
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return "", nil, ErrCorrupt
	}

	flen := int(b[5])
	off := 6
	if flen == 0 || flen > len(b)-off {
		return "", nil, ErrCorrupt
	}
	format = string(b[off : off+flen])
	off += flen

	if off+4 > len(b) {
		return "", nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off { // trailing garbage is corruption too
		return "", nil, ErrCorrupt
	}

	return format, b[off : off+vlen], nil
}
