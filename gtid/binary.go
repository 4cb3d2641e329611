package gtid

import (
	"encoding/binary"
	"fmt"
)

// binaryEntrySize is the encoded size of one (domain, server, seq) triple:
// u32 + u32 + u64, little-endian.
const binaryEntrySize = 4 + 4 + 8

// EncodeBinary produces the start-of-file GTID list record: a little-endian
// u32 count followed by count little-endian (u32 domain, u32 server, u64
// seq) triples.
func EncodeBinary(list List) []byte {
	buf := make([]byte, 4+len(list)*binaryEntrySize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(list)))

	off := 4
	for _, g := range list {
		binary.LittleEndian.PutUint32(buf[off:off+4], g.Domain)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], g.Server)
		binary.LittleEndian.PutUint64(buf[off+8:off+16], g.Seq)
		off += binaryEntrySize
	}

	return buf
}

// DecodeBinary parses the start-of-file GTID list record produced by
// EncodeBinary.
func DecodeBinary(buf []byte) (List, error) {
	if len(buf) < 4 {
		return nil, &MalformedError{Pos: 0, Cause: "truncated count header"}
	}

	count := binary.LittleEndian.Uint32(buf[0:4])
	want := 4 + int(count)*binaryEntrySize
	if len(buf) < want {
		return nil, &MalformedError{Pos: 4, Cause: fmt.Sprintf("truncated body: want %d bytes, have %d", want, len(buf))}
	}

	out := make(List, count)
	off := 4
	for i := uint32(0); i < count; i++ {
		out[i] = ID{
			Domain: binary.LittleEndian.Uint32(buf[off : off+4]),
			Server: binary.LittleEndian.Uint32(buf[off+4 : off+8]),
			Seq:    binary.LittleEndian.Uint64(buf[off+8 : off+16]),
		}
		off += binaryEntrySize
	}

	return out, nil
}
