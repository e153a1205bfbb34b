package marc

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
)

// DirectoryEntry locates one field's data within the record: a 3-character
// tag, the field's byte length including its terminator, and its starting
// offset relative to the base address of data.
type DirectoryEntry struct {
	Tag    string
	Length int
	Offset int
}

// DecodeDirectory parses 12-byte directory entries from data until the
// field terminator. The terminator must be present, the span before it must
// be a whole number of entries, and every length/offset must be numeric.
// Offsets reported in errors are relative to the start of data.
func DecodeDirectory(data []byte) ([]DirectoryEntry, error) {
	end := bytes.IndexByte(data, FieldTerminator)
	if end < 0 {
		return nil, errors.NewFormat(0, "directory terminator missing")
	}
	if end%DirectoryEntryLen != 0 {
		return nil, errors.NewFormatf(0, "directory length %d is not a multiple of %d", end, DirectoryEntryLen)
	}

	entries := make([]DirectoryEntry, 0, end/DirectoryEntryLen)
	for pos := 0; pos < end; pos += DirectoryEntryLen {
		raw := data[pos : pos+DirectoryEntryLen]
		length, err := strconv.Atoi(string(raw[3:7]))
		if err != nil {
			return nil, errors.NewFormatf(int64(pos+3), "field length %q is not numeric", raw[3:7])
		}
		offset, err := strconv.Atoi(string(raw[7:12]))
		if err != nil {
			return nil, errors.NewFormatf(int64(pos+7), "field offset %q is not numeric", raw[7:12])
		}
		entries = append(entries, DirectoryEntry{
			Tag:    string(raw[0:3]),
			Length: length,
			Offset: offset,
		})
	}
	return entries, nil
}

// EncodeDirectory serializes entries in order and appends the field
// terminator.
func EncodeDirectory(entries []DirectoryEntry) []byte {
	var out bytes.Buffer
	out.Grow(len(entries)*DirectoryEntryLen + 1)
	for _, e := range entries {
		fmt.Fprintf(&out, "%3s%04d%05d", e.Tag, e.Length, e.Offset)
	}
	out.WriteByte(FieldTerminator)
	return out.Bytes()
}
