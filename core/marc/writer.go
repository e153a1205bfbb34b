package marc

import (
	"bytes"
	"io"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
	"github.com/FocuswithJustin/JuniperMARC/core/marc8"
)

// Writer serializes records to a byte stream in MARC21 transmission format.
type Writer struct {
	dst      io.Writer
	encoding Encoding
}

// NewWriter returns a Writer that serializes records with the given target
// field-data encoding. Leader byte 9 is set to declare it on every record
// written.
func NewWriter(w io.Writer, encoding Encoding) *Writer {
	return &Writer{dst: w, encoding: encoding}
}

// Write serializes one record and writes it to the stream.
func (w *Writer) Write(r *Record) error {
	data, err := EncodeRecord(r, w.encoding)
	if err != nil {
		return err
	}
	_, err = w.dst.Write(data)
	return err
}

// EncodeRecord serializes a record. Field text is transcoded to MARC-8 when
// that is the target encoding; the leader's record length and base address
// are recomputed from actual content, and its coding scheme byte is set
// from encoding.
func EncodeRecord(r *Record, encoding Encoding) ([]byte, error) {
	var fieldData bytes.Buffer
	entries := make([]DirectoryEntry, 0, len(r.Fields))
	offset := 0

	for _, f := range r.Fields {
		data, err := encodeField(f, encoding)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.Tag)
		}
		if len(data) > 9999 {
			return nil, errors.NewFormatf(int64(offset), "field %s exceeds the 9999-byte directory limit", f.Tag)
		}
		if offset > 99999 {
			return nil, errors.NewFormatf(int64(offset), "field data exceeds the 99999-byte offset limit")
		}
		entries = append(entries, DirectoryEntry{Tag: f.Tag, Length: len(data), Offset: offset})
		fieldData.Write(data)
		offset += len(data)
	}

	directory := EncodeDirectory(entries)
	baseAddress := LeaderLen + len(directory)
	recordLength := baseAddress + fieldData.Len() + 1
	if baseAddress > 99999 {
		return nil, errors.NewFormatf(0, "base address %d exceeds the 99999-byte leader limit", baseAddress)
	}
	if recordLength > 99999 {
		return nil, errors.NewFormatf(0, "record length %d exceeds the 99999-byte leader limit", recordLength)
	}

	leader := r.Leader
	leader.CodingScheme = encoding.leaderByte()

	out := bytes.NewBuffer(make([]byte, 0, recordLength))
	out.Write(EncodeLeader(leader, recordLength, baseAddress))
	out.Write(directory)
	out.Write(fieldData.Bytes())
	out.WriteByte(RecordTerminator)
	return out.Bytes(), nil
}

// encodeField serializes one field's data block, including its terminator.
// A single MARC-8 encoder spans all subfields so set designations persist
// across them with minimal escapes.
func encodeField(f *Field, encoding Encoding) ([]byte, error) {
	var enc *marc8.Encoder
	if encoding == EncodingMARC8 {
		enc = marc8.NewEncoder()
	}

	transcode := func(s string) ([]byte, error) {
		if enc != nil {
			return enc.Encode(s)
		}
		return []byte(s), nil
	}

	var out bytes.Buffer
	if f.IsControl() {
		data, err := transcode(f.Data)
		if err != nil {
			return nil, err
		}
		out.Write(data)
		out.WriteByte(FieldTerminator)
		return out.Bytes(), nil
	}

	for _, ind := range f.Indicators {
		if ind == 0 {
			ind = ' '
		}
		out.WriteByte(ind)
	}
	for _, sf := range f.Subfields {
		out.WriteByte(SubfieldDelimiter)
		out.WriteByte(sf.Code)
		value, err := transcode(sf.Value)
		if err != nil {
			return nil, err
		}
		out.Write(value)
	}
	out.WriteByte(FieldTerminator)
	return out.Bytes(), nil
}
