package marc

import (
	"bufio"
	"bytes"
	"io"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
	"github.com/FocuswithJustin/JuniperMARC/core/marc8"
	"github.com/FocuswithJustin/JuniperMARC/internal/logging"
)

// Reader decodes MARC21 records from a byte stream. Each Read consumes
// exactly one record's bytes and leaves the stream positioned at the next
// record's leader, so repeated calls enumerate a batch. Reads on one Reader
// are strictly sequential; a Reader must not be shared between goroutines.
type Reader struct {
	src *bufio.Reader

	// SkipMalformed opts in to skip-and-continue batch processing: after
	// a malformed record the reader resynchronizes by scanning to the
	// next record terminator, so the following Read starts at a
	// plausible leader. The error for the malformed record is still
	// returned; resynchronization is heuristic and therefore never
	// implicit.
	SkipMalformed bool
}

// NewReader returns a strict Reader: any malformed record is surfaced as an
// error and the stream is left wherever decoding stopped.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(r)}
}

// Read decodes the next record. It returns io.EOF when the stream is
// exhausted at a clean record boundary. FormatError offsets are relative to
// the start of the record being decoded.
func (r *Reader) Read() (*Record, error) {
	leaderBytes := make([]byte, LeaderLen)
	n, err := io.ReadFull(r.src, leaderBytes)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.NewFormatf(int64(n), "truncated leader: got %d of %d bytes", n, LeaderLen)
	}

	// Framing errors (unparseable leader, bad length, missing record
	// terminator) leave the stream position suspect and trigger the
	// opt-in resynchronization scan. Errors inside a well-framed record
	// do not: the stream already sits at the next record boundary.
	leader, err := DecodeLeader(leaderBytes)
	if err != nil {
		return nil, r.framingError(err)
	}
	if leader.RecordLength < LeaderLen+2 {
		return nil, r.framingError(errors.NewFormatf(0, "record length %d is impossibly small", leader.RecordLength))
	}

	rest := make([]byte, leader.RecordLength-LeaderLen)
	if n, err := io.ReadFull(r.src, rest); err != nil {
		return nil, errors.NewFormatf(int64(LeaderLen+n), "truncated record: got %d of %d bytes", LeaderLen+n, leader.RecordLength)
	}
	if rest[len(rest)-1] != RecordTerminator {
		return nil, r.framingError(errors.NewFormat(int64(leader.RecordLength-1), "record terminator missing"))
	}

	return decodeBody(leader, rest)
}

// framingError applies the skip-and-continue policy before surfacing err.
func (r *Reader) framingError(err error) error {
	if r.SkipMalformed {
		r.resync()
	}
	return err
}

// decodeBody decodes the directory and field data of a fully read record
// span (everything after the leader, including the record terminator).
func decodeBody(leader Leader, rest []byte) (*Record, error) {
	entries, err := DecodeDirectory(rest)
	if err != nil {
		return nil, errors.Wrap(err, "directory")
	}

	if leader.BaseAddress <= LeaderLen || leader.BaseAddress >= leader.RecordLength {
		return nil, errors.NewFormatf(12, "base address %d outside record bounds", leader.BaseAddress)
	}
	dataStart := leader.BaseAddress - LeaderLen
	dataEnd := len(rest) - 1 // excludes the record terminator

	record := &Record{Leader: leader, Fields: make([]*Field, 0, len(entries))}
	for _, entry := range entries {
		start := dataStart + entry.Offset
		end := start + entry.Length
		if entry.Offset < 0 || end > dataEnd || entry.Length < 1 {
			return nil, errors.NewFormatf(int64(leader.BaseAddress+entry.Offset),
				"directory entry %s (length %d, offset %d) outside the field data region",
				entry.Tag, entry.Length, entry.Offset)
		}
		raw := rest[start:end]
		if raw[len(raw)-1] != FieldTerminator {
			return nil, errors.NewFormatf(int64(leader.BaseAddress+entry.Offset+entry.Length-1),
				"field %s not closed by a field terminator", entry.Tag)
		}

		field, err := decodeField(entry.Tag, raw[:len(raw)-1], leader.Encoding())
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", entry.Tag)
		}
		record.Fields = append(record.Fields, field)
	}
	return record, nil
}

// decodeField interprets one field's data block (terminator already
// stripped). A single MARC-8 decoder spans all subfields so escape-driven
// set designations persist across them within the field.
func decodeField(tag string, content []byte, encoding Encoding) (*Field, error) {
	var dec *marc8.Decoder
	if encoding == EncodingMARC8 {
		dec = marc8.NewDecoder()
	}

	transcode := func(b []byte) (string, error) {
		if dec != nil {
			return dec.Decode(b)
		}
		return string(b), nil
	}

	if IsControlTag(tag) {
		data, err := transcode(content)
		if err != nil {
			return nil, err
		}
		return &Field{Tag: tag, Data: data}, nil
	}

	chunks := bytes.Split(content, []byte{SubfieldDelimiter})
	field := &Field{Tag: tag}

	// The format requires exactly two indicator bytes, but wild data is
	// frequently short or long here. Salvage what is present: missing
	// indicators become blanks, extras are dropped.
	indicators := chunks[0]
	switch {
	case len(indicators) == 0:
		logging.Warn("missing indicators", "tag", tag)
		field.Indicators = [2]byte{' ', ' '}
	case len(indicators) == 1:
		logging.Warn("only one indicator found", "tag", tag)
		field.Indicators = [2]byte{indicators[0], ' '}
	default:
		if len(indicators) > 2 {
			logging.Warn("more than two indicators found", "tag", tag, "count", len(indicators))
		}
		field.Indicators = [2]byte{indicators[0], indicators[1]}
	}

	for _, chunk := range chunks[1:] {
		if len(chunk) == 0 {
			continue
		}
		value, err := transcode(chunk[1:])
		if err != nil {
			return nil, err
		}
		field.Subfields = append(field.Subfields, Subfield{Code: chunk[0], Value: value})
	}
	return field, nil
}

// resync scans forward to just past the next record terminator so the next
// Read starts at a plausible leader.
func (r *Reader) resync() {
	for {
		b, err := r.src.ReadByte()
		if err != nil || b == RecordTerminator {
			return
		}
	}
}
