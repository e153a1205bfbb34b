package marc

import (
	"bytes"
	"io"
	"strconv"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
)

// TestEncodeRecordLayout verifies the transmission frame: recomputed leader
// length and base address, directory placement, and terminators.
func TestEncodeRecordLayout(t *testing.T) {
	r := NewRecord()
	r.AddField(
		mustControl(t, "001", "id1"),
		mustData(t, "245", '1', '0', Subfield{Code: 'a', Value: "Title"}),
	)

	data, err := EncodeRecord(r, EncodingUTF8)
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}

	if got, _ := strconv.Atoi(string(data[0:5])); got != len(data) {
		t.Errorf("leader record length = %d, want %d", got, len(data))
	}
	base, _ := strconv.Atoi(string(data[12:17]))
	wantBase := LeaderLen + 2*DirectoryEntryLen + 1
	if base != wantBase {
		t.Errorf("base address = %d, want %d", base, wantBase)
	}
	if data[9] != 'a' {
		t.Errorf("coding scheme byte = %q, want 'a'", data[9])
	}
	if data[base-1] != FieldTerminator {
		t.Error("directory not closed by a field terminator")
	}
	if data[len(data)-1] != RecordTerminator {
		t.Error("record not closed by a record terminator")
	}

	// Directory entries describe contiguous field data.
	entries, err := DecodeDirectory(data[LeaderLen:])
	if err != nil {
		t.Fatalf("directory decode failed: %v", err)
	}
	offset := 0
	for _, e := range entries {
		if e.Offset != offset {
			t.Errorf("entry %s offset = %d, want %d", e.Tag, e.Offset, offset)
		}
		offset += e.Length
	}
	if base+offset+1 != len(data) {
		t.Errorf("field data region ends at %d, record length %d", base+offset, len(data))
	}
}

// TestRoundTripUTF8 verifies a full encode/decode cycle preserves structure
// and text, including the catalog-flavored sample record.
func TestRoundTripUTF8(t *testing.T) {
	want := sampleRecord(t)
	want.Leader.Status = 'c'

	var buf bytes.Buffer
	if err := NewWriter(&buf, EncodingUTF8).Write(want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := NewReader(&buf).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	// The writer recomputes the derived leader positions; mirror that
	// before the deep comparison.
	want.Leader = got.Leader
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("record mismatch (-got +want):\n%s", diff)
	}
	if got.Leader.Status != 'c' {
		t.Errorf("leader status = %q, want 'c'", got.Leader.Status)
	}
	if got.Leader.Encoding() != EncodingUTF8 {
		t.Errorf("leader encoding = %v, want UTF-8", got.Leader.Encoding())
	}
}

// TestRoundTripMARC8 verifies text is transcoded to MARC-8 on the wire and
// back. Decoded text uses combining marks, so the fixture does too.
func TestRoundTripMARC8(t *testing.T) {
	want := NewRecord()
	want.AddField(mustData(t, "245", '1', '0',
		Subfield{Code: 'a', Value: "Résumés and applications"},
	))

	var buf bytes.Buffer
	if err := NewWriter(&buf, EncodingMARC8).Write(want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	wire := buf.Bytes()
	if wire[9] != ' ' {
		t.Errorf("coding scheme byte = %q, want blank", wire[9])
	}
	// ANSEL puts the acute accent before its base letter.
	if !bytes.Contains(wire, []byte{0xE2, 'e'}) {
		t.Error("wire data should carry the ANSEL acute before the base letter")
	}

	got, err := NewReader(bytes.NewReader(wire)).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want.Leader = got.Leader
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("record mismatch (-got +want):\n%s", diff)
	}
}

// TestRoundTripLeaderFlags verifies caller-set leader flags survive the
// cycle while the derived positions are recomputed.
func TestRoundTripLeaderFlags(t *testing.T) {
	leader, err := DecodeLeader([]byte("01060cam  22002894a 4500"))
	if err != nil {
		t.Fatalf("DecodeLeader failed: %v", err)
	}
	r := FromFields(leader, nil)
	r.AddField(mustData(t, "245", '1', '4',
		Subfield{Code: 'a', Value: "The pragmatic programmer :"},
		Subfield{Code: 'b', Value: "from journeyman to master /"},
		Subfield{Code: 'c', Value: "Andrew Hunt, David Thomas."},
	))

	data, err := EncodeRecord(r, EncodingUTF8)
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	got, err := NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if got.Leader.Status != 'c' || got.Leader.Type != 'a' || got.Leader.BibLevel != 'm' {
		t.Errorf("leader flags lost: %+v", got.Leader)
	}
	if got.Leader.RecordLength != len(data) {
		t.Errorf("record length = %d, want %d", got.Leader.RecordLength, len(data))
	}
	if got.Title() != "The pragmatic programmer : from journeyman to master /" {
		t.Errorf("Title = %q", got.Title())
	}
}

// TestReadMultiRecordStream verifies batch enumeration up to a clean EOF.
func TestReadMultiRecordStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, EncodingUTF8)
	ids := []string{"a1", "a2", "a3"}
	for _, id := range ids {
		r := NewRecord()
		r.AddField(mustControl(t, "001", id))
		if err := w.Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	reader := NewReader(&buf)
	for i, id := range ids {
		r, err := reader.Read()
		if err != nil {
			t.Fatalf("Read %d failed: %v", i, err)
		}
		if r.ControlNumber() != id {
			t.Errorf("record %d control number = %q, want %q", i, r.ControlNumber(), id)
		}
	}
	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("final Read = %v, want io.EOF", err)
	}
}

// TestReadTruncatedLeader verifies a short final fragment is an error, not
// a silent EOF.
func TestReadTruncatedLeader(t *testing.T) {
	_, err := NewReader(bytes.NewReader(make([]byte, 23))).Read()
	if err == nil || err == io.EOF {
		t.Fatalf("Read = %v, want a format error", err)
	}
	if !errors.Is(err, errors.ErrFormat) {
		t.Errorf("error should match ErrFormat, got %v", err)
	}
}

// TestReadMissingTerminator verifies the record terminator is enforced.
func TestReadMissingTerminator(t *testing.T) {
	r := NewRecord()
	r.AddField(mustControl(t, "001", "id"))
	data, err := EncodeRecord(r, EncodingUTF8)
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	data[len(data)-1] = 'x'

	_, err = NewReader(bytes.NewReader(data)).Read()
	if err == nil || !errors.Is(err, errors.ErrFormat) {
		t.Fatalf("Read = %v, want a format error", err)
	}
}

// TestReadEntryOutOfBounds verifies a directory entry pointing outside the
// field data region is rejected.
func TestReadEntryOutOfBounds(t *testing.T) {
	r := NewRecord()
	r.AddField(mustControl(t, "001", "id"))
	data, err := EncodeRecord(r, EncodingUTF8)
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	// Inflate the first directory entry's length digits.
	copy(data[LeaderLen+3:], "9999")

	_, err = NewReader(bytes.NewReader(data)).Read()
	if err == nil || !errors.Is(err, errors.ErrFormat) {
		t.Fatalf("Read = %v, want a format error", err)
	}
}

// TestSkipMalformed verifies the opt-in resynchronization scan recovers the
// stream after an unframeable record.
func TestSkipMalformed(t *testing.T) {
	good := NewRecord()
	good.AddField(mustControl(t, "001", "survivor"))
	goodBytes, err := EncodeRecord(good, EncodingUTF8)
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}

	var buf bytes.Buffer
	buf.WriteString("XXXXXcam  22XXXXX4a 4500") // unparseable leader
	buf.WriteString("garbage bytes")
	buf.WriteByte(RecordTerminator)
	buf.Write(goodBytes)

	reader := NewReader(&buf)
	reader.SkipMalformed = true

	if _, err := reader.Read(); err == nil {
		t.Fatal("first Read should surface the malformed record")
	}
	r, err := reader.Read()
	if err != nil {
		t.Fatalf("Read after resync failed: %v", err)
	}
	if r.ControlNumber() != "survivor" {
		t.Errorf("control number = %q, want %q", r.ControlNumber(), "survivor")
	}
	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("final Read = %v, want io.EOF", err)
	}
}

// TestStrictReaderNoResync verifies the default strict mode does not scan
// past an unframeable record.
func TestStrictReaderNoResync(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("XXXXXcam  22XXXXX4a 4500")
	buf.WriteString("rest")

	reader := NewReader(&buf)
	if _, err := reader.Read(); err == nil {
		t.Fatal("Read should fail on an unparseable leader")
	}
	// The stream was not scanned; the next read starts right after the
	// bad leader and fails on its own terms instead of clean EOF.
	if _, err := reader.Read(); err == io.EOF {
		t.Error("strict reader should not have consumed the remaining bytes")
	}
}

// TestEncodeFieldTooLong verifies the directory length limit is enforced.
func TestEncodeFieldTooLong(t *testing.T) {
	r := NewRecord()
	r.AddField(mustData(t, "520", ' ', ' ',
		Subfield{Code: 'a', Value: string(bytes.Repeat([]byte{'x'}, 10000))},
	))
	if _, err := EncodeRecord(r, EncodingUTF8); err == nil {
		t.Fatal("EncodeRecord should reject a field above 9999 bytes")
	}
}

// TestEncodeRecordTooLong verifies the leader's five-digit record length
// limit is enforced for records whose fields are individually legal.
func TestEncodeRecordTooLong(t *testing.T) {
	r := NewRecord()
	for i := 0; i < 11; i++ {
		r.AddField(mustData(t, "520", ' ', ' ',
			Subfield{Code: 'a', Value: string(bytes.Repeat([]byte{'x'}, 9985))},
		))
	}

	_, err := EncodeRecord(r, EncodingUTF8)
	if err == nil {
		t.Fatal("EncodeRecord should reject a record above 99999 bytes")
	}
	if !errors.Is(err, errors.ErrFormat) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}

// TestEncodeUnmappableMARC8 verifies transcoding failures surface with the
// field tag attached.
func TestEncodeUnmappableMARC8(t *testing.T) {
	r := NewRecord()
	r.AddField(mustData(t, "245", '0', '0', Subfield{Code: 'a', Value: "snow ☃"}))

	_, err := EncodeRecord(r, EncodingMARC8)
	if err == nil {
		t.Fatal("EncodeRecord should fail on an unmappable rune")
	}
	if !errors.Is(err, errors.ErrEncoding) {
		t.Errorf("error should match ErrEncoding, got %v", err)
	}
}
