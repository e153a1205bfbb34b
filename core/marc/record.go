package marc

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// Record is one bibliographic record: leader flags plus an ordered field
// sequence. Tags may repeat and insertion order is preserved; it is
// semantically significant for output.
type Record struct {
	Leader Leader
	Fields []*Field
}

// NewRecord returns an empty record with conventional leader defaults.
func NewRecord() *Record {
	return &Record{Leader: NewLeader()}
}

// FromFields builds a record from leader flags and a field sequence. This
// is the constructor adapters use; it does not touch binary layout.
func FromFields(leader Leader, fields []*Field) *Record {
	return &Record{Leader: leader, Fields: fields}
}

// AddField appends fields to the end of the record.
func (r *Record) AddField(fields ...*Field) {
	r.Fields = append(r.Fields, fields...)
}

// AddGroupedField inserts fields keeping a loose numeric order by the first
// tag digit, per the MARC convention for organization of the record.
// Non-numeric tags append to the end.
func (r *Record) AddGroupedField(fields ...*Field) {
	for _, f := range fields {
		r.insertSorted(f, true)
	}
}

// AddOrderedField inserts fields keeping strict numeric tag order.
// Non-numeric tags append to the end.
func (r *Record) AddOrderedField(fields ...*Field) {
	for _, f := range fields {
		r.insertSorted(f, false)
	}
}

func tagSortKey(tag string, grouped bool) (int, bool) {
	s := tag
	if grouped {
		s = tag[:1]
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func (r *Record) insertSorted(f *Field, grouped bool) {
	key, ok := tagSortKey(f.Tag, grouped)
	if !ok {
		r.Fields = append(r.Fields, f)
		return
	}
	for i, existing := range r.Fields {
		existingKey, numeric := tagSortKey(existing.Tag, grouped)
		if !numeric || existingKey > key {
			r.Fields = append(r.Fields[:i], append([]*Field{f}, r.Fields[i:]...)...)
			return
		}
	}
	r.Fields = append(r.Fields, f)
}

// RemoveField removes the first structurally equal occurrence of the field.
// Removing a field that is not present is a no-op.
func (r *Record) RemoveField(f *Field) {
	for i, existing := range r.Fields {
		if existing == f || existing.Equal(f) {
			r.Fields = append(r.Fields[:i], r.Fields[i+1:]...)
			return
		}
	}
}

// RemoveFields removes every field whose tag matches one of tags.
func (r *Record) RemoveFields(tags ...string) {
	kept := r.Fields[:0]
	for _, f := range r.Fields {
		match := false
		for _, tag := range tags {
			if f.Tag == tag {
				match = true
				break
			}
		}
		if !match {
			kept = append(kept, f)
		}
	}
	r.Fields = kept
}

// GetFields returns every field whose tag matches one of tags, preserving
// record order. With no arguments it returns all fields.
func (r *Record) GetFields(tags ...string) []*Field {
	if len(tags) == 0 {
		return r.Fields
	}
	var out []*Field
	for _, f := range r.Fields {
		for _, tag := range tags {
			if f.Tag == tag {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// GetField returns the first field with the given tag, or nil.
func (r *Record) GetField(tag string) *Field {
	for _, f := range r.Fields {
		if f.Tag == tag {
			return f
		}
	}
	return nil
}

// subfieldOf returns tag's first occurrence's first subfield value, or "".
func (r *Record) subfieldOf(tag string, code byte) string {
	if f := r.GetField(tag); f != nil {
		if v, ok := f.Subfield(code); ok {
			return v
		}
	}
	return ""
}

// Title returns the record title (245 $a, with $b appended when present).
func (r *Record) Title() string {
	title := r.subfieldOf("245", 'a')
	if title == "" {
		return ""
	}
	if rest := r.subfieldOf("245", 'b'); rest != "" {
		title += " " + rest
	}
	return title
}

// ISSNTitle returns the key title (222 $a, with $b appended when present).
func (r *Record) ISSNTitle() string {
	title := r.subfieldOf("222", 'a')
	if title == "" {
		return ""
	}
	if rest := r.subfieldOf("222", 'b'); rest != "" {
		title += " " + rest
	}
	return title
}

var isbnPattern = regexp.MustCompile(`[0-9\-xX]+`)

// ISBN returns the first ISBN (020 $a) reduced to digits and a possible
// check x, with dashes and trailing qualifiers stripped.
func (r *Record) ISBN() string {
	raw := r.subfieldOf("020", 'a')
	if raw == "" {
		return ""
	}
	match := isbnPattern.FindString(raw)
	return strings.ReplaceAll(match, "-", "")
}

// ISSN returns the ISSN (022 $a).
func (r *Record) ISSN() string {
	return r.subfieldOf("022", 'a')
}

// SuDoc returns the Superintendent of Documents classification (086).
func (r *Record) SuDoc() string {
	if f := r.GetField("086"); f != nil {
		return f.Format()
	}
	return ""
}

// Author returns the main entry from field 100, 110 or 111.
func (r *Record) Author() string {
	for _, tag := range []string{"100", "110", "111"} {
		if f := r.GetField(tag); f != nil {
			return f.Format()
		}
	}
	return ""
}

// UniformTitle returns the uniform title from field 130 or 240.
func (r *Record) UniformTitle() string {
	for _, tag := range []string{"130", "240"} {
		if f := r.GetField(tag); f != nil {
			return f.Format()
		}
	}
	return ""
}

// Publisher returns the publisher from 260 $b, or 264 $b when the 264's
// second indicator marks publication.
func (r *Record) Publisher() string {
	if f := r.GetField("260"); f != nil {
		if v, ok := f.Subfield('b'); ok {
			return v
		}
	}
	for _, f := range r.GetFields("264") {
		if f.Indicators[1] == '1' {
			if v, ok := f.Subfield('b'); ok {
				return v
			}
		}
	}
	return ""
}

// PubYear returns the publication date from 260 $c or a publishing 264 $c.
func (r *Record) PubYear() string {
	if f := r.GetField("260"); f != nil {
		if v, ok := f.Subfield('c'); ok {
			return v
		}
	}
	for _, f := range r.GetFields("264") {
		if f.Indicators[1] == '1' {
			if v, ok := f.Subfield('c'); ok {
				return v
			}
		}
	}
	return ""
}

// ControlNumber returns the record control number (001).
func (r *Record) ControlNumber() string {
	if f := r.GetField("001"); f != nil {
		return f.Data
	}
	return ""
}

// Series returns the series statement and added entry fields.
// 490 supersedes the 440 series statement; 8xx fields are added entries.
func (r *Record) Series() []*Field {
	return r.GetFields("440", "490", "800", "810", "811", "830")
}

// Subjects returns subject fields, including the 69x local added entries
// that occur with some frequency in OCLC and RLIN records.
func (r *Record) Subjects() []*Field {
	return r.GetFields(
		"600", "610", "611", "630", "648", "650", "651", "653", "654", "655",
		"656", "657", "658", "662", "690", "691", "696", "697", "698", "699",
	)
}

// AddedEntries returns added entry fields, including the 79x local fields.
func (r *Record) AddedEntries() []*Field {
	return r.GetFields(
		"700", "710", "711", "720", "730", "740", "752", "753", "754", "790",
		"791", "792", "793", "796", "797", "798", "799",
	)
}

// Location returns location fields (852).
func (r *Record) Location() []*Field {
	return r.GetFields("852")
}

// Notes returns all 5xx note fields.
func (r *Record) Notes() []*Field {
	return r.GetFields(
		"500", "501", "502", "504", "505", "506", "507", "508", "510", "511",
		"513", "514", "515", "516", "518", "520", "521", "522", "524", "525",
		"526", "530", "533", "534", "535", "536", "538", "540", "541", "544",
		"545", "546", "547", "550", "552", "555", "556", "561", "562", "563",
		"565", "567", "580", "581", "583", "584", "585", "586", "590", "591",
		"592", "593", "594", "595", "596", "597", "598", "599",
	)
}

// PhysicalDescription returns physical description fields (300).
func (r *Record) PhysicalDescription() []*Field {
	return r.GetFields("300")
}

// Fingerprint returns the BLAKE3 digest of the record's canonical UTF-8
// serialization, hex encoded. Structurally equal records share a
// fingerprint, which makes it usable for batch deduplication.
func (r *Record) Fingerprint() (string, error) {
	data, err := EncodeRecord(r, EncodingUTF8)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// String renders the record in MARCMaker mnemonic form: a leader line
// followed by one line per field.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("=LDR  ")
	b.WriteString(strings.ReplaceAll(r.Leader.String(), " ", `\`))
	b.WriteByte('\n')
	for _, f := range r.Fields {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}
