package marc

import (
	"strings"
	"testing"
)

func mustData(t *testing.T, tag string, ind1, ind2 byte, subfields ...Subfield) *Field {
	t.Helper()
	f, err := NewDataField(tag, ind1, ind2, subfields...)
	if err != nil {
		t.Fatalf("NewDataField(%q) failed: %v", tag, err)
	}
	return f
}

func mustControl(t *testing.T, tag, data string) *Field {
	t.Helper()
	f, err := NewControlField(tag, data)
	if err != nil {
		t.Fatalf("NewControlField(%q) failed: %v", tag, err)
	}
	return f
}

// sampleRecord builds the running example used across codec tests.
func sampleRecord(t *testing.T) *Record {
	t.Helper()
	r := NewRecord()
	r.AddField(
		mustControl(t, "001", "ocm42479006"),
		mustData(t, "020", ' ', ' ', Subfield{Code: 'a', Value: "020161622X (pbk.)"}),
		mustData(t, "100", '1', ' ', Subfield{Code: 'a', Value: "Hunt, Andrew,"}),
		mustData(t, "245", '1', '4',
			Subfield{Code: 'a', Value: "The pragmatic programmer :"},
			Subfield{Code: 'b', Value: "from journeyman to master /"},
			Subfield{Code: 'c', Value: "Andrew Hunt, David Thomas."},
		),
		mustData(t, "260", ' ', ' ',
			Subfield{Code: 'a', Value: "Reading, Mass :"},
			Subfield{Code: 'b', Value: "Addison-Wesley,"},
			Subfield{Code: 'c', Value: "2000."},
		),
		mustData(t, "650", ' ', '0',
			Subfield{Code: 'a', Value: "Computer programming."},
		),
		mustData(t, "700", '1', ' ', Subfield{Code: 'a', Value: "Thomas, David,"}),
	)
	return r
}

// TestGetFields verifies tag filtering and the no-filter case.
func TestGetFields(t *testing.T) {
	r := sampleRecord(t)

	if got := len(r.GetFields()); got != 7 {
		t.Errorf("GetFields() = %d fields, want 7", got)
	}
	if got := len(r.GetFields("650", "700")); got != 2 {
		t.Errorf("GetFields(650, 700) = %d fields, want 2", got)
	}
	if f := r.GetField("245"); f == nil || f.Tag != "245" {
		t.Errorf("GetField(245) = %v", f)
	}
	if f := r.GetField("999"); f != nil {
		t.Errorf("GetField(999) should be nil, got %v", f)
	}
}

// TestRemoveField verifies first-match removal and the absent no-op.
func TestRemoveField(t *testing.T) {
	r := NewRecord()
	a := mustData(t, "650", ' ', '0', Subfield{Code: 'a', Value: "Cats."})
	b := mustData(t, "650", ' ', '0', Subfield{Code: 'a', Value: "Dogs."})
	r.AddField(a, b)

	clone := mustData(t, "650", ' ', '0', Subfield{Code: 'a', Value: "Cats."})
	r.RemoveField(clone)
	if len(r.Fields) != 1 || r.Fields[0] != b {
		t.Errorf("RemoveField left %v", r.Fields)
	}

	absent := mustData(t, "650", ' ', '0', Subfield{Code: 'a', Value: "Birds."})
	r.RemoveField(absent)
	if len(r.Fields) != 1 {
		t.Error("removing an absent field should be a no-op")
	}
}

// TestRemoveFields verifies tag-based bulk removal.
func TestRemoveFields(t *testing.T) {
	r := sampleRecord(t)
	r.RemoveFields("650", "700")
	if r.GetField("650") != nil || r.GetField("700") != nil {
		t.Error("RemoveFields left matching fields behind")
	}
	if len(r.Fields) != 5 {
		t.Errorf("got %d fields, want 5", len(r.Fields))
	}
}

// TestAddOrderedField verifies strict numeric insertion order.
func TestAddOrderedField(t *testing.T) {
	r := NewRecord()
	r.AddOrderedField(mustData(t, "650", ' ', '0', Subfield{Code: 'a', Value: "x"}))
	r.AddOrderedField(mustControl(t, "001", "id"))
	r.AddOrderedField(mustData(t, "245", '0', '0', Subfield{Code: 'a', Value: "T"}))

	var tags []string
	for _, f := range r.Fields {
		tags = append(tags, f.Tag)
	}
	if strings.Join(tags, ",") != "001,245,650" {
		t.Errorf("ordered tags = %v", tags)
	}
}

// TestAddGroupedField verifies ordering by first tag digit only, so a new
// 650 lands after an existing 653.
func TestAddGroupedField(t *testing.T) {
	r := NewRecord()
	r.AddField(
		mustData(t, "245", '0', '0', Subfield{Code: 'a', Value: "T"}),
		mustData(t, "653", ' ', ' ', Subfield{Code: 'a', Value: "x"}),
		mustData(t, "700", '1', ' ', Subfield{Code: 'a', Value: "y"}),
	)
	r.AddGroupedField(mustData(t, "650", ' ', '0', Subfield{Code: 'a', Value: "z"}))

	var tags []string
	for _, f := range r.Fields {
		tags = append(tags, f.Tag)
	}
	if strings.Join(tags, ",") != "245,653,650,700" {
		t.Errorf("grouped tags = %v", tags)
	}
}

// TestAccessors covers the convenience lookups over the sample record.
func TestAccessors(t *testing.T) {
	r := sampleRecord(t)

	if got := r.Title(); got != "The pragmatic programmer : from journeyman to master /" {
		t.Errorf("Title = %q", got)
	}
	if got := r.Author(); got != "Hunt, Andrew," {
		t.Errorf("Author = %q", got)
	}
	if got := r.ISBN(); got != "020161622X" {
		t.Errorf("ISBN = %q", got)
	}
	if got := r.Publisher(); got != "Addison-Wesley," {
		t.Errorf("Publisher = %q", got)
	}
	if got := r.PubYear(); got != "2000." {
		t.Errorf("PubYear = %q", got)
	}
	if got := r.ControlNumber(); got != "ocm42479006" {
		t.Errorf("ControlNumber = %q", got)
	}
	if got := r.Subjects(); len(got) != 1 || got[0].Tag != "650" {
		t.Errorf("Subjects = %v", got)
	}
	if got := r.AddedEntries(); len(got) != 1 || got[0].Tag != "700" {
		t.Errorf("AddedEntries = %v", got)
	}
}

// TestAccessorsRDA verifies 264 is consulted for publication data only when
// its second indicator marks publication.
func TestAccessorsRDA(t *testing.T) {
	r := NewRecord()
	r.AddField(
		mustData(t, "264", ' ', '4', Subfield{Code: 'c', Value: "copyright 2015"}),
		mustData(t, "264", ' ', '1',
			Subfield{Code: 'b', Value: "O'Reilly,"},
			Subfield{Code: 'c', Value: "2015."},
		),
	)
	if got := r.Publisher(); got != "O'Reilly," {
		t.Errorf("Publisher = %q", got)
	}
	if got := r.PubYear(); got != "2015." {
		t.Errorf("PubYear = %q", got)
	}
}

// TestAccessorsEmpty verifies missing fields yield empty values.
func TestAccessorsEmpty(t *testing.T) {
	r := NewRecord()
	if r.Title() != "" || r.Author() != "" || r.ISBN() != "" || r.PubYear() != "" {
		t.Error("accessors on an empty record should be empty")
	}
	if r.Subjects() != nil || r.Notes() != nil {
		t.Error("field list accessors on an empty record should be nil")
	}
}

// TestFingerprint verifies structural equality implies fingerprint equality
// and that content changes move the digest.
func TestFingerprint(t *testing.T) {
	a := sampleRecord(t)
	b := sampleRecord(t)

	fa, err := a.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	fb, err := b.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fa != fb {
		t.Error("equal records should share a fingerprint")
	}
	if len(fa) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(fa))
	}

	b.GetField("245").SetSubfield('a', "Another title :")
	fb2, err := b.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fb2 == fa {
		t.Error("changed record should not share a fingerprint")
	}
}

// TestRecordString verifies the mnemonic listing shape.
func TestRecordString(t *testing.T) {
	r := NewRecord()
	r.AddField(
		mustControl(t, "001", "id1"),
		mustData(t, "245", '1', '4', Subfield{Code: 'a', Value: "Title"}),
	)
	s := r.String()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("String produced %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], `=LDR  `) {
		t.Errorf("leader line = %q", lines[0])
	}
	if lines[1] != "=001  id1" {
		t.Errorf("control line = %q", lines[1])
	}
	if lines[2] != "=245  14$aTitle" {
		t.Errorf("data line = %q", lines[2])
	}
}
