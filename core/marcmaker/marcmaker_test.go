package marcmaker

import (
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/FocuswithJustin/JuniperMARC/core/marc"
)

const sampleDoc = `=LDR  01060cam\\22002894a\4500
=001  ocm42479006
=008  991003s1999\\\\maua
=245  14$aThe pragmatic programmer :$bfrom journeyman to master /$cAndrew Hunt, David Thomas.
=650  \0$aComputer programming.

=LDR  00260nam\\22001094a\4500
=001  second
=245  00$aPay {dollar}5 for C:{bsol}tmp
`

// TestUnmarshal verifies record splitting, leader parsing, and the blank
// and mnemonic conventions.
func TestUnmarshal(t *testing.T) {
	records, err := Unmarshal([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	r := records[0]
	if r.Leader.Type != 'a' || r.Leader.BibLevel != 'm' || r.Leader.Status != 'c' {
		t.Errorf("leader flags = %+v", r.Leader)
	}
	if r.ControlNumber() != "ocm42479006" {
		t.Errorf("control number = %q", r.ControlNumber())
	}
	if f := r.GetField("008"); f == nil || f.Data != "991003s1999    maua" {
		t.Errorf("008 data = %+v", f)
	}
	title := r.GetField("245")
	if title == nil || title.Indicators != [2]byte{'1', '4'} {
		t.Fatalf("245 field = %+v", title)
	}
	if got := r.Title(); got != "The pragmatic programmer : from journeyman to master /" {
		t.Errorf("Title = %q", got)
	}
	if f := r.GetField("650"); f == nil || f.Indicators != [2]byte{' ', '0'} {
		t.Errorf("650 field = %+v", f)
	}

	// Mnemonic escapes decode in subfield data.
	if got := records[1].Title(); got != `Pay $5 for C:\tmp` {
		t.Errorf("second Title = %q", got)
	}
}

// TestUnmarshalErrors covers malformed lines.
func TestUnmarshalErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no marker", "245  14$aTitle\n"},
		{"one indicator", "=245  1$aTitle\n"},
		{"subfield on control field", "=001  abc$adef\n"},
		{"empty subfield", "=245  14$\n"},
		{"empty document", "\n\n"},
	}
	for _, c := range cases {
		if _, err := Unmarshal([]byte(c.doc)); err == nil {
			t.Errorf("%s: Unmarshal should fail", c.name)
		}
	}
}

// TestMarshal verifies the rendered line shapes.
func TestMarshal(t *testing.T) {
	r := marc.NewRecord()
	ctrl, err := marc.NewControlField("008", "991003s1999    maua")
	if err != nil {
		t.Fatal(err)
	}
	title, err := marc.NewDataField("245", '1', ' ',
		marc.Subfield{Code: 'a', Value: "Costs $9.99"},
	)
	if err != nil {
		t.Fatal(err)
	}
	r.AddField(ctrl, title)

	out := string(Marshal(r))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Marshal produced %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "=LDR  ") {
		t.Errorf("leader line = %q", lines[0])
	}
	if lines[1] != `=008  991003s1999\\\\maua` {
		t.Errorf("control line = %q", lines[1])
	}
	if lines[2] != `=245  1\$aCosts {dollar}9.99` {
		t.Errorf("data line = %q", lines[2])
	}
}

// TestRoundTrip verifies unmarshal of marshaled output is identity.
func TestRoundTrip(t *testing.T) {
	want, err := Unmarshal([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got, err := Unmarshal(MarshalCollection(want))
	if err != nil {
		t.Fatalf("Unmarshal of marshaled output failed: %v", err)
	}
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("round trip mismatch (-got +want):\n%s", diff)
	}
}
