// Package marcmaker reads and writes the MARCMaker mnemonic format (.mrk):
// one "=TAG  value" line per field, blank lines between records, blanks in
// fixed positions spelled as backslashes, and subfields introduced by a
// dollar sign. The dollar sign and backslash themselves are spelled with
// the {dollar} and {bsol} mnemonics inside subfield data.
package marcmaker

import (
	"bytes"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
	"github.com/FocuswithJustin/JuniperMARC/core/marc"
	"github.com/FocuswithJustin/JuniperMARC/core/text"
)

// lineGrammar is the participle grammar for one mnemonic line.
// Examples: "=LDR  01060cam\\2200289...", "=245  14$aTitle :$bremainder /"
//
//nolint:govet // participle grammar tags are not standard struct tags
type lineGrammar struct {
	Marker    string   `parser:"@Marker"`
	Value     string   `parser:"@Chunk?"`
	Subfields []string `parser:"@Sub*"`
}

// lineLexer tokenizes one mnemonic line. The marker token carries the
// leading equals sign, the tag, and the two-space gap.
var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Marker", Pattern: `=[0-9A-Za-z]{3}  `},
	{Name: "Sub", Pattern: `\$[^$\r\n]*`},
	{Name: "Chunk", Pattern: `[^$\r\n]+`},
})

// lineParser is the participle parser for one mnemonic line.
var lineParser = participle.MustBuild[lineGrammar](
	participle.Lexer(lineLexer),
)

var (
	mnemonicEncode = strings.NewReplacer("$", "{dollar}", `\`, "{bsol}")
	mnemonicDecode = strings.NewReplacer("{dollar}", "$", "{bsol}", `\`)
)

// Unmarshal parses a mnemonic document into records. Records are separated
// by one or more blank lines.
func Unmarshal(data []byte) ([]*marc.Record, error) {
	var records []*marc.Record
	var current *marc.Record

	flush := func() {
		if current != nil {
			records = append(records, current)
		}
		current = nil
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current == nil {
			current = marc.NewRecord()
		}
		if err := parseLine(current, line); err != nil {
			return nil, errors.Wrapf(err, "line %d", i+1)
		}
	}
	flush()

	if len(records) == 0 {
		return nil, errors.NewFormat(0, "no records found")
	}
	return records, nil
}

// UnmarshalRecord parses a mnemonic document expected to hold exactly one
// record.
func UnmarshalRecord(data []byte) (*marc.Record, error) {
	records, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, errors.NewFormatf(0, "expected one record, found %d", len(records))
	}
	return records[0], nil
}

func parseLine(record *marc.Record, line string) error {
	parsed, err := lineParser.ParseString("", line)
	if err != nil {
		return errors.NewFormat(0, "not a mnemonic field line: "+err.Error())
	}
	tag := parsed.Marker[1:4]

	if tag == "LDR" {
		leader, err := marc.DecodeLeader([]byte(text.BackslashToBlank(parsed.Value)))
		if err != nil {
			return err
		}
		record.Leader = leader
		return nil
	}

	if marc.IsControlTag(tag) {
		if len(parsed.Subfields) > 0 {
			return errors.NewFormatf(0, "control field %s cannot carry subfields", tag)
		}
		field, err := marc.NewControlField(tag, text.BackslashToBlank(parsed.Value))
		if err != nil {
			return err
		}
		record.AddField(field)
		return nil
	}

	indicators := text.BackslashToBlank(parsed.Value)
	if len(indicators) != 2 {
		return errors.NewFormatf(0, "field %s needs two indicator characters, has %q", tag, parsed.Value)
	}
	field, err := marc.NewDataField(tag, indicators[0], indicators[1])
	if err != nil {
		return err
	}
	for _, sub := range parsed.Subfields {
		body := sub[1:] // strip the dollar sign
		if body == "" {
			return errors.NewFormatf(0, "field %s has a subfield without a code", tag)
		}
		field.AddSubfield(body[0], mnemonicDecode.Replace(body[1:]))
	}
	record.AddField(field)
	return nil
}

// Marshal renders one record as mnemonic lines.
func Marshal(r *marc.Record) []byte {
	var buf bytes.Buffer
	writeRecord(&buf, r)
	return buf.Bytes()
}

// MarshalCollection renders records separated by blank lines.
func MarshalCollection(records []*marc.Record) []byte {
	var buf bytes.Buffer
	for i, r := range records {
		if i > 0 {
			buf.WriteByte('\n')
		}
		writeRecord(&buf, r)
	}
	return buf.Bytes()
}

func writeRecord(buf *bytes.Buffer, r *marc.Record) {
	buf.WriteString("=LDR  ")
	buf.WriteString(text.BlankToBackslash(r.Leader.String()))
	buf.WriteByte('\n')

	for _, f := range r.Fields {
		buf.WriteByte('=')
		buf.WriteString(f.Tag)
		buf.WriteString("  ")
		if f.IsControl() {
			buf.WriteString(text.BlankToBackslash(f.Data))
			buf.WriteByte('\n')
			continue
		}
		for _, ind := range f.Indicators {
			if ind == ' ' || ind == 0 {
				buf.WriteByte('\\')
			} else {
				buf.WriteByte(ind)
			}
		}
		for _, sf := range f.Subfields {
			buf.WriteByte('$')
			buf.WriteByte(sf.Code)
			buf.WriteString(mnemonicEncode.Replace(sf.Value))
		}
		buf.WriteByte('\n')
	}
}
