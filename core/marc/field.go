package marc

import (
	"strings"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
)

// Subfield is one code/value pair within a data field.
type Subfield struct {
	Code  byte
	Value string
}

// Field is a single variable field. A control field (tag below "010")
// carries raw text in Data and never has indicators or subfields; a data
// field carries exactly two indicators and an ordered subfield sequence.
type Field struct {
	Tag        string
	Data       string // control fields only
	Indicators [2]byte
	Subfields  []Subfield
}

// IsControlTag reports whether the tag denotes a control field.
func IsControlTag(tag string) bool {
	return tag < ControlTagBoundary
}

func validateTag(tag string) error {
	if len(tag) != 3 {
		return errors.NewValidation("tag", "tag must be exactly 3 characters")
	}
	return nil
}

// NewControlField builds a control field. The tag must be lexically below
// "010".
func NewControlField(tag, data string) (*Field, error) {
	if err := validateTag(tag); err != nil {
		return nil, err
	}
	if !IsControlTag(tag) {
		return nil, errors.NewValidation("tag", "tag "+tag+" is not a control field tag")
	}
	return &Field{Tag: tag, Data: data}, nil
}

// NewDataField builds a data field with two indicators and its subfields.
// The tag must be at or above "010".
func NewDataField(tag string, ind1, ind2 byte, subfields ...Subfield) (*Field, error) {
	if err := validateTag(tag); err != nil {
		return nil, err
	}
	if IsControlTag(tag) {
		return nil, errors.NewValidation("tag", "control field tag "+tag+" cannot carry indicators or subfields")
	}
	return &Field{
		Tag:        tag,
		Indicators: [2]byte{ind1, ind2},
		Subfields:  append([]Subfield(nil), subfields...),
	}, nil
}

// IsControl reports whether the field is a control field.
func (f *Field) IsControl() bool {
	return IsControlTag(f.Tag)
}

// Subfield returns the value of the first subfield with the given code.
func (f *Field) Subfield(code byte) (string, bool) {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}

// SubfieldValues returns the values of every subfield with the given code,
// in field order.
func (f *Field) SubfieldValues(code byte) []string {
	var values []string
	for _, sf := range f.Subfields {
		if sf.Code == code {
			values = append(values, sf.Value)
		}
	}
	return values
}

// SetSubfield replaces the value of the first subfield with the given code,
// or appends a new subfield if none exists. When a code repeats, only the
// first occurrence is updated; this is the documented literal behavior.
func (f *Field) SetSubfield(code byte, value string) {
	for i := range f.Subfields {
		if f.Subfields[i].Code == code {
			f.Subfields[i].Value = value
			return
		}
	}
	f.Subfields = append(f.Subfields, Subfield{Code: code, Value: value})
}

// AddSubfield appends a subfield regardless of existing codes.
func (f *Field) AddSubfield(code byte, value string) {
	f.Subfields = append(f.Subfields, Subfield{Code: code, Value: value})
}

// Equal reports structural equality: same tag, data, indicators, and
// subfield sequence.
func (f *Field) Equal(other *Field) bool {
	if other == nil || f.Tag != other.Tag || f.Data != other.Data ||
		f.Indicators != other.Indicators || len(f.Subfields) != len(other.Subfields) {
		return false
	}
	for i := range f.Subfields {
		if f.Subfields[i] != other.Subfields[i] {
			return false
		}
	}
	return true
}

// subjectSubdivisions are the 6xx subfield codes rendered with a " -- "
// separator by Format.
const subjectSubdivisions = "vxyz"

// Format returns the field's human-readable value: a control field's raw
// data, or the data field's subfield values joined with spaces. Subject
// subdivision subfields of 6xx fields are joined with " -- " instead.
func (f *Field) Format() string {
	if f.IsControl() {
		return f.Data
	}
	var b strings.Builder
	for i, sf := range f.Subfields {
		if i > 0 {
			if strings.HasPrefix(f.Tag, "6") && strings.IndexByte(subjectSubdivisions, sf.Code) >= 0 {
				b.WriteString(" -- ")
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(sf.Value)
	}
	return b.String()
}

// String renders the field as one MARCMaker mnemonic line, the same shape
// Record.String emits: blank indicators print as backslashes and each
// subfield is introduced by a dollar sign.
func (f *Field) String() string {
	var b strings.Builder
	b.WriteByte('=')
	b.WriteString(f.Tag)
	b.WriteString("  ")
	if f.IsControl() {
		b.WriteString(strings.ReplaceAll(f.Data, " ", `\`))
		return b.String()
	}
	for _, ind := range f.Indicators {
		if ind == ' ' || ind == 0 {
			b.WriteByte('\\')
		} else {
			b.WriteByte(ind)
		}
	}
	for _, sf := range f.Subfields {
		b.WriteByte('$')
		b.WriteByte(sf.Code)
		b.WriteString(mnemonicEscaper.Replace(sf.Value))
	}
	return b.String()
}

// mnemonicEscaper protects the MARCMaker delimiter characters in subfield
// values so a rendered line parses back to the same value.
var mnemonicEscaper = strings.NewReplacer("$", "{dollar}", `\`, "{bsol}")
