package marc

import (
	"fmt"
	"strconv"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
)

// Leader is the fixed 24-byte record header. Record length and base address
// are derived values: they are recomputed from actual content on every
// write, never trusted from a previously decoded leader. Every other
// position is an opaque flag byte preserved verbatim, because real-world
// MARC data is routinely non-conformant in positions that cannot affect
// decode correctness.
type Leader struct {
	RecordLength   int  // bytes 0-4, derived
	Status         byte // byte 5
	Type           byte // byte 6
	BibLevel       byte // byte 7
	ControlType    byte // byte 8
	CodingScheme   byte // byte 9: ' ' MARC-8, 'a' UTF-8
	IndicatorCount byte // byte 10, conventionally '2'
	SubfieldLen    byte // byte 11, conventionally '2'
	BaseAddress    int  // bytes 12-16, derived
	EncodingLevel  byte // byte 17
	CatalogingForm byte // byte 18
	MultipartLevel byte // byte 19
	LengthOfLength byte // byte 20, conventionally '4'
	LengthOfOffset byte // byte 21, conventionally '5'
	LengthOfImpl   byte // byte 22, conventionally '0'
	Undefined      byte // byte 23, conventionally '0'
}

// NewLeader returns a leader with the conventional defaults for a freshly
// built record: two indicators, two-byte subfield codes, 4/5/0 directory
// entry shape.
func NewLeader() Leader {
	return Leader{
		Status:         'n',
		Type:           'a',
		BibLevel:       'm',
		ControlType:    ' ',
		CodingScheme:   'a',
		IndicatorCount: '2',
		SubfieldLen:    '2',
		EncodingLevel:  ' ',
		CatalogingForm: ' ',
		MultipartLevel: ' ',
		LengthOfLength: '4',
		LengthOfOffset: '5',
		LengthOfImpl:   '0',
		Undefined:      '0',
	}
}

// Encoding returns the character encoding declared by byte 9. Every value
// other than 'a' is treated as MARC-8; the byte itself is preserved
// verbatim for re-encoding.
func (l Leader) Encoding() Encoding {
	if l.CodingScheme == 'a' {
		return EncodingUTF8
	}
	return EncodingMARC8
}

// DecodeLeader parses a 24-byte leader. Record length and base address must
// be numeric; all flag positions are accepted leniently.
func DecodeLeader(data []byte) (Leader, error) {
	if len(data) != LeaderLen {
		return Leader{}, errors.NewFormatf(0, "leader must be %d bytes, got %d", LeaderLen, len(data))
	}

	length, err := strconv.Atoi(string(data[0:5]))
	if err != nil {
		return Leader{}, errors.NewFormatf(0, "record length %q is not numeric", data[0:5])
	}
	base, err := strconv.Atoi(string(data[12:17]))
	if err != nil {
		return Leader{}, errors.NewFormatf(12, "base address %q is not numeric", data[12:17])
	}

	return Leader{
		RecordLength:   length,
		Status:         data[5],
		Type:           data[6],
		BibLevel:       data[7],
		ControlType:    data[8],
		CodingScheme:   data[9],
		IndicatorCount: data[10],
		SubfieldLen:    data[11],
		BaseAddress:    base,
		EncodingLevel:  data[17],
		CatalogingForm: data[18],
		MultipartLevel: data[19],
		LengthOfLength: data[20],
		LengthOfOffset: data[21],
		LengthOfImpl:   data[22],
		Undefined:      data[23],
	}, nil
}

// EncodeLeader serializes the leader, overwriting the record-length and
// base-address positions with the supplied computed values. All other flag
// bytes pass through unchanged.
func EncodeLeader(l Leader, recordLength, baseAddress int) []byte {
	out := make([]byte, 0, LeaderLen)
	out = append(out, fmt.Sprintf("%05d", recordLength)...)
	out = append(out, l.Status, l.Type, l.BibLevel, l.ControlType, l.CodingScheme,
		l.IndicatorCount, l.SubfieldLen)
	out = append(out, fmt.Sprintf("%05d", baseAddress)...)
	out = append(out, l.EncodingLevel, l.CatalogingForm, l.MultipartLevel,
		l.LengthOfLength, l.LengthOfOffset, l.LengthOfImpl, l.Undefined)
	return out
}

// String renders the leader in its 24-byte transmission form, with the
// stored (possibly stale) length and base address.
func (l Leader) String() string {
	return string(EncodeLeader(l, l.RecordLength, l.BaseAddress))
}
