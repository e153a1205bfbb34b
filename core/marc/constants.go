// Package marc implements the in-memory model and binary codec for MARC21
// bibliographic records: the 24-byte leader, the offset/length directory,
// and delimiter-terminated variable fields. All text inside the model is
// decoded Unicode; character encoding conversion happens only at the binary
// I/O boundary in Reader and Writer.
package marc

// Structural constants of the MARC21 transmission format.
const (
	// LeaderLen is the fixed byte length of the record leader.
	LeaderLen = 24

	// DirectoryEntryLen is the byte length of one directory entry:
	// 3-byte tag, 4-digit field length, 5-digit starting offset.
	DirectoryEntryLen = 12

	// RecordTerminator closes a complete record.
	RecordTerminator = 0x1D

	// FieldTerminator closes the directory and every field data block.
	FieldTerminator = 0x1E

	// SubfieldDelimiter introduces each subfield; the following byte is
	// the subfield code.
	SubfieldDelimiter = 0x1F
)

// ControlTagBoundary separates control fields from data fields: a tag
// lexically below this is a control field.
const ControlTagBoundary = "010"

// Encoding selects the character encoding of serialized field data,
// declared by leader byte 9.
type Encoding int

const (
	// EncodingMARC8 is the legacy ISO-2022-derived encoding
	// (leader byte 9 is a space).
	EncodingMARC8 Encoding = iota

	// EncodingUTF8 is Unicode (leader byte 9 is 'a').
	EncodingUTF8
)

// String returns the conventional name of the encoding.
func (e Encoding) String() string {
	if e == EncodingUTF8 {
		return "UTF-8"
	}
	return "MARC-8"
}

// leaderByte returns the leader byte 9 value declaring this encoding.
func (e Encoding) leaderByte() byte {
	if e == EncodingUTF8 {
		return 'a'
	}
	return ' '
}
