package marc8

import (
	"strings"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
)

// Escape sequence bytes of the ISO-2022-style designation grammar.
const (
	esc             = 0x1B
	intermediateG0  = 0x28 // '('
	intermediateG0b = 0x2C // ','
	intermediateG1  = 0x29 // ')'
	intermediateG1b = 0x2D // '-'
	intermediateMB  = 0x24 // '$'
	finalASCIIG0    = 0x73 // 's' shorthand for Basic Latin to G0
)

// Decoder converts MARC-8 bytes to Unicode text. The G0/G1 designations
// persist across Decode calls so one Decoder serves all subfields of a
// field; create a fresh Decoder (or call Reset) per field.
type Decoder struct {
	g0 *Charset
	g1 *Charset
}

// NewDecoder returns a Decoder in the default designation state:
// Basic Latin in G0, ANSEL in G1.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset restores the default G0/G1 designations.
func (d *Decoder) Reset() {
	d.g0, _ = charsetFor(SetBasicLatin)
	d.g1, _ = charsetFor(SetExtendedLatin)
}

// Decode converts one MARC-8 byte sequence to Unicode text. Combining
// diacritics, stored before their base character in MARC-8, are reordered
// after it. Error offsets are relative to the start of data.
func (d *Decoder) Decode(data []byte) (string, error) {
	var out strings.Builder
	var pending []rune

	flush := func(rs []rune) {
		for _, r := range rs {
			out.WriteRune(r)
		}
		for _, r := range pending {
			out.WriteRune(r)
		}
		pending = pending[:0]
	}

	i := 0
	for i < len(data) {
		b := data[i]
		if b == esc {
			n, err := d.designate(data, i)
			if err != nil {
				return "", err
			}
			i += n
			continue
		}

		set := d.g0
		if b >= 0x80 {
			set = d.g1
		}

		if set.Multibyte {
			if i+3 > len(data) {
				return "", errors.NewBadByte(i, b, "truncated multibyte sequence in set "+set.Name)
			}
			key := uint32(data[i]&0x7F)<<16 | uint32(data[i+1]&0x7F)<<8 | uint32(data[i+2]&0x7F)
			m, ok := set.Lookup(key)
			if !ok {
				return "", errors.NewBadByte(i, b, "no mapping in multibyte set "+set.Name)
			}
			if m.Combining {
				pending = append(pending, m.Runes...)
			} else {
				flush(m.Runes)
			}
			i += 3
			continue
		}

		m, ok := set.Lookup(uint32(b & 0x7F))
		if !ok {
			return "", errors.NewBadByte(i, b, "no mapping in set "+set.Name)
		}
		if m.Combining {
			pending = append(pending, m.Runes...)
		} else {
			flush(m.Runes)
		}
		i++
	}

	// Diacritics with no following base character are kept, in their
	// original order, rather than dropped.
	for _, r := range pending {
		out.WriteRune(r)
	}
	return out.String(), nil
}

// designate applies the escape sequence starting at data[i] (which is ESC)
// and returns its byte length.
func (d *Decoder) designate(data []byte, i int) (int, error) {
	if i+1 >= len(data) {
		return 0, errors.NewBadByte(i, esc, "incomplete escape sequence")
	}

	switch b := data[i+1]; b {
	case byte(SetGreekSymbols), byte(SetSubscript), byte(SetSuperscript):
		// Single-character designations load their set into G0.
		cs, _ := charsetFor(SetID(b))
		d.g0 = cs
		return 2, nil

	case finalASCIIG0:
		d.g0, _ = charsetFor(SetBasicLatin)
		return 2, nil

	case intermediateG0, intermediateG0b, intermediateG1, intermediateG1b:
		if i+2 >= len(data) {
			return 0, errors.NewBadByte(i, esc, "incomplete escape sequence")
		}
		cs, ok := charsetFor(SetID(data[i+2]))
		if !ok || cs.Multibyte {
			return 0, errors.NewBadByte(i+2, data[i+2], "unrecognized character set designation")
		}
		if b == intermediateG0 || b == intermediateG0b {
			d.g0 = cs
		} else {
			d.g1 = cs
		}
		return 3, nil

	case intermediateMB:
		// Multibyte designation: ESC $ F, ESC $ , F (G0) or
		// ESC $ ) F, ESC $ - F (g1).
		j := i + 2
		register := 0
		if j < len(data) {
			switch data[j] {
			case intermediateG0b:
				j++
			case intermediateG1, intermediateG1b:
				register = 1
				j++
			}
		}
		if j >= len(data) {
			return 0, errors.NewBadByte(i, esc, "incomplete escape sequence")
		}
		cs, ok := charsetFor(SetID(data[j]))
		if !ok || !cs.Multibyte {
			return 0, errors.NewBadByte(j, data[j], "unrecognized multibyte set designation")
		}
		if register == 0 {
			d.g0 = cs
		} else {
			d.g1 = cs
		}
		return j - i + 1, nil

	default:
		return 0, errors.NewBadByte(i+1, b, "invalid escape sequence")
	}
}

// Decode converts a complete MARC-8 byte sequence to Unicode text using a
// fresh default designation state.
func Decode(data []byte) (string, error) {
	return NewDecoder().Decode(data)
}
