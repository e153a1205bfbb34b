package marc8

import (
	"bytes"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
)

// Encoder converts Unicode text to MARC-8 bytes. The G0/G1 designations
// persist across Encode calls so one Encoder serves all subfields of a
// field; create a fresh Encoder (or call Reset) per field.
type Encoder struct {
	g0 *Charset
	g1 *Charset
}

// NewEncoder returns an Encoder in the default designation state:
// Basic Latin in G0, ANSEL in G1.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.Reset()
	return e
}

// Reset restores the default G0/G1 designations.
func (e *Encoder) Reset() {
	e.g0, _ = charsetFor(SetBasicLatin)
	e.g1, _ = charsetFor(SetExtendedLatin)
}

// Encode converts Unicode text to MARC-8 bytes. A base character followed
// by combining marks is emitted marks-first in MARC-8 order, and escape
// sequences are emitted only when the required set is not already active in
// either register. Error offsets are codepoint offsets into s.
func (e *Encoder) Encode(s string) ([]byte, error) {
	runes := []rune(s)
	var out bytes.Buffer

	i := 0
	for i < len(runes) {
		if isCombining(runes[i]) {
			// An orphan mark with no preceding base keeps its place.
			if err := e.emit(&out, runes[i], i); err != nil {
				return nil, err
			}
			i++
			continue
		}

		// Collect the cluster: base character plus trailing marks.
		j := i + 1
		for j < len(runes) && isCombining(runes[j]) {
			j++
		}
		for k := i + 1; k < j; k++ {
			if err := e.emit(&out, runes[k], k); err != nil {
				return nil, err
			}
		}
		if err := e.emit(&out, runes[i], i); err != nil {
			return nil, err
		}
		i = j
	}
	return out.Bytes(), nil
}

// emit writes the MARC-8 encoding of one codepoint, switching G0/G1
// designations when the owning set is not active.
func (e *Encoder) emit(out *bytes.Buffer, r rune, idx int) error {
	entries := reverse[r]
	if len(entries) == 0 {
		return errors.NewBadRune(idx, r, "codepoint absent from every character set")
	}

	// Prefer whatever is already designated; fall back to the highest
	// priority owning set.
	entry := entries[0]
	register := entry.set.homeRegister()
	switchNeeded := true
	for _, cand := range entries {
		if cand.set.ID == e.g0.ID {
			entry, register, switchNeeded = cand, 0, false
			break
		}
		if cand.set.ID == e.g1.ID {
			entry, register, switchNeeded = cand, 1, false
			break
		}
	}

	if switchNeeded {
		e.writeEscape(out, entry.set, register)
		if register == 0 {
			e.g0 = entry.set
		} else {
			e.g1 = entry.set
		}
	}

	if entry.set.Multibyte {
		b1 := byte(entry.key >> 16)
		b2 := byte(entry.key >> 8)
		b3 := byte(entry.key)
		if register == 1 {
			b1, b2, b3 = b1|0x80, b2|0x80, b3|0x80
		}
		out.Write([]byte{b1, b2, b3})
		return nil
	}

	b := byte(entry.key)
	if register == 1 {
		b |= 0x80
	}
	out.WriteByte(b)
	return nil
}

// writeEscape emits the designation sequence that loads set into the given
// register.
func (e *Encoder) writeEscape(out *bytes.Buffer, cs *Charset, register int) {
	out.WriteByte(esc)
	switch {
	case cs.Multibyte && register == 0:
		out.WriteByte(intermediateMB)
	case cs.Multibyte:
		out.Write([]byte{intermediateMB, intermediateG1})
	case cs.ID == SetGreekSymbols || cs.ID == SetSubscript || cs.ID == SetSuperscript:
		// Single-character G0 designation, no intermediate.
	case register == 0:
		out.WriteByte(intermediateG0)
	default:
		out.WriteByte(intermediateG1)
	}
	out.WriteByte(byte(cs.ID))
}

// Encode converts Unicode text to MARC-8 bytes using a fresh default
// designation state.
func Encode(s string) ([]byte, error) {
	return NewEncoder().Encode(s)
}
