// Package marc8 converts between the legacy MARC-8 character encoding and
// Unicode. MARC-8 is an ISO-2022-derived encoding: two graphic registers
// (G0 and G1) hold designated character sets, escape sequences re-designate
// them, and combining diacritical marks are stored before the base character
// they modify, the reverse of Unicode convention.
//
// Designation state is local to a Decoder or Encoder instance. A record
// codec creates one per field: state resets at the start of every field and
// persists across the subfields within it.
package marc8

// SetID identifies a MARC-8 graphic character set by its escape final byte.
type SetID byte

// Graphic set designation finals defined by the MARC-8 specification.
const (
	SetEACC             SetID = 0x31 // '1' East Asian (multibyte)
	SetBasicHebrew      SetID = 0x32 // '2'
	SetBasicArabic      SetID = 0x33 // '3'
	SetExtendedArabic   SetID = 0x34 // '4'
	SetBasicLatin       SetID = 0x42 // 'B' ASCII
	SetExtendedLatin    SetID = 0x45 // 'E' ANSEL
	SetBasicCyrillic    SetID = 0x4E // 'N'
	SetExtendedCyrillic SetID = 0x51 // 'Q'
	SetBasicGreek       SetID = 0x53 // 'S'
	SetSubscript        SetID = 0x62 // 'b'
	SetGreekSymbols     SetID = 0x67 // 'g'
	SetSuperscript      SetID = 0x70 // 'p'
)

// knownFinals is the set of designation finals the escape grammar accepts.
// A recognized final without a registered table is a valid designation whose
// lookups fail; the tables are an external data asset and need not all ship
// embedded.
var knownFinals = map[SetID]bool{
	SetEACC:             true,
	SetBasicHebrew:      true,
	SetBasicArabic:      true,
	SetExtendedArabic:   true,
	SetBasicLatin:       true,
	SetExtendedLatin:    true,
	SetBasicCyrillic:    true,
	SetExtendedCyrillic: true,
	SetBasicGreek:       true,
	SetSubscript:        true,
	SetGreekSymbols:     true,
	SetSuperscript:      true,
}

// Mapping is the Unicode expansion of one MARC-8 code point.
type Mapping struct {
	// Runes is the codepoint sequence the MARC-8 code decodes to.
	// Almost always length 1.
	Runes []rune

	// Combining marks a diacritic that precedes its base character in
	// MARC-8 byte order and follows it in Unicode order.
	Combining bool
}

// Charset is one immutable MARC-8 graphic character set table.
// Keys are 7-bit code values for single-byte sets (a G1 lookup masks the
// high bit first) and three packed 7-bit values for multibyte sets.
type Charset struct {
	ID        SetID
	Name      string
	Multibyte bool

	mappings map[uint32]Mapping
}

// NewCharset builds a charset table. Single-byte keys are normalized to
// their 7-bit values so tables may be written in either the G0 (0x21-0x7E)
// or G1 (0xA1-0xFE) column of the published code tables.
func NewCharset(id SetID, name string, multibyte bool, mappings map[uint32]Mapping) *Charset {
	cs := &Charset{
		ID:        id,
		Name:      name,
		Multibyte: multibyte,
		mappings:  make(map[uint32]Mapping, len(mappings)),
	}
	for k, v := range mappings {
		if !multibyte {
			k &= 0x7F
		}
		cs.mappings[k] = v
	}
	return cs
}

// Lookup returns the mapping for a (masked) code value.
func (c *Charset) Lookup(key uint32) (Mapping, bool) {
	m, ok := c.mappings[key]
	return m, ok
}

// homeRegister returns the graphic register a set is conventionally
// designated into when the encoder has to switch to it.
func (c *Charset) homeRegister() int {
	if c.ID == SetExtendedLatin {
		return 1
	}
	return 0
}

// reverseEntry locates the MARC-8 home of a Unicode codepoint.
type reverseEntry struct {
	set       *Charset
	key       uint32
	combining bool
}

var (
	// registry holds all registered charsets, keyed by designation final.
	registry = map[SetID]*Charset{}

	// encodeOrder fixes the priority with which the encoder picks a set
	// for a codepoint mapped by more than one table.
	encodeOrder []SetID

	// reverse maps a codepoint to its candidate MARC-8 homes in
	// encodeOrder priority.
	reverse map[rune][]reverseEntry
)

// RegisterCharset installs a charset table and rebuilds the reverse index.
// Registration is an initialization-time operation: tables are shared by
// read-only reference afterwards and must not change while decoders or
// encoders are live. Use it to load externally maintained tables such as
// the full EACC set.
func RegisterCharset(cs *Charset) {
	if _, exists := registry[cs.ID]; !exists {
		encodeOrder = append(encodeOrder, cs.ID)
	}
	registry[cs.ID] = cs
	knownFinals[cs.ID] = true
	buildReverse()
}

// charsetFor resolves a designation final to its table. Recognized finals
// without a registered table designate an empty set.
func charsetFor(id SetID) (*Charset, bool) {
	if cs, ok := registry[id]; ok {
		return cs, true
	}
	if knownFinals[id] {
		return &Charset{
			ID:        id,
			Name:      "unregistered",
			Multibyte: id == SetEACC,
			mappings:  map[uint32]Mapping{},
		}, true
	}
	return nil, false
}

func buildReverse() {
	reverse = make(map[rune][]reverseEntry)
	for _, id := range encodeOrder {
		cs := registry[id]
		for key, m := range cs.mappings {
			if len(m.Runes) != 1 {
				continue
			}
			r := m.Runes[0]
			reverse[r] = append(reverse[r], reverseEntry{set: cs, key: key, combining: m.Combining})
		}
	}
}

// isCombining reports whether MARC-8 treats the codepoint as a combining
// mark subject to pre-base reordering.
func isCombining(r rune) bool {
	for _, e := range reverse[r] {
		if e.combining {
			return true
		}
	}
	return false
}

func init() {
	// Priority order: the default G0/G1 pair first, then the remaining
	// embedded sets. Registration order is the encoder's tiebreak.
	RegisterCharset(basicLatin())
	RegisterCharset(ansel())
	RegisterCharset(superscript())
	RegisterCharset(subscript())
	RegisterCharset(greekSymbols())
	RegisterCharset(basicCyrillic())
	RegisterCharset(basicGreek())
	RegisterCharset(basicHebrew())
	RegisterCharset(basicArabic())
}
