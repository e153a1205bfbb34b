package marc8

// tables.go - embedded MARC-8 graphic character set tables.
//
// Code values follow the Library of Congress code table publications: ANSEL
// entries are written in their G1 column (0xA1-0xFE), everything else in the
// G0 column (0x21-0x7E). NewCharset masks both to the shared 7-bit space.
//
// The full LoC table set (notably EACC and the extended Arabic/Cyrillic
// sets) is an external data asset; load additional tables with
// RegisterCharset.

func one(r rune) Mapping       { return Mapping{Runes: []rune{r}} }
func combining(r rune) Mapping { return Mapping{Runes: []rune{r}, Combining: true} }

// basicLatin is plain ASCII graphics, the default G0 set.
func basicLatin() *Charset {
	m := make(map[uint32]Mapping, 0x5F)
	for b := uint32(0x20); b <= 0x7E; b++ {
		m[b] = one(rune(b))
	}
	return NewCharset(SetBasicLatin, "Basic Latin (ASCII)", false, m)
}

// ansel is the Extended Latin set, the default G1 set. Spacing characters
// occupy 0xA1-0xC8, combining diacritics 0xE0-0xFE.
func ansel() *Charset {
	return NewCharset(SetExtendedLatin, "Extended Latin (ANSEL)", false, map[uint32]Mapping{
		0xA1: one('Ł'), // uppercase polish l
		0xA2: one('Ø'), // uppercase scandinavian o
		0xA3: one('Đ'), // uppercase d with crossbar
		0xA4: one('Þ'), // uppercase icelandic thorn
		0xA5: one('Æ'), // uppercase digraph ae
		0xA6: one('Œ'), // uppercase digraph oe
		0xA7: one('ʹ'), // soft sign, prime
		0xA8: one('·'), // middle dot
		0xA9: one('♭'), // musical flat sign
		0xAA: one('®'), // patent mark
		0xAB: one('±'), // plus or minus
		0xAC: one('Ơ'), // uppercase o-hook
		0xAD: one('Ư'), // uppercase u-hook
		0xAE: one('ʼ'), // alif
		0xB0: one('ʻ'), // ayn
		0xB1: one('ł'), // lowercase polish l
		0xB2: one('ø'), // lowercase scandinavian o
		0xB3: one('đ'), // lowercase d with crossbar
		0xB4: one('þ'), // lowercase icelandic thorn
		0xB5: one('æ'), // lowercase digraph ae
		0xB6: one('œ'), // lowercase digraph oe
		0xB7: one('ʺ'), // hard sign, double prime
		0xB8: one('ı'), // lowercase turkish i
		0xB9: one('£'), // british pound
		0xBA: one('ð'), // lowercase eth
		0xBC: one('ơ'), // lowercase o-hook
		0xBD: one('ư'), // lowercase u-hook
		0xC0: one('°'), // degree sign
		0xC1: one('ℓ'), // script small l
		0xC2: one('℗'), // sound recording copyright
		0xC3: one('©'), // copyright sign
		0xC4: one('♯'), // musical sharp sign
		0xC5: one('¿'), // inverted question mark
		0xC6: one('¡'), // inverted exclamation mark
		0xC7: one('ß'), // eszett
		0xC8: one('€'), // euro sign

		0xE0: combining('̉'), // pseudo question mark (hook above)
		0xE1: combining('̀'), // grave
		0xE2: combining('́'), // acute
		0xE3: combining('̂'), // circumflex
		0xE4: combining('̃'), // tilde
		0xE5: combining('̄'), // macron
		0xE6: combining('̆'), // breve
		0xE7: combining('̇'), // dot above
		0xE8: combining('̈'), // umlaut, diaeresis
		0xE9: combining('̌'), // hacek
		0xEA: combining('̊'), // circle above, angstrom
		0xEB: combining('︠'), // ligature, first half
		0xEC: combining('︡'), // ligature, second half
		0xED: combining('̕'), // high comma, off center
		0xEE: combining('̋'), // double acute
		0xEF: combining('̐'), // candrabindu
		0xF0: combining('̧'), // cedilla
		0xF1: combining('̨'), // right hook, ogonek
		0xF2: combining('̣'), // dot below
		0xF3: combining('̤'), // double dot below
		0xF4: combining('̥'), // circle below
		0xF5: combining('̳'), // double underscore
		0xF6: combining('̲'), // underscore
		0xF7: combining('̦'), // left hook (comma below)
		0xF8: combining('̜'), // right cedilla
		0xF9: combining('̮'), // upadhmaniya (half circle below)
		0xFA: combining('︢'), // double tilde, first half
		0xFB: combining('︣'), // double tilde, second half
		0xFE: combining('̓'), // high comma, centered
	})
}

// superscript holds the superscript digits and signs.
func superscript() *Charset {
	return NewCharset(SetSuperscript, "Superscripts", false, map[uint32]Mapping{
		0x28: one('⁽'),
		0x29: one('⁾'),
		0x2B: one('⁺'),
		0x2D: one('⁻'),
		0x30: one('⁰'),
		0x31: one('¹'),
		0x32: one('²'),
		0x33: one('³'),
		0x34: one('⁴'),
		0x35: one('⁵'),
		0x36: one('⁶'),
		0x37: one('⁷'),
		0x38: one('⁸'),
		0x39: one('⁹'),
	})
}

// subscript holds the subscript digits and signs.
func subscript() *Charset {
	m := map[uint32]Mapping{
		0x28: one('₍'),
		0x29: one('₎'),
		0x2B: one('₊'),
		0x2D: one('₋'),
	}
	for d := uint32(0); d <= 9; d++ {
		m[0x30+d] = one(rune(0x2080 + d))
	}
	return NewCharset(SetSubscript, "Subscripts", false, m)
}

// greekSymbols holds the three Greek letters used as symbols in otherwise
// Latin text.
func greekSymbols() *Charset {
	return NewCharset(SetGreekSymbols, "Greek Symbols", false, map[uint32]Mapping{
		0x61: one('α'), // alpha
		0x62: one('β'), // beta
		0x63: one('γ'), // gamma
	})
}

// basicCyrillic follows the KOI-7 layout of ISO 5427: lowercase in columns
// 4-5, uppercase in columns 6-7, ASCII punctuation and digits below.
func basicCyrillic() *Charset {
	m := make(map[uint32]Mapping, 0x60)
	for b := uint32(0x20); b <= 0x3F; b++ {
		m[b] = one(rune(b))
	}
	lower := []rune("юабцдефгхийклмнопярстужвьызшэщчъ")
	upper := []rune("ЮАБЦДЕФГХИЙКЛМНОПЯРСТУЖВЬЫЗШЭЩЧ")
	for i, r := range lower {
		m[uint32(0x40+i)] = one(r)
	}
	for i, r := range upper {
		m[uint32(0x60+i)] = one(r)
	}
	return NewCharset(SetBasicCyrillic, "Basic Cyrillic", false, m)
}

// basicGreek holds the Greek alphabet, capitals in columns 4-5 and
// lowercase in columns 6-7 with final sigma after omega.
func basicGreek() *Charset {
	m := make(map[uint32]Mapping, 0x40)
	upper := []rune("ΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ")
	lower := []rune("αβγδεζηθικλμνξοπρστυφχψω")
	for i, r := range upper {
		m[uint32(0x41+i)] = one(r)
	}
	for i, r := range lower {
		m[uint32(0x61+i)] = one(r)
	}
	m[0x79] = one('ς') // final sigma
	return NewCharset(SetBasicGreek, "Basic Greek", false, m)
}

// basicHebrew holds the Hebrew alphabet in columns 6-7.
func basicHebrew() *Charset {
	m := make(map[uint32]Mapping, 0x20)
	alef := []rune("אבגדהוזחטיךכלםמןנסעףפץצקרשת")
	for i, r := range alef {
		m[uint32(0x60+i)] = one(r)
	}
	return NewCharset(SetBasicHebrew, "Basic Hebrew", false, m)
}

// basicArabic follows ASMO 449: letters in columns 4-6, harakat (written
// before their base in MARC-8) in column 6-7, Arabic-Indic digits and
// punctuation below.
func basicArabic() *Charset {
	m := map[uint32]Mapping{
		0x2C: one('،'), // arabic comma
		0x3B: one('؛'), // arabic semicolon
		0x3F: one('؟'), // arabic question mark
		0x41: one('ء'), // hamza
		0x42: one('آ'), // alef with madda
		0x43: one('أ'), // alef with hamza above
		0x44: one('ؤ'), // waw with hamza
		0x45: one('إ'), // alef with hamza below
		0x46: one('ئ'), // yeh with hamza
		0x47: one('ا'), // alef
		0x48: one('ب'), // beh
		0x49: one('ة'), // teh marbuta
		0x4A: one('ت'), // teh
		0x4B: one('ث'), // theh
		0x4C: one('ج'), // jeem
		0x4D: one('ح'), // hah
		0x4E: one('خ'), // khah
		0x4F: one('د'), // dal
		0x50: one('ذ'), // thal
		0x51: one('ر'), // reh
		0x52: one('ز'), // zain
		0x53: one('س'), // seen
		0x54: one('ش'), // sheen
		0x55: one('ص'), // sad
		0x56: one('ض'), // dad
		0x57: one('ط'), // tah
		0x58: one('ظ'), // zah
		0x59: one('ع'), // ain
		0x5A: one('غ'), // ghain
		0x60: one('ـ'), // tatweel
		0x61: one('ف'), // feh
		0x62: one('ق'), // qaf
		0x63: one('ك'), // kaf
		0x64: one('ل'), // lam
		0x65: one('م'), // meem
		0x66: one('ن'), // noon
		0x67: one('ه'), // heh
		0x68: one('و'), // waw
		0x69: one('ى'), // alef maksura
		0x6A: one('ي'), // yeh

		0x6B: combining('ً'), // fathatan
		0x6C: combining('ٌ'), // dammatan
		0x6D: combining('ٍ'), // kasratan
		0x6E: combining('َ'), // fatha
		0x6F: combining('ُ'), // damma
		0x70: combining('ِ'), // kasra
		0x71: combining('ّ'), // shadda
		0x72: combining('ْ'), // sukun
	}
	for d := uint32(0); d <= 9; d++ {
		m[0x30+d] = one(rune(0x0660 + d))
	}
	return NewCharset(SetBasicArabic, "Basic Arabic", false, m)
}
