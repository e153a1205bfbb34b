// Package text provides shared escaping and normalization helpers for the
// textual MARC serializations.
package text

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// EscapeXML escapes special characters for XML content.
// Uses the standard library's xml.EscapeText for proper escaping.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// EscapeXMLText escapes only the basic XML entities for text content.
// This is a lighter-weight alternative to EscapeXML.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// BlankToBackslash renders the MARCMaker mnemonic convention for fixed
// positions: every space becomes a backslash.
func BlankToBackslash(s string) string {
	return strings.ReplaceAll(s, " ", `\`)
}

// BackslashToBlank reverses the MARCMaker mnemonic convention, restoring
// spaces in fixed positions.
func BackslashToBlank(s string) string {
	return strings.ReplaceAll(s, `\`, " ")
}
