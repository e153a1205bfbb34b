// Package convert moves record batches between the supported
// serializations: binary MARC21, MARCXML, MARC-in-JSON, and MARCMaker
// mnemonic text.
package convert

import (
	"bytes"
	"io"
	"strconv"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
	"github.com/FocuswithJustin/JuniperMARC/core/marc"
	"github.com/FocuswithJustin/JuniperMARC/core/marcjson"
	"github.com/FocuswithJustin/JuniperMARC/core/marcmaker"
	"github.com/FocuswithJustin/JuniperMARC/core/marcxml"
)

// Format identifies a record serialization.
type Format string

const (
	FormatMARC Format = "marc"
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatMRK  Format = "mrk"
)

// ParseFormat resolves a format name, accepting the common aliases.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "marc", "mrc", "marc21":
		return FormatMARC, nil
	case "xml", "marcxml":
		return FormatXML, nil
	case "json", "marcjson":
		return FormatJSON, nil
	case "mrk", "marcmaker", "text":
		return FormatMRK, nil
	}
	return "", errors.NewUnsupported("format "+strconv.Quote(name), "")
}

// Extensions maps formats to their conventional file extensions, used to
// guess a format from a path.
var Extensions = map[string]Format{
	".mrc":  FormatMARC,
	".marc": FormatMARC,
	".xml":  FormatXML,
	".json": FormatJSON,
	".mrk":  FormatMRK,
}

// Decode reads every record of data in the given format.
func Decode(data []byte, format Format) ([]*marc.Record, error) {
	switch format {
	case FormatMARC:
		var records []*marc.Record
		reader := marc.NewReader(bytes.NewReader(data))
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, errors.Wrapf(err, "record %d", len(records))
			}
			records = append(records, record)
		}
		if len(records) == 0 {
			return nil, errors.NewFormat(0, "no records found")
		}
		return records, nil
	case FormatXML:
		return marcxml.Unmarshal(data)
	case FormatJSON:
		if looksLikeArray(data) {
			return marcjson.UnmarshalCollection(data)
		}
		record, err := marcjson.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		return []*marc.Record{record}, nil
	case FormatMRK:
		return marcmaker.Unmarshal(data)
	}
	return nil, errors.NewUnsupported("format "+strconv.Quote(string(format)), "")
}

// Encode serializes records in the given format. The encoding applies to
// binary MARC output only.
func Encode(records []*marc.Record, format Format, encoding marc.Encoding) ([]byte, error) {
	switch format {
	case FormatMARC:
		var buf bytes.Buffer
		w := marc.NewWriter(&buf, encoding)
		for i, r := range records {
			if err := w.Write(r); err != nil {
				return nil, errors.Wrapf(err, "record %d", i)
			}
		}
		return buf.Bytes(), nil
	case FormatXML:
		return marcxml.MarshalCollection(records)
	case FormatJSON:
		return marcjson.MarshalCollection(records)
	case FormatMRK:
		return marcmaker.MarshalCollection(records), nil
	}
	return nil, errors.NewUnsupported("format "+strconv.Quote(string(format)), "")
}

// looksLikeArray reports whether the JSON document's first token opens an
// array.
func looksLikeArray(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
