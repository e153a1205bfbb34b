// Package marcxml converts records to and from the MARCXML slim schema.
//
// The reader accepts both a bare <record> document and a <collection>
// wrapper, with or without a namespace prefix. The writer emits the
// http://www.loc.gov/MARC21/slim namespace on the document element.
package marcxml

import (
	"bytes"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
	"github.com/FocuswithJustin/JuniperMARC/core/marc"
	"github.com/FocuswithJustin/JuniperMARC/core/text"
)

// Namespace is the MARCXML slim schema namespace.
const Namespace = "http://www.loc.gov/MARC21/slim"

// Unmarshal parses a MARCXML document and returns its records. A document
// with a bare <record> root yields one record.
func Unmarshal(data []byte) ([]*marc.Record, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing MARCXML")
	}

	nodes, err := xmlquery.QueryAll(root, "//record")
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	if len(nodes) == 0 {
		return nil, errors.NewFormat(0, "no record elements found")
	}

	records := make([]*marc.Record, 0, len(nodes))
	for i, node := range nodes {
		record, err := decodeRecord(node)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		records = append(records, record)
	}
	return records, nil
}

// Select parses a MARCXML document and returns only the records whose
// <record> element satisfies the XPath expression, evaluated with the
// record element as context. Example:
//
//	Select(data, "datafield[@tag='245']/subfield[@code='a']")
func Select(data []byte, expr string) ([]*marc.Record, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, errors.NewValidation("xpath", err.Error())
	}

	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing MARCXML")
	}
	nodes, err := xmlquery.QueryAll(root, "//record")
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}

	var records []*marc.Record
	for i, node := range nodes {
		match, err := xmlquery.Query(node, expr)
		if err != nil {
			return nil, errors.Wrap(err, "xpath query failed")
		}
		if match == nil {
			continue
		}
		record, err := decodeRecord(node)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		records = append(records, record)
	}
	return records, nil
}

// UnmarshalRecord parses a MARCXML document expected to hold exactly one
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

// normalizeLeader zero-fills blank record length and base address digits.
// XML leaders often leave those positions blank since both values only
// matter inside a binary frame, where the writer recomputes them anyway.
func normalizeLeader(text string) []byte {
	b := []byte(text)
	if len(b) != marc.LeaderLen {
		return b
	}
	for i := 0; i < 5; i++ {
		if b[i] == ' ' {
			b[i] = '0'
		}
		if b[12+i] == ' ' {
			b[12+i] = '0'
		}
	}
	return b
}

func decodeRecord(node *xmlquery.Node) (*marc.Record, error) {
	record := marc.NewRecord()

	if ldr, err := xmlquery.Query(node, "leader"); err == nil && ldr != nil {
		leader, err := marc.DecodeLeader(normalizeLeader(ldr.InnerText()))
		if err != nil {
			return nil, errors.Wrap(err, "leader")
		}
		record.Leader = leader
	}

	children, err := xmlquery.QueryAll(node, "controlfield|datafield")
	if err != nil {
		return nil, errors.Wrap(err, "querying fields")
	}
	for _, child := range children {
		tag := child.SelectAttr("tag")
		if tag == "" {
			return nil, errors.NewFormatf(0, "%s element without a tag attribute", child.Data)
		}

		if child.Data == "controlfield" {
			field, err := marc.NewControlField(tag, child.InnerText())
			if err != nil {
				return nil, err
			}
			record.AddField(field)
			continue
		}

		field, err := marc.NewDataField(tag, indicator(child, "ind1"), indicator(child, "ind2"))
		if err != nil {
			return nil, err
		}
		subfields, err := xmlquery.QueryAll(child, "subfield")
		if err != nil {
			return nil, errors.Wrap(err, "querying subfields")
		}
		for _, sf := range subfields {
			code := sf.SelectAttr("code")
			if code == "" {
				return nil, errors.NewFormatf(0, "subfield of %s without a code attribute", tag)
			}
			field.AddSubfield(code[0], sf.InnerText())
		}
		record.AddField(field)
	}
	return record, nil
}

// indicator reads an indicator attribute, treating absence as blank.
func indicator(node *xmlquery.Node, name string) byte {
	v := node.SelectAttr(name)
	if v == "" {
		return ' '
	}
	return v[0]
}

// Marshal serializes one record as a standalone MARCXML document.
func Marshal(r *marc.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	writeRecord(&buf, r, ` xmlns="`+Namespace+`"`, "")
	return buf.Bytes(), nil
}

// MarshalCollection serializes records inside a <collection> wrapper.
func MarshalCollection(records []*marc.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, "<collection xmlns=%q>\n", Namespace)
	for _, r := range records {
		writeRecord(&buf, r, "", "  ")
	}
	buf.WriteString("</collection>\n")
	return buf.Bytes(), nil
}

func writeRecord(w io.Writer, r *marc.Record, nsAttr, indent string) {
	fmt.Fprintf(w, "%s<record%s>\n", indent, nsAttr)
	fmt.Fprintf(w, "%s  <leader>%s</leader>\n", indent, text.EscapeXMLText(r.Leader.String()))

	for _, f := range r.Fields {
		if f.IsControl() {
			fmt.Fprintf(w, "%s  <controlfield tag=%q>%s</controlfield>\n",
				indent, f.Tag, text.EscapeXMLText(f.Data))
			continue
		}
		fmt.Fprintf(w, "%s  <datafield tag=%q ind1=%q ind2=%q>\n",
			indent, f.Tag, indicatorString(f.Indicators[0]), indicatorString(f.Indicators[1]))
		for _, sf := range f.Subfields {
			fmt.Fprintf(w, "%s    <subfield code=%q>%s</subfield>\n",
				indent, string(sf.Code), text.EscapeXMLText(sf.Value))
		}
		fmt.Fprintf(w, "%s  </datafield>\n", indent)
	}
	fmt.Fprintf(w, "%s</record>\n", indent)
}

// indicatorString renders an indicator, mapping the zero byte to blank.
func indicatorString(ind byte) string {
	if ind == 0 {
		return " "
	}
	return string(ind)
}
