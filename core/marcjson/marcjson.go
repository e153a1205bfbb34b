// Package marcjson converts records to and from the MARC-in-JSON shape:
//
//	{"leader": "...", "fields": [
//	  {"001": "ocm42479006"},
//	  {"245": {"ind1": "1", "ind2": "4", "subfields": [{"a": "..."}]}}
//	]}
//
// Field and subfield order is significant, so both appear as arrays of
// single-key objects rather than maps.
package marcjson

import (
	"bytes"

	json "github.com/goccy/go-json"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
	"github.com/FocuswithJustin/JuniperMARC/core/marc"
)

type jsonRecord struct {
	Leader string      `json:"leader"`
	Fields []jsonField `json:"fields"`
}

// jsonField wraps one field for serialization as a single-key object.
type jsonField struct {
	field *marc.Field
}

type jsonDataField struct {
	Ind1      string         `json:"ind1"`
	Ind2      string         `json:"ind2"`
	Subfields []jsonSubfield `json:"subfields"`
}

type jsonSubfield struct {
	sub marc.Subfield
}

func (f jsonField) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	key, err := json.Marshal(f.field.Tag)
	if err != nil {
		return nil, err
	}
	buf.Write(key)
	buf.WriteByte(':')

	if f.field.IsControl() {
		value, err := json.Marshal(f.field.Data)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	} else {
		subfields := make([]jsonSubfield, len(f.field.Subfields))
		for i, sf := range f.field.Subfields {
			subfields[i] = jsonSubfield{sub: sf}
		}
		body, err := json.Marshal(jsonDataField{
			Ind1:      indicatorString(f.field.Indicators[0]),
			Ind2:      indicatorString(f.field.Indicators[1]),
			Subfields: subfields,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *jsonField) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return errors.NewFormatf(0, "field object must have exactly one tag key, has %d", len(raw))
	}

	for tag, body := range raw {
		if marc.IsControlTag(tag) {
			var value string
			if err := json.Unmarshal(body, &value); err != nil {
				return errors.Wrapf(err, "control field %s", tag)
			}
			field, err := marc.NewControlField(tag, value)
			if err != nil {
				return err
			}
			f.field = field
			continue
		}

		var df jsonDataField
		if err := json.Unmarshal(body, &df); err != nil {
			return errors.Wrapf(err, "data field %s", tag)
		}
		field, err := marc.NewDataField(tag, indicatorByte(df.Ind1), indicatorByte(df.Ind2))
		if err != nil {
			return err
		}
		for _, sf := range df.Subfields {
			field.AddSubfield(sf.sub.Code, sf.sub.Value)
		}
		f.field = field
	}
	return nil
}

func (s jsonSubfield) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	key, err := json.Marshal(string(s.sub.Code))
	if err != nil {
		return nil, err
	}
	buf.Write(key)
	buf.WriteByte(':')
	value, err := json.Marshal(s.sub.Value)
	if err != nil {
		return nil, err
	}
	buf.Write(value)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *jsonSubfield) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return errors.NewFormatf(0, "subfield object must have exactly one code key, has %d", len(raw))
	}
	for code, value := range raw {
		if len(code) != 1 {
			return errors.NewFormatf(0, "subfield code %q must be one character", code)
		}
		s.sub = marc.Subfield{Code: code[0], Value: value}
	}
	return nil
}

func indicatorString(ind byte) string {
	if ind == 0 {
		return " "
	}
	return string(ind)
}

func indicatorByte(s string) byte {
	if s == "" {
		return ' '
	}
	return s[0]
}

// Marshal serializes one record.
func Marshal(r *marc.Record) ([]byte, error) {
	return json.Marshal(toJSON(r))
}

// MarshalCollection serializes records as a JSON array.
func MarshalCollection(records []*marc.Record) ([]byte, error) {
	out := make([]jsonRecord, len(records))
	for i, r := range records {
		out[i] = toJSON(r)
	}
	return json.Marshal(out)
}

// Unmarshal parses one MARC-in-JSON record object.
func Unmarshal(data []byte) (*marc.Record, error) {
	var raw jsonRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing MARC-in-JSON")
	}
	return fromJSON(raw)
}

// UnmarshalCollection parses a JSON array of record objects.
func UnmarshalCollection(data []byte) ([]*marc.Record, error) {
	var raw []jsonRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing MARC-in-JSON array")
	}
	records := make([]*marc.Record, len(raw))
	for i, jr := range raw {
		record, err := fromJSON(jr)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		records[i] = record
	}
	return records, nil
}

func toJSON(r *marc.Record) jsonRecord {
	fields := make([]jsonField, len(r.Fields))
	for i, f := range r.Fields {
		fields[i] = jsonField{field: f}
	}
	return jsonRecord{Leader: r.Leader.String(), Fields: fields}
}

func fromJSON(raw jsonRecord) (*marc.Record, error) {
	record := marc.NewRecord()
	if raw.Leader != "" {
		leader, err := marc.DecodeLeader([]byte(raw.Leader))
		if err != nil {
			return nil, errors.Wrap(err, "leader")
		}
		record.Leader = leader
	}
	for _, jf := range raw.Fields {
		record.AddField(jf.field)
	}
	return record, nil
}
