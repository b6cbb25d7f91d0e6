package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"
)

// MarshalJSON encodes the schedule as nested objects keyed by period, date and time
// range, keeping the schedule's order instead of encoding/json's sorted map keys.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')
	for i, p := range s.Periods {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, p.Name); err != nil {
			return nil, err
		}

		buf.WriteByte('{')
		for j, d := range p.Days {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, d.Key); err != nil {
				return nil, err
			}

			buf.WriteByte('{')
			for k, slot := range d.Slots {
				if k > 0 {
					buf.WriteByte(',')
				}
				if err := writeKey(&buf, slot.Time.String()); err != nil {
					return nil, err
				}
				if err := writeValue(&buf, slot.Entry); err != nil {
					return nil, fmt.Errorf("encoding entry: %w", err)
				}
			}
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	if err := writeValue(buf, key); err != nil {
		return fmt.Errorf("encoding key %q: %w", key, err)
	}
	buf.WriteByte(':')
	return nil
}

// writeValue encodes v without HTML escaping so course names like "R&D" stay readable.
func writeValue(buf *bytes.Buffer, v interface{}) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// UnmarshalJSON decodes the nested period/date/time-range objects, validates them
// and sorts days and slots.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	decoded := New()

	periods := make(map[string]bool)
	err := readObject(dec, func(period string) error {
		if periods[period] {
			return fmt.Errorf("duplicate period %q", period)
		}
		periods[period] = true
		decoded.AddPeriod(period)

		dates := make(map[string]bool)
		return readObject(dec, func(date string) error {
			if dates[date] {
				return fmt.Errorf("period %q: duplicate date %q", period, date)
			}
			dates[date] = true
			return readObject(dec, func(timeRange string) error {
				var entry Entry
				if err := dec.Decode(&entry); err != nil {
					return fmt.Errorf("period %q, date %s, %s: %w", period, date, timeRange, err)
				}
				return decoded.put(period, date, timeRange, entry)
			})
		})
	})
	if err != nil {
		return err
	}

	if err := decoded.Validate(); err != nil {
		return err
	}
	decoded.Sort()

	*s = *decoded
	return nil
}

// readObject walks one JSON object, calling fn for every key with the decoder
// positioned on the key's value.
func readObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}

	// closing brace
	_, err = dec.Token()
	return err
}

// put is Set for decoded input: a time range repeated within one day is an error
// rather than an overwrite.
func (s *Schedule) put(period, date, timeRange string, entry Entry) error {
	tr, err := ParseTimeRange(timeRange)
	if err != nil {
		return fmt.Errorf("period %q, date %s: %w", period, date, err)
	}
	if p := s.Period(period); p != nil {
		if d := p.Day(date); d != nil && d.Slot(tr) != nil {
			return fmt.Errorf("period %q, date %s: duplicate time range %q", period, date, timeRange)
		}
	}
	if err := s.Set(period, date, tr, entry); err != nil {
		return fmt.Errorf("period %q: %w", period, err)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler with the same ordering as MarshalJSON.
func (s *Schedule) MarshalYAML() (interface{}, error) {
	periods := make(yaml.MapSlice, 0, len(s.Periods))
	for _, p := range s.Periods {
		days := make(yaml.MapSlice, 0, len(p.Days))
		for _, d := range p.Days {
			slots := make(yaml.MapSlice, 0, len(d.Slots))
			for _, slot := range d.Slots {
				slots = append(slots, yaml.MapItem{Key: slot.Time.String(), Value: slot.Entry})
			}
			days = append(days, yaml.MapItem{Key: d.Key, Value: slots})
		}
		periods = append(periods, yaml.MapItem{Key: p.Name, Value: days})
	}
	return periods, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Nested mappings decode as MapSlice,
// which keeps the file order of periods.
func (s *Schedule) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var periods yaml.MapSlice
	if err := unmarshal(&periods); err != nil {
		return err
	}

	decoded := New()
	seenPeriods := make(map[string]bool)
	for _, p := range periods {
		period := fmt.Sprint(p.Key)
		if seenPeriods[period] {
			return fmt.Errorf("duplicate period %q", period)
		}
		seenPeriods[period] = true
		decoded.AddPeriod(period)

		days, err := mapping(p.Value, "period "+period)
		if err != nil {
			return err
		}
		seenDates := make(map[string]bool)
		for _, d := range days {
			date := fmt.Sprint(d.Key)
			if seenDates[date] {
				return fmt.Errorf("period %q: duplicate date %q", period, date)
			}
			seenDates[date] = true
			slots, err := mapping(d.Value, fmt.Sprintf("period %q, date %s", period, date))
			if err != nil {
				return err
			}
			for _, slot := range slots {
				timeRange := fmt.Sprint(slot.Key)
				fields, err := mapping(slot.Value, fmt.Sprintf("period %q, date %s, %s", period, date, timeRange))
				if err != nil {
					return err
				}
				if err := decoded.put(period, date, timeRange, entryFromFields(fields)); err != nil {
					return err
				}
			}
		}
	}

	if err := decoded.Validate(); err != nil {
		return err
	}
	decoded.Sort()

	*s = *decoded
	return nil
}

func mapping(v interface{}, where string) (yaml.MapSlice, error) {
	if v == nil {
		return yaml.MapSlice{}, nil
	}
	m, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%s: expected mapping, got %T", where, v)
	}
	return m, nil
}

func entryFromFields(fields yaml.MapSlice) Entry {
	var entry Entry
	for _, f := range fields {
		value := ""
		if f.Value != nil {
			value = fmt.Sprint(f.Value)
		}
		switch fmt.Sprint(f.Key) {
		case "Course":
			entry.Course = value
		case "Classroom":
			entry.Classroom = value
		}
	}
	return entry
}
