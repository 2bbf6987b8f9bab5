package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// PriceStatus описывает результат поиска цены для комикса.
type PriceStatus string

const (
	StatusPending         PriceStatus = "pending"
	StatusFound           PriceStatus = "found"
	StatusNoPrices        PriceStatus = "no_prices"
	StatusNotFound        PriceStatus = "not_found"
	StatusDifferentSeries PriceStatus = "different_series"
	StatusUnableToParse   PriceStatus = "unable_to_parse"
)

// PriceData представляет блок цен, добавленный обновлятором.
type PriceData struct {
	Ungraded *float64    `json:"ungraded"`
	Grade60  *float64    `json:"grade_6_0"`
	Grade80  *float64    `json:"grade_8_0"`
	Source   string      `json:"source"`
	Updated  string      `json:"updated"`
	Status   PriceStatus `json:"status"`
}

// Prices представляет цены одного выпуска с PriceCharting.
type Prices struct {
	Ungraded *float64
	Grade60  *float64
	Grade80  *float64
}

func (p Prices) Any() bool {
	return p.Ungraded != nil || p.Grade60 != nil || p.Grade80 != nil
}

// Issue представляет выпуск из списка PriceCharting.
type Issue struct {
	Number int
	Title  string
	URL    string
}

// Comic представляет запись коллекции.
// Поля, которых нет в структуре, сохраняются в Extra. При записи порядок ключей
// и исходные значения неизмененных полей сохраняются как есть.
type Comic struct {
	Title     string
	Grade     string
	EstValue  string
	KeyNotes  string
	Event     string
	Creator   string
	PriceData *PriceData

	Extra map[string]json.RawMessage

	keys []string
	raw  map[string]json.RawMessage
}

var comicKeys = []string{"Title", "Grade", "EstValue", "KeyNotes", "Event", "Creator", "PriceData"}

// optionalKeys are omitted when empty unless the input had them.
var optionalKeys = map[string]bool{"KeyNotes": true, "Event": true, "Creator": true}

func (c *Comic) texts() map[string]*string {
	return map[string]*string{
		"Title":    &c.Title,
		"Grade":    &c.Grade,
		"EstValue": &c.EstValue,
		"KeyNotes": &c.KeyNotes,
		"Event":    &c.Event,
		"Creator":  &c.Creator,
	}
}

func (c *Comic) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	keys, values, err := decodeObject(data)
	if err != nil {
		return err
	}
	*c = Comic{keys: keys, raw: make(map[string]json.RawMessage)}

	for key, dst := range c.texts() {
		value, ok := values[key]
		if !ok {
			continue
		}
		s, err := decodeText(value)
		if err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		*dst = s
		c.raw[key] = value
		delete(values, key)
	}

	if value, ok := values["PriceData"]; ok {
		if !isNull(value) {
			c.PriceData = &PriceData{}
			if err := json.Unmarshal(value, c.PriceData); err != nil {
				return fmt.Errorf("decode PriceData: %w", err)
			}
		}
		c.raw["PriceData"] = value
		delete(values, "PriceData")
	}

	if len(values) > 0 {
		c.Extra = values
	}
	return nil
}

func (c Comic) MarshalJSON() ([]byte, error) {
	values := make(map[string]json.RawMessage, len(comicKeys)+len(c.Extra))
	for key, value := range c.Extra {
		values[key] = value
	}

	for key, text := range c.texts() {
		raw, seen := c.raw[key]
		switch {
		case seen && sameText(raw, *text):
			values[key] = raw
		case !seen && *text == "" && optionalKeys[key]:
		default:
			b, err := marshalNoEscape(*text)
			if err != nil {
				return nil, err
			}
			values[key] = b
		}
	}

	if c.PriceData != nil {
		b, err := marshalNoEscape(c.PriceData)
		if err != nil {
			return nil, err
		}
		values["PriceData"] = b
	} else if raw, ok := c.raw["PriceData"]; ok {
		values["PriceData"] = raw
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string) error {
		value, ok := values[key]
		if !ok {
			return nil
		}
		delete(values, key)
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		name, err := marshalNoEscape(key)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	// input order first, then the known fields, then anything added by hand
	order := append(append([]string(nil), c.keys...), comicKeys...)
	rest := make([]string, 0, len(values))
	for key := range values {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	for _, key := range append(order, rest...) {
		if err := write(key); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeObject returns the keys of a JSON object in input order with their raw values.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("comic must be a JSON object, got %s", string(bytes.TrimSpace(data)))
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", key, err)
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = value
	}
	return keys, values, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func sameText(raw json.RawMessage, text string) bool {
	s, err := decodeText(raw)
	return err == nil && s == text
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeText принимает строку, число или null.
func decodeText(value json.RawMessage) (string, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unexpected value %s", string(value))
	}
}

// GradeRange представляет диапазон грейда, например 6.0-8.0.
type GradeRange struct {
	Low  float64
	High float64
}

func (g GradeRange) String() string {
	if g.Low == g.High {
		return strconv.FormatFloat(g.Low, 'f', 1, 64)
	}
	return fmt.Sprintf("%.1f-%.1f", g.Low, g.High)
}

// Record представляет комикс вместе с производными полями для таблицы.
type Record struct {
	Comic  Comic
	Series string
	Issue  *int
	Year   string
	Value  *float64
	Grade  *GradeRange
}
