package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode parses data into an OrderedValue, preserving the key order of any
// JSON objects nested inside it.
func Decode(data []byte) (OrderedValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (OrderedValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("envelope: unexpected delimiter %q", t)
		}
	case nil:
		return OrderedNull{}, nil
	case bool:
		return OrderedBool(t), nil
	case json.Number:
		return OrderedNumber(t.String()), nil
	case string:
		return OrderedString(t), nil
	default:
		return nil, fmt.Errorf("envelope: unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (OrderedValue, error) {
	obj := OrderedObject{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("envelope: expected object key, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj = append(obj, OrderedPair{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (OrderedValue, error) {
	arr := OrderedArray{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil { // consume closing ']'
		return nil, err
	}
	return arr, nil
}

// Encode re-serializes v, reproducing the original object key order for
// any OrderedObject nested inside it.
func Encode(v OrderedValue) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v OrderedValue) error {
	switch val := v.(type) {
	case OrderedNull:
		buf.WriteString("null")
	case OrderedBool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case OrderedNumber:
		buf.WriteString(string(val))
	case OrderedString:
		encodeJSONString(buf, string(val))
	case OrderedArray:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case OrderedObject:
		buf.WriteByte('{')
		for i, pair := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeJSONString(buf, pair.Key)
			buf.WriteByte(':')
			if err := encodeValue(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("envelope: unknown ordered value type %T", v)
	}
	return nil
}

// encodeJSONString writes s as a quoted JSON string, escaping only what
// the JSON grammar requires: control characters, the quote, and the
// backslash. It deliberately does not go through json.Marshal, which
// HTML-escapes '<', '>', and '&' by default — a value whose string content
// contains any of those (a URL query string, "R&D", markdown) would come
// back from the value-only projection with bytes not present in the
// original, which is exactly the byte-layout preservation this package
// exists to guarantee.
func encodeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
