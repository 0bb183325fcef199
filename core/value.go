package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Value is a JSON document tree. Only Null, Bool, Number, String, Array and
// Object implement it.
type Value interface {
	jsonValue()
	json.Marshaler
}

type Null struct{}

type Bool bool

// Number keeps the literal text of a JSON number so that "1.50" or
// "1e3" come back exactly as they were sent.
type Number string

type String string

type Array []Value

// Object keeps members in document order. Duplicate keys are kept as-is.
type Object []Member

type Member struct {
	Key   string
	Value Value
}

func (Null) jsonValue()   {}
func (Bool) jsonValue()   {}
func (Number) jsonValue() {}
func (String) jsonValue() {}
func (Array) jsonValue()  {}
func (Object) jsonValue() {}

func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

func (n Number) MarshalJSON() ([]byte, error) {
	// json.Number is validated by encoding/json on marshal.
	return json.Marshal(json.Number(n))
}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", m.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", m.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the first member named key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Marshal encodes v. A nil Value encodes as null.
func Marshal(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return v.MarshalJSON()
}

// MaxDepth is the deepest array/object nesting Parse accepts, the same
// limit encoding/json enforces.
const MaxDepth = 10000

var ErrTooDeep = errors.New("exceeded max nesting depth")

// Parse decodes exactly one JSON value from data.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		if depth >= MaxDepth {
			return nil, ErrTooDeep
		}
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				elem, err := parseValue(dec, depth+1)
				if err == ErrTooDeep {
					return nil, err
				}
				if err != nil {
					return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := Object{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", kt)
				}
				val, err := parseValue(dec, depth+1)
				if err == ErrTooDeep {
					return nil, err
				}
				if err != nil {
					return nil, fmt.Errorf("object[%q]: %w", key, err)
				}
				obj = append(obj, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	default:
		return nil, fmt.Errorf("unsupported JSON token %T", tok)
	}
}

// IsEmpty reports whether v carries no data: absent, null, "", [] or {}.
func IsEmpty(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return true
	case String:
		return val == ""
	case Array:
		return len(val) == 0
	case Object:
		return len(val) == 0
	default:
		return false
	}
}
