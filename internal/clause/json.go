package clause

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const operatorKey = "operator"

// UnmarshalJSON decodes the object form
//
//	{"Name": "notepad.exe", "ProcessId": {"operator": ">", "value": 4}, "operator": "OR"}
//
// keeping the key order of the document. A bare value is an equality
// comparison. A document that is not an object decodes into a malformed
// filter that BuildWhere treats like an absent one.
func (w *Where) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: where: %v", ErrInvalidArgument, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		*w = Where{malformed: true}
		return nil
	}

	out := Where{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: where: %v", ErrInvalidArgument, err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: where property %q: %v", ErrInvalidArgument, key, err)
		}

		if key == operatorKey {
			var op any
			if err := decodeNumber(raw, &op); err != nil {
				return fmt.Errorf("%w: where operator: %v", ErrInvalidArgument, err)
			}
			s, ok := op.(string)
			if !ok {
				return fmt.Errorf("%w: where operator must be a string", ErrInvalidOperator)
			}
			out.Operator = s
			continue
		}

		cmp, err := decodeComparison(key, raw)
		if err != nil {
			return err
		}
		out.set(cmp)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: where: %v", ErrInvalidArgument, err)
	}

	*w = out
	return nil
}

// MarshalJSON encodes w in the same ordered object form UnmarshalJSON reads.
func (w Where) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cmp := range w.Comparisons {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cmp.Property)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value any = cmp.Value
		if cmp.Operator != EqualOperator {
			value = struct {
				Operator string `json:"operator"`
				Value    any    `json:"value"`
			}{cmp.Operator, cmp.Value}
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	if w.Operator != "" {
		if len(w.Comparisons) > 0 {
			buf.WriteByte(',')
		}
		op, err := json.Marshal(w.Operator)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"` + operatorKey + `":`)
		buf.Write(op)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// set appends cmp, replacing an earlier comparison on the same property in place.
func (w *Where) set(cmp Comparison) {
	for i := range w.Comparisons {
		if w.Comparisons[i].Property == cmp.Property {
			w.Comparisons[i] = cmp
			return
		}
	}
	w.Comparisons = append(w.Comparisons, cmp)
}

func decodeComparison(property string, raw json.RawMessage) (Comparison, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Operator any `json:"operator"`
			Value    any `json:"value"`
		}
		if err := decodeNumber(trimmed, &obj); err != nil {
			return Comparison{}, fmt.Errorf("%w: where property %q: %v", ErrInvalidArgument, property, err)
		}
		op, ok := obj.Operator.(string)
		return Comparison{Property: property, Operator: op, Value: obj.Value, badOperator: !ok}, nil
	}

	var value any
	if err := decodeNumber(trimmed, &value); err != nil {
		return Comparison{}, fmt.Errorf("%w: where property %q: %v", ErrInvalidArgument, property, err)
	}
	return Eq(property, value), nil
}

// DecodeGet decodes a JSON field list. Absent or null input yields a nil
// list, which BuildGet rejects.
func DecodeGet(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var items []any
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: get must be an array", ErrInvalidArgument)
	}
	fields := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: get value at index %d was not a string", ErrInvalidArgument, i)
		}
		fields = append(fields, s)
	}
	return fields, nil
}

// DecodeString decodes an optional JSON string named name.
func DecodeString(name string, raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidArgument, name)
	}
	return s, nil
}

func decodeNumber(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}
