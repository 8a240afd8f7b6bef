package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

var errInvalidJSON = errors.New("invalid JSON")

// Parse decodes a JSON document into a Value, preserving object key order.
func Parse(data []byte) (Value, error) {
	if !json.Valid(data) {
		return Value{}, errInvalidJSON
	}
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, fmt.Errorf("parse document: %w", err)
	}
	return convert(raw, typ)
}

func convert(raw []byte, typ jsonparser.ValueType) (Value, error) {
	switch typ {
	case jsonparser.Null:
		return NullValue(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case jsonparser.Number:
		n, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case jsonparser.Array:
		items := []Value{}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(elem []byte, t jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			v, err := convert(elem, t)
			if err != nil {
				inner = err
				return
			}
			items = append(items, v)
		})
		if err != nil {
			return Value{}, err
		}
		if inner != nil {
			return Value{}, inner
		}
		return ArrayValue(items...), nil
	case jsonparser.Object:
		obj := ObjectValue()
		err := jsonparser.ObjectEach(raw, func(key, val []byte, t jsonparser.ValueType, _ int) error {
			v, err := convert(val, t)
			if err != nil {
				return err
			}
			obj.Set(string(key), v)
			return nil
		})
		if err != nil {
			return Value{}, err
		}
		return obj, nil
	}
	return Value{}, fmt.Errorf("unsupported JSON value type %s", typ)
}
