// Package decode converts JSON and YAML documents into the engine's value
// model, preserving object key order.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/vq/value"
)

// ErrUnsupported reports document content that has no value-model
// representation.
var ErrUnsupported = errors.New("unsupported document value")

// JSONDecoder reads a stream of top-level JSON documents.
type JSONDecoder struct {
	dec *json.Decoder
}

// NewJSONDecoder returns a decoder reading concatenated or
// whitespace-separated JSON documents from r.
func NewJSONDecoder(r io.Reader) *JSONDecoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &JSONDecoder{dec: dec}
}

// Decode returns the next document, or io.EOF when the stream ends. The
// decoder walks tokens directly so object key order survives.
func (d *JSONDecoder) Decode() (value.Value, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return nil, err
	}
	return d.fromToken(tok)
}

func (d *JSONDecoder) fromToken(tok json.Token) (value.Value, error) {
	switch current := tok.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(current), nil
	case string:
		return value.String(current), nil
	case json.Number:
		return value.FromAny(current)
	case json.Delim:
		switch current {
		case '[':
			return d.decodeArray()
		case '{':
			return d.decodeObject()
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrUnsupported, current)
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, tok)
	}
}

func (d *JSONDecoder) decodeArray() (value.Value, error) {
	arr := value.Array{}
	for d.dec.More() {
		element, err := d.Decode()
		if err != nil {
			return nil, err
		}
		arr = append(arr, element)
	}
	if _, err := d.dec.Token(); err != nil { // closing ']'
		return nil, err
	}
	return arr, nil
}

func (d *JSONDecoder) decodeObject() (value.Value, error) {
	obj := value.NewObject()
	for d.dec.More() {
		keyToken, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %T", ErrUnsupported, keyToken)
		}

		element, err := d.Decode()
		if err != nil {
			return nil, err
		}
		obj.Set(key, element)
	}
	if _, err := d.dec.Token(); err != nil { // closing '}'
		return nil, err
	}
	return obj, nil
}

// JSON decodes a single JSON document.
func JSON(r io.Reader) (value.Value, error) {
	return NewJSONDecoder(r).Decode()
}

// YAMLDecoder reads a stream of YAML documents separated by `---`.
type YAMLDecoder struct {
	dec *yaml.Decoder
}

// NewYAMLDecoder returns a decoder for r. Mappings decode into ordered
// form so key order is preserved.
func NewYAMLDecoder(r io.Reader) *YAMLDecoder {
	return &YAMLDecoder{dec: yaml.NewDecoder(r, yaml.UseOrderedMap())}
}

// Decode returns the next document, or io.EOF when the stream ends.
func (d *YAMLDecoder) Decode() (value.Value, error) {
	var doc any
	if err := d.dec.Decode(&doc); err != nil {
		return nil, err
	}
	return fromYAML(doc)
}

// YAML decodes a single YAML document.
func YAML(r io.Reader) (value.Value, error) {
	return NewYAMLDecoder(r).Decode()
}

func fromYAML(doc any) (value.Value, error) {
	switch current := doc.(type) {
	case yaml.MapSlice:
		obj := value.NewObject(len(current))
		for _, item := range current {
			key, ok := item.Key.(string)
			if !ok {
				return nil, fmt.Errorf("%w: mapping key %T", ErrUnsupported, item.Key)
			}
			element, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(key, element)
		}
		return obj, nil
	case []any:
		arr := make(value.Array, 0, len(current))
		for _, item := range current {
			element, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, element)
		}
		return arr, nil
	default:
		v, err := value.FromAny(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %T", ErrUnsupported, doc)
		}
		return v, nil
	}
}
