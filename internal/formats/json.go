package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// The JSON codecs work on the token stream rather than unmarshalling into a
// map: Go maps do not keep key order, and both decode and encode must
// preserve the sequence of entries exactly as given.

func decodeJSONFlat(data []byte) ([]Translation, error) {
	dec := json.NewDecoder(bytes.NewReader(stripBOM(data)))
	if err := expectObjectStart(dec); err != nil {
		return nil, err
	}

	var translations []Translation
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		value, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("key %q: flat JSON values must be strings", key)
		}
		translations = append(translations, Translation{Term: key, Value: value})
	}
	if err := consumeObjectEnd(dec); err != nil {
		return nil, err
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return translations, nil
}

func encodeJSONFlat(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range doc.Translations {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, t.Term); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, t.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeJSONNested(data []byte) ([]Translation, error) {
	dec := json.NewDecoder(bytes.NewReader(stripBOM(data)))
	if err := expectObjectStart(dec); err != nil {
		return nil, err
	}
	collector := newFlatCollector()
	if err := walkJSONObject(dec, collector, "", 0); err != nil {
		return nil, err
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return collector.translations, nil
}

// walkJSONObject consumes one object's members, flattening string leaves
// into the collector. The opening brace has already been read.
func walkJSONObject(dec *json.Decoder, collector *flatCollector, prefix string, level int) error {
	if level >= maxNestingDepth {
		return errors.New("too many nested levels in JSON content")
	}
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return err
		}
		path := joinPath(prefix, key)
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case string:
			if err := collector.leaf(path, v); err != nil {
				return err
			}
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("key %q: nested JSON values must be of object or string type", path)
			}
			if err := collector.enter(path); err != nil {
				return err
			}
			if err := walkJSONObject(dec, collector, path, level+1); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: nested JSON values must be of object or string type", path)
		}
	}
	return consumeObjectEnd(dec)
}

func encodeJSONNested(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONTree(&buf, buildTree(doc.Translations)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONTree(buf *bytes.Buffer, n *treeNode) error {
	buf.WriteByte('{')
	for i, key := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		child := n.children[key]
		if child.isLeaf {
			if err := writeJSONString(buf, child.value); err != nil {
				return err
			}
		} else if err := writeJSONTree(buf, child); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func expectObjectStart(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("JSON contents must be wrapped inside an object")
	}
	return nil
}

// consumeObjectEnd reads past the closing brace of the current object.
func consumeObjectEnd(dec *json.Decoder) error {
	_, err := dec.Token()
	return err
}

// expectEOF verifies nothing trails the root object.
func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected content after JSON object")
	}
	return nil
}

// objectKey reads the next member name of the object being decoded.
func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", errors.New("unexpected end of JSON content")
		}
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("unexpected token %v in JSON object", tok)
	}
	return key, nil
}
