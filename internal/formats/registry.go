package formats

import (
	"errors"
	"fmt"
	"sort"
)

// Format identifies one interchange file format. The identifiers are
// wire-visible and fixed; see the codec table below for the full set.
type Format string

const (
	CSV        Format = "csv"
	XLIFF12    Format = "xliff12"
	JSONFlat   Format = "jsonflat"
	JSONNested Format = "jsonnested"
	YAMLFlat   Format = "yamlflat"
	YAMLNested Format = "yamlnested"
	Properties Format = "properties"
	Gettext    Format = "po"
	Strings    Format = "strings"
	XML        Format = "xml"
)

// ErrNotImplemented is returned for format identifiers outside the codec table.
var ErrNotImplemented = errors.New("format not implemented")

// ParseError reports a malformed input document.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Format, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// EncodeError reports a failure to serialize a document. It should not occur
// on well-formed pivot data; callers may treat it as a defect.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode %s: %v", e.Format, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

type codec struct {
	decode func(data []byte) ([]Translation, error)
	encode func(doc Document) ([]byte, error)
}

// codecs is the fixed dispatch table. Adding a format means adding exactly
// one entry here.
var codecs = map[Format]codec{
	CSV:        {decodeCSV, encodeCSV},
	XLIFF12:    {decodeXLIFF, encodeXLIFF},
	JSONFlat:   {decodeJSONFlat, encodeJSONFlat},
	JSONNested: {decodeJSONNested, encodeJSONNested},
	YAMLFlat:   {decodeYAMLFlat, encodeYAMLFlat},
	YAMLNested: {decodeYAMLNested, encodeYAMLNested},
	Properties: {decodeProperties, encodeProperties},
	Gettext:    {decodePO, encodePO},
	Strings:    {decodeStrings, encodeStrings},
	XML:        {decodeXML, encodeXML},
}

// ParseFormat validates a wire identifier against the codec table.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if _, ok := codecs[f]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrNotImplemented)
	}
	return f, nil
}

// All returns the supported format identifiers in lexical order.
func All() []Format {
	fs := make([]Format, 0, len(codecs))
	for f := range codecs {
		fs = append(fs, f)
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i] < fs[j] })
	return fs
}

// Decode converts raw bytes in the given format into a pivot document.
// The document locale is left empty; callers assign it from the request.
func Decode(f Format, data []byte) (Document, error) {
	c, ok := codecs[f]
	if !ok {
		return Document{}, fmt.Errorf("%q: %w", f, ErrNotImplemented)
	}
	translations, err := c.decode(data)
	if err != nil {
		return Document{}, &ParseError{Format: f, Err: err}
	}
	return Document{Translations: translations}, nil
}

// Encode serializes a pivot document into the given format.
func Encode(f Format, doc Document) ([]byte, error) {
	c, ok := codecs[f]
	if !ok {
		return nil, fmt.Errorf("%q: %w", f, ErrNotImplemented)
	}
	out, err := c.encode(doc)
	if err != nil {
		return nil, &EncodeError{Format: f, Err: err}
	}
	return out, nil
}
