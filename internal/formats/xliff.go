package formats

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// XLIFF 1.2 document shape. One <file> element with a flat body of
// trans-units; the unit id attribute carries the term.
type xliffRoot struct {
	XMLName xml.Name  `xml:"xliff"`
	Version string    `xml:"version,attr"`
	File    xliffFile `xml:"file"`
}

type xliffFile struct {
	Original       string     `xml:"original,attr"`
	Datatype       string     `xml:"datatype,attr"`
	SourceLanguage string     `xml:"source-language,attr,omitempty"`
	TargetLanguage string     `xml:"target-language,attr,omitempty"`
	Body           xliffUnits `xml:"body"`
}

type xliffUnits struct {
	Units []xliffUnit `xml:"trans-unit"`
}

type xliffUnit struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source"`
	Target string `xml:"target"`
}

func decodeXLIFF(data []byte) ([]Translation, error) {
	var root xliffRoot
	if err := xml.Unmarshal(stripBOM(data), &root); err != nil {
		return nil, err
	}
	var translations []Translation
	for i, unit := range root.File.Body.Units {
		if unit.ID == "" {
			return nil, fmt.Errorf("trans-unit %d: missing id attribute", i+1)
		}
		translations = append(translations, Translation{Term: unit.ID, Value: unit.Target})
	}
	return translations, nil
}

func encodeXLIFF(doc Document) ([]byte, error) {
	root := xliffRoot{
		Version: "1.2",
		File: xliffFile{
			Original:       "global",
			Datatype:       "plaintext",
			TargetLanguage: doc.Locale,
		},
	}
	for _, t := range doc.Translations {
		root.File.Body.Units = append(root.File.Body.Units, xliffUnit{
			ID:     t.Term,
			Source: t.Term,
			Target: t.Value,
		})
	}
	return marshalXMLDocument(root)
}

// marshalXMLDocument serializes with the standard XML declaration and
// two-space indentation.
func marshalXMLDocument(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
