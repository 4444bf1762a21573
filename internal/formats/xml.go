package formats

import (
	"encoding/xml"
	"fmt"
)

// Android-style string resources: <resources> wrapping <string name="term">
// elements. The name attribute is mandatory.
type xmlResources struct {
	XMLName xml.Name    `xml:"resources"`
	Strings []xmlString `xml:"string"`
}

type xmlString struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

func decodeXML(data []byte) ([]Translation, error) {
	var res xmlResources
	if err := xml.Unmarshal(stripBOM(data), &res); err != nil {
		return nil, err
	}
	var translations []Translation
	for i, s := range res.Strings {
		if s.Name == "" {
			return nil, fmt.Errorf("string element %d: missing name attribute", i+1)
		}
		translations = append(translations, Translation{Term: s.Name, Value: s.Value})
	}
	return translations, nil
}

func encodeXML(doc Document) ([]byte, error) {
	res := xmlResources{}
	for _, t := range doc.Translations {
		res.Strings = append(res.Strings, xmlString{Name: t.Term, Value: t.Value})
	}
	return marshalXMLDocument(res)
}
