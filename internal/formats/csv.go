package formats

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// decodeCSV reads term,translation records. No header row; a record with a
// single field is a term with an empty translation.
func decodeCSV(data []byte) ([]Translation, error) {
	r := csv.NewReader(bytes.NewReader(stripBOM(data)))
	r.FieldsPerRecord = -1

	var translations []Translation
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 || record[0] == "" {
			return nil, fmt.Errorf("record %d: missing term", len(translations)+1)
		}
		value := ""
		if len(record) > 1 {
			value = record[1]
		}
		translations = append(translations, Translation{Term: record[0], Value: value})
	}
	return translations, nil
}

func encodeCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, t := range doc.Translations {
		if err := w.Write([]string{t.Term, t.Value}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stripBOM drops a leading UTF-8 byte order mark, common in files exported
// from Windows tooling.
func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if bytes.HasPrefix(b, bom) {
		return b[len(bom):]
	}
	return b
}
