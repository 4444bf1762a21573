package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// decodeProperties reads Java-style key=value lines. Blank lines and lines
// starting with '#' or '!' are comments.
func decodeProperties(data []byte) ([]Translation, error) {
	var translations []Translation
	scanner := bufio.NewScanner(bytes.NewReader(stripBOM(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		sep := propertiesSeparator(trimmed)
		if sep < 0 {
			return nil, fmt.Errorf("line %d: missing '=' separator", lineNo)
		}
		key := strings.TrimSpace(trimmed[:sep])
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNo)
		}
		value := strings.TrimLeft(trimmed[sep+1:], " \t")
		translations = append(translations, Translation{
			Term:  unescapeProperties(key),
			Value: unescapeProperties(value),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return translations, nil
}

func encodeProperties(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	for _, t := range doc.Translations {
		buf.WriteString(escapePropertiesKey(t.Term))
		buf.WriteByte('=')
		buf.WriteString(escapePropertiesValue(t.Value))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// propertiesSeparator finds the first unescaped '=' or ':'.
func propertiesSeparator(line string) int {
	escaped := false
	for i, r := range line {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '=', ':':
			return i
		}
	}
	return -1
}

func unescapeProperties(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		escaped = false
		switch r {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapePropertiesKey(s string) string {
	return escapeProperties(s, " =:")
}

// escapePropertiesValue escapes control characters and protects a leading
// space, which decoders would otherwise trim.
func escapePropertiesValue(s string) string {
	out := escapeProperties(s, "")
	if strings.HasPrefix(out, " ") {
		out = `\` + out
	}
	return out
}

func escapeProperties(s, extra string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case strings.ContainsRune(extra, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
