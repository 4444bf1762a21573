package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// decodeStrings reads Apple .strings entries: `"key" = "value";` per line.
// Blank lines, // comments and /* */ comment blocks are skipped.
func decodeStrings(data []byte) ([]Translation, error) {
	var translations []Translation
	scanner := bufio.NewScanner(bytes.NewReader(stripBOM(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	inComment := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if inComment {
			if idx := strings.Index(line, "*/"); idx >= 0 {
				line = strings.TrimSpace(line[idx+2:])
				inComment = false
			} else {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "/*") {
			if idx := strings.Index(line, "*/"); idx >= 0 {
				line = strings.TrimSpace(line[idx+2:])
				if line == "" {
					continue
				}
			} else {
				inComment = true
				continue
			}
		}
		term, value, err := parseStringsEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		translations = append(translations, Translation{Term: term, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return translations, nil
}

func encodeStrings(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	for _, t := range doc.Translations {
		fmt.Fprintf(&buf, "%s = %s;\n", quoteStrings(t.Term), quoteStrings(t.Value))
	}
	return buf.Bytes(), nil
}

// parseStringsEntry parses one `"key" = "value";` entry.
func parseStringsEntry(line string) (string, string, error) {
	key, rest, err := readQuoted(line)
	if err != nil {
		return "", "", err
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "=") {
		return "", "", fmt.Errorf("expected '=' after key %q", key)
	}
	value, rest, err := readQuoted(strings.TrimSpace(rest[1:]))
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(rest) != ";" {
		return "", "", fmt.Errorf("entry for %q must end with ';'", key)
	}
	return key, value, nil
}

// readQuoted consumes a leading double-quoted string and returns its
// unescaped contents plus the remainder of the line.
func readQuoted(s string) (string, string, error) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", fmt.Errorf("expected quoted string at %q", s)
	}
	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(c)
			}
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("unterminated quoted string at %q", s)
}

func quoteStrings(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
