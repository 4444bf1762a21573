package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// decodePO reads a gettext PO catalog. Only singular msgid/msgstr entries
// are supported; the header entry (empty msgid) is skipped.
func decodePO(data []byte) ([]Translation, error) {
	var translations []Translation
	scanner := bufio.NewScanner(bytes.NewReader(stripBOM(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		msgid    string
		haveID   bool
		msgstr   string
		haveStr  bool
		appendTo *string
	)
	lineNo := 0

	flush := func() {
		if haveID && msgid != "" {
			translations = append(translations, Translation{Term: msgid, Value: msgstr})
		}
		msgid, msgstr = "", ""
		haveID, haveStr = false, false
		appendTo = nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			if haveStr {
				flush()
			}
		case strings.HasPrefix(line, "msgid "):
			if haveStr {
				flush()
			}
			if haveID {
				return nil, fmt.Errorf("line %d: msgid without msgstr", lineNo)
			}
			s, err := unquotePO(strings.TrimPrefix(line, "msgid "))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			msgid, haveID = s, true
			appendTo = &msgid
		case strings.HasPrefix(line, "msgstr "):
			if !haveID {
				return nil, fmt.Errorf("line %d: msgstr without msgid", lineNo)
			}
			s, err := unquotePO(strings.TrimPrefix(line, "msgstr "))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			msgstr, haveStr = s, true
			appendTo = &msgstr
		case strings.HasPrefix(line, `"`):
			if appendTo == nil {
				return nil, fmt.Errorf("line %d: continuation outside an entry", lineNo)
			}
			s, err := unquotePO(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			*appendTo += s
		default:
			return nil, fmt.Errorf("line %d: unsupported PO directive %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if haveID && !haveStr {
		return nil, fmt.Errorf("line %d: msgid without msgstr", lineNo)
	}
	flush()
	return translations, nil
}

func encodePO(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("msgid \"\"\nmsgstr \"\"\n")
	buf.WriteString(`"Content-Type: text/plain; charset=utf-8\n"` + "\n")
	if doc.Locale != "" {
		fmt.Fprintf(&buf, "\"Language: %s\\n\"\n", doc.Locale)
	}
	for _, t := range doc.Translations {
		buf.WriteByte('\n')
		fmt.Fprintf(&buf, "msgid %s\n", quotePO(t.Term))
		fmt.Fprintf(&buf, "msgstr %s\n", quotePO(t.Value))
	}
	return buf.Bytes(), nil
}

func unquotePO(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return "", fmt.Errorf("malformed PO string %q", s)
	}
	out, err := strconv.Unquote(s)
	if err != nil {
		return "", fmt.Errorf("malformed PO string %q", s)
	}
	return out, nil
}

func quotePO(s string) string {
	return strconv.Quote(s)
}
