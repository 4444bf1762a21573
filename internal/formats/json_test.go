package formats

import (
	"strings"
	"testing"
)

func TestDecodeJSONNestedDepthLimit(t *testing.T) {
	// Six path segments means five nested objects below the root: allowed.
	six := []byte(`{"a":{"b":{"c":{"d":{"e":{"f":"ok"}}}}}}`)
	doc, err := Decode(JSONNested, six)
	if err != nil {
		t.Fatalf("six levels: %v", err)
	}
	if len(doc.Translations) != 1 || doc.Translations[0].Term != "a.b.c.d.e.f" {
		t.Fatalf("got %+v", doc.Translations)
	}

	seven := []byte(`{"a":{"b":{"c":{"d":{"e":{"f":{"g":"no"}}}}}}}`)
	if _, err := Decode(JSONNested, seven); err == nil {
		t.Fatal("seven levels: expected error")
	} else if !strings.Contains(err.Error(), "too many nested levels") {
		t.Fatalf("seven levels: got %v", err)
	}
}

func TestDecodeJSONNestedErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array root", `["a","b"]`},
		{"scalar root", `"hello"`},
		{"numeric value", `{"a": 5}`},
		{"array value", `{"a": ["x"]}`},
		{"boolean value", `{"a": true}`},
		{"null value", `{"a": null}`},
		{"mixed scalar and object", `{"a": "x", "a": {"b": "y"}}`},
		{"mixed object then scalar", `{"a": {"b": "y"}, "a": "x"}`},
		{"truncated", `{"a": {"b":`},
		{"trailing content", `{"a": "x"} {"b": "y"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(JSONNested, []byte(tt.input)); err == nil {
				t.Fatalf("expected error for %s", tt.input)
			}
		})
	}
}

func TestDecodeJSONNestedNeverPartial(t *testing.T) {
	doc, err := Decode(JSONNested, []byte(`{"a": "ok", "b": {"c": 5}}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(doc.Translations) != 0 {
		t.Fatalf("malformed input yielded partial document: %+v", doc.Translations)
	}
}

func TestDecodeJSONFlat(t *testing.T) {
	doc, err := Decode(JSONFlat, []byte(`{"b.key": "two", "a.key": "one", "empty": ""}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []Translation{
		{Term: "b.key", Value: "two"},
		{Term: "a.key", Value: "one"},
		{Term: "empty", Value: ""},
	}
	if len(doc.Translations) != len(want) {
		t.Fatalf("got %d translations, want %d", len(doc.Translations), len(want))
	}
	for i := range want {
		if doc.Translations[i] != want[i] {
			t.Errorf("position %d: got %+v, want %+v", i, doc.Translations[i], want[i])
		}
	}
}

func TestDecodeJSONFlatRejectsNested(t *testing.T) {
	if _, err := Decode(JSONFlat, []byte(`{"a": {"b": "x"}}`)); err == nil {
		t.Fatal("expected error for nested value")
	}
	if _, err := Decode(JSONFlat, []byte(`{"a": 3}`)); err == nil {
		t.Fatal("expected error for numeric value")
	}
}

func TestEncodeJSONNestedLaterWriteWins(t *testing.T) {
	// Encoding never fails; a term that is both a leaf and a prefix of a
	// later term is overwritten by the later write.
	doc := Document{Translations: []Translation{
		{Term: "a", Value: "scalar"},
		{Term: "a.b", Value: "nested"},
	}}
	out, err := Encode(JSONNested, doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := string(out); got != `{"a":{"b":"nested"}}` {
		t.Fatalf("got %s", got)
	}
}

func TestEncodeJSONFlatKeepsDocumentOrder(t *testing.T) {
	doc := Document{Translations: []Translation{
		{Term: "z", Value: "1"},
		{Term: "a", Value: "2"},
	}}
	out, err := Encode(JSONFlat, doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := string(out); got != `{"z":"1","a":"2"}` {
		t.Fatalf("got %s", got)
	}
}
