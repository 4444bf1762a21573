package formats

// Translation is one term/value pair of a locale document.
// Value may be empty; Term is an opaque key in which hierarchical formats
// encode nesting as dot-joined path segments.
type Translation struct {
	Term  string
	Value string
}

// Document is the pivot representation every codec targets: a locale code
// and an ordered sequence of translations. The order is caller-assigned and
// codecs must not reorder it.
type Document struct {
	Locale       string
	Translations []Translation
}
