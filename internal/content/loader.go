package content

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// Type is a normalized content type derived from an object key's extension.
type Type string

const (
	TypeText Type = "txt"
	TypeCSV  Type = "csv"
	TypeJSON Type = "json"
	TypeHTML Type = "html"
	TypeXML  Type = "xml"
	TypePDF  Type = "pdf"
)

// Decoder converts raw object bytes into scannable text. It must be total:
// it either produces text or reports false to skip the object, never an
// error.
type Decoder func(raw []byte) (string, bool)

var decoders = map[Type]Decoder{
	TypeText: decodeText,
	TypeCSV:  decodeText,
	TypeJSON: decodeText,
	TypeHTML: decodeText,
	TypeXML:  decodeText,
	// TypePDF is recognized but has no decoder; objects of that type are
	// skipped until one is registered.
}

var recognized = map[Type]bool{
	TypeText: true,
	TypeCSV:  true,
	TypeJSON: true,
	TypeHTML: true,
	TypeXML:  true,
	TypePDF:  true,
}

// Register installs a decoder for a content type, making the type both
// recognized and decodable. Used to plug in e.g. a PDF text extractor.
func Register(typ Type, dec Decoder) {
	recognized[typ] = true
	decoders[typ] = dec
}

// Classify maps an object key to a content type by its extension.
// The second return is false for keys this scanner does not handle at all.
func Classify(key string) (Type, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	if ext == "" {
		return "", false
	}
	typ := Type(ext)
	if !recognized[typ] {
		return "", false
	}
	return typ, true
}

// Load decodes raw bytes for a classified type. The second return is false
// when the type has no decoder or the decoder declines the payload; both
// are skip outcomes for the caller, never failures.
func Load(raw []byte, typ Type) (string, bool) {
	dec, ok := decoders[typ]
	if !ok {
		return "", false
	}
	return dec(raw)
}

// looksTextual sniffs the payload so that a binary object hiding behind a
// textual extension is skipped rather than scanned as mojibake.
func looksTextual(raw []byte) bool {
	mt := mimetype.Detect(raw)
	for cur := mt; cur != nil; cur = cur.Parent() {
		if strings.HasPrefix(cur.String(), "text/") {
			return true
		}
	}
	switch {
	case mt.Is("application/json"), mt.Is("application/xml"), mt.Is("text/xml"):
		return true
	}
	return false
}

// decodeText performs a best-effort UTF-8 decode; invalid sequences are
// replaced rather than failing the load. Payloads that sniff as binary are
// declined.
func decodeText(raw []byte) (string, bool) {
	if len(raw) > 0 && !looksTextual(raw) {
		return "", false
	}
	if utf8.Valid(raw) {
		return string(raw), true
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), true
}
