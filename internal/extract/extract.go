package extract

import (
	"regexp"
	"sort"
)

// Kind identifies a category of sensitive data
type Kind string

const (
	// KindEmail matches email-like tokens
	KindEmail Kind = "email"
)

// Match is a single raw hit produced by an extractor, before it is bound
// to the object it was found in.
type Match struct {
	Kind   Kind
	Value  string
	Offset int
}

// Finding is a match bound to its source object. Field names follow the
// persisted result format and must not change.
type Finding struct {
	Kind   Kind   `json:"pii_type"`
	Value  string `json:"email"`
	Bucket string `json:"bucket_name"`
	Key    string `json:"file"`
	Offset int    `json:"position_in_file"`
}

// Func is a pure extractor: decoded text in, matches out. It must never
// fail; malformed text yields no matches.
type Func func(text string) []Match

var registry = map[Kind]Func{}

// Register adds an extractor for a kind. Registering the same kind twice
// replaces the previous function.
func Register(kind Kind, fn Func) {
	registry[kind] = fn
}

// Kinds returns the registered kinds in deterministic order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Extract runs every registered extractor over text and returns all matches
// ordered by offset (ties broken by kind for stability).
func Extract(text string) []Match {
	var matches []Match
	for _, kind := range Kinds() {
		matches = append(matches, registry[kind](text)...)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Offset != matches[j].Offset {
			return matches[i].Offset < matches[j].Offset
		}
		return matches[i].Kind < matches[j].Kind
	})
	return matches
}

// Bind converts matches into findings attributed to bucket/key.
func Bind(matches []Match, bucket, key string) []Finding {
	findings := make([]Finding, 0, len(matches))
	for _, m := range matches {
		findings = append(findings, Finding{
			Kind:   m.Kind,
			Value:  m.Value,
			Bucket: bucket,
			Key:    key,
			Offset: m.Offset,
		})
	}
	return findings
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)

func extractEmails(text string) []Match {
	locs := emailPattern.FindAllStringIndex(text, -1)
	if locs == nil {
		return nil
	}
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{
			Kind:   KindEmail,
			Value:  text[loc[0]:loc[1]],
			Offset: loc[0],
		})
	}
	return matches
}

func init() {
	Register(KindEmail, extractEmails)
}
