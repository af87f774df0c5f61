package index

import (
	"strings"
	"unicode"
)

// SimpleAnalyzer tokenizes on non-alphanumeric boundaries and lower-cases
// every token.
type SimpleAnalyzer struct{}

// Tokenize implements TextAnalyzer.
func (SimpleAnalyzer) Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// NoSynonyms is a SynonymProvider that expands nothing.
type NoSynonyms struct{}

// Synonyms implements SynonymProvider.
func (NoSynonyms) Synonyms(string) []string { return nil }

// StaticSynonyms expands terms from a fixed table. Lookup is case-insensitive.
type StaticSynonyms map[string][]string

// Synonyms implements SynonymProvider.
func (s StaticSynonyms) Synonyms(term string) []string {
	return s[strings.ToLower(term)]
}

// BinaryCollation is a SortKeyProvider that orders strings by their raw
// bytes.
type BinaryCollation struct{}

// CollationKey implements SortKeyProvider.
func (BinaryCollation) CollationKey(s string) string { return s }

// CaseInsensitiveCollation is a SortKeyProvider that folds case before
// comparing.
type CaseInsensitiveCollation struct{}

// CollationKey implements SortKeyProvider.
func (CaseInsensitiveCollation) CollationKey(s string) string {
	return strings.ToLower(s)
}

// WithDefaults fills unset collaborators with the package defaults.
func (s Services) WithDefaults() Services {
	if s.Analyzer == nil {
		s.Analyzer = SimpleAnalyzer{}
	}
	if s.Synonyms == nil {
		s.Synonyms = NoSynonyms{}
	}
	if s.SortKeys == nil {
		s.SortKeys = BinaryCollation{}
	}
	if s.Format == 0 {
		s.Format = FormatV3
	}
	return s
}
