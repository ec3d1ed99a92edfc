package termmap

import (
	"fmt"

	"github.com/MimeLyc/term-catalog-merger/internal/catalog"
	"golang.org/x/text/language"
)

// Supported dictionary languages.
var (
	English = language.English
	French  = language.French
)

// Dictionary holds the UI terms of every supported language. It is never
// modified after NewDictionary returns, so it can be shared freely.
type Dictionary struct {
	english TermMap
	french  TermMap
}

// NewDictionary indexes terms by name. The first term with a given name wins.
func NewDictionary(terms []catalog.Term) *Dictionary {
	d := &Dictionary{
		english: make(TermMap, len(terms)),
		french:  make(TermMap, len(terms)),
	}
	for _, term := range terms {
		if _, ok := d.english[term.Name]; ok {
			continue
		}
		d.english[term.Name] = term.EnglishValue
		d.french[term.Name] = term.FrenchValue
	}
	return d
}

// Len returns the number of distinct term names.
func (d *Dictionary) Len() int {
	return len(d.english)
}

// Lookup returns the value of key in lang. Languages other than French
// resolve to English.
func (d *Dictionary) Lookup(lang language.Tag, key string) (string, bool) {
	values := d.english
	if normalizeLanguageCode(lang.String()) == "fr" {
		values = d.french
	}
	v, ok := values[key]
	return v, ok
}

// Translate returns the value of key in lang, or a notice naming the
// missing key.
func (d *Dictionary) Translate(lang language.Tag, key string) string {
	if v, ok := d.Lookup(lang, key); ok {
		return v
	}
	return Untranslated(key)
}

// Untranslated is the text shown for a key missing from the dictionary.
func Untranslated(key string) string {
	return fmt.Sprintf("the term: \"%s\" has not been translated yet.\nPlease tell the developer to translate this term", key)
}

// ParseLanguage accepts language codes ("fr", "en-GB") as well as the
// names "english" and "french".
func ParseLanguage(s string) (language.Tag, error) {
	switch s {
	case "english", "English":
		return English, nil
	case "french", "French":
		return French, nil
	}

	switch normalizeLanguageCode(s) {
	case "en":
		return English, nil
	case "fr":
		return French, nil
	}
	return language.Und, fmt.Errorf("unsupported language: %q", s)
}

// normalizeLanguageCode parses a language string and returns its 2-letter base code.
func normalizeLanguageCode(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	return base.String()
}
