// Package audit flags suspicious entries in a merged catalog.
package audit

import (
	"fmt"
	"unicode/utf8"

	"github.com/MimeLyc/term-catalog-merger/internal/catalog"
	"github.com/abadojack/whatlanggo"
)

type Kind string

const (
	// KindLanguageMismatch: a value reads as the other language.
	KindLanguageMismatch Kind = "language-mismatch"
	// KindConflictingValues: one name carries several distinct value pairs.
	KindConflictingValues Kind = "conflicting-values"
	KindEmptyValue        Kind = "empty-value"
)

const (
	FieldEnglish = "englishValue"
	FieldFrench  = "frenchValue"
)

type Finding struct {
	Kind    Kind
	Name    string
	Field   string
	Message string
}

func (f Finding) String() string {
	if f.Field == "" {
		return fmt.Sprintf("%s: %s: %s", f.Kind, f.Name, f.Message)
	}
	return fmt.Sprintf("%s: %s/%s: %s", f.Kind, f.Name, f.Field, f.Message)
}

type Options struct {
	// MinLength is the shortest value, in runes, whose language is checked.
	// Short labels are too ambiguous to classify.
	MinLength int
	// MinConfidence discards detections below this confidence (0..1).
	MinConfidence float64
	// IgnoreEmpty disables empty value findings.
	IgnoreEmpty bool
}

func DefaultOptions() Options {
	return Options{MinLength: 24}
}

var detectOptions = whatlanggo.Options{
	Whitelist: map[whatlanggo.Lang]bool{
		whatlanggo.Eng: true,
		whatlanggo.Fra: true,
	},
}

// Check returns findings in catalog order.
func Check(terms []catalog.Term, opts Options) []Finding {
	variants := make(map[string]int, len(terms))
	for _, term := range terms {
		variants[term.Name]++
	}

	findings := make([]Finding, 0)
	reported := make(map[string]bool)

	for _, term := range terms {
		if n := variants[term.Name]; n > 1 && !reported[term.Name] {
			reported[term.Name] = true
			findings = append(findings, Finding{
				Kind:    KindConflictingValues,
				Name:    term.Name,
				Message: fmt.Sprintf("%d different translations", n),
			})
		}

		findings = append(findings, checkValue(term.Name, FieldEnglish, term.EnglishValue, whatlanggo.Eng, opts)...)
		findings = append(findings, checkValue(term.Name, FieldFrench, term.FrenchValue, whatlanggo.Fra, opts)...)
	}

	return findings
}

func checkValue(name, field, value string, want whatlanggo.Lang, opts Options) []Finding {
	if value == "" {
		if opts.IgnoreEmpty {
			return nil
		}
		return []Finding{{Kind: KindEmptyValue, Name: name, Field: field, Message: "no value"}}
	}

	if utf8.RuneCountInString(value) < opts.MinLength {
		return nil
	}

	info := whatlanggo.DetectWithOptions(value, detectOptions)
	if info.Lang == want || info.Confidence < opts.MinConfidence {
		return nil
	}

	return []Finding{{
		Kind:    KindLanguageMismatch,
		Name:    name,
		Field:   field,
		Message: fmt.Sprintf("looks like %s", whatlanggo.LangToString(info.Lang)),
	}}
}
