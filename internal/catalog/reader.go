package catalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultReader is the etree based catalog reader.
type DefaultReader struct{}

// NewReader creates a new catalog reader
func NewReader() Reader {
	return &DefaultReader{}
}

// Read parses a catalog document and returns its well-formed terms in document order.
func (r *DefaultReader) Read(reader io.Reader) ([]Term, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if err := checkWellFormed(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// etree tolerates documents without (or with several) root elements
	roots := 0
	for _, c := range doc.Child {
		if _, ok := c.(*etree.Element); ok {
			roots++
		}
	}
	switch {
	case roots == 0:
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	case roots > 1:
		return nil, fmt.Errorf("%w: %d root elements", ErrMalformed, roots)
	}

	terms := make([]Term, 0)
	collectTerms(doc.Root(), &terms)
	return terms, nil
}

// Parse reads terms from an in-memory document.
func Parse(data []byte) ([]Term, error) {
	return NewReader().Read(bytes.NewReader(data))
}

// ReadFile opens path, reads every term and closes the file.
func ReadFile(path string) ([]Term, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	return NewReader().Read(file)
}

// checkWellFormed rejects what etree lets through: text outside the root
// element and repeated attributes.
func checkWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charsetReader

	depth := 0
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			seen := make(map[xml.Name]struct{}, len(t.Attr))
			for _, attr := range t.Attr {
				if _, ok := seen[attr.Name]; ok {
					return fmt.Errorf("line %d: duplicate attribute %q on <%s>",
						lineOf(decoder), attr.Name.Local, t.Name.Local)
				}
				seen[attr.Name] = struct{}{}
			}
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.Trim(t, " \t\r\n")) > 0 {
				return fmt.Errorf("line %d: text outside the root element", lineOf(decoder))
			}
		}
	}
}

func lineOf(decoder *xml.Decoder) int {
	line, _ := decoder.InputPos()
	return line
}

// charsetReader decodes non UTF-8 documents. Declarations such as
// "utf - 8" are accepted as UTF-8.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	normalized := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(charset))
	if normalized == "utf8" {
		return input, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// collectTerms walks the tree in document order and appends every complete
// <term> element. Nested <term> elements are visited too.
func collectTerms(element *etree.Element, terms *[]Term) {
	if element.Space == "" && element.Tag == TermElement {
		if term, ok := readTerm(element); ok {
			*terms = append(*terms, term)
		}
	}

	for _, c := range element.ChildElements() {
		collectTerms(c, terms)
	}
}

// readTerm requires the three value children; anything less is skipped.
func readTerm(element *etree.Element) (Term, bool) {
	if len(element.ChildElements()) == 0 {
		return Term{}, false
	}

	name := childElement(element, NameElement)
	if name == nil {
		return Term{}, false
	}
	english := childElement(element, EnglishValueElement)
	if english == nil {
		return Term{}, false
	}
	french := childElement(element, FrenchValueElement)
	if french == nil {
		return Term{}, false
	}

	return Term{
		Name:         innerText(name),
		EnglishValue: innerText(english),
		FrenchValue:  innerText(french),
	}, true
}

// childElement returns the first direct, unprefixed child called tag.
func childElement(element *etree.Element, tag string) *etree.Element {
	for _, c := range element.ChildElements() {
		if c.Space == "" && c.Tag == tag {
			return c
		}
	}
	return nil
}

// innerText concatenates the character data of every descendant.
func innerText(element *etree.Element) string {
	var sb strings.Builder
	innerTextRecursive(element, &sb)
	return sb.String()
}

func innerTextRecursive(element *etree.Element, sb *strings.Builder) {
	for _, c := range element.Child {
		switch t := c.(type) {
		case *etree.Element:
			innerTextRecursive(t, sb)
		case *etree.CharData:
			sb.WriteString(t.Data)
		}
	}
}
