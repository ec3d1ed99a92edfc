package catalog

import (
	"errors"
	"io"
)

// Element names of a catalog document.
const (
	RootElement         = "terms"
	TermElement         = "term"
	NameElement         = "name"
	EnglishValueElement = "englishValue"
	FrenchValueElement  = "frenchValue"
)

// Extension is the file extension of catalog documents.
const Extension = ".xml"

// ErrMalformed is returned when a document is not well-formed XML.
var ErrMalformed = errors.New("malformed catalog document")

// Term is a single localized entry. The full triple is its identity.
type Term struct {
	Name         string
	EnglishValue string
	FrenchValue  string
}

// Reader extracts terms from a catalog document.
type Reader interface {
	Read(r io.Reader) ([]Term, error)
}

// Writer serializes terms as a catalog document.
type Writer interface {
	Write(w io.Writer, terms []Term) error
}
