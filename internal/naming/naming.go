package naming

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultPublisher is used when the catalog does not name a publisher.
const DefaultPublisher = "Others"

const (
	friendlySeparator      = " - "
	compatibilitySeparator = "_"
	emptyPart              = "_"
)

var (
	illegalCharacters  = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedSeparators = regexp.MustCompile(`( - )+`)
	whitespaceRuns     = regexp.MustCompile(`[\s\p{Z}]+`)
	nonStandard        = regexp.MustCompile(`[^a-zA-Z0-9.\s\p{Z}]`)
)

// Mode is a naming strategy applied to every path component.
type Mode interface {
	// Name returns the mode's short name for logs.
	Name() string
	// NormalizePart normalizes a single path component.
	NormalizePart(part string) string
}

type friendly struct{}

type compatibility struct{}

var (
	// Friendly keeps names readable: HTML entities are decoded, characters
	// illegal on Windows become " - " and whitespace is collapsed.
	Friendly Mode = friendly{}

	// Compatibility replaces every character outside [a-zA-Z0-9.] and
	// whitespace with "_" on the raw, still HTML-escaped, name. That is how
	// "&#039;" turns into "__039_".
	Compatibility Mode = compatibility{}
)

// ModeFor returns the strategy for the given compatibility flag.
func ModeFor(compatibilityMode bool) Mode {
	if compatibilityMode {
		return Compatibility
	}
	return Friendly
}

func (friendly) Name() string { return "friendly" }

func (friendly) NormalizePart(part string) string {
	part = html.UnescapeString(part)
	part = illegalCharacters.ReplaceAllString(part, friendlySeparator)
	part = strings.Trim(part, " -")
	part = repeatedSeparators.ReplaceAllString(part, friendlySeparator)
	part = whitespaceRuns.ReplaceAllString(part, " ")
	return guard(part)
}

func (compatibility) Name() string { return "compatibility" }

func (compatibility) NormalizePart(part string) string {
	part = nonStandard.ReplaceAllString(part, compatibilitySeparator)
	part = whitespaceRuns.ReplaceAllString(part, " ")
	return guard(part)
}

// guard keeps a component from vanishing or escaping its parent directory.
func guard(part string) string {
	switch part {
	case "", ".", "..":
		return emptyPart
	}
	return part
}

// Normalize returns the relative directory for a product:
// "<publisher>/<product>".
func Normalize(publisher, product string, mode Mode) string {
	return filepath.Join(publisherPart(publisher, mode), mode.NormalizePart(product))
}

// ItemPath returns the relative path of a file inside the library. With
// omitPublisher the publisher level is dropped.
func ItemPath(mode Mode, publisher, product, file string, omitPublisher bool) string {
	productPart := mode.NormalizePart(product)
	filePart := mode.NormalizePart(file)
	if omitPublisher {
		return filepath.Join(productPart, filePart)
	}
	return filepath.Join(publisherPart(publisher, mode), productPart, filePart)
}

func publisherPart(publisher string, mode Mode) string {
	if strings.TrimSpace(publisher) == "" {
		publisher = DefaultPublisher
	}
	return mode.NormalizePart(publisher)
}
