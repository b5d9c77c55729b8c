package domain

import (
	"regexp"
	"strings"
)

// Family groups identifiers by the kind of regulatory record they name.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyTraditional
	FamilyDeNovo
	FamilyPMA
)

// IdentifierPattern matches any submission identifier embedded in free text.
var IdentifierPattern = regexp.MustCompile(`(P|DEN|K)[0-9]{6}`)

func (f Family) String() string {
	switch f {
	case FamilyTraditional:
		return "510k"
	case FamilyDeNovo:
		return "de_novo"
	case FamilyPMA:
		return "pma"
	default:
		return "unknown"
	}
}

// Classify derives the family of an identifier from its prefix.
func Classify(id string) Family {
	switch {
	case strings.HasPrefix(id, "DEN"):
		return FamilyDeNovo
	case strings.HasPrefix(id, "K"):
		return FamilyTraditional
	case strings.HasPrefix(id, "P"):
		return FamilyPMA
	default:
		return FamilyUnknown
	}
}

// CanHavePredicate reports whether the identifier may cite a predicate device.
// Only traditional 510(k) submissions do; the other families end a chain.
func CanHavePredicate(id string) bool {
	return Classify(id) == FamilyTraditional
}

// NormalizeID trims whitespace and upper-cases user supplied identifiers and product codes.
func NormalizeID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
