package taxonomy

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AnnotationKind classifies a raw scientific name string before matching.
type AnnotationKind int

const (
	// AnnotationNone is a clean name suitable for direct matching.
	AnnotationNone AnnotationKind = iota
	// AnnotationPlaceholder is a literal non-name ("NA", "unknown").
	AnnotationPlaceholder
	// AnnotationNonCurrent carries a leading non-current-code marker
	// (e.g. "**non-current code** Antennarius sp.").
	AnnotationNonCurrent
	// AnnotationBracketed embeds collector metadata in square brackets
	// (e.g. "unknown fish [, 1998]").
	AnnotationBracketed
	// AnnotationAuthorship carries a trailing authorship citation
	// (e.g. "Hyalinia crystallina Muller, 1774").
	AnnotationAuthorship
	// AnnotationOpenNomenclature carries an open nomenclature qualifier
	// (e.g. "Antennarius sp.", "Abra cf. alba").
	AnnotationOpenNomenclature
)

// Annotation is the outcome of classifying a raw name string.
type Annotation struct {
	Kind AnnotationKind
	// Stripped is the candidate name with the annotation removed. Empty when
	// nothing taxonomic remains.
	Stripped string
	// OpenNomenclature reports whether a qualifier like "sp." survives in the
	// stripped form, which makes the species-level intent unrecoverable.
	OpenNomenclature bool
}

// NameNormalizer cleans and classifies raw scientific name strings. The
// recognized annotation patterns are a matching heuristic and deliberately
// pluggable, so they can evolve without touching the decision engine.
type NameNormalizer interface {
	// Canonical returns the form of the name submitted to the matching
	// service.
	Canonical(name string) string
	// Classify detects non-taxonomic annotation in the raw string.
	Classify(name string) Annotation
}

var (
	markerPattern     = regexp.MustCompile(`^\s*\*\*[^*]+\*\*\s*`)
	bracketPattern    = regexp.MustCompile(`\s*\[[^\]]*\]\s*`)
	authorshipPattern = regexp.MustCompile(`\s+\(?[A-ZÀ-Þ][^,]*,\s*\d{4}\)?\s*$`)
)

var placeholderNames = map[string]struct{}{
	"na":           {},
	"n/a":          {},
	"none":         {},
	"null":         {},
	"unknown":      {},
	"unidentified": {},
	"indet":        {},
	"indet.":       {},
	"sp":           {},
	"sp.":          {},
	"spp":          {},
	"spp.":         {},
}

var openNomenclatureTokens = map[string]struct{}{
	"sp":     {},
	"sp.":    {},
	"spp":    {},
	"spp.":   {},
	"cf":     {},
	"cf.":    {},
	"aff":    {},
	"aff.":   {},
	"indet":  {},
	"indet.": {},
}

// StandardNormalizer implements the default annotation heuristics observed in
// OBIS data.
type StandardNormalizer struct {
	titler cases.Caser
}

// NewStandardNormalizer builds the default normalizer.
func NewStandardNormalizer() *StandardNormalizer {
	return &StandardNormalizer{titler: cases.Title(language.Und, cases.NoLower)}
}

var _ NameNormalizer = (*StandardNormalizer)(nil)

// Canonical collapses whitespace and capitalizes the genus token, since the
// matching service is case-sensitive on the uninomial.
func (n *StandardNormalizer) Canonical(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return ""
	}
	if tokens[0] == strings.ToLower(tokens[0]) {
		tokens[0] = n.titler.String(tokens[0])
	}
	return strings.Join(tokens, " ")
}

func (n *StandardNormalizer) Classify(name string) Annotation {
	name = strings.TrimSpace(name)
	if name == "" {
		return Annotation{Kind: AnnotationPlaceholder}
	}
	if _, ok := placeholderNames[strings.ToLower(name)]; ok {
		return Annotation{Kind: AnnotationPlaceholder}
	}

	if markerPattern.MatchString(name) {
		stripped := strings.TrimSpace(markerPattern.ReplaceAllString(name, ""))
		return Annotation{
			Kind:             AnnotationNonCurrent,
			Stripped:         stripOpenNomenclature(stripped),
			OpenNomenclature: hasOpenNomenclature(stripped),
		}
	}
	if bracketPattern.MatchString(name) {
		stripped := strings.TrimSpace(bracketPattern.ReplaceAllString(name, " "))
		return Annotation{
			Kind:             AnnotationBracketed,
			Stripped:         stripOpenNomenclature(stripped),
			OpenNomenclature: hasOpenNomenclature(stripped),
		}
	}
	if authorshipPattern.MatchString(name) {
		stripped := strings.TrimSpace(authorshipPattern.ReplaceAllString(name, ""))
		return Annotation{Kind: AnnotationAuthorship, Stripped: stripped}
	}
	if hasOpenNomenclature(name) {
		return Annotation{
			Kind:             AnnotationOpenNomenclature,
			Stripped:         stripOpenNomenclature(name),
			OpenNomenclature: true,
		}
	}
	return Annotation{Kind: AnnotationNone, Stripped: name}
}

func hasOpenNomenclature(name string) bool {
	for _, token := range strings.Fields(name) {
		if _, ok := openNomenclatureTokens[strings.ToLower(token)]; ok {
			return true
		}
	}
	return false
}

// stripOpenNomenclature drops qualifier tokens and everything after the
// first one: "Antennarius sp." becomes "Antennarius", "Abra cf. alba"
// becomes "Abra".
func stripOpenNomenclature(name string) string {
	tokens := strings.Fields(name)
	for i, token := range tokens {
		if _, ok := openNomenclatureTokens[strings.ToLower(token)]; ok {
			return strings.Join(tokens[:i], " ")
		}
	}
	return strings.Join(tokens, " ")
}
