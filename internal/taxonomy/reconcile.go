package taxonomy

import (
	"strings"

	"github.com/ymgan/obis-qc/internal/record"
	"github.com/ymgan/obis-qc/internal/worms"
)

// lineage holds the higher-rank context fields declared on a record, used to
// cross-validate name matches. Placeholder values ("NA") count as absent.
type lineage struct {
	Phylum string
	Class  string
	Order  string
	Family string
	Genus  string
}

func lineageFromRecord(rec *record.Record) lineage {
	return lineage{
		Phylum: lineageValue(rec.Get("phylum")),
		Class:  lineageValue(rec.Get("class")),
		Order:  lineageValue(rec.Get("order")),
		Family: lineageValue(rec.Get("family")),
		Genus:  lineageValue(rec.Get("genus")),
	}
}

func lineageValue(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "na", "n/a", "none", "null", "unknown":
		return ""
	}
	return strings.TrimSpace(value)
}

func (l lineage) empty() bool {
	return l.Phylum == "" && l.Class == "" && l.Order == "" && l.Family == "" && l.Genus == ""
}

// contradicts reports whether the candidate's classification disagrees with
// any declared rank. Ranks absent on either side are skipped, and values are
// compared on the leading token only, so authorship suffixes in the declared
// context ("Gastropoda Cuvier, 1797") do not cause spurious conflicts.
func (l lineage) contradicts(cand worms.AphiaRecord) bool {
	pairs := [][2]string{
		{l.Phylum, cand.Phylum},
		{l.Class, cand.Class},
		{l.Order, cand.Order},
		{l.Family, cand.Family},
		{l.Genus, cand.Genus},
	}
	for _, pair := range pairs {
		declared, matched := firstToken(pair[0]), firstToken(pair[1])
		if declared == "" || matched == "" {
			continue
		}
		if !strings.EqualFold(declared, matched) {
			return true
		}
	}
	return false
}

func firstToken(value string) string {
	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

func exactCandidates(matches []worms.AphiaRecord) []worms.AphiaRecord {
	var exacts []worms.AphiaRecord
	for _, match := range matches {
		if match.ExactMatch() {
			exacts = append(exacts, match)
		}
	}
	return exacts
}

func fuzzyCandidates(matches []worms.AphiaRecord) []worms.AphiaRecord {
	var fuzzies []worms.AphiaRecord
	for _, match := range matches {
		if !match.ExactMatch() {
			fuzzies = append(fuzzies, match)
		}
	}
	return fuzzies
}

// disambiguate drops candidates whose lineage contradicts the declared
// context. With no declared context every candidate survives.
func disambiguate(matches []worms.AphiaRecord, declared lineage) []worms.AphiaRecord {
	if declared.empty() {
		return matches
	}
	var kept []worms.AphiaRecord
	for _, match := range matches {
		if !declared.contradicts(match) {
			kept = append(kept, match)
		}
	}
	return kept
}
