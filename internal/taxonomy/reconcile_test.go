package taxonomy

import (
	"testing"

	"github.com/ymgan/obis-qc/internal/record"
	"github.com/ymgan/obis-qc/internal/worms"
)

func TestLineageFromRecordSkipsPlaceholders(t *testing.T) {
	rec := record.New(map[string]string{
		"phylum": "Mollusca",
		"class":  "NA",
		"order":  "unknown",
		"family": "  ",
		"genus":  "Abra",
	})
	got := lineageFromRecord(rec)
	want := lineage{Phylum: "Mollusca", Genus: "Abra"}
	if got != want {
		t.Fatalf("lineageFromRecord() = %+v, want %+v", got, want)
	}
}

func TestLineageContradicts(t *testing.T) {
	cand := worms.AphiaRecord{
		Phylum: "Mollusca",
		Class:  "Gastropoda",
		Genus:  "Hyalinia",
	}
	tests := []struct {
		name     string
		declared lineage
		want     bool
	}{
		{"empty context", lineage{}, false},
		{"agreeing rank", lineage{Phylum: "Mollusca"}, false},
		{"case-insensitive", lineage{Phylum: "mollusca"}, false},
		{"authorship suffix ignored", lineage{Class: "Gastropoda Cuvier, 1797"}, false},
		{"missing candidate rank skipped", lineage{Order: "Stylommatophora"}, false},
		{"conflicting phylum", lineage{Phylum: "Arthropoda"}, true},
		{"conflicting genus", lineage{Genus: "Abra"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.declared.contradicts(cand); got != tt.want {
				t.Fatalf("contradicts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisambiguate(t *testing.T) {
	matches := []worms.AphiaRecord{
		{AphiaID: 1, Phylum: "Arthropoda"},
		{AphiaID: 2, Phylum: "Chordata"},
	}

	kept := disambiguate(matches, lineage{})
	if len(kept) != 2 {
		t.Fatalf("empty context kept %d candidates, want 2", len(kept))
	}

	kept = disambiguate(matches, lineage{Phylum: "Chordata"})
	if len(kept) != 1 || kept[0].AphiaID != 2 {
		t.Fatalf("disambiguate() = %+v, want only AphiaID 2", kept)
	}

	kept = disambiguate(matches, lineage{Phylum: "Mollusca"})
	if len(kept) != 0 {
		t.Fatalf("contradicting context kept %d candidates, want 0", len(kept))
	}
}

func TestExactAndFuzzyCandidates(t *testing.T) {
	matches := []worms.AphiaRecord{
		{AphiaID: 1, MatchType: worms.MatchExact},
		{AphiaID: 2, MatchType: worms.MatchNearOne},
		{AphiaID: 3, MatchType: worms.MatchExact},
		{AphiaID: 4, MatchType: worms.MatchPhonetic},
	}
	exacts := exactCandidates(matches)
	if len(exacts) != 2 || exacts[0].AphiaID != 1 || exacts[1].AphiaID != 3 {
		t.Fatalf("exactCandidates() = %+v", exacts)
	}
	fuzzies := fuzzyCandidates(matches)
	if len(fuzzies) != 2 || fuzzies[0].AphiaID != 2 || fuzzies[1].AphiaID != 4 {
		t.Fatalf("fuzzyCandidates() = %+v", fuzzies)
	}
}
