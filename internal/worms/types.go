package worms

import (
	"bytes"
	"fmt"
)

// Taxonomic status values used by the WoRMS backbone. The engine only needs
// to distinguish accepted, the statuses that chain to a valid taxon, and the
// terminal non-accepted statuses; anything unrecognized is treated as
// terminal non-accepted.
const (
	StatusAccepted          = "accepted"
	StatusUnaccepted        = "unaccepted"
	StatusSynonym           = "synonym"
	StatusAlternateRep      = "alternative representation"
	StatusNomenDubium       = "nomen dubium"
	StatusNomenNudum        = "nomen nudum"
	StatusTaxonInquirendum  = "taxon inquirendum"
	StatusUncertain         = "uncertain"
	StatusInterimUnpublish  = "interim unpublished"
	StatusInterimQuarantine = "quarantined"
	StatusInterimDeleted    = "deleted"
)

// Match quality reported by the AphiaRecordsByMatchNames endpoint.
const (
	MatchExact    = "exact"
	MatchNearOne  = "near_1"
	MatchNearTwo  = "near_2"
	MatchLike     = "like"
	MatchPhonetic = "phonetic"
)

// TriState models the WoRMS habitat columns, which come over the wire as
// 1, 0, or null.
type TriState int

const (
	TriUnknown TriState = iota
	TriFalse
	TriTrue
)

func (t TriState) True() bool    { return t == TriTrue }
func (t TriState) False() bool   { return t == TriFalse }
func (t TriState) Unknown() bool { return t == TriUnknown }

func (t *TriState) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "null":
		*t = TriUnknown
	case "0", "false", `"0"`, `"false"`:
		*t = TriFalse
	case "1", "true", `"1"`, `"true"`:
		*t = TriTrue
	default:
		return fmt.Errorf("tri-state: unexpected value %s", data)
	}
	return nil
}

func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case TriFalse:
		return []byte("0"), nil
	case TriTrue:
		return []byte("1"), nil
	default:
		return []byte("null"), nil
	}
}

// AphiaRecord is a single taxon candidate returned by WoRMS. Candidates are
// read-only snapshots; the engine never mutates them.
type AphiaRecord struct {
	AphiaID        int64    `json:"AphiaID"`
	ScientificName string   `json:"scientificname"`
	Authority      string   `json:"authority"`
	Rank           string   `json:"rank"`
	Status         string   `json:"status"`
	UnacceptReason string   `json:"unacceptreason"`
	ValidAphiaID   int64    `json:"valid_AphiaID"`
	ValidName      string   `json:"valid_name"`
	Kingdom        string   `json:"kingdom"`
	Phylum         string   `json:"phylum"`
	Class          string   `json:"class"`
	Order          string   `json:"order"`
	Family         string   `json:"family"`
	Genus          string   `json:"genus"`
	IsMarine       TriState `json:"isMarine"`
	IsBrackish     TriState `json:"isBrackish"`
	MatchType      string   `json:"match_type"`
}

// ExactMatch reports whether the candidate came back with exact match
// quality from the name-matching endpoint.
func (r AphiaRecord) ExactMatch() bool {
	return r.MatchType == MatchExact
}
