package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ymgan/obis-qc/internal/record"
	"github.com/ymgan/obis-qc/internal/taxonomy"
)

// checkResult is the per-record report emitted by the check command.
type checkResult struct {
	Row              int      `json:"row"`
	ScientificName   string   `json:"scientificName,omitempty"`
	ScientificNameID string   `json:"scientificNameID,omitempty"`
	Aphia            *int64   `json:"aphia,omitempty"`
	Unaccepted       *int64   `json:"unaccepted,omitempty"`
	Flags            []string `json:"flags"`
	Dropped          bool     `json:"dropped"`
	InvalidFields    []string `json:"invalidFields,omitempty"`
}

func buildResults(records []*record.Record, flaggedOnly bool) []checkResult {
	var results []checkResult
	for i, rec := range records {
		if flaggedOnly && rec.FlagCount() == 0 && !rec.Dropped() {
			continue
		}
		result := checkResult{
			Row:              i + 1,
			ScientificName:   rec.Get(taxonomy.FieldScientificName),
			ScientificNameID: rec.Get(taxonomy.FieldScientificNameID),
			Dropped:          rec.Dropped(),
			Flags:            []string{},
		}
		for _, flag := range rec.Flags() {
			result.Flags = append(result.Flags, flag.String())
		}
		if aphia, ok := rec.InterpretedInt64(taxonomy.KeyAphia); ok {
			result.Aphia = &aphia
		}
		if unaccepted, ok := rec.InterpretedInt64(taxonomy.KeyUnaccepted); ok {
			result.Unaccepted = &unaccepted
		}
		for _, field := range rec.InvalidFields() {
			result.InvalidFields = append(result.InvalidFields, field.Name)
		}
		results = append(results, result)
	}
	return results
}

func writeResultsJSON(out io.Writer, results []checkResult) error {
	encoder := json.NewEncoder(out)
	for _, result := range results {
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	return nil
}

func joinFlags(flags []string) string {
	out := ""
	for i, flag := range flags {
		if i > 0 {
			out += ", "
		}
		out += flag
	}
	return out
}
