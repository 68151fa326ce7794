package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ymgan/obis-qc/internal/taxocache"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRecords(t *testing.T) {
	path := writeFile(t, "records.jsonl", `
{"scientificName": "Abra alba", "phylum": "Mollusca"}

{"scientificNameID": "urn:lsid:marinespecies.org:taxname:141433", "individualCount": 3}
{"scientificName": null, "decimalLatitude": 51.5}
`)
	records, err := loadRecords(path)
	if err != nil {
		t.Fatalf("loadRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if got := records[0].Get("scientificName"); got != "Abra alba" {
		t.Errorf("record 0 scientificName = %q", got)
	}
	if got := records[1].Get("individualCount"); got != "3" {
		t.Errorf("numeric value = %q, want 3", got)
	}
	if got := records[2].Get("scientificName"); got != "" {
		t.Errorf("null value surfaced as %q", got)
	}
	if got := records[2].Get("decimalLatitude"); got != "51.5" {
		t.Errorf("latitude = %q", got)
	}
}

func TestLoadRecordsRejectsMalformedLine(t *testing.T) {
	path := writeFile(t, "records.jsonl", "{\"scientificName\": \"Abra alba\"}\nnot json\n")
	if _, err := loadRecords(path); err == nil {
		t.Fatal("loadRecords() accepted malformed input")
	}
}

// wormsTestServer serves just enough of the REST surface for the check
// command to resolve the fixture records.
func wormsTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/AphiaRecordByAphiaID/141433", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AphiaID": 141433, "scientificname": "Abra alba", "status": "accepted", "isMarine": 1, "isBrackish": 1}`))
	})
	mux.HandleFunc("/AphiaRecordsByMatchNames", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("scientificnames[]") {
		case "Orca gladiator":
			w.Write([]byte(`[[{"AphiaID": 384046, "scientificname": "Orca gladiator", "status": "unaccepted", "valid_AphiaID": 137102, "isMarine": 1, "match_type": "exact"}]]`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/AphiaRecordByAphiaID/137102", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AphiaID": 137102, "scientificname": "Orcinus orca", "status": "accepted", "isMarine": 1}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestCheckCommandEndToEnd(t *testing.T) {
	server := wormsTestServer(t)
	configPath := writeFile(t, "config.toml", fmt.Sprintf(`
[worms]
base_url = %q
timeout_seconds = 5
retry_max_attempts = 1

[cache]
enabled = false
`, server.URL))
	recordsPath := writeFile(t, "records.jsonl", `
{"scientificName": "Orca gladiator"}
{"scientificNameID": "urn:lsid:marinespecies.org:taxname:141433"}
{"scientificName": "Bivalve"}
`)

	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--config", configPath, "check", recordsPath, "--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v (stderr: %s)", err, errOut.String())
	}

	var results []checkResult
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var result checkResult
		if err := json.Unmarshal(scanner.Bytes(), &result); err != nil {
			t.Fatalf("output line is not json: %v (%s)", err, scanner.Text())
		}
		results = append(results, result)
	}
	if len(results) != 3 {
		t.Fatalf("got %d result lines, want 3", len(results))
	}

	if results[0].Aphia == nil || *results[0].Aphia != 137102 {
		t.Errorf("synonym result = %+v, want aphia 137102", results[0])
	}
	if results[0].Unaccepted == nil || *results[0].Unaccepted != 384046 {
		t.Errorf("synonym result = %+v, want unaccepted 384046", results[0])
	}
	if results[1].Aphia == nil || *results[1].Aphia != 141433 {
		t.Errorf("identifier result = %+v, want aphia 141433", results[1])
	}
	if !results[2].Dropped || len(results[2].Flags) == 0 || results[2].Flags[0] != "NO_MATCH" {
		t.Errorf("unmatched result = %+v, want dropped NO_MATCH", results[2])
	}
}

func TestCheckCommandFlaggedOnly(t *testing.T) {
	server := wormsTestServer(t)
	configPath := writeFile(t, "config.toml", fmt.Sprintf(`
[worms]
base_url = %q
retry_max_attempts = 1

[cache]
enabled = false
`, server.URL))
	recordsPath := writeFile(t, "records.jsonl", `
{"scientificNameID": "urn:lsid:marinespecies.org:taxname:141433"}
{"scientificName": "Bivalve"}
`)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", configPath, "check", recordsPath, "--json", "--flagged-only"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	lines := strings.Count(strings.TrimSpace(out.String()), "\n") + 1
	if lines != 1 {
		t.Fatalf("got %d result lines, want only the flagged record:\n%s", lines, out.String())
	}
}

func TestBuildResultsEmpty(t *testing.T) {
	if results := buildResults(nil, false); len(results) != 0 {
		t.Fatalf("buildResults(nil) = %v", results)
	}
}

func TestResultTable(t *testing.T) {
	aphia := int64(137102)
	rendered := resultTable([]checkResult{
		{Row: 1, ScientificName: "Orca gladiator", Aphia: &aphia, Flags: []string{"NO_MATCH"}, Dropped: true},
		{Row: 2, ScientificName: "Abra alba"},
	})
	for _, want := range []string{"Orca gladiator", "137102", "NO_MATCH", "yes", "Abra alba"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("table missing %q:\n%s", want, rendered)
		}
	}
}

func TestStatsTable(t *testing.T) {
	rendered := statsTable(taxocache.Stats{Records: 12, Names: 7})
	for _, want := range []string{"aphia records", "12", "name matches", "7"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("table missing %q:\n%s", want, rendered)
		}
	}
}

func TestJoinFlags(t *testing.T) {
	if got := joinFlags(nil); got != "" {
		t.Errorf("joinFlags(nil) = %q", got)
	}
	if got := joinFlags([]string{"A", "B"}); got != "A, B" {
		t.Errorf("joinFlags() = %q", got)
	}
}
