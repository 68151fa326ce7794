package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ymgan/obis-qc/internal/logging"
	"github.com/ymgan/obis-qc/internal/record"
	"github.com/ymgan/obis-qc/internal/taxocache"
	"github.com/ymgan/obis-qc/internal/taxonomy"
	"github.com/ymgan/obis-qc/internal/worms"
)

func newCheckCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	var flaggedOnly bool
	var noCache bool
	var workers int

	cmd := &cobra.Command{
		Use:   "check <records.jsonl>",
		Short: "Run taxonomy QC over a file of occurrence records",
		Long: `Reads occurrence records from a JSON lines file (one object per line with
Darwin Core fields such as scientificName and scientificNameID), resolves each
against WoRMS, and reports quality flags and interpreted values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			records, err := loadRecords(args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no records found in %s", args[0])
			}

			client := worms.NewClient(worms.Config{
				BaseURL:        cfg.Worms.BaseURL,
				TimeoutSeconds: cfg.Worms.TimeoutSeconds,
			}, worms.WithRetryMaxAttempts(cfg.Worms.RetryMaxAttempts))

			var matcher taxonomy.Matcher = client
			if cfg.Cache.Enabled && !noCache {
				store, err := taxocache.Open(cfg.Cache.Dir, cacheTTL(cfg.Cache.TTLDays), logger)
				if err != nil {
					return err
				}
				defer store.Close()
				matcher = taxocache.NewMatcher(store, client, logger)
			}

			if workers <= 0 {
				workers = cfg.Check.Workers
			}
			checker := taxonomy.NewChecker(matcher,
				taxonomy.WithLogger(logger),
				taxonomy.WithWorkers(workers))

			if err := checker.Check(cmd.Context(), records); err != nil {
				return fmt.Errorf("check records: %w", err)
			}

			results := buildResults(records, flaggedOnly)
			out := cmd.OutOrStdout()
			if jsonOut || !stdoutIsTerminal() {
				return writeResultsJSON(out, results)
			}
			fmt.Fprintln(out, resultTable(results))
			fmt.Fprintf(out, "%d records checked, %d flagged, %d dropped\n",
				len(records), countFlagged(records), countDropped(records))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON lines instead of a table")
	cmd.Flags().BoolVar(&flaggedOnly, "flagged-only", false, "Only report records that received flags or were dropped")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the persistent lookup cache")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent record resolutions (defaults to config)")

	return cmd
}

// loadRecords reads one JSON object per line, treating every value as an
// input field. Null values and blank lines are skipped.
func loadRecords(path string) ([]*record.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer file.Close()

	var records []*record.Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("parse record on line %d: %w", line, err)
		}
		data := make(map[string]string, len(raw))
		for key, value := range raw {
			switch v := value.(type) {
			case nil:
			case string:
				data[key] = v
			case float64:
				data[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				data[key] = strconv.FormatBool(v)
			default:
				encoded, _ := json.Marshal(v)
				data[key] = string(encoded)
			}
		}
		records = append(records, record.New(data))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}
	return records, nil
}

func cacheTTL(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func countFlagged(records []*record.Record) int {
	count := 0
	for _, rec := range records {
		if rec.FlagCount() > 0 {
			count++
		}
	}
	return count
}

func countDropped(records []*record.Record) int {
	count := 0
	for _, rec := range records {
		if rec.Dropped() {
			count++
		}
	}
	return count
}
