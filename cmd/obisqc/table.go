package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ymgan/obis-qc/internal/taxocache"
)

func newResultWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// resultTable renders check results for a terminal, one row per record in
// input order.
func resultTable(results []checkResult) string {
	tw := newResultWriter()
	tw.AppendHeader(table.Row{"#", "Scientific Name", "Scientific Name ID", "Aphia", "Flags", "Dropped"})
	for _, result := range results {
		aphia := ""
		if result.Aphia != nil {
			aphia = strconv.FormatInt(*result.Aphia, 10)
		}
		dropped := ""
		if result.Dropped {
			dropped = "yes"
		}
		tw.AppendRow(table.Row{
			result.Row,
			result.ScientificName,
			result.ScientificNameID,
			aphia,
			joinFlags(result.Flags),
			dropped,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// statsTable renders lookup cache entry counts.
func statsTable(stats taxocache.Stats) string {
	tw := newResultWriter()
	tw.AppendHeader(table.Row{"Entry", "Count"})
	tw.AppendRow(table.Row{"aphia records", stats.Records})
	tw.AppendRow(table.Row{"name matches", stats.Names})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
