package health

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/ui"
	"gopkg.in/yaml.v3"
)

// Output formats for WriteReport.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// TableHeaders are the column titles of the tabular report.
var TableHeaders = []string{"NODE ID", "ENDPOINT", "STARTED", "LIVE", "READY", "SAFE", "STATUS"}

// TableRows returns one row per endpoint, in snapshot order.
func TableRows(snap Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Endpoints))
	for _, e := range snap.Endpoints {
		node := "-"
		if e.Endpoint.NodeID != 0 {
			node = strconv.Itoa(e.Endpoint.NodeID)
		}
		rows = append(rows, []string{
			node,
			e.Endpoint.URL,
			StatusText(e.Status(FacetStarted)),
			StatusText(e.Status(FacetLive)),
			StatusText(e.Status(FacetReady)),
			StatusText(e.Status(FacetSafe)),
			e.Overall.String(),
		})
	}
	return rows
}

// WriteReport writes the snapshot in the given format.
func WriteReport(w io.Writer, snap Snapshot, format string) error {
	switch format {
	case "", FormatTable:
		if len(snap.Endpoints) > 0 {
			if _, err := fmt.Fprintln(w, ui.RenderColumns(TableHeaders, TableRows(snap))); err != nil {
				return err
			}
		}
		for _, warn := range snap.Warnings {
			if _, err := fmt.Fprintf(w, "%s %s\n", ui.SymbolWarning, warn); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "All endpoints safe: %t\n", snap.AllSafe)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrHealth,
			fmt.Sprintf("Unknown output format '%s'", format),
			"Use one of: table, json, yaml")
	}
}
