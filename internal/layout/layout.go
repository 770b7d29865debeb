// Package layout parses dashboard layout expressions.
//
// Grammar:
//
//	layout := row (":" row)*
//	row    := panelId ("," panelId)*
//
// Panel ids come from a closed, registered set, so ':' and ',' never need escaping.
package layout

import (
	"strings"
)

const (
	rowSep   = ":"
	panelSep = ","
)

// Row is an ordered group of panels sharing one band of the screen.
type Row []string

// Expr is an ordered sequence of rows.
type Expr []Row

// String renders e back into expression syntax. Parse(e.String()) == e.
func (e Expr) String() string {
	rows := make([]string, len(e))
	for i, r := range e {
		rows[i] = strings.Join(r, panelSep)
	}
	return strings.Join(rows, rowSep)
}

// Panels returns each distinct panel id once, in layout order.
func (e Expr) Panels() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range e {
		for _, id := range r {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Contains reports whether id appears anywhere in e.
func (e Expr) Contains(id string) bool {
	for _, r := range e {
		for _, p := range r {
			if p == id {
				return true
			}
		}
	}
	return false
}

// Parse parses expr, rejecting ids not in known.
func Parse(expr string, known map[string]bool) (Expr, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, &EmptyLayoutError{}
	}

	var out Expr
	for _, rawRow := range strings.Split(expr, rowSep) {
		var row Row
		for _, rawID := range strings.Split(rawRow, panelSep) {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return nil, &SyntaxError{Expr: expr, Reason: "empty panel id"}
			}
			if !known[id] {
				return nil, &UnknownPanelError{ID: id, Expr: expr}
			}
			row = append(row, id)
		}
		out = append(out, row)
	}
	return out, nil
}
