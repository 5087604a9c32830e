package changelog

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/adamancini/updraft/internal/types"
)

// Labels holds the localized column headers and kind names.
type Labels struct {
	Type        string
	Description string
	Kinds       map[types.ChangeKind]string
}

// DefaultLabels returns English labels.
func DefaultLabels() Labels {
	return Labels{
		Type:        "Type",
		Description: "Description",
		Kinds: map[types.ChangeKind]string{
			types.ChangeAdded:   "Added",
			types.ChangeRemoved: "Removed",
			types.ChangeFixed:   "Fixed",
			types.ChangeNote:    "Notes",
		},
	}
}

func (l Labels) kind(k types.ChangeKind) string {
	if name, ok := l.Kinds[k]; ok && name != "" {
		return name
	}
	return k.String()
}

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	kindColors  = map[types.ChangeKind]lipgloss.Color{
		types.ChangeAdded:   lipgloss.Color("2"),
		types.ChangeRemoved: lipgloss.Color("1"),
		types.ChangeFixed:   lipgloss.Color("3"),
		types.ChangeNote:    lipgloss.Color("4"),
	}
)

// Table renders records as a bordered two-column table.
func Table(records []Record, labels Labels) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{labels.kind(r.Kind), r.Description})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(labels.Type, labels.Description).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 0 && row >= 0 && row < len(records) {
				return styleCell.Foreground(kindColors[records[row].Kind])
			}
			return styleCell
		}).
		Rows(rows...)

	return t.String()
}

// Render writes the records to w as a table. Nothing is written for an empty list.
func Render(w io.Writer, records []Record, labels Labels) error {
	if len(records) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, Table(records, labels))
	return err
}

// Plain renders records one per line as "<sentinel> <description>".
func Plain(records []Record) string {
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%c %s\n", r.Kind.Sentinel(), r.Description)
	}
	return b.String()
}
