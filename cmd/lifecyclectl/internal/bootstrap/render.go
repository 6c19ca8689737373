package bootstrap

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	lifecycle "github.com/goliatone/go-lifecycle"
	"github.com/goliatone/go-lifecycle/internal/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// RenderReport writes a legacy migration report as a table of pair counts
// followed by any ensured vocabulary entries and failures.
func RenderReport(w io.Writer, report *lifecycle.MigrationReport) error {
	if report == nil {
		_, err := fmt.Fprintln(w, mutedStyle.Render("no report"))
		return err
	}
	scope := "all organizations"
	if report.OrganizationID != nil {
		scope = report.OrganizationID.String()
	}

	t := newTable("legacy", "unified", "rows")
	for _, pair := range domain.LegacyStatusMapping() {
		t.Row(string(pair.From), string(pair.To), strconv.FormatInt(report.PairCounts[pair.From], 10))
	}

	if _, err := fmt.Fprintln(w, titleStyle.Render("Legacy status migration: "+scope)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	for _, ensured := range report.Ensured {
		line := fmt.Sprintf("ensured %q in %s vocabulary for %s", ensured.Name, ensured.Domain, ensured.OrganizationID)
		if _, err := fmt.Fprintln(w, mutedStyle.Render(line)); err != nil {
			return err
		}
	}
	for _, failure := range report.Errors {
		line := fmt.Sprintf("%s %s: %s", failure.EntityType, failure.Pair, failure.Message)
		if _, err := fmt.Fprintln(w, errorStyle.Render(line)); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d rows rewritten", report.Total())
	style := okStyle
	if report.Failed() {
		summary += fmt.Sprintf(", %d pairs failed", len(report.Errors))
		style = errorStyle
	}
	_, err := fmt.Fprintln(w, style.Render(summary))
	return err
}

// RenderStatuses writes status definitions in display order.
func RenderStatuses(w io.Writer, d lifecycle.StatusDomain, defs []*lifecycle.StatusDefinition) error {
	t := newTable("order", "name", "display", "color", "active", "system")
	for _, def := range defs {
		if def == nil {
			continue
		}
		t.Row(
			strconv.Itoa(def.OrderIndex),
			string(def.Name),
			def.DisplayName,
			def.Color,
			strconv.FormatBool(def.IsActive),
			strconv.FormatBool(def.IsSystem),
		)
	}
	if _, err := fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s statuses", d))); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderList writes a titled bullet list, used for migration names.
func RenderList(w io.Writer, title string, items []string) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return err
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("  (none)"))
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(w, "  - "+item); err != nil {
			return err
		}
	}
	return nil
}
