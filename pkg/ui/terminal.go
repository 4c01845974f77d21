package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pterm/pterm"
)

// terminalRenderer writes styled tables with lipgloss and status lines with
// pterm prefix printers.
type terminalRenderer struct {
	out    io.Writer
	styles Styles
}

func newTerminalRenderer(out io.Writer, styles Styles) *terminalRenderer {
	return &terminalRenderer{out: out, styles: styles}
}

func (r *terminalRenderer) RenderReport(report ReportView) error {
	if len(report.Operations) == 0 {
		pterm.Info.WithWriter(r.out).Println("Nothing to " + report.Command)
		return nil
	}
	for _, op := range report.Operations {
		line := r.styles.Render("Package", op.Kind+" "+op.Package) + " " +
			r.styles.Render("Version", versionText(op))
		if op.Route == "shared" {
			line += " " + r.styles.Render("Shared", "shared")
		}
		if op.Failed() {
			pterm.Error.WithWriter(r.out).Println(line + "\n" + r.styles.Render("Muted", op.Error))
		} else {
			pterm.Success.WithWriter(r.out).Println(line)
		}
	}
	_, failed := report.Counts()
	if failed > 0 {
		pterm.Warning.WithWriter(r.out).Println(summaryLine(report))
	} else {
		pterm.Info.WithWriter(r.out).Println(summaryLine(report))
	}
	return nil
}

func versionText(op OperationView) string {
	if op.From != "" && op.From != op.Version {
		return op.From + " -> " + op.Version
	}
	return op.Version
}

func (r *terminalRenderer) header(pairs ...string) string {
	var out string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		out += r.styles.Render("Label", fmt.Sprintf("%-8s", pairs[i])) + " " + r.styles.Render("Path", pairs[i+1]) + "\n"
	}
	return out
}

func (r *terminalRenderer) table(headers []string, rows [][]string, styleCell func(row, col int) lipgloss.Style) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.styles.Get("Muted")).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(r.styles.Get("Header").UnsetMarginBottom())
			}
			return base.Inherit(styleCell(row, col))
		}).
		String()
}

func (r *terminalRenderer) RenderStatus(status StatusView) error {
	out := r.header("Project", status.Root, "Branch", status.Branch, "Build", status.BuildPrefix, "Store", status.Store)
	if len(status.Packages) == 0 {
		_, err := fmt.Fprintln(r.out, out+"\n"+r.styles.Render("Muted", "No packages installed"))
		return err
	}

	rows := make([][]string, 0, len(status.Packages))
	for _, pkg := range status.Packages {
		projects := "-"
		if pkg.Projects > 0 {
			projects = fmt.Sprint(pkg.Projects)
		}
		rows = append(rows, []string{pkg.Name, pkg.Version, pkg.Type, pkg.Route, installedLabel(pkg.Installed), projects, pkg.Path})
	}
	out += r.table([]string{"Name", "Version", "Type", "Route", "State", "Projects", "Path"}, rows,
		func(row, col int) lipgloss.Style {
			switch col {
			case 0:
				return r.styles.Get("Package")
			case 1:
				return r.styles.Get("Version")
			case 3:
				if status.Packages[row].Route == "shared" {
					return r.styles.Get("Shared")
				}
			case 4:
				if status.Packages[row].Installed {
					return r.styles.Get("Success")
				}
				return r.styles.Get("Error")
			case 6:
				return r.styles.Get("Path")
			}
			return lipgloss.NewStyle()
		})
	_, err := fmt.Fprintln(r.out, out)
	return err
}

func (r *terminalRenderer) RenderUsage(usage UsageView) error {
	out := r.header("Store", usage.Store)
	if len(usage.Entries) == 0 {
		_, err := fmt.Fprintln(r.out, out+"\n"+r.styles.Render("Muted", "No shared packages"))
		return err
	}

	rows := make([][]string, 0, len(usage.Entries))
	for _, entry := range usage.Entries {
		projects := "-"
		if len(entry.Projects) > 0 {
			projects = entry.Projects[0]
			for _, p := range entry.Projects[1:] {
				projects += "\n" + p
			}
		}
		rows = append(rows, []string{entry.Name, entry.Version, fmt.Sprint(len(entry.Projects)), projects})
	}
	out += r.table([]string{"Name", "Version", "Count", "Projects"}, rows,
		func(row, col int) lipgloss.Style {
			switch col {
			case 0:
				return r.styles.Get("Package")
			case 1:
				return r.styles.Get("Version")
			case 2:
				if len(usage.Entries[row].Projects) == 0 {
					return r.styles.Get("Warning")
				}
			case 3:
				return r.styles.Get("Path")
			}
			return lipgloss.NewStyle()
		})
	_, err := fmt.Fprintln(r.out, out)
	return err
}

func (r *terminalRenderer) RenderError(err error) error {
	pterm.Error.WithWriter(r.out).Println(err.Error())
	return nil
}

func (r *terminalRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.out, msg)
	return err
}
