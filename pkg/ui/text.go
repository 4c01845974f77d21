package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// textRenderer writes aligned plain text without any styling
type textRenderer struct {
	out io.Writer
}

func newTextRenderer(out io.Writer) *textRenderer {
	return &textRenderer{out: out}
}

// operationLine is shared by the text and terminal renderers.
func operationLine(op OperationView) string {
	line := op.Kind + " " + op.Package + " "
	if op.From != "" && op.From != op.Version {
		line += op.From + " -> " + op.Version
	} else {
		line += op.Version
	}
	if op.Route != "" {
		line += " [" + op.Route + "]"
	}
	return line
}

func summaryLine(report ReportView) string {
	succeeded, failed := report.Counts()
	if failed == 0 {
		return fmt.Sprintf("%d operation(s) completed", succeeded)
	}
	return fmt.Sprintf("%d operation(s) completed, %d failed", succeeded, failed)
}

func installedLabel(installed bool) string {
	if installed {
		return "installed"
	}
	return "missing"
}

func (r *textRenderer) RenderReport(report ReportView) error {
	if len(report.Operations) == 0 {
		return r.RenderMessage("Nothing to " + report.Command)
	}
	var b strings.Builder
	for _, op := range report.Operations {
		if op.Failed() {
			fmt.Fprintf(&b, "FAILED %s: %s\n", operationLine(op), op.Error)
		} else {
			fmt.Fprintf(&b, "ok     %s\n", operationLine(op))
		}
	}
	b.WriteString(summaryLine(report) + "\n")
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *textRenderer) RenderStatus(status StatusView) error {
	fmt.Fprintf(r.out, "Project: %s\n", status.Root)
	if status.Branch != "" {
		fmt.Fprintf(r.out, "Branch:  %s\n", status.Branch)
	}
	fmt.Fprintf(r.out, "Build:   %s\n", status.BuildPrefix)
	fmt.Fprintf(r.out, "Store:   %s\n", status.Store)
	if len(status.Packages) == 0 {
		_, err := fmt.Fprintln(r.out, "\nNo packages installed")
		return err
	}

	fmt.Fprintln(r.out)
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tTYPE\tROUTE\tSTATE\tPROJECTS\tPATH")
	for _, pkg := range status.Packages {
		projects := "-"
		if pkg.Projects > 0 {
			projects = fmt.Sprint(pkg.Projects)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			pkg.Name, pkg.Version, pkg.Type, pkg.Route, installedLabel(pkg.Installed), projects, pkg.Path)
	}
	return w.Flush()
}

func (r *textRenderer) RenderUsage(usage UsageView) error {
	fmt.Fprintf(r.out, "Store: %s\n", usage.Store)
	if len(usage.Entries) == 0 {
		_, err := fmt.Fprintln(r.out, "\nNo shared packages")
		return err
	}

	fmt.Fprintln(r.out)
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tPROJECTS")
	for _, entry := range usage.Entries {
		fmt.Fprintf(w, "%s\t%s\t%d\n", entry.Name, entry.Version, len(entry.Projects))
		for _, project := range entry.Projects {
			fmt.Fprintf(w, "\t\t  %s\n", project)
		}
	}
	return w.Flush()
}

func (r *textRenderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.out, "Error: %v\n", err)
	return werr
}

func (r *textRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.out, msg)
	return err
}
