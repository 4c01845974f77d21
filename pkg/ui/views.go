package ui

// OperationView is one executed install, update or uninstall.
type OperationView struct {
	Kind    string `json:"kind"`
	Package string `json:"package"`
	Version string `json:"version"`
	From    string `json:"from,omitempty"`
	Route   string `json:"route,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the operation carries an error.
func (o OperationView) Failed() bool {
	return o.Error != ""
}

// ReportView is the outcome of an install, update or remove command.
type ReportView struct {
	Command    string          `json:"command"`
	Operations []OperationView `json:"operations"`
}

// Counts returns the number of succeeded and failed operations.
func (r ReportView) Counts() (succeeded, failed int) {
	for _, op := range r.Operations {
		if op.Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// PackageView is the state of one package of the project.
type PackageView struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Version   string `json:"version"`
	Route     string `json:"route"`
	Path      string `json:"path"`
	Installed bool   `json:"installed"`
	// Projects is the shared usage count; zero for conventional packages
	Projects int `json:"projects,omitempty"`
}

// StatusView describes a project and its packages.
type StatusView struct {
	Root        string        `json:"root"`
	Branch      string        `json:"branch,omitempty"`
	BuildPrefix string        `json:"build_prefix"`
	Store       string        `json:"store"`
	Packages    []PackageView `json:"packages"`
}

// UsageEntryView lists the projects referencing one stored package version.
type UsageEntryView struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Projects []string `json:"projects"`
}

// UsageView is the usage ledger of a shared store.
type UsageView struct {
	Store   string           `json:"store"`
	Entries []UsageEntryView `json:"entries"`
}
