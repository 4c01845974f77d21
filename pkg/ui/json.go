package ui

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
)

// jsonRenderer writes one indented JSON document per call
type jsonRenderer struct {
	enc *json.Encoder
}

func newJSONRenderer(out io.Writer) *jsonRenderer {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return &jsonRenderer{enc: enc}
}

type jsonReport struct {
	ReportView
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type jsonError struct {
	Error   string                 `json:"error"`
	Code    errors.ErrorCode       `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (r *jsonRenderer) RenderReport(report ReportView) error {
	if report.Operations == nil {
		report.Operations = []OperationView{}
	}
	succeeded, failed := report.Counts()
	return r.enc.Encode(jsonReport{ReportView: report, Succeeded: succeeded, Failed: failed})
}

func (r *jsonRenderer) RenderStatus(status StatusView) error {
	if status.Packages == nil {
		status.Packages = []PackageView{}
	}
	return r.enc.Encode(status)
}

func (r *jsonRenderer) RenderUsage(usage UsageView) error {
	if usage.Entries == nil {
		usage.Entries = []UsageEntryView{}
	}
	return r.enc.Encode(usage)
}

func (r *jsonRenderer) RenderError(err error) error {
	return r.enc.Encode(jsonError{
		Error:   err.Error(),
		Code:    errors.GetErrorCode(err),
		Details: errors.GetErrorDetails(err),
	})
}

func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.enc.Encode(map[string]string{"message": msg})
}
