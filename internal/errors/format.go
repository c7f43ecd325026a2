package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Report is the flat view of an error shared by the text, JSON and log
// renderings. Errors without a code are reported as ERR_501_INTERNAL.
type Report struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// ReportOf flattens err. It returns nil for a nil error.
func ReportOf(err error) *Report {
	if err == nil {
		return nil
	}
	ie, ok := As(err)
	if !ok {
		ie = Wrap(ErrCodeInternal, err)
	}
	r := &Report{
		Code:       ie.Code,
		Message:    ie.Message,
		Category:   string(ie.Category),
		Severity:   string(ie.Severity),
		Details:    ie.Details,
		Suggestion: ie.Suggestion,
	}
	// A cause that only repeats the message adds nothing.
	if ie.Cause != nil && ie.Cause.Error() != ie.Message {
		r.Cause = ie.Cause.Error()
	}
	return r
}

func (r *Report) detailKeys() []string {
	return slices.Sorted(maps.Keys(r.Details))
}

// FormatForCLI renders err for the terminal: message, hint and code.
func FormatForCLI(err error) string {
	return formatText(err, false)
}

// FormatForDebug is FormatForCLI plus the cause and the details, for
// --debug runs.
func FormatForDebug(err error) string {
	return formatText(err, true)
}

func formatText(err error, verbose bool) string {
	r := ReportOf(err)
	if r == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", r.Message)
	if r.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", r.Suggestion)
	}
	if verbose {
		if r.Cause != "" {
			fmt.Fprintf(&sb, "  Cause: %s\n", r.Cause)
		}
		for _, k := range r.detailKeys() {
			fmt.Fprintf(&sb, "  %s: %s\n", k, r.Details[k])
		}
	}
	fmt.Fprintf(&sb, "  Code: %s\n", r.Code)
	return sb.String()
}

// FormatJSON encodes err's Report; a nil error encodes as null.
func FormatJSON(err error) ([]byte, error) {
	return json.Marshal(ReportOf(err))
}

// LogAttrs returns err's Report as slog attributes, details grouped under
// "details" in key order.
func LogAttrs(err error) []slog.Attr {
	r := ReportOf(err)
	if r == nil {
		return nil
	}

	attrs := []slog.Attr{
		slog.String("error_code", r.Code),
		slog.String("message", r.Message),
		slog.String("category", r.Category),
		slog.String("severity", r.Severity),
	}
	if r.Cause != "" {
		attrs = append(attrs, slog.String("cause", r.Cause))
	}
	if r.Suggestion != "" {
		attrs = append(attrs, slog.String("suggestion", r.Suggestion))
	}
	if len(r.Details) > 0 {
		details := make([]any, 0, len(r.Details))
		for _, k := range r.detailKeys() {
			details = append(details, slog.String(k, r.Details[k]))
		}
		attrs = append(attrs, slog.Group("details", details...))
	}
	return attrs
}
