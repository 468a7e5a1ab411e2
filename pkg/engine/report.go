package engine

import (
	"encoding/json"
	"fmt"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	if text == "warning" {
		*s = SeverityWarning
	} else {
		*s = SeverityError
	}
	return nil
}

// Issue is one validation finding. Path names the input slot the finding
// concerns, so the presentation layer can point the user at the right file.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Path     string   `json:"path,omitempty"`
}

// Report collects every issue of a single validation run, in the order the
// checks produced them. Warnings never fail a run.
type Report struct {
	Subject string  `json:"subject,omitempty"`
	Issues  []Issue `json:"issues"`
}

func (r *Report) Error(path, message string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityError, Message: message, Path: path})
}

func (r *Report) Errorf(path, format string, args ...interface{}) {
	r.Error(path, fmt.Sprintf(format, args...))
}

func (r *Report) Warn(path, message string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, Message: message, Path: path})
}

func (r *Report) Warnf(path, format string, args ...interface{}) {
	r.Warn(path, fmt.Sprintf(format, args...))
}

func (r *Report) Valid() bool {
	return r.ErrorCount() == 0
}

func (r *Report) ErrorCount() int {
	return r.count(SeverityError)
}

func (r *Report) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}
