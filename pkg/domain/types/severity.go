package types

// Severity is the visual level of an admin notice
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// AllSeverities returns all valid severities
func AllSeverities() []Severity {
	return []Severity{
		SeveritySuccess,
		SeverityWarning,
		SeverityError,
		SeverityInfo,
	}
}

// IsValid checks if the severity is one of the known levels
func (s Severity) IsValid() bool {
	switch s {
	case SeveritySuccess,
		SeverityWarning,
		SeverityError,
		SeverityInfo:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts s into a Severity. Unknown values become SeverityInfo;
// a notice is never rejected because of its level.
func ParseSeverity(s string) Severity {
	sev := Severity(s)
	if !sev.IsValid() {
		return SeverityInfo
	}
	return sev
}
