package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

func TestSeverity_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		severity types.Severity
		want     bool
	}{
		{name: "success", severity: types.SeveritySuccess, want: true},
		{name: "warning", severity: types.SeverityWarning, want: true},
		{name: "error", severity: types.SeverityError, want: true},
		{name: "info", severity: types.SeverityInfo, want: true},
		{name: "uppercase", severity: types.Severity("WARNING"), want: false},
		{name: "unknown", severity: types.Severity("critical"), want: false},
		{name: "empty", severity: types.Severity(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.severity.IsValid()).Equal(tt.want)
		})
	}
}

func TestParseSeverity(t *testing.T) {
	for _, sev := range types.AllSeverities() {
		t.Run("keeps "+sev.String(), func(t *testing.T) {
			gt.Value(t, types.ParseSeverity(sev.String())).Equal(sev)
		})
	}

	for _, input := range []string{"", "critical", "Error", "notice-warning", " info"} {
		t.Run("coerces "+input, func(t *testing.T) {
			gt.Value(t, types.ParseSeverity(input)).Equal(types.SeverityInfo)
		})
	}
}
