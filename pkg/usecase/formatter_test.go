package usecase_test

import (
	"html/template"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/noticekit/pkg/usecase"
)

func TestParagraphFormatter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  template.HTML
	}{
		{name: "plain text", input: "Update available", want: "<p>Update available</p>"},
		{name: "markup kept", input: "<p><strong>Done</strong></p>", want: "<p><strong>Done</strong></p>"},
		{name: "surrounding space", input: "  hi \n", want: "<p>hi</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usecase.ParagraphFormatter{}.Format(tt.input)
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestMarkdownFormatter(t *testing.T) {
	f := usecase.NewMarkdownFormatter()

	got, err := f.Format("Update **available**, see [notes](https://example.com/notes)")
	gt.NoError(t, err).Required()
	gt.String(t, string(got)).Contains("<strong>available</strong>")
	gt.String(t, string(got)).Contains(`<a href="https://example.com/notes">notes</a>`)

	t.Run("raw html is dropped", func(t *testing.T) {
		got, err := f.Format("hello <script>alert(1)</script>")
		gt.NoError(t, err).Required()
		gt.Bool(t, contains(string(got), "<script>")).False()
	})
}
