package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{
			name:  "heading gets an anchor id",
			input: "# Hello World",
			want:  []string{`<h1 id="hello-world">Hello World</h1>`},
		},
		{
			name:  "gfm table",
			input: "| a | b |\n|---|---|\n| 1 | 2 |",
			want:  []string{"<table>", "<td>1</td>"},
		},
		{
			name:    "script tags are stripped",
			input:   "hi\n\n<script>alert(1)</script>",
			want:    []string{"<p>hi</p>"},
			notWant: []string{"<script", "alert(1)"},
		},
		{
			name:    "event handlers are stripped",
			input:   `<img src="https://cdn.test/a.png" onerror="alert(1)">`,
			want:    []string{`src="https://cdn.test/a.png"`},
			notWant: []string{"onerror"},
		},
		{
			name:    "javascript links are dropped",
			input:   "[x](javascript:alert(1))",
			notWant: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.input)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("output should not contain %q:\n%s", nw, got)
				}
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`<b>bold</b> and <a href="/x">link</a>`, "bold and link"},
		{`Tom & Jerry's "show"`, `Tom & Jerry's "show"`},
		{`R&D <script>alert(1)</script>`, "R&D "},
		{`o'neil@example.com`, "o'neil@example.com"},
	}
	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
