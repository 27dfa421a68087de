package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string // must be in output
		excludes []string // must not be in output
	}{
		{
			name:  "empty string",
			input: "",
		},
		{
			name:     "plain text",
			input:    "Recycling electronics responsibly.",
			contains: []string{"Recycling electronics responsibly."},
		},
		{
			name:     "inline formatting preserved",
			input:    "Made with <strong>care</strong> &amp; <u>pride</u>",
			contains: []string{"<strong>care</strong>", "<u>pride</u>"},
		},
		{
			name:     "script tag removed",
			input:    "<p>Hello</p><script>alert('xss')</script>",
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"<script>", "alert"},
		},
		{
			name:     "onclick removed",
			input:    `<p onclick="alert('xss')">Click me</p>`,
			contains: []string{"<p>", "Click me"},
			excludes: []string{"onclick"},
		},
		{
			name:     "javascript URL removed",
			input:    `<a href="javascript:alert('xss')">Link</a>`,
			contains: []string{"Link"},
			excludes: []string{"javascript:"},
		},
		{
			name:     "safe link preserved",
			input:    `<a href="https://example.com">Link</a>`,
			contains: []string{"<a", "https://example.com", "Link"},
		},
		{
			name:     "iframe removed",
			input:    `<iframe src="https://evil.com"></iframe><p>Content</p>`,
			contains: []string{"<p>Content</p>"},
			excludes: []string{"<iframe", "evil.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Sanitize(%q) = %q, should contain %q", tt.input, got, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, s)
				}
			}
		})
	}
}

func TestSanitizeToHTML(t *testing.T) {
	got := SanitizeToHTML("<b>hi</b><script>x()</script>")
	if string(got) != "<b>hi</b>" {
		t.Errorf("SanitizeToHTML() = %q, want %q", got, "<b>hi</b>")
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "2 laptops, 1 monitor", "2 laptops, 1 monitor"},
		{"ampersand kept", "TV & stand", "TV & stand"},
		{"tags dropped", "<b>old</b> phones", "old phones"},
		{"script body dropped", "printer<script>alert(1)</script>", "printer"},
		{"newlines kept", "laptop\nmonitor", "laptop\nmonitor"},
		{"trimmed", "  cables  ", "cables"},
		{"angle text", "size < 5kg", "size < 5kg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.input); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlainTextToHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"one line", "<p>one line</p>"},
		{"a\nb", "<p>a<br>b</p>"},
		{"a\r\nb", "<p>a<br>b</p>"},
		{"<b>", "<p>&lt;b&gt;</p>"},
	}

	for _, tt := range tests {
		if got := PlainTextToHTML(tt.input); string(got) != tt.want {
			t.Errorf("PlainTextToHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
