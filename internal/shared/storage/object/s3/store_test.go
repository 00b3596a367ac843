package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	cases := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "documents/a.pdf", "documents/a.pdf"},
		{"explainer", "documents/a.pdf", "explainer/documents/a.pdf"},
		{"/explainer/", "/documents/a.pdf", "explainer/documents/a.pdf"},
		{"explainer", "", "explainer"},
	}
	for _, tc := range cases {
		if got := applyPrefix(tc.prefix, tc.key); got != tc.want {
			t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tc.prefix, tc.key, got, tc.want)
		}
	}
}

func TestNormalizePrefix(t *testing.T) {
	if got := normalizePrefix(" /a/b/ "); got != "a/b" {
		t.Fatalf("normalizePrefix = %q", got)
	}
}
