package format

import "testing"

func TestEscapeHTML(t *testing.T) {
	cases := map[string]string{
		"plain":             "plain",
		"<b>x</b>":          "&lt;b&gt;x&lt;/b&gt;",
		"a & b":             "a &amp; b",
		"5h/week \"quote\"": "5h/week \"quote\"",
	}
	for in, want := range cases {
		if got := EscapeHTML(in); got != want {
			t.Fatalf("EscapeHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMention(t *testing.T) {
	if got := Mention(""); got != "" {
		t.Fatalf("Mention(empty) = %q", got)
	}
	if got := Mention("@bob"); got != "@bob" {
		t.Fatalf("Mention(@bob) = %q", got)
	}
	if got := Mention("alice"); got != "@alice" {
		t.Fatalf("Mention(alice) = %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("FirstNonEmpty = %q", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q", got)
	}
}
