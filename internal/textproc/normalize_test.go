package textproc

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"space runs", "hello    world", "hello world"},
		{"tabs", "hello\t\tworld", "hello world"},
		{"line edges", "  hello  \n  world  ", "hello\nworld"},
		{"blank line runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"single blank line kept", "a\n\nb", "a\n\nb"},
		{"blank lines of spaces", "a\n \n \n \nb", "a\n\nb"},
		{"outer whitespace", "\n\n  text  \n\n", "text"},
		{"only whitespace", " \t \n \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"hello   world",
		"  a  \n\n\n  b  \n \n \n c ",
		"one\ntwo\n\nthree",
		"\t\t mixed \t whitespace \n\n\n\n everywhere \t\n",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first = %q, second = %q", in, once, twice)
		}
	}
}
