package dispatch

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"case fold and trim", "  SELECT Patients  ", "select patients"},
		{"already normalized", "number of patients", "number of patients"},
		{"tabs and newlines trimmed", "\tDrop the temp table\n", "drop the temp table"},
		{"internal whitespace preserved", "first  100   patients", "first  100   patients"},
		{"punctuation preserved", "What is the number of patients?", "what is the number of patients?"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
