package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Ada Lovelace  ",
			want:  "Ada Lovelace",
		},
		{
			name:  "multiple spaces between words",
			input: "Ada    Lovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "tabs and newlines",
			input: "Ada\t\nLovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Li₂CO₃ + Co₃O₄ ",
			want:  "Li₂CO₃ + Co₃O₄",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("NormalizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps line breaks",
			input: "ramp 5C/min\nhold 2h",
			want:  "ramp 5C/min\nhold 2h",
		},
		{
			name:  "trims trailing spaces and outer blank lines",
			input: "\n\nramp 5C/min   \r\nhold 2h\t\n\n",
			want:  "ramp 5C/min\nhold 2h",
		},
		{
			name:  "keeps inner indentation",
			input: "  steps:\n  - ramp  \n  - hold",
			want:  "steps:\n  - ramp\n  - hold",
		},
		{
			name:  "blank",
			input: "  \n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeNotes(tt.input); got != tt.want {
				t.Errorf("NormalizeNotes(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
