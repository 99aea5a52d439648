package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase and strip punctuation",
			input: "What is the API rate-limit?",
			want:  "what is the api ratelimit",
		},
		{
			name:  "trim surrounding whitespace",
			input: "  How do I reset my password?  ",
			want:  "how do i reset my password",
		},
		{
			name:  "inner whitespace preserved",
			input: "single  sign   on",
			want:  "single  sign   on",
		},
		{
			name:  "underscore is a word character",
			input: "what does MAX_RETRIES control?",
			want:  "what does max_retries control",
		},
		{
			name:  "punctuation only",
			input: "?!...",
			want:  "",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"What is the API rate-limit?",
		"  already   normalized text  ",
		"UPPER case WITH punctuation!!!",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
