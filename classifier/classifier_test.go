package classifier

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "functional keyword",
			query: "How does the loan approval process work?",
			want:  "Functional",
		},
		{
			name:  "technical keyword",
			query: "Describe the deployment architecture.",
			want:  "Technical",
		},
		{
			name:  "case insensitive",
			query: "Is MFA supported?",
			want:  "Functional",
		},
		{
			name:  "functional rule wins over technical",
			query: "How is password security handled?",
			want:  "Functional",
		},
		{
			name:  "no match",
			query: "Tell me something.",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestOrDefault(t *testing.T) {
	if got := OrDefault("Functional", "deployment architecture"); got != "Functional" {
		t.Errorf("explicit label overridden: got %q", got)
	}
	if got := OrDefault("", "deployment architecture"); got != "Technical" {
		t.Errorf("missing label not classified: got %q", got)
	}
	if got := OrDefault("Nonsense", "tell me something"); got != DefaultLabel {
		t.Errorf("unmatched query did not default: got %q", got)
	}
}
