package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in    string
		limit int
		want  string
	}{
		"zero limit drops everything": {in: "Senior Go Developer", limit: 0, want: ""},
		"negative limit":              {in: "Senior Go Developer", limit: -3, want: ""},
		"fits":                        {in: "Go Developer", limit: 12, want: "Go Developer"},
		"cut with ellipsis":           {in: "Kubernetes operator", limit: 10, want: "Kubernetes..."},
		"surrounding whitespace":      {in: "\n  resume text \t", limit: 6, want: "resume..."},
		"counts runes not bytes":      {in: "Разработчик Go", limit: 11, want: "Разработчик..."},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.in, tt.limit); got != tt.want {
				t.Fatalf("TruncateForLog(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}
