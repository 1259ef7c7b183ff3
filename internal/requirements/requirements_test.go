package requirements

import (
	"slices"
	"strings"
	"testing"
)

const frontendJob = `We are hiring a Frontend Engineer with 3+ years experience building web
applications in JavaScript and React. You will ship React components, review JavaScript code
and collaborate with designers.`

func TestExtract(t *testing.T) {
	reqs := NewExtractor(nil).Extract(frontendJob)

	// canonical names match as substrings, so "java" is found inside "javascript"
	if !slices.Equal(reqs.RequiredSkills, []string{"javascript", "java", "react"}) {
		t.Fatalf("unexpected required skills: %v", reqs.RequiredSkills)
	}
	if reqs.ExperienceYears != 3 {
		t.Fatalf("expected 3 years, got %d", reqs.ExperienceYears)
	}

	if len(reqs.Keywords) < 2 || reqs.Keywords[0] != "javascript" || reqs.Keywords[1] != "react" {
		t.Fatalf("expected javascript and react to lead keywords, got %v", reqs.Keywords)
	}
	for _, k := range reqs.Keywords {
		if len(k) <= 2 {
			t.Fatalf("short keyword %q kept", k)
		}
		if k == "with" || k == "and" || k == "years" {
			t.Fatalf("stopword %q kept", k)
		}
	}
}

func TestExperienceYears(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "plus", text: "5+ years experience", want: 5},
		{name: "of", text: "at least 7 years of experience in Go", want: 7},
		{name: "singular", text: "1 year experience", want: 1},
		{name: "first wins", text: "2 years experience with Go, 4 years experience overall", want: 2},
		{name: "case", text: "10 YEARS OF EXPERIENCE", want: 10},
		{name: "absent", text: "Experience with Kubernetes is a plus", want: 0},
		{name: "empty", text: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := experienceYears(tt.text); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestKeywordsOrderingAndLimit(t *testing.T) {
	e := NewExtractor(nil)

	reqs := e.Extract("beta alpha gamma alpha beta alpha delta")
	if want := []string{"alpha", "beta", "gamma", "delta"}; !slices.Equal(reqs.Keywords, want) {
		t.Fatalf("expected %v, got %v", want, reqs.Keywords)
	}

	words := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		words = append(words, "word"+strings.Repeat("x", i))
	}
	reqs = e.Extract(strings.Join(words, " "))
	if len(reqs.Keywords) != maxKeywords {
		t.Fatalf("expected %d keywords, got %d", maxKeywords, len(reqs.Keywords))
	}
	if reqs.Keywords[0] != "word" {
		t.Fatalf("expected first occurrence to win ties, got %v", reqs.Keywords[:3])
	}
}

func TestExtractEmpty(t *testing.T) {
	reqs := NewExtractor(nil).Extract("")

	if reqs.RequiredSkills == nil || len(reqs.RequiredSkills) != 0 {
		t.Fatalf("expected empty skills, got %v", reqs.RequiredSkills)
	}
	if reqs.ExperienceYears != 0 || len(reqs.Keywords) != 0 {
		t.Fatalf("expected zero requirements, got %+v", reqs)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	e := NewExtractor(nil)
	first := e.Extract(frontendJob)
	second := e.Extract(frontendJob)

	if !slices.Equal(first.RequiredSkills, second.RequiredSkills) || !slices.Equal(first.Keywords, second.Keywords) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}
