package scoring

import (
	"slices"
	"strings"
	"testing"

	"github.com/spigell/jobstir/internal/requirements"
	"github.com/spigell/jobstir/internal/resume"
)

func TestScoreExample(t *testing.T) {
	r := resume.NewParser(nil).Parse("Jane Doe\njane@x.com\n555-123-4567\nSoftware Engineer at Acme\n• built APIs\nBachelor of Science in CS")
	reqs := requirements.Requirements{
		RequiredSkills:  []string{"javascript", "react"},
		ExperienceYears: 3,
	}

	s := Score(r, reqs)

	if s.Experience != 12 {
		t.Fatalf("expected experience score 12, got %d", s.Experience)
	}
	if s.Skills != 0 {
		t.Fatalf("expected skills score 0, got %d", s.Skills)
	}
	if s.Education != 8 {
		t.Fatalf("expected education score 8, got %d", s.Education)
	}
	if s.Projects != 0 {
		t.Fatalf("expected project score 0, got %d", s.Projects)
	}
	if s.Total != 20 {
		t.Fatalf("expected total 20, got %d", s.Total)
	}
	if len(s.Matched) != 0 || !slices.Equal(s.Missing, []string{"javascript", "react"}) {
		t.Fatalf("unexpected partition: %v / %v", s.Matched, s.Missing)
	}
}

func TestSubScores(t *testing.T) {
	t.Run("skills", func(t *testing.T) {
		tests := []struct{ matched, required, want int }{
			{0, 0, 25},
			{0, 4, 0},
			{1, 3, 11},
			{2, 3, 23},
			{3, 3, 35},
		}
		for _, tt := range tests {
			if got := skillsScore(tt.matched, tt.required); got != tt.want {
				t.Fatalf("skillsScore(%d, %d) = %d, want %d", tt.matched, tt.required, got, tt.want)
			}
		}
	})

	t.Run("experience", func(t *testing.T) {
		tests := []struct{ entries, years, want int }{
			{0, 0, 20},
			{5, 0, 20},
			{0, 3, 0},
			{1, 3, 12},
			{2, 3, 25},
			{10, 5, 25},
		}
		for _, tt := range tests {
			if got := experienceScore(tt.entries, tt.years); got != tt.want {
				t.Fatalf("experienceScore(%d, %d) = %d, want %d", tt.entries, tt.years, got, tt.want)
			}
		}
	})

	t.Run("education", func(t *testing.T) {
		tests := []struct {
			degrees []string
			want    int
		}{
			{nil, 10},
			{[]string{"Bachelor of Arts"}, 8},
			{[]string{"Master of Science"}, 13},
			{[]string{"PhD in Physics"}, 13},
			{[]string{"Bachelor of Arts", "Master of Science"}, 20},
			{[]string{"Diploma", "Certificate", "Associate"}, 20},
		}
		for _, tt := range tests {
			education := make([]resume.Education, 0, len(tt.degrees))
			for _, d := range tt.degrees {
				education = append(education, resume.Education{Degree: d})
			}
			if got := educationScore(education); got != tt.want {
				t.Fatalf("educationScore(%v) = %d, want %d", tt.degrees, got, tt.want)
			}
		}
	})

	t.Run("projects", func(t *testing.T) {
		for projects, want := range map[int]int{0: 0, 1: 5, 3: 15, 4: 20, 9: 20} {
			if got := projectScore(projects); got != want {
				t.Fatalf("projectScore(%d) = %d, want %d", projects, got, want)
			}
		}
	})
}

func TestScoreBoundsAndPartition(t *testing.T) {
	parser := resume.NewParser(nil)
	extractor := requirements.NewExtractor(nil)

	resumes := []string{
		"",
		"Jane Doe\nSenior Go Lang Developer 2018 - 2024\n- Docker, Kubernetes, AWS\nLead Engineer\nManager\nAnalyst\nMaster of Science\nPhD in CS\nBachelor of Arts\nProjects:\nProject one\nProject two\nProject three\nProject four\nProject five",
		strings.Repeat("python react javascript docker sql\n", 20),
	}
	jobs := []string{
		"",
		"Looking for 5+ years experience with Python, React, Docker and SQL.",
		"We need 1 year of experience. " + strings.Repeat("golang kubernetes aws terraform ", 10),
	}

	for _, text := range resumes {
		r := parser.Parse(text)
		for _, jd := range jobs {
			reqs := extractor.Extract(jd)
			s := Score(r, reqs)

			if s.Skills < 0 || s.Skills > MaxSkills ||
				s.Experience < 0 || s.Experience > MaxExperience ||
				s.Education < 0 || s.Education > MaxEducation ||
				s.Projects < 0 || s.Projects > MaxProjects {
				t.Fatalf("sub-score out of bounds: %+v", s)
			}
			if s.Total != s.Skills+s.Experience+s.Education+s.Projects || s.Total > 100 {
				t.Fatalf("total mismatch: %+v", s)
			}

			union := append(slices.Clone(s.Matched), s.Missing...)
			slices.Sort(union)
			required := slices.Clone(reqs.RequiredSkills)
			slices.Sort(required)
			if !slices.Equal(union, required) {
				t.Fatalf("partition union %v != required %v", union, required)
			}
			for _, m := range s.Matched {
				if slices.Contains(s.Missing, m) {
					t.Fatalf("%q both matched and missing", m)
				}
			}
		}
	}
}

func TestPartitionIgnoresCase(t *testing.T) {
	r := &resume.Resume{Skills: []resume.Skill{{Name: "react"}, {Name: "docker"}}}

	matched, missing := Partition(r, []string{"React", "go"})
	if !slices.Equal(matched, []string{"React"}) || !slices.Equal(missing, []string{"go"}) {
		t.Fatalf("unexpected partition %v / %v", matched, missing)
	}
}
