package matching

import (
	"math"
	"slices"
	"testing"

	"github.com/spigell/jobstir/internal/jobs"
	"github.com/spigell/jobstir/internal/resume"
)

const backendResume = `Alex Kim
Backend Developer 2019 - 2024
- Built Golang services with Docker and Kubernetes
- Designed PostgreSQL schemas`

func TestRankOrdersByOverlap(t *testing.T) {
	r := resume.NewParser(nil).Parse(backendResume)
	if got := r.SkillNames(); !slices.Equal(got, []string{"golang", "sql", "docker", "kubernetes"}) {
		t.Fatalf("unexpected parsed skills %v", got)
	}

	postings := &jobs.Postings{Items: []*jobs.Posting{
		{
			ID:           "design",
			Title:        "Product Designer",
			Description:  "Create wireframes in Figma and run user interviews",
			Requirements: []string{"figma", "communication", "creativity"},
			Status:       jobs.StatusActive,
		},
		{
			ID:           "backend",
			Title:        "Backend Developer",
			Description:  "Build services with Docker and Kubernetes",
			Requirements: []string{"go", "docker", "kubernetes"},
			Status:       jobs.StatusActive,
		},
	}}

	ranked := NewMatcher(nil).Rank(r, postings, 0)
	if len(ranked) == 0 || ranked[0].JobID != "backend" {
		t.Fatalf("expected backend posting first, got %+v", ranked)
	}

	top := ranked[0]
	if top.Breakdown.Skills != 1 {
		t.Fatalf("expected full skill overlap through synonyms, got %v", top.Breakdown.Skills)
	}
	if top.SimilarityScore < skillWeight {
		t.Fatalf("expected at least the skill contribution, got %v", top.SimilarityScore)
	}
	if !slices.Equal(top.MatchedRequirements, []string{"go", "docker", "kubernetes"}) {
		t.Fatalf("unexpected matched requirements %v", top.MatchedRequirements)
	}
	if len(top.MatchReasons) == 0 {
		t.Fatalf("expected match reasons")
	}

	for _, rec := range ranked[1:] {
		if rec.SimilarityScore >= top.SimilarityScore {
			t.Fatalf("expected design posting to score lower, got %+v", rec)
		}
	}
}

func TestRankFiltersAndLimits(t *testing.T) {
	r := resume.NewParser(nil).Parse(backendResume)

	items := make([]*jobs.Posting, 0, 12)
	for i := 0; i < 10; i++ {
		items = append(items, &jobs.Posting{
			ID:           string(rune('a' + i)),
			Title:        "Backend Developer",
			Requirements: []string{"docker"},
			Status:       jobs.StatusActive,
		})
	}
	items = append(items,
		&jobs.Posting{ID: "archived", Title: "Backend Developer", Requirements: []string{"docker"}, Status: jobs.StatusArchived},
		&jobs.Posting{ID: "irrelevant", Title: "Chef", Requirements: []string{"cooking"}, Status: jobs.StatusActive},
	)
	postings := &jobs.Postings{Items: items}

	m := NewMatcher(nil)

	ranked := m.Rank(r, postings, CorpusLimit)
	if len(ranked) != CorpusLimit {
		t.Fatalf("expected %d recommendations, got %d", CorpusLimit, len(ranked))
	}

	ids := make([]string, 0, len(ranked))
	for i, rec := range ranked {
		if rec.SimilarityScore <= MinSimilarity {
			t.Fatalf("recommendation below threshold: %+v", rec)
		}
		if i > 0 && rec.SimilarityScore > ranked[i-1].SimilarityScore {
			t.Fatalf("ranking not sorted at %d", i)
		}
		ids = append(ids, rec.JobID)
	}
	// equal scores keep input order
	if !slices.Equal(ids, []string{"a", "b", "c", "d", "e", "f", "g", "h"}) {
		t.Fatalf("unexpected order %v", ids)
	}

	if free := m.Rank(r, postings, FreeLimit); len(free) != FreeLimit {
		t.Fatalf("expected %d free recommendations, got %d", FreeLimit, len(free))
	}

	for _, rec := range m.Rank(r, postings, 50) {
		if rec.JobID == "archived" || rec.JobID == "irrelevant" {
			t.Fatalf("unexpected posting %q in ranking", rec.JobID)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	r := resume.NewParser(nil).Parse("")

	if ranked := NewMatcher(nil).Rank(r, nil, 0); ranked == nil || len(ranked) != 0 {
		t.Fatalf("expected empty non-nil ranking, got %v", ranked)
	}
}

func TestTitleSimilarity(t *testing.T) {
	experience := []resume.Experience{{Title: "Data Analyst"}, {Title: "Senior Software Engineer"}}

	got, title := titleSimilarity("Software Engineer", experience)
	if got != 1 || title != "Senior Software Engineer" {
		t.Fatalf("expected full overlap with second title, got %v %q", got, title)
	}

	got, _ = titleSimilarity("Senior Data Engineer", experience)
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Fatalf("expected 2/3, got %v", got)
	}

	if got, _ := titleSimilarity("", experience); got != 0 {
		t.Fatalf("expected 0 for empty title, got %v", got)
	}
}

func TestDescriptionOverlap(t *testing.T) {
	blob := "built docker images for kubernetes clusters"

	// unique long words: docker, kubernetes, again, cats
	if got := descriptionOverlap("Docker and Kubernetes, docker again; cats", blob); math.Abs(got-2.0/4.0) > 1e-9 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := descriptionOverlap("a an to", blob); got != 0 {
		t.Fatalf("expected 0 without long words, got %v", got)
	}
}

func TestLevelFit(t *testing.T) {
	tests := []struct {
		entries int
		level   jobs.Level
		want    float64
	}{
		{entries: 0, level: jobs.LevelEntry, want: 1},
		{entries: 1, level: jobs.LevelMid, want: 1},
		{entries: 0, level: jobs.LevelSenior, want: 0},
		{entries: 2, level: jobs.LevelSenior, want: 0.8},
		{entries: 10, level: jobs.LevelExecutive, want: 1},
		{entries: 5, level: jobs.LevelEntry, want: 0},
		{entries: 2, level: "", want: unknownLevelFit},
	}

	for _, tt := range tests {
		if got := levelFit(tt.entries, tt.level); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("levelFit(%d, %q) = %v, want %v", tt.entries, tt.level, got, tt.want)
		}
	}
}
