// Package matching ranks job postings against a parsed resume using literal
// word and skill overlap.
package matching

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/spigell/jobstir/internal/dictionary"
	"github.com/spigell/jobstir/internal/jobs"
	"github.com/spigell/jobstir/internal/resume"
)

const (
	// CorpusLimit is the number of recommendations for a full corpus scan.
	CorpusLimit = 8
	// FreeLimit is the number of recommendations shown on the free tier.
	FreeLimit = 5

	skillWeight       = 0.4
	titleWeight       = 0.3
	descriptionWeight = 0.2
	levelWeight       = 0.1

	// MinSimilarity is exclusive.
	MinSimilarity = 0.1

	yearsPerEntry      = 2
	maxEstimatedYears  = 15
	levelDecayYears    = 5
	unknownLevelFit    = 0.5
	descriptionWords   = 100
	minDescriptionWord = 4
	strongFactorCutoff = 0.5
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}+#]+`)

type Recommendation struct {
	JobID               string   `json:"job_id"`
	Title               string   `json:"title"`
	Company             string   `json:"company"`
	URL                 string   `json:"url,omitempty"`
	SimilarityScore     float64  `json:"similarity_score"`
	MatchedRequirements []string `json:"matched_requirements"`
	MatchReasons        []string `json:"match_reasons"`
	Breakdown           Factors  `json:"breakdown"`
}

// Factors are the individual signals, each in 0..1, before weighting.
type Factors struct {
	Skills      float64 `json:"skills"`
	Title       float64 `json:"title"`
	Description float64 `json:"description"`
	Level       float64 `json:"level"`
}

// Similarity returns the weighted sum of the factors.
func (f Factors) Similarity() float64 {
	return f.Skills*skillWeight + f.Title*titleWeight + f.Description*descriptionWeight + f.Level*levelWeight
}

type Matcher struct {
	dict *dictionary.Dictionary
}

// NewMatcher creates a matcher. A nil dictionary selects the embedded default.
func NewMatcher(dict *dictionary.Dictionary) *Matcher {
	if dict == nil {
		dict = dictionary.Default()
	}
	return &Matcher{dict: dict}
}

// Rank scores every active posting and returns those above MinSimilarity,
// highest first. Equal scores keep input order. A non-positive limit selects
// CorpusLimit.
func (m *Matcher) Rank(r *resume.Resume, postings *jobs.Postings, limit int) []Recommendation {
	if limit <= 0 {
		limit = CorpusLimit
	}

	ranked := make([]Recommendation, 0)
	if postings == nil {
		return ranked
	}

	blob := r.Blob()

	for _, posting := range postings.Items {
		if posting == nil || !posting.IsActive() {
			continue
		}

		rec := m.Score(r, blob, posting)
		if rec.SimilarityScore > MinSimilarity {
			ranked = append(ranked, rec)
		}
	}

	slices.SortStableFunc(ranked, func(a, b Recommendation) int {
		switch {
		case a.SimilarityScore > b.SimilarityScore:
			return -1
		case a.SimilarityScore < b.SimilarityScore:
			return 1
		default:
			return 0
		}
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// Score computes the recommendation for one posting. blob is r.Blob(), passed in
// so it is built once per ranking.
func (m *Matcher) Score(r *resume.Resume, blob string, posting *jobs.Posting) Recommendation {
	matched, skills := m.skillOverlap(r, posting.Requirements)
	title, bestTitle := titleSimilarity(posting.Title, r.Experience)

	f := Factors{
		Skills:      skills,
		Title:       title,
		Description: descriptionOverlap(posting.Description, blob),
		Level:       levelFit(len(r.Experience), posting.ExperienceLevel),
	}

	return Recommendation{
		JobID:               posting.ID,
		Title:               posting.Title,
		Company:             posting.Company,
		URL:                 posting.URL,
		SimilarityScore:     math.Round(f.Similarity()*1000) / 1000,
		MatchedRequirements: matched,
		MatchReasons:        reasons(f, matched, posting, bestTitle),
		Breakdown:           f,
	}
}

func (m *Matcher) skillOverlap(r *resume.Resume, requirements []string) ([]string, float64) {
	matched := make([]string, 0)

	total := 0
	for _, req := range requirements {
		req = strings.TrimSpace(req)
		if req == "" {
			continue
		}
		total++

		for _, term := range m.dict.Synonyms(req) {
			if r.HasSkill(term) {
				matched = append(matched, req)
				break
			}
		}
	}

	if total == 0 {
		return matched, 0
	}

	return matched, float64(len(matched)) / float64(total)
}

func titleSimilarity(jobTitle string, experience []resume.Experience) (float64, string) {
	jobWords := uniqueWords(jobTitle)
	if len(jobWords) == 0 {
		return 0, ""
	}

	best, bestTitle := 0.0, ""
	for _, e := range experience {
		expWords := uniqueWords(e.Title)

		common := 0
		for _, w := range jobWords {
			if slices.Contains(expWords, w) {
				common++
			}
		}

		if ratio := float64(common) / float64(len(jobWords)); ratio > best {
			best, bestTitle = ratio, e.Title
		}
	}

	return best, bestTitle
}

func descriptionOverlap(description, blob string) float64 {
	words := wordRe.FindAllString(strings.ToLower(description), -1)
	if len(words) > descriptionWords {
		words = words[:descriptionWords]
	}

	seen := make(map[string]struct{})
	present, total := 0, 0
	for _, w := range words {
		if len(w) < minDescriptionWord {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}

		total++
		if strings.Contains(blob, w) {
			present++
		}
	}

	if total == 0 {
		return 0
	}

	return float64(present) / float64(total)
}

// levelFit estimates years as entries × 2 capped at 15. Inside the band the fit
// is 1 and it decays linearly to 0 over five years outside of it.
func levelFit(entries int, level jobs.Level) float64 {
	band, ok := level.Band()
	if !ok {
		return unknownLevelFit
	}

	years := math.Min(float64(entries*yearsPerEntry), maxEstimatedYears)

	var distance float64
	switch {
	case years < band.Min:
		distance = band.Min - years
	case years > band.Max:
		distance = years - band.Max
	default:
		return 1
	}

	return math.Max(0, 1-distance/levelDecayYears)
}

func reasons(f Factors, matched []string, posting *jobs.Posting, bestTitle string) []string {
	out := make([]string, 0, 4)

	if len(matched) > 0 {
		out = append(out, fmt.Sprintf("Matches %d of %d required skills: %s",
			len(matched), len(posting.Requirements), strings.Join(matched, ", ")))
	}
	if f.Title >= strongFactorCutoff && bestTitle != "" {
		out = append(out, fmt.Sprintf("Similar role: %s", bestTitle))
	}
	if f.Description >= strongFactorCutoff {
		out = append(out, "Job description overlaps your background")
	}
	if f.Level == 1 {
		out = append(out, fmt.Sprintf("Experience fits %s level", posting.ExperienceLevel))
	}

	return out
}

func uniqueWords(s string) []string {
	words := wordRe.FindAllString(strings.ToLower(s), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}
