// Package requirements extracts skills, required experience and frequent
// keywords from a job description.
package requirements

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/jobstir/internal/dictionary"
)

const (
	maxKeywords      = 20
	minKeywordLength = 3
)

var (
	yearsRe = regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*(?:of\s+)?experience`)
	splitRe = regexp.MustCompile(`\W+`)
)

// Requirements is derived from one job description and recomputed on every evaluation.
type Requirements struct {
	// RequiredSkills holds canonical dictionary names in dictionary order.
	RequiredSkills []string `json:"required_skills"`
	// ExperienceYears is 0 when the description does not state it.
	ExperienceYears int      `json:"experience_years"`
	Keywords        []string `json:"keywords"`
}

type Extractor struct {
	dict *dictionary.Dictionary
}

// NewExtractor creates an extractor. A nil dictionary selects the embedded default.
func NewExtractor(dict *dictionary.Dictionary) *Extractor {
	if dict == nil {
		dict = dictionary.Default()
	}
	return &Extractor{dict: dict}
}

// Extract is a pure function of jobDescription.
func (e *Extractor) Extract(jobDescription string) Requirements {
	folded := dictionary.Fold(jobDescription)

	return Requirements{
		RequiredSkills:  e.requiredSkills(folded),
		ExperienceYears: experienceYears(jobDescription),
		Keywords:        e.keywords(folded),
	}
}

func (e *Extractor) requiredSkills(folded string) []string {
	skills := make([]string, 0)
	if folded == "" {
		return skills
	}

	for _, s := range e.dict.Skills() {
		if strings.Contains(folded, s.Name) {
			skills = append(skills, s.Name)
		}
	}

	return skills
}

func experienceYears(text string) int {
	m := yearsRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	years, err := strconv.Atoi(m[1])
	if err != nil || years < 0 {
		return 0
	}

	return years
}

func (e *Extractor) keywords(folded string) []string {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, token := range splitRe.Split(folded, -1) {
		if len(token) < minKeywordLength || e.dict.IsStopword(token) {
			continue
		}
		if _, seen := counts[token]; !seen {
			order = append(order, token)
		}
		counts[token]++
	}

	// stable: equal counts keep first-occurrence order
	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	return order
}
