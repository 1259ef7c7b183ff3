// Package scoring computes the weighted match score of a parsed resume against
// extracted job requirements.
//
// Every sub-score is an integer bounded by its cap, and the total is their sum:
//
//	skills      <= 35
//	experience  <= 25
//	education   <= 20
//	projects    <= 20
package scoring

import (
	"math"
	"regexp"

	"github.com/spigell/jobstir/internal/requirements"
	"github.com/spigell/jobstir/internal/resume"
)

const (
	MaxSkills     = 35
	MaxExperience = 25
	MaxEducation  = 20
	MaxProjects   = 20

	defaultSkills     = 25
	defaultExperience = 20
	defaultEducation  = 10

	yearsPerEntry       = 1.5
	pointsPerDegree     = 8
	advancedDegreeBonus = 5
	pointsPerProject    = 5
)

var advancedDegreeRe = regexp.MustCompile(`(?i)master|ph\.?d`)

type Scores struct {
	Skills     int `json:"skills_score"`
	Experience int `json:"experience_score"`
	Education  int `json:"education_score"`
	Projects   int `json:"project_score"`
	Total      int `json:"total_score"`

	// Matched and Missing partition the required skills.
	Matched []string `json:"matched_keywords"`
	Missing []string `json:"missing_keywords"`
}

// Score is deterministic and has no side effects.
func Score(r *resume.Resume, reqs requirements.Requirements) Scores {
	matched, missing := Partition(r, reqs.RequiredSkills)

	s := Scores{
		Skills:     skillsScore(len(matched), len(reqs.RequiredSkills)),
		Experience: experienceScore(len(r.Experience), reqs.ExperienceYears),
		Education:  educationScore(r.Education),
		Projects:   projectScore(len(r.Projects)),
		Matched:    matched,
		Missing:    missing,
	}
	s.Total = s.Skills + s.Experience + s.Education + s.Projects

	return s
}

// Partition splits required skills by membership in the resume skill set.
// Both results are non-nil and keep the order of required.
func Partition(r *resume.Resume, required []string) (matched, missing []string) {
	matched = make([]string, 0, len(required))
	missing = make([]string, 0, len(required))

	for _, skill := range required {
		if r.HasSkill(skill) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	return matched, missing
}

func skillsScore(matched, required int) int {
	if required == 0 {
		return defaultSkills
	}

	ratio := float64(matched) / float64(required)
	return capped(math.Floor(ratio*MaxSkills), MaxSkills)
}

// experienceScore approximates years as entries × 1.5; dates are not parsed.
func experienceScore(entries, requiredYears int) int {
	if requiredYears <= 0 {
		return defaultExperience
	}

	ratio := math.Min(float64(entries)*yearsPerEntry/float64(requiredYears), 1.0)
	return capped(math.Floor(ratio*MaxExperience), MaxExperience)
}

func educationScore(education []resume.Education) int {
	if len(education) == 0 {
		return defaultEducation
	}

	score := len(education) * pointsPerDegree
	for _, e := range education {
		if advancedDegreeRe.MatchString(e.Degree) {
			score += advancedDegreeBonus
			break
		}
	}

	return min(score, MaxEducation)
}

func projectScore(projects int) int {
	return min(projects*pointsPerProject, MaxProjects)
}

func capped(v float64, limit int) int {
	if v < 0 {
		return 0
	}
	return min(int(v), limit)
}
