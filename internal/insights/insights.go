// Package insights turns scores into the human readable feedback shown next to
// an evaluation. Texts are part of the public output and must stay stable.
package insights

import (
	"fmt"
	"strings"

	"github.com/spigell/jobstir/internal/requirements"
	"github.com/spigell/jobstir/internal/resume"
	"github.com/spigell/jobstir/internal/scoring"
)

const (
	SummaryExcellent = "Excellent match! Your profile aligns strongly with the job requirements."
	SummaryGood      = "Good match with room for improvement in specific areas."
	SummaryPotential = "Shows potential but needs development in key areas."
	SummaryGaps      = "Significant gaps exist between your profile and the job requirements."

	StrengthSkills       = "Diverse technical skill set"
	StrengthExperience   = "Solid work experience"
	StrengthProjects     = "Hands-on project experience"
	StrengthAchievements = "Demonstrated achievements"

	ImprovementProjects     = "Add more project examples to showcase your abilities"
	ImprovementAchievements = "Highlight specific achievements and their impact"

	SuggestionSkills     = "Focus on developing key technical skills"
	SuggestionExperience = "Emphasize relevant work experience"
	SuggestionMetrics    = "Quantify achievements with specific metrics"
	SuggestionKeywords   = "Tailor resume keywords to match the job description"
)

const (
	maxListedMissing = 3

	excellentBand = 80
	goodBand      = 60
	potentialBand = 40
)

type Insights struct {
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	QuickSuggestions []string `json:"quick_suggestions"`
	Reasoning        []string `json:"reasoning"`
	Summary          string   `json:"summary"`
}

// Generate applies every matching rule in a fixed order. The output depends only
// on the arguments.
func Generate(r *resume.Resume, reqs requirements.Requirements, s scoring.Scores) Insights {
	in := Insights{
		Strengths:        make([]string, 0),
		Improvements:     make([]string, 0),
		QuickSuggestions: make([]string, 0),
		Summary:          Summary(s.Total),
	}

	if len(r.Skills) > 5 {
		in.Strengths = append(in.Strengths, StrengthSkills)
	}
	if len(r.Experience) > 2 {
		in.Strengths = append(in.Strengths, StrengthExperience)
	}
	if len(r.Projects) > 0 {
		in.Strengths = append(in.Strengths, StrengthProjects)
	}
	if len(r.Achievements) > 0 {
		in.Strengths = append(in.Strengths, StrengthAchievements)
	}

	if len(s.Missing) > 0 {
		listed := s.Missing[:min(len(s.Missing), maxListedMissing)]
		in.Improvements = append(in.Improvements, "Consider developing skills in: "+strings.Join(listed, ", "))
	}
	if len(r.Projects) < 2 {
		in.Improvements = append(in.Improvements, ImprovementProjects)
	}
	if len(r.Achievements) == 0 {
		in.Improvements = append(in.Improvements, ImprovementAchievements)
	}

	if s.Skills < 25 {
		in.QuickSuggestions = append(in.QuickSuggestions, SuggestionSkills)
	}
	if s.Experience < 15 {
		in.QuickSuggestions = append(in.QuickSuggestions, SuggestionExperience)
	}
	if len(s.Missing) > 0 {
		in.QuickSuggestions = append(in.QuickSuggestions, fmt.Sprintf("Learn %s to improve match score", s.Missing[0]))
	}
	in.QuickSuggestions = append(in.QuickSuggestions, SuggestionMetrics, SuggestionKeywords)

	in.Reasoning = reasoning(r, reqs, s)

	return in
}

// Summary selects the overall assessment for a total score.
func Summary(total int) string {
	switch {
	case total >= excellentBand:
		return SummaryExcellent
	case total >= goodBand:
		return SummaryGood
	case total >= potentialBand:
		return SummaryPotential
	default:
		return SummaryGaps
	}
}

func reasoning(r *resume.Resume, reqs requirements.Requirements, s scoring.Scores) []string {
	lines := make([]string, 0, 4)

	if len(reqs.RequiredSkills) == 0 {
		lines = append(lines, fmt.Sprintf("Skills: no specific skills detected in the job description (%d/%d)", s.Skills, scoring.MaxSkills))
	} else {
		lines = append(lines, fmt.Sprintf("Skills: matched %d of %d required skills (%d/%d)",
			len(s.Matched), len(reqs.RequiredSkills), s.Skills, scoring.MaxSkills))
	}

	if reqs.ExperienceYears == 0 {
		lines = append(lines, fmt.Sprintf("Experience: no minimum experience stated, %d roles found (%d/%d)",
			len(r.Experience), s.Experience, scoring.MaxExperience))
	} else {
		lines = append(lines, fmt.Sprintf("Experience: %d roles found for %d required years (%d/%d)",
			len(r.Experience), reqs.ExperienceYears, s.Experience, scoring.MaxExperience))
	}

	if len(r.Education) == 0 {
		lines = append(lines, fmt.Sprintf("Education: none listed, experience-based profile (%d/%d)", s.Education, scoring.MaxEducation))
	} else {
		lines = append(lines, fmt.Sprintf("Education: %d entries found (%d/%d)", len(r.Education), s.Education, scoring.MaxEducation))
	}

	lines = append(lines, fmt.Sprintf("Projects: %d projects found (%d/%d)", len(r.Projects), s.Projects, scoring.MaxProjects))

	return lines
}
