// Package ai defines the optional narrative review of an evaluation. A review is
// advisory: it is attached to the result and never changes any score.
package ai

import "context"

type ReviewInput struct {
	ResumeText     string   `json:"resume_text"`
	JobDescription string   `json:"job_description"`
	TotalScore     int      `json:"total_score"`
	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Summary        string   `json:"summary"`
}

type Review struct {
	Verdict     string   `json:"verdict"`
	Score       float64  `json:"score"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	Raw         string   `json:"-"`
}

type Reviewer interface {
	Review(ctx context.Context, in *ReviewInput) (*Review, error)
}
