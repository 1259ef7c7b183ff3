package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/jobstir/internal/jobs"
)

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary *Salary `json:"salary,omitempty"`
	// Experience ids: noExperience, between1And3, between3And6, moreThan6.
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Schedule struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Employment   struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employment,omitempty"`
	Description string `json:"description,omitempty"`
	KeySkills   []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Archived bool `json:"archived,omitempty"`
	Snippet  struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

type Salary struct {
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
	Gross    bool   `json:"gross,omitempty"`
}

func (v *Vacancies) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

// GetVacancy fetches a single vacancy with its full description and key skills.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("vacancy id is required")
	}

	endpoint := fmt.Sprintf("%s/vacancies/%s", c.APIURL, url.PathEscape(id))

	var vacancy Vacancy
	if err := c.getJSON(ctx, endpoint, nil, &vacancy); err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", id, err)
	}

	return &vacancy, nil
}

var blockEndRe = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|li|ul|ol|div|h[1-6])>`)

var experienceLevels = map[string]jobs.Level{
	"noExperience": jobs.LevelEntry,
	"between1And3": jobs.LevelMid,
	"between3And6": jobs.LevelSenior,
	"moreThan6":    jobs.LevelExecutive,
}

// ToPosting converts the vacancy into the corpus model. HTML in descriptions
// and snippets is reduced to text.
func (va *Vacancy) ToPosting() *jobs.Posting {
	description := htmlText(va.Description)
	if description == "" {
		description = strings.TrimSpace(htmlText(va.Snippet.Requirement) + "\n" + htmlText(va.Snippet.Responsibility))
	}

	requirements := make([]string, 0, len(va.KeySkills))
	for _, skill := range va.KeySkills {
		if name := strings.ToLower(strings.TrimSpace(skill.Name)); name != "" {
			requirements = append(requirements, name)
		}
	}

	status := jobs.StatusActive
	if va.Archived {
		status = jobs.StatusArchived
	}

	remote := va.Schedule.Name
	if va.Schedule.ID == "remote" {
		remote = "remote"
	}

	return &jobs.Posting{
		ID:              va.ID,
		Title:           va.Name,
		Company:         va.Employer.Name,
		Location:        va.Area.Name,
		Type:            va.Employment.Name,
		SalaryText:      va.Salary.String(),
		Description:     description,
		Requirements:    requirements,
		RemoteOption:    remote,
		ExperienceLevel: experienceLevels[va.Experience.ID],
		Status:          status,
		URL:             va.AlternateURL,
	}
}

func (s *Salary) String() string {
	if s == nil || (s.From == 0 && s.To == 0) {
		return ""
	}

	var amount string
	switch {
	case s.From > 0 && s.To > 0:
		amount = fmt.Sprintf("%d-%d", s.From, s.To)
	case s.From > 0:
		amount = fmt.Sprintf("from %d", s.From)
	default:
		amount = fmt.Sprintf("up to %d", s.To)
	}

	return strings.TrimSpace(amount + " " + s.Currency)
}

// htmlText strips markup. Block elements become line breaks so bullet lists
// keep one item per line.
func htmlText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blockEndRe.ReplaceAllString(s, "$0\n")))
	if err != nil {
		return strings.TrimSpace(s)
	}

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
