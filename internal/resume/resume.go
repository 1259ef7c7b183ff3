// Package resume turns free-form resume text into a structured, read-only snapshot.
package resume

import (
	"strings"

	"github.com/spigell/jobstir/internal/dictionary"
)

// Resume is the parsed form of one resume submission. Fields that could not be
// extracted are nil or empty; a Resume is never modified after Parse returns it.
type Resume struct {
	RawText      string       `json:"raw_text"`
	Contact      Contact      `json:"contact"`
	Skills       []Skill      `json:"skills"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Projects     []Project    `json:"projects"`
	Achievements []string     `json:"achievements"`
}

type Contact struct {
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Name  *string `json:"name,omitempty"`
}

// Skill is a dictionary skill found in the text. Confidence grows with the
// number of occurrences and is capped at 1.
type Skill struct {
	Name       string              `json:"name"`
	Category   dictionary.Category `json:"category"`
	Confidence float64             `json:"confidence"`
}

type Experience struct {
	Title       string   `json:"title"`
	Duration    *string  `json:"duration,omitempty"`
	Description []string `json:"description"`
}

type Education struct {
	Degree string `json:"degree"`
}

type Project struct {
	Title       string   `json:"title"`
	Description []string `json:"description"`
	Link        *string  `json:"link,omitempty"`
}

// SkillNames returns the canonical skill names in extraction order.
func (r *Resume) SkillNames() []string {
	names := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		names = append(names, s.Name)
	}
	return names
}

// HasSkill reports whether a skill with the given name was extracted. The
// comparison ignores case.
func (r *Resume) HasSkill(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range r.Skills {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Blob flattens the structured fields into one lowercase string used for
// literal keyword overlap checks.
func (r *Resume) Blob() string {
	var b strings.Builder
	write := func(s string) {
		if s == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToLower(s))
	}

	for _, s := range r.Skills {
		write(s.Name)
	}
	for _, e := range r.Experience {
		write(e.Title)
		for _, line := range e.Description {
			write(line)
		}
	}
	for _, e := range r.Education {
		write(e.Degree)
	}
	for _, p := range r.Projects {
		write(p.Title)
		for _, line := range p.Description {
			write(line)
		}
	}
	for _, a := range r.Achievements {
		write(a)
	}

	return b.String()
}
