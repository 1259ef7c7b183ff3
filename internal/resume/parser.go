package resume

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/jobstir/internal/dictionary"
)

const (
	maxNameLength      = 50
	confidencePerMatch = 0.3
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	digitRe = regexp.MustCompile(`\d`)

	titleRe     = regexp.MustCompile(`(?i)\b(?:engineer|developer|manager|analyst|consultant|director|specialist|coordinator|supervisor|lead)s?\b`)
	dateRangeRe = regexp.MustCompile(`(?i)\b(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+)?(?:19|20)\d{2}\s*(?:-|–|—|to)\s*(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+)?(?:(?:19|20)\d{2}|present|current|now)\b`)

	educationRe = regexp.MustCompile(`(?i)\b(?:bachelor|master|ph\.?d|doctorate|associate|diploma|certificate)(?:'?s)?\b(?:\s+(?:in|of)\s+[^\n,;|()]+)?`)

	projectRe        = regexp.MustCompile(`(?i)\bprojects?\b`)
	projectHeadingRe = regexp.MustCompile(`(?i)^(?:key |personal |selected |academic |side |notable )?projects?\s*:?$`)
	projectCloseRe   = regexp.MustCompile(`(?i)\b(?:experience|education)\b`)
	urlRe            = regexp.MustCompile(`https?://[^\s)>\]]+`)

	sectionHeadingRe = regexp.MustCompile(`(?i)^(?:education|skills|technical skills|projects|certifications|achievements|awards|interests|languages|summary|profile)\s*:?$`)

	achievementRe = regexp.MustCompile(`(?i)\b(?:achieved|accomplished|delivered|improved|increased|reduced|managed|led)\b[^.\n;]*`)
)

// Parser extracts structured fields from resume text with a fixed set of
// patterns and the injected skill dictionary.
type Parser struct {
	dict *dictionary.Dictionary
}

// NewParser creates a parser. A nil dictionary selects the embedded default.
func NewParser(dict *dictionary.Dictionary) *Parser {
	if dict == nil {
		dict = dictionary.Default()
	}
	return &Parser{dict: dict}
}

// Parse never fails: anything that cannot be recognized is left out of the result.
func (p *Parser) Parse(text string) *Resume {
	lines := splitLines(text)

	return &Resume{
		RawText:      text,
		Contact:      extractContact(text, lines),
		Skills:       p.extractSkills(text),
		Experience:   extractExperience(lines),
		Education:    extractEducation(text),
		Projects:     extractProjects(lines),
		Achievements: extractAchievements(text),
	}
}

func extractContact(text string, lines []string) Contact {
	var c Contact

	if email := emailRe.FindString(text); email != "" {
		c.Email = &email
	}

	if phone := phoneRe.FindString(text); phone != "" {
		phone = strings.TrimSpace(phone)
		c.Phone = &phone
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		if !digitRe.MatchString(line) && !strings.Contains(line, "@") && utf8.RuneCountInString(line) < maxNameLength {
			name := line
			c.Name = &name
		}
		// only the first non-empty line is considered
		break
	}

	return c
}

func (p *Parser) extractSkills(text string) []Skill {
	folded := dictionary.Fold(text)
	if folded == "" {
		return []Skill{}
	}

	skills := make([]Skill, 0)
	seen := make(map[string]int)

	for _, entry := range p.dict.Skills() {
		occurrences := 0
		for _, term := range entry.Terms() {
			occurrences += strings.Count(folded, dictionary.Fold(term))
		}
		if occurrences == 0 {
			continue
		}

		confidence := math.Min(float64(occurrences)*confidencePerMatch, 1.0)
		confidence = math.Round(confidence*100) / 100

		if idx, ok := seen[entry.Name]; ok {
			if confidence > skills[idx].Confidence {
				skills[idx].Confidence = confidence
			}
			continue
		}

		seen[entry.Name] = len(skills)
		skills = append(skills, Skill{
			Name:       entry.Name,
			Category:   entry.Category,
			Confidence: confidence,
		})
	}

	return skills
}

func extractExperience(lines []string) []Experience {
	experience := make([]Experience, 0)
	var current *Experience

	closeCurrent := func() {
		if current != nil {
			experience = append(experience, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if line == "" {
			continue
		}

		if bullet, ok := trimBullet(line); ok {
			if current != nil && bullet != "" {
				current.Description = append(current.Description, bullet)
			}
			continue
		}

		if sectionHeadingRe.MatchString(line) {
			closeCurrent()
			continue
		}

		if !titleRe.MatchString(line) {
			continue
		}

		closeCurrent()

		title := line
		entry := Experience{Description: []string{}}
		if duration := dateRangeRe.FindString(line); duration != "" {
			duration = strings.TrimSpace(duration)
			entry.Duration = &duration
			title = strings.Replace(title, duration, "", 1)
		}
		entry.Title = strings.Trim(strings.TrimSpace(title), " |,-–—()")
		if entry.Title == "" {
			entry.Title = line
		}

		current = &entry
	}

	closeCurrent()

	return experience
}

func extractEducation(text string) []Education {
	matches := educationRe.FindAllString(text, -1)
	education := make([]Education, 0, len(matches))
	for _, m := range matches {
		if m = strings.TrimSpace(m); m != "" {
			education = append(education, Education{Degree: m})
		}
	}
	return education
}

func extractProjects(lines []string) []Project {
	projects := make([]Project, 0)
	var current *Project

	closeCurrent := func() {
		if current == nil {
			return
		}
		if link := findLink(current); link != "" {
			current.Link = &link
		}
		projects = append(projects, *current)
		current = nil
	}

	for _, line := range lines {
		if line == "" {
			continue
		}

		if bullet, ok := trimBullet(line); ok {
			if current != nil && bullet != "" {
				current.Description = append(current.Description, bullet)
			}
			continue
		}

		if projectHeadingRe.MatchString(line) {
			closeCurrent()
			continue
		}

		if projectRe.MatchString(line) {
			closeCurrent()
			current = &Project{Title: line, Description: []string{}}
			continue
		}

		if projectCloseRe.MatchString(line) {
			closeCurrent()
		}
	}

	closeCurrent()

	return projects
}

func findLink(p *Project) string {
	if link := urlRe.FindString(p.Title); link != "" {
		return link
	}
	for _, line := range p.Description {
		if link := urlRe.FindString(line); link != "" {
			return link
		}
	}
	return ""
}

func extractAchievements(text string) []string {
	matches := achievementRe.FindAllString(text, -1)
	achievements := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(strings.TrimSpace(m), ",:")
		if m != "" {
			achievements = append(achievements, m)
		}
	}
	return achievements
}

// trimBullet reports whether the line is a bullet item and returns its text.
func trimBullet(line string) (string, bool) {
	for _, prefix := range []string{"•", "-"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}
