// Package dictionary holds the static skill, synonym and stopword tables shared by
// the resume parser, the requirement extractor and the job matcher.
//
// A Dictionary is immutable once built. Components receive it through their
// constructors instead of reading package level maps.
package dictionary

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category classifies a skill.
type Category string

const (
	Technical Category = "technical"
	Soft      Category = "soft"
)

// Skill is a dictionary entry. Name is the canonical lowercase name.
type Skill struct {
	Name     string
	Category Category
	Aliases  []string
}

// Terms returns the canonical name followed by all aliases.
func (s Skill) Terms() []string {
	terms := make([]string, 0, len(s.Aliases)+1)
	terms = append(terms, s.Name)
	return append(terms, s.Aliases...)
}

type Dictionary struct {
	skills    []Skill
	index     map[string]int
	synonyms  map[string][]string
	stopwords map[string]struct{}
}

//go:embed dictionary.yaml
var defaultTable []byte

var defaultDictionary = sync.OnceValues(func() (*Dictionary, error) {
	return Parse(defaultTable)
})

// Default returns the dictionary embedded into the binary.
func Default() *Dictionary {
	d, err := defaultDictionary()
	if err != nil {
		panic(fmt.Sprintf("embedded dictionary is invalid: %v", err))
	}
	return d
}

type table struct {
	Skills struct {
		Technical []tableEntry `yaml:"technical"`
		Soft      []tableEntry `yaml:"soft"`
	} `yaml:"skills"`
	Synonyms  [][]string `yaml:"synonyms"`
	Stopwords []string   `yaml:"stopwords"`
}

type tableEntry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Load reads a dictionary from a YAML file with the same layout as the embedded one.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %q: %w", path, err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dictionary %q: %w", path, err)
	}

	return d, nil
}

// Parse decodes a YAML dictionary table.
func Parse(data []byte) (*Dictionary, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}

	skills := make([]Skill, 0, len(t.Skills.Technical)+len(t.Skills.Soft))
	for _, e := range t.Skills.Technical {
		skills = append(skills, Skill{Name: e.Name, Category: Technical, Aliases: e.Aliases})
	}
	for _, e := range t.Skills.Soft {
		skills = append(skills, Skill{Name: e.Name, Category: Soft, Aliases: e.Aliases})
	}

	return New(skills, t.Synonyms, t.Stopwords)
}

// New builds a dictionary. Names are lowercased and trimmed; duplicate canonical
// names are rejected.
func New(skills []Skill, synonyms [][]string, stopwords []string) (*Dictionary, error) {
	if len(skills) == 0 {
		return nil, errors.New("dictionary has no skills")
	}

	d := &Dictionary{
		skills:    make([]Skill, 0, len(skills)),
		index:     make(map[string]int, len(skills)),
		synonyms:  make(map[string][]string),
		stopwords: make(map[string]struct{}, len(stopwords)),
	}

	for _, s := range skills {
		name := normalize(s.Name)
		if name == "" {
			return nil, errors.New("skill with empty name")
		}
		if _, exists := d.index[name]; exists {
			return nil, fmt.Errorf("duplicate skill %q", name)
		}

		category := s.Category
		if category == "" {
			category = Technical
		}

		aliases := make([]string, 0, len(s.Aliases))
		for _, alias := range s.Aliases {
			if alias = normalize(alias); alias != "" && alias != name && !slices.Contains(aliases, alias) {
				aliases = append(aliases, alias)
			}
		}

		d.index[name] = len(d.skills)
		d.skills = append(d.skills, Skill{Name: name, Category: category, Aliases: aliases})
	}

	for _, group := range synonyms {
		terms := make([]string, 0, len(group))
		for _, term := range group {
			if term = normalize(term); term != "" && !slices.Contains(terms, term) {
				terms = append(terms, term)
			}
		}
		for _, term := range terms {
			// a term listed in several groups gets the union, in first-seen order
			for _, other := range terms {
				if !slices.Contains(d.synonyms[term], other) {
					d.synonyms[term] = append(d.synonyms[term], other)
				}
			}
		}
	}

	for _, w := range stopwords {
		if w = normalize(w); w != "" {
			d.stopwords[w] = struct{}{}
		}
	}

	return d, nil
}

// Skills returns the entries in table order: technical skills first, then soft skills.
// Alias slices are shared and must not be modified.
func (d *Dictionary) Skills() []Skill {
	return slices.Clone(d.skills)
}

// Lookup finds a skill by canonical name.
func (d *Dictionary) Lookup(name string) (Skill, bool) {
	i, ok := d.index[normalize(name)]
	if !ok {
		return Skill{}, false
	}
	return d.skills[i], true
}

// Synonyms returns every term interchangeable with term, term itself included.
func (d *Dictionary) Synonyms(term string) []string {
	term = normalize(term)
	if group, ok := d.synonyms[term]; ok {
		return slices.Clone(group)
	}
	return []string{term}
}

// IsStopword reports whether w is ignored during keyword extraction.
func (d *Dictionary) IsStopword(w string) bool {
	_, ok := d.stopwords[normalize(w)]
	return ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
