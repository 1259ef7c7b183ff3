// Package jobs holds the job posting model shared by the corpus providers, the
// corpus filters and the matcher.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

const (
	PostingIDField      = "ID"
	PostingCompanyField = "Company"

	StatusActive   = "active"
	StatusArchived = "archived"
)

// Provider returns the job corpus the matcher ranks against.
type Provider interface {
	Postings(ctx context.Context) (*Postings, error)
}

type Postings struct {
	Items []*Posting `json:"items"`
}

type Posting struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Company         string   `json:"company" yaml:"company"`
	Location        string   `json:"location,omitempty" yaml:"location"`
	Type            string   `json:"type,omitempty" yaml:"type"`
	SalaryText      string   `json:"salary_text,omitempty" yaml:"salary_text"`
	Description     string   `json:"description" yaml:"description"`
	Requirements    []string `json:"requirements" yaml:"requirements"`
	RemoteOption    string   `json:"remote_option,omitempty" yaml:"remote_option"`
	ExperienceLevel Level    `json:"experience_level,omitempty" yaml:"experience_level"`
	Status          string   `json:"status" yaml:"status"`
	URL             string   `json:"url,omitempty" yaml:"url"`
}

// IsActive reports whether the posting takes part in ranking.
func (p *Posting) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(p.Status), StatusActive)
}

func (p *Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return p.ID
	case PostingCompanyField:
		return p.Company
	default:
		return ""
	}
}

func (p *Postings) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

// Exclude removes postings whose field matches any of targets and returns the
// removed ids. The order of the remaining postings is preserved.
func (p *Postings) Exclude(name string, targets []string) []string {
	excluded := make([]string, 0)
	p.Items = slices.DeleteFunc(p.Items, func(posting *Posting) bool {
		if slices.Contains(targets, posting.GetStringField(name)) {
			excluded = append(excluded, posting.ID)
			return true
		}
		return false
	})
	return excluded
}

// ExcludeFunc removes every posting for which drop returns true.
func (p *Postings) ExcludeFunc(drop func(*Posting) bool) []string {
	excluded := make([]string, 0)
	p.Items = slices.DeleteFunc(p.Items, func(posting *Posting) bool {
		if drop(posting) {
			excluded = append(excluded, posting.ID)
			return true
		}
		return false
	})
	return excluded
}

// ReportByCompany groups postings by company for the interactive report.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		report[posting.Company] = append(report[posting.Company], map[string]string{
			"title":    posting.Title,
			"url":      posting.URL,
			"location": posting.Location,
			"salary":   posting.SalaryText,
			"level":    string(posting.ExperienceLevel),
			"remote":   posting.RemoteOption,
		})
	}
	return report
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("encode postings: %w", err)
	}
	return file.Name(), nil
}

func (p *Postings) ToExcluded(now time.Time) *ExcludedPostings {
	excluded := &ExcludedPostings{}
	for _, posting := range p.Items {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			ID:         posting.ID,
			URL:        posting.URL,
			Company:    posting.Company,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}
