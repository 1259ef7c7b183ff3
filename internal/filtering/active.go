package filtering

import (
	"context"

	"github.com/spigell/jobstir/internal/jobs"
)

type activeStatusFilter struct {
	disabled bool
	reason   string
}

// NewActiveStatus creates a filter that removes postings which are not active.
func NewActiveStatus() Filter {
	return &activeStatusFilter{}
}

func (f *activeStatusFilter) Name() string { return "active_status" }

func (f *activeStatusFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *activeStatusFilter) IsEnabled() bool { return !f.disabled }

func (f *activeStatusFilter) Validate() error { return nil }

func (f *activeStatusFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	dropped := p.ExcludeFunc(func(posting *jobs.Posting) bool {
		return !posting.IsActive()
	})
	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *activeStatusFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
