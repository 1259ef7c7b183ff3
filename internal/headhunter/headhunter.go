// Package headhunter reads vacancies from the hh.ru API and serves them as a
// job corpus.
package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/jobs"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "spigell/jobstir (spigelly@gmail.com)"
	// Max value for search per page.
	perPage = "100"
)

// Config is the corpus.headhunter section of the configuration.
type Config struct {
	TokenFile string        `mapstructure:"token-file"`
	UserAgent string        `mapstructure:"user-agent"`
	Details   bool          `mapstructure:"details"`
	Search    *SearchParams `mapstructure:"search"`
}

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string

	// Search selects the vacancies served by Postings.
	Search *SearchParams
	// Details fetches every vacancy separately to get the full description
	// and key skills. It costs one request per vacancy.
	Details bool
	// Requirements derives skills from a description for vacancies without
	// key skills. Optional.
	Requirements func(description string) []string
}

// New creates a client. The token is optional for vacancy search.
func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:  strings.TrimSpace(token),
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
		Search:    &SearchParams{},
	}
}

func (c *Client) SearchVacancies(ctx context.Context, params *SearchParams) (*Vacancies, error) {
	return c.search(ctx, params)
}

// Postings implements jobs.Provider.
func (c *Client) Postings(ctx context.Context) (*jobs.Postings, error) {
	params := c.Search
	if params == nil {
		params = &SearchParams{}
	}

	vacancies, err := c.search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search vacancies: %w", err)
	}

	postings := &jobs.Postings{Items: make([]*jobs.Posting, 0, vacancies.Len())}
	for _, vacancy := range vacancies.Items {
		if c.Details {
			full, err := c.GetVacancy(ctx, vacancy.ID)
			if err != nil {
				c.logger.Debug("fetching detailed vacancy failed",
					zap.String("vacancy_id", vacancy.ID),
					zap.Error(err),
				)
			} else {
				vacancy = full
			}
		}

		posting := vacancy.ToPosting()
		if len(posting.Requirements) == 0 && c.Requirements != nil {
			posting.Requirements = c.Requirements(posting.Title + "\n" + posting.Description)
		}
		postings.Items = append(postings.Items, posting)
	}

	c.logger.Debug("loaded vacancies from HH.ru", zap.Int("count", postings.Len()))

	return postings, nil
}
