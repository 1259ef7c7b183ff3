// Package evaluator runs the resume to job description pipeline: validation,
// cached parse and score, job recommendations, the optional AI review and
// background persistence.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/ai"
	"github.com/spigell/jobstir/internal/cache"
	"github.com/spigell/jobstir/internal/dictionary"
	"github.com/spigell/jobstir/internal/filtering"
	"github.com/spigell/jobstir/internal/insights"
	"github.com/spigell/jobstir/internal/jobs"
	"github.com/spigell/jobstir/internal/logger"
	"github.com/spigell/jobstir/internal/matching"
	"github.com/spigell/jobstir/internal/requirements"
	"github.com/spigell/jobstir/internal/resume"
	"github.com/spigell/jobstir/internal/scoring"
	"github.com/spigell/jobstir/internal/storage"
)

const (
	defaultMinJobDescription = 100
	defaultWorkerTimeout     = 10 * time.Second
	defaultBatchConcurrency  = 3
	defaultPersistTimeout    = 30 * time.Second
)

// Tier selects how many job recommendations are attached to a result.
type Tier string

const (
	TierCorpus Tier = "corpus"
	TierFree   Tier = "free"
)

type Request struct {
	ResumeText     string `json:"resume_text" yaml:"resume_text" validate:"required"`
	JobDescription string `json:"job_description" yaml:"job_description" validate:"required"`
	Tier           Tier   `json:"tier,omitempty" yaml:"tier" validate:"omitempty,oneof=corpus free"`
}

// Result is the outcome of one evaluation. The cached part (scores, insights,
// requirements and the parsed resume) is shared between callers and must be
// treated as read-only.
type Result struct {
	scoring.Scores
	insights.Insights

	Requirements       requirements.Requirements `json:"requirements"`
	Resume             *resume.Resume            `json:"parsed_resume"`
	JobRecommendations []matching.Recommendation `json:"job_recommendations"`
	CacheKey           string                    `json:"cache_key"`
	EvaluatedAt        time.Time                 `json:"evaluated_at"`
	AIReview           *ai.Review                `json:"ai_review,omitempty"`
}

type Config struct {
	MinJobDescription   int           `mapstructure:"min-job-description"`
	WorkerTimeout       time.Duration `mapstructure:"worker-timeout"`
	BatchConcurrency    int           `mapstructure:"batch-concurrency"`
	Recommendations     int           `mapstructure:"recommendations"`
	FreeRecommendations int           `mapstructure:"free-recommendations"`
	PersistTimeout      time.Duration `mapstructure:"persist-timeout"`
}

// DefaultConfig returns the values used for zero fields of Config.
func DefaultConfig() Config {
	return Config{
		MinJobDescription:   defaultMinJobDescription,
		WorkerTimeout:       defaultWorkerTimeout,
		BatchConcurrency:    defaultBatchConcurrency,
		Recommendations:     matching.CorpusLimit,
		FreeRecommendations: matching.FreeLimit,
		PersistTimeout:      defaultPersistTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinJobDescription <= 0 {
		c.MinJobDescription = d.MinJobDescription
	}
	if c.WorkerTimeout <= 0 {
		c.WorkerTimeout = d.WorkerTimeout
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = d.BatchConcurrency
	}
	if c.Recommendations <= 0 {
		c.Recommendations = d.Recommendations
	}
	if c.FreeRecommendations <= 0 {
		c.FreeRecommendations = d.FreeRecommendations
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = d.PersistTimeout
	}
	return c
}

// Deps aggregates the collaborators of the evaluator. Everything except the
// dictionary is optional.
type Deps struct {
	Dictionary *dictionary.Dictionary
	Cache      *cache.Cache[*Result]
	Corpus     jobs.Provider
	Filters    *filtering.Filtering
	Sink       storage.Sink
	Reviewer   ai.Reviewer
	Logger     *zap.Logger
	Clock      func() time.Time
}

type Evaluator struct {
	cfg Config

	parser    *resume.Parser
	extractor *requirements.Extractor
	matcher   *matching.Matcher

	cache    *cache.Cache[*Result]
	corpus   jobs.Provider
	filters  *filtering.Filtering
	sink     storage.Sink
	reviewer ai.Reviewer
	logger   *zap.Logger
	clock    func() time.Time
	validate *validator.Validate

	// parse is swapped in tests to simulate a slow worker.
	parse func(string) *resume.Resume

	closeMu    sync.Mutex
	closed     bool
	persisting sync.WaitGroup
}

func New(cfg Config, deps Deps) *Evaluator {
	dict := deps.Dictionary
	if dict == nil {
		dict = dictionary.Default()
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	e := &Evaluator{
		cfg:       cfg.withDefaults(),
		parser:    resume.NewParser(dict),
		extractor: requirements.NewExtractor(dict),
		matcher:   matching.NewMatcher(dict),
		cache:     deps.Cache,
		corpus:    deps.Corpus,
		filters:   deps.Filters,
		sink:      deps.Sink,
		reviewer:  deps.Reviewer,
		logger:    logger.Component(deps.Logger, "evaluator"),
		clock:     clock,
		validate:  validator.New(),
	}
	e.parse = e.parser.Parse

	return e
}

// Evaluate scores one resume against one job description. Only a
// ValidationError or a cancelled context make it fail; recommendation, review
// and persistence problems are logged and leave the result without that part.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	if err := e.Validate(req); err != nil {
		return nil, err
	}

	core, hit, err := e.evaluateCached(ctx, req)
	if err != nil {
		return nil, err
	}

	res := *core
	res.EvaluatedAt = e.clock()
	res.JobRecommendations = e.recommendations(ctx, res.Resume, e.limit(req.Tier))
	res.AIReview = e.review(ctx, req, &res)

	e.logger.Info("evaluation finished", append(logger.EvaluationFields(res.CacheKey, res.Total),
		zap.Bool("cache_hit", hit),
		zap.Int("recommendations", len(res.JobRecommendations)),
	)...)

	e.persist(ctx, req, &res)

	return &res, nil
}

// Validate checks a request the same way Evaluate does.
func (e *Evaluator) Validate(req Request) error {
	trimmed := Request{
		ResumeText:     strings.TrimSpace(req.ResumeText),
		JobDescription: strings.TrimSpace(req.JobDescription),
		Tier:           req.Tier,
	}

	if err := e.validate.Struct(trimmed); err != nil {
		return toValidationError(err)
	}

	if err := e.validate.Var(trimmed.JobDescription, fmt.Sprintf("min=%d", e.cfg.MinJobDescription)); err != nil {
		return &ValidationError{
			Field:  "job_description",
			Reason: fmt.Sprintf("must be at least %d characters", e.cfg.MinJobDescription),
		}
	}

	return nil
}

func toValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &ValidationError{Field: "request", Reason: err.Error()}
	}

	fe := errs[0]
	field := map[string]string{
		"ResumeText":     "resume_text",
		"JobDescription": "job_description",
		"Tier":           "tier",
	}[fe.Field()]
	if field == "" {
		field = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Reason: "must not be empty"}
	case "oneof":
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be one of: %s", fe.Param())}
	default:
		return &ValidationError{Field: field, Reason: fe.Tag()}
	}
}

func (e *Evaluator) evaluateCached(ctx context.Context, req Request) (*Result, bool, error) {
	if e.cache == nil {
		res, err := e.compute(ctx, req.ResumeText, req.JobDescription)
		return res, false, err
	}

	return e.cache.GetOrCompute(ctx, req.ResumeText, req.JobDescription, func(ctx context.Context) (*Result, error) {
		return e.compute(ctx, req.ResumeText, req.JobDescription)
	})
}

// compute is the cacheable part of an evaluation. Resume parsing and
// requirement extraction run concurrently.
func (e *Evaluator) compute(ctx context.Context, resumeText, jobDescription string) (*Result, error) {
	extracted := make(chan requirements.Requirements, 1)
	go func() {
		extracted <- e.extractor.Extract(jobDescription)
	}()

	parsed, err := e.parseResume(ctx, resumeText)
	reqs := <-extracted
	if err != nil {
		return nil, err
	}

	scores := scoring.Score(parsed, reqs)

	return &Result{
		Scores:             scores,
		Insights:           insights.Generate(parsed, reqs, scores),
		Requirements:       reqs,
		Resume:             parsed,
		JobRecommendations: []matching.Recommendation{},
		CacheKey:           cache.Key(resumeText, jobDescription),
	}, nil
}

func (e *Evaluator) limit(tier Tier) int {
	if tier == TierFree {
		return e.cfg.FreeRecommendations
	}
	return e.cfg.Recommendations
}

func (e *Evaluator) recommendations(ctx context.Context, r *resume.Resume, limit int) []matching.Recommendation {
	if e.corpus == nil {
		return []matching.Recommendation{}
	}

	recs, err := e.rank(ctx, r, limit)
	if err != nil {
		e.logger.Warn("job recommendations are unavailable", zap.Error(err))
		return []matching.Recommendation{}
	}
	return recs
}

// Recommend parses the resume and ranks the filtered corpus against it. A
// non-positive limit selects the configured corpus limit.
func (e *Evaluator) Recommend(ctx context.Context, resumeText string, limit int) ([]matching.Recommendation, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, &ValidationError{Field: "resume_text", Reason: "must not be empty"}
	}
	if e.corpus == nil {
		return nil, ErrNoCorpus
	}
	if limit <= 0 {
		limit = e.cfg.Recommendations
	}

	parsed, err := e.parseResume(ctx, resumeText)
	if err != nil {
		return nil, err
	}

	return e.rank(ctx, parsed, limit)
}

func (e *Evaluator) rank(ctx context.Context, r *resume.Resume, limit int) ([]matching.Recommendation, error) {
	postings, err := e.corpus.Postings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading job corpus: %w", err)
	}

	postings, err = e.filters.Run(ctx, postings)
	if err != nil {
		return nil, fmt.Errorf("filtering job corpus: %w", err)
	}

	return e.matcher.Rank(r, postings, limit), nil
}

func (e *Evaluator) review(ctx context.Context, req Request, res *Result) *ai.Review {
	if e.reviewer == nil {
		return nil
	}

	review, err := e.reviewer.Review(ctx, &ai.ReviewInput{
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
		TotalScore:     res.Total,
		MatchedSkills:  res.Matched,
		MissingSkills:  res.Missing,
		Summary:        res.Summary,
	})
	if err != nil {
		e.logger.Warn("ai review failed", zap.String(logger.FieldCacheKey, res.CacheKey), zap.Error(err))
		return nil
	}

	return review
}
