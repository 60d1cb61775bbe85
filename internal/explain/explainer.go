package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/inodb/vibe-snp/internal/match"
)

// ErrorMarker prefixes every user-visible failure message.
const ErrorMarker = "❌"

// WarningMarker prefixes input warnings.
const WarningMarker = "⚠️"

// MissingQuestion is returned by Ask for a blank question.
const MissingQuestion = WarningMarker + " Please enter a question before submitting."

// Options tune how an Explainer calls its Service.
type Options struct {
	// RateLimit is the maximum calls per second; <= 0 means unlimited.
	RateLimit float64
	// CacheSize bounds the number of remembered answers; <= 0 uses 128.
	CacheSize int
	// Timeout bounds a single call when ctx has no deadline; <= 0 uses DefaultTimeout.
	Timeout time.Duration
	// FailureThreshold is how many consecutive failures open the breaker; <= 0 uses 3.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open; <= 0 uses 30s.
	OpenTimeout time.Duration
}

// Explainer turns matches and questions into explanations. It never returns
// an error: failures come back as strings starting with ErrorMarker.
// Each call reaches the Service at most once.
type Explainer struct {
	svc     Service
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	cache   *lru.Cache[string, string]
	timeout time.Duration
	logger  *zap.Logger
}

// NewExplainer wraps svc with a circuit breaker, a rate limiter and an
// answer cache.
func NewExplainer(svc Service, opts Options) (*Explainer, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 3
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create explanation cache: %w", err)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	e := &Explainer{
		svc:     svc,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
		timeout: opts.Timeout,
		logger:  zap.NewNop(),
	}

	threshold := opts.FailureThreshold
	e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "explain",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			e.logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return e, nil
}

// SetLogger sets the logger for call diagnostics.
func (e *Explainer) SetLogger(l *zap.Logger) {
	e.logger = l
}

// ExplainMatch explains the uploaded genotype at a matched variant.
func (e *Explainer) ExplainMatch(ctx context.Context, m match.Match) string {
	return e.answer(ctx, BuildPrompt(m))
}

// Ask answers a free-form question. A blank question yields MissingQuestion
// without calling the service.
func (e *Explainer) Ask(ctx context.Context, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return MissingQuestion
	}
	return e.answer(ctx, question)
}

// CachedCount returns the number of remembered answers.
func (e *Explainer) CachedCount() int {
	return e.cache.Len()
}

func (e *Explainer) answer(ctx context.Context, prompt string) string {
	text, err := e.complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("explanation failed", zap.Error(err))
		return FormatError(err)
	}
	return text
}

// complete runs one guarded call, recovering a panicking Service into an error.
func (e *Explainer) complete(ctx context.Context, prompt string) (text string, err error) {
	if cached, ok := e.cache.Get(prompt); ok {
		e.logger.Debug("explanation cache hit", zap.Int("prompt_len", len(prompt)))
		return cached, nil
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("explanation service panicked: %v", r)
		}
	}()

	start := time.Now()
	result, err := e.breaker.Execute(func() (interface{}, error) {
		return e.svc.Complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("explanation service unavailable (circuit breaker open)")
		}
		return "", err
	}

	text = result.(string)
	e.cache.Add(prompt, text)
	e.logger.Debug("explanation completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}

// FormatError renders a failure as a user-visible message.
func FormatError(err error) string {
	return fmt.Sprintf("%s Explanation error: %v", ErrorMarker, err)
}
