package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/schematiq/schematiq/internal/plan"
	"github.com/schematiq/schematiq/internal/utils"
)

const (
	// MaxAttempts bounds gateway calls per request.
	MaxAttempts = 3
	// RetryDelay is the base backoff between attempts.
	RetryDelay = 2 * time.Second
)

// Gateway turns prompts into structured JSON values or text.
// Every failure it returns is a *plan.GenerationError.
type Gateway struct {
	chat        model.BaseChatModel
	search      Searcher
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithSearcher sets the client used for externally grounded text.
func WithSearcher(s Searcher) Option {
	return func(g *Gateway) { g.search = s }
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithRetry overrides the attempt budget and backoff.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(g *Gateway) {
		if attempts > 0 {
			g.maxAttempts = attempts
		}
		g.retryDelay = delay
	}
}

// NewGateway wraps an Eino chat model.
func NewGateway(chat model.BaseChatModel, opts ...Option) *Gateway {
	g := &Gateway{
		chat:        chat,
		maxAttempts: MaxAttempts,
		retryDelay:  RetryDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateStructured asks the model for JSON and returns the decoded value
// as map[string]any, []any or a scalar. Markdown fences are tolerated.
func (g *Gateway) GenerateStructured(ctx context.Context, prompt string) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		content, err := g.generate(ctx, prompt)
		if err != nil {
			lastErr = err
			if isTransientError(err) && attempt < g.maxAttempts {
				if werr := g.wait(ctx, attempt); werr != nil {
					return nil, plan.NewGenerationError("generate_structured", werr)
				}
				continue
			}
			return nil, plan.NewGenerationError("generate_structured", err)
		}

		value, err := utils.ExtractJSON(content)
		if err == nil {
			return value, nil
		}
		lastErr = fmt.Errorf("parse JSON (attempt %d): %w", attempt, err)
		slog.Warn("model returned unparseable JSON",
			"attempt", attempt,
			"error", err,
			"raw", utils.Truncate(content, 200))
		if attempt < g.maxAttempts {
			if werr := g.wait(ctx, 1); werr != nil {
				return nil, plan.NewGenerationError("generate_structured", werr)
			}
		}
	}
	return nil, plan.NewGenerationError("generate_structured", lastErr)
}

// GenerateText returns free text. With useLookup the searcher answers; if
// none is configured or it fails, the chat model answers instead.
func (g *Gateway) GenerateText(ctx context.Context, prompt string, useLookup bool) (string, error) {
	if useLookup && g.search != nil {
		text, err := g.searchText(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", plan.NewGenerationError("generate_text", ctx.Err())
		}
		slog.Warn("search-grounded lookup failed, answering without lookup", "error", err)
	} else if useLookup {
		slog.Debug("no search client configured, answering without lookup")
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		content, err := g.generate(ctx, prompt)
		if err == nil {
			text := strings.TrimSpace(content)
			if text == "" {
				return "", plan.NewGenerationError("generate_text", errors.New("empty model response"))
			}
			return text, nil
		}
		lastErr = err
		if !isTransientError(err) || attempt == g.maxAttempts {
			break
		}
		if werr := g.wait(ctx, attempt); werr != nil {
			return "", plan.NewGenerationError("generate_text", werr)
		}
	}
	return "", plan.NewGenerationError("generate_text", lastErr)
}

func (g *Gateway) generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("chat generate: %w", err)
	}
	if resp == nil {
		return "", errors.New("chat generate: nil response")
	}
	return resp.Content, nil
}

func (g *Gateway) searchText(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.search.Search(ctx, prompt)
}

func (g *Gateway) wait(ctx context.Context, attempt int) error {
	if err := ctx.Err(); err != nil || g.retryDelay <= 0 {
		return err
	}
	t := time.NewTimer(g.retryDelay * time.Duration(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isTransientError checks if an error is transient and worth retrying.
func isTransientError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	errStr := strings.ToLower(err.Error())

	// Rate limits
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "resource exhausted") ||
		strings.Contains(errStr, "quota exceeded") {
		return true
	}

	// Network
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "temporary") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "unavailable") {
		return true
	}

	return false
}
