package roast

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-roast/internal/fetch"
	"go-roast/internal/llm"
	"go-roast/internal/logger"
)

// FallbackRoast is returned when the completion call fails.
const FallbackRoast = "The AI choked on this site, which honestly might be the most accurate UX review possible."

// Request is the decoded body of a roast call.
type Request struct {
	URL string `json:"url" binding:"required"`
}

// Response is the payload returned to the caller.
type Response struct {
	Score int    `json:"score"`
	Roast string `json:"roast"`
}

// Outcome says which branch assembled the response.
type Outcome string

const (
	OutcomeScored   Outcome = "scored"   // completion succeeded
	OutcomeFallback Outcome = "fallback" // completion failed
)

// Result is a Response plus how it was produced.
type Result struct {
	Response
	Outcome       Outcome
	ScoreParsed   bool // false when the score came from the fallback generator
	HTMLAvailable bool
	Duration      time.Duration
}

// PageFetcher returns best-effort HTML for a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) fetch.Snippet
}

// Completer turns prompt messages into the model's free-text reply.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Service runs fetch, prompt, completion, scoring and assembly for one URL.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	fetcher   PageFetcher
	completer Completer
	scorer    *FallbackScorer
	logger    *zap.Logger
}

// NewService wires the pipeline. completer may be nil when no API key is
// configured; Ready then reports false.
func NewService(fetcher PageFetcher, completer Completer, scorer *FallbackScorer, log *zap.Logger) *Service {
	if scorer == nil {
		scorer = NewFallbackScorer(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		fetcher:   fetcher,
		completer: completer,
		scorer:    scorer,
		logger:    log.Named("roast"),
	}
}

// Ready reports whether a completion client is configured.
func (s *Service) Ready() bool {
	return s.completer != nil
}

// Roast produces a response for pageURL. It never fails: completion errors
// yield the fallback payload. Callers must check Ready first.
func (s *Service) Roast(ctx context.Context, pageURL string) Result {
	start := time.Now()

	var snippet fetch.Snippet
	if s.fetcher != nil {
		snippet = s.fetcher.Fetch(ctx, pageURL)
	}

	messages := BuildPrompt(pageURL, snippet.HTML)

	content, err := s.completer.Complete(ctx, messages)
	var result Result
	if err != nil {
		s.logger.Error("completion failed, using fallback roast",
			logger.RequestField(ctx),
			zap.String("url", pageURL),
			zap.Error(err))
		result = Result{
			Response: Response{Score: s.scorer.Score(), Roast: FallbackRoast},
			Outcome:  OutcomeFallback,
		}
	} else {
		text := strings.TrimSpace(content)
		score, parsed := s.scorer.Extract(text)
		result = Result{
			Response:    Response{Score: score, Roast: text},
			Outcome:     OutcomeScored,
			ScoreParsed: parsed,
		}
	}

	result.HTMLAvailable = snippet.OK()
	result.Duration = time.Since(start)

	s.logger.Info("roast assembled",
		logger.RequestField(ctx),
		zap.String("url", pageURL),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("score", result.Score),
		zap.Bool("score_parsed", result.ScoreParsed),
		zap.Bool("html_available", result.HTMLAvailable),
		zap.Duration("duration", result.Duration))
	return result
}
