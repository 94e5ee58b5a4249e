// Package session drives one chat request from retrieval to the last stream
// event: Idle, Retrieving, Generating, Emitting, then Closed or Errored.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"food-rag-be/internal/constant"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/llm"
	"food-rag-be/pkg/rag/filter"
	"food-rag-be/pkg/rag/formatter"
	"food-rag-be/pkg/rag/prompt"
	"food-rag-be/pkg/rag/retriever"
	"food-rag-be/pkg/sse"
	"food-rag-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const module = "StreamingSession"

var (
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrSessionUsed       = errors.New("session already used")
)

// Request is one validated inbound chat request.
type Request struct {
	Query       string
	Preferences store.Preferences
	MealType    string
	Limit       int
}

func (r Request) criteria() filter.Criteria {
	c := filter.FromPreferences(r.Preferences)
	c.MealType = r.MealType
	return c
}

// Emitter delivers events to the client. An error means the client is gone.
type Emitter interface {
	Emit(ev sse.Event) error
}

// Searcher is the retrieval step.
type Searcher interface {
	Search(ctx context.Context, query string, criteria filter.Criteria, limit int) retriever.Result
}

type Config struct {
	// FragmentTimeout bounds the wait for each fragment, including the first.
	FragmentTimeout time.Duration
	Options         []llm.Option
}

// Runner holds the shared, stateless collaborators and hands out one
// Session per request.
type Runner struct {
	searcher Searcher
	provider llm.Provider
	cfg      Config
	logger   logger.ILogger
}

func NewRunner(searcher Searcher, provider llm.Provider, cfg Config, log logger.ILogger) *Runner {
	return &Runner{searcher: searcher, provider: provider, cfg: cfg, logger: log}
}

func (r *Runner) NewSession() *Session {
	return &Session{runner: r, state: Idle}
}

// Outcome summarizes a finished session.
type Outcome struct {
	State        State
	Fragments    int
	Content      string
	Items        []store.FoodItem
	Degraded     bool
	Disconnected bool
	Err          error
}

// Session serves exactly one request. It is not safe for concurrent use.
type Session struct {
	runner *Runner
	state  State
}

func (s *Session) State() State {
	return s.state
}

// Run executes req and writes its events to em. Zero or more content events
// are followed by exactly one done or error event, unless the client
// disconnects, after which nothing more is emitted.
func (s *Session) Run(ctx context.Context, req Request, em Emitter) Outcome {
	if s.state != Idle {
		return Outcome{State: s.state, Err: ErrSessionUsed}
	}

	ctx, span := otel.Tracer(module).Start(ctx, "session.Run")
	defer span.End()

	out := s.run(ctx, req, em)

	span.SetAttributes(
		attribute.String("session.state", out.State.String()),
		attribute.Int("session.fragments", out.Fragments),
		attribute.Bool("session.degraded", out.Degraded),
		attribute.Bool("session.disconnected", out.Disconnected),
	)
	if out.Err != nil && !out.Disconnected {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}
	return out
}

func (s *Session) run(ctx context.Context, req Request, em Emitter) Outcome {
	var out Outcome

	s.state = Retrieving
	res := s.runner.searcher.Search(ctx, req.Query, req.criteria(), req.Limit)
	if ctx.Err() != nil {
		return s.disconnect(out, ctx.Err())
	}
	if errors.Is(res.Err, retriever.ErrRetrievalTimeout) {
		return s.fail(out, em, constant.ChatErrorRetrievalTimedOut, res.Err)
	}
	out.Items = res.Items
	out.Degraded = res.Degraded()

	s.state = Generating
	messages := prompt.Assemble(req.Query, formatter.Format(res.Items), req.Preferences)

	genCtx, cancel := context.WithCancel(ctx)
	pulls := make(chan struct{}, 1)
	results := make(chan pulled, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		s.runner.produce(genCtx, messages, pulls, results)
	}()
	// Stop the producer and wait for it to release the connection.
	defer func() {
		cancel()
		<-finished
	}()

	var timeout <-chan time.Time
	var timer *time.Timer
	if d := s.runner.cfg.FragmentTimeout; d > 0 {
		timer = time.NewTimer(d)
		defer timer.Stop()
	}

	var content strings.Builder
	for {
		pulls <- struct{}{}
		if timer != nil {
			timer.Reset(s.runner.cfg.FragmentTimeout)
			timeout = timer.C
		}

		select {
		case <-ctx.Done():
			out.Content = content.String()
			return s.disconnect(out, ctx.Err())

		case <-timeout:
			out.Content = content.String()
			return s.fail(out, em, constant.ChatErrorGenerationTimedOut, ErrGenerationTimeout)

		case p := <-results:
			if ctx.Err() != nil {
				out.Content = content.String()
				return s.disconnect(out, ctx.Err())
			}
			if errors.Is(p.err, io.EOF) {
				out.Content = content.String()
				if err := em.Emit(sse.Done()); err != nil {
					return s.disconnect(out, err)
				}
				s.state = Closed
				out.State = Closed
				s.runner.logger.Info(module, "Stream completed", map[string]interface{}{
					"fragments": out.Fragments,
					"items":     len(out.Items),
					"degraded":  out.Degraded,
				})
				return out
			}
			if p.err != nil {
				out.Content = content.String()
				return s.fail(out, em, constant.ChatErrorGenerationFailed, p.err)
			}

			s.state = Emitting
			if err := em.Emit(sse.Content(p.fragment)); err != nil {
				out.Content = content.String()
				return s.disconnect(out, err)
			}
			out.Fragments++
			content.WriteString(p.fragment)
		}
	}
}

// fail emits the single error event and moves to Errored.
func (s *Session) fail(out Outcome, em Emitter, message string, cause error) Outcome {
	s.state = Errored
	out.State = Errored
	out.Err = cause

	s.runner.logger.Error(module, "Stream failed", map[string]interface{}{
		"error":     cause,
		"message":   message,
		"fragments": out.Fragments,
	})

	if err := em.Emit(sse.Failure(message)); err != nil {
		out.Disconnected = true
	}
	return out
}

// disconnect ends the session silently: there is nobody left to notify.
func (s *Session) disconnect(out Outcome, cause error) Outcome {
	s.state = Errored
	out.State = Errored
	out.Disconnected = true
	out.Err = fmt.Errorf("client disconnected: %w", cause)

	s.runner.logger.Debug(module, "Client went away", map[string]interface{}{
		"fragments": out.Fragments,
		"cause":     cause.Error(),
	})
	return out
}

type pulled struct {
	fragment string
	err      error
}

// produce opens the generation stream and reads one fragment per pull, so
// the engine is never read ahead of what the client has received.
func (r *Runner) produce(ctx context.Context, messages []llm.Message, pulls <-chan struct{}, results chan<- pulled) {
	var stream llm.Stream
	defer func() {
		if stream != nil {
			stream.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pulls:
		}

		var p pulled
		if stream == nil {
			var err error
			stream, err = r.provider.ChatStream(ctx, messages, r.cfg.Options...)
			if err != nil {
				stream = nil
				p.err = err
			}
		}
		if p.err == nil {
			p.fragment, p.err = stream.Next()
		}

		select {
		case results <- p:
		case <-ctx.Done():
			return
		}
		if p.err != nil {
			return
		}
	}
}

// Answer is the blocking counterpart of Session.Run: retrieve, assemble and
// return the whole reply at once.
func (r *Runner) Answer(ctx context.Context, req Request) (string, retriever.Result, error) {
	res := r.searcher.Search(ctx, req.Query, req.criteria(), req.Limit)
	if errors.Is(res.Err, retriever.ErrRetrievalTimeout) {
		return "", res, res.Err
	}

	messages := prompt.Assemble(req.Query, formatter.Format(res.Items), req.Preferences)
	reply, err := r.provider.Chat(ctx, messages, r.cfg.Options...)
	if err != nil {
		r.logger.Error(module, "Completion failed", map[string]interface{}{"error": err})
		return "", res, err
	}
	return reply, res, nil
}
