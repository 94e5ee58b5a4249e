package service

import (
	"context"
	"strings"
	"time"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/internal/repository/transcript"
	"food-rag-be/pkg/events"
	"food-rag-be/pkg/rag/session"
	"food-rag-be/pkg/store"

	"github.com/google/uuid"
)

const chatModule = "ChatService"

const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
	TransportBlocking  = "blocking"
)

// persistTimeout bounds the transcript write and event publish that follow a
// stream, which run after the client context may already be cancelled.
const persistTimeout = 5 * time.Second

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IChatService interface {
	// Stream runs one streaming session, writing its events to em.
	Stream(ctx context.Context, req dto.ChatRequest, transport string, em session.Emitter) session.Outcome
	Complete(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, sessionId string) (*dto.ChatHistoryResponse, error)
}

type chatService struct {
	runner      *session.Runner
	preferences IPreferenceService
	transcripts transcript.Store
	events      EventPublisher
	logger      logger.ILogger
	now         func() time.Time
}

// NewChatService accepts nil transcripts or events when those backends are unavailable.
func NewChatService(
	runner *session.Runner,
	preferences IPreferenceService,
	transcripts transcript.Store,
	events EventPublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		runner:      runner,
		preferences: preferences,
		transcripts: transcripts,
		events:      events,
		logger:      log,
		now:         time.Now,
	}
}

// EnsureSessionID fills in a session id when the client sent none.
func EnsureSessionID(req *dto.ChatRequest) string {
	req.SessionId = strings.TrimSpace(req.SessionId)
	if req.SessionId == "" {
		req.SessionId = uuid.NewString()
	}
	return req.SessionId
}

func (s *chatService) Stream(ctx context.Context, req dto.ChatRequest, transport string, em session.Emitter) session.Outcome {
	EnsureSessionID(&req)
	started := s.now()
	userMsg := s.message(store.RoleUser, strings.TrimSpace(req.Message))

	out := s.runner.NewSession().Run(ctx, s.sessionRequest(ctx, req), em)

	reply := s.message(store.RoleAssistant, out.Content)
	reply.Failed = out.Err != nil
	summary := events.ChatSummary{
		SessionID:    req.SessionId,
		UserID:       req.UserId,
		Transport:    transport,
		Fragments:    out.Fragments,
		Items:        len(out.Items),
		Degraded:     out.Degraded,
		Disconnected: out.Disconnected,
		Duration:     s.now().Sub(started),
	}
	if out.Err != nil {
		summary.Error = out.Err.Error()
	}
	s.finish(ctx, req.SessionId, summary, userMsg, reply)
	return out
}

func (s *chatService) Complete(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	EnsureSessionID(&req)
	started := s.now()
	userMsg := s.message(store.RoleUser, strings.TrimSpace(req.Message))

	text, res, err := s.runner.Answer(ctx, s.sessionRequest(ctx, req))
	summary := events.ChatSummary{
		SessionID: req.SessionId,
		UserID:    req.UserId,
		Transport: TransportBlocking,
		Items:     len(res.Items),
		Degraded:  res.Degraded(),
		Duration:  s.now().Sub(started),
	}
	if err != nil {
		summary.Error = err.Error()
		s.finish(ctx, req.SessionId, summary, userMsg)
		return nil, err
	}

	s.finish(ctx, req.SessionId, summary, userMsg, s.message(store.RoleAssistant, text))
	return &dto.ChatResponse{
		SessionId: req.SessionId,
		Reply:     text,
		Items:     dto.NewFoodItemResponses(res.Items),
		Degraded:  res.Degraded(),
	}, nil
}

func (s *chatService) History(ctx context.Context, sessionId string) (*dto.ChatHistoryResponse, error) {
	res := &dto.ChatHistoryResponse{SessionId: sessionId, Messages: []store.Message{}}
	if s.transcripts == nil {
		return res, nil
	}

	messages, err := s.transcripts.List(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	res.Messages = messages
	return res, nil
}

// sessionRequest uses the preferences sent with the request, falling back to
// the stored ones of req.UserId.
func (s *chatService) sessionRequest(ctx context.Context, req dto.ChatRequest) session.Request {
	var prefs store.Preferences
	switch {
	case req.Preferences != nil:
		prefs = req.Preferences.ToStore()
	case strings.TrimSpace(req.UserId) != "" && s.preferences != nil:
		stored, err := s.preferences.Resolve(ctx, req.UserId)
		if err != nil {
			s.logger.Warn(chatModule, "Stored preferences unavailable, continuing without", map[string]interface{}{
				"user_id": req.UserId,
				"error":   err,
			})
		}
		prefs = stored
	}

	return session.Request{
		Query:       strings.TrimSpace(req.Message),
		Preferences: prefs,
		MealType:    req.MealType,
		Limit:       req.Limit,
	}
}

func (s *chatService) message(role store.Role, content string) store.Message {
	return store.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
}

// finish records the transcript and publishes the lifecycle event. Failures
// are logged only; the client already has its answer.
func (s *chatService) finish(ctx context.Context, sessionId string, summary events.ChatSummary, messages ...store.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if s.transcripts != nil {
		if err := s.transcripts.Append(ctx, sessionId, messages...); err != nil {
			s.logger.Warn(chatModule, "Failed to record transcript", map[string]interface{}{"session_id": sessionId, "error": err})
		}
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewChatEvent(summary, s.now())); err != nil {
			s.logger.Warn(chatModule, "Failed to publish chat event", map[string]interface{}{"session_id": sessionId, "error": err})
		}
	}
}
