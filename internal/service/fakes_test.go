package service

import (
	"context"
	"io"
	"sync"

	"food-rag-be/internal/entity"
	"food-rag-be/internal/repository/specification"
	"food-rag-be/pkg/events"
	"food-rag-be/pkg/llm"
	"food-rag-be/pkg/rag/filter"
	"food-rag-be/pkg/rag/retriever"
	"food-rag-be/pkg/sse"
	"food-rag-be/pkg/store"
	"food-rag-be/pkg/vectorstore"
)

type fakeSearcher struct {
	result   retriever.Result
	query    string
	criteria filter.Criteria
	limit    int
}

func (f *fakeSearcher) Search(_ context.Context, query string, c filter.Criteria, limit int) retriever.Result {
	f.query, f.criteria, f.limit = query, c, limit
	return f.result
}

type sliceStream struct {
	fragments []string
	err       error
}

func (s *sliceStream) Next() (string, error) {
	if len(s.fragments) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	f := s.fragments[0]
	s.fragments = s.fragments[1:]
	return f, nil
}

func (s *sliceStream) Close() error { return nil }

type fakeProvider struct {
	fragments []string
	streamErr error
	reply     string
	chatErr   error
	history   []llm.Message
}

func (p *fakeProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	p.history = history
	return p.reply, p.chatErr
}

func (p *fakeProvider) ChatStream(_ context.Context, history []llm.Message, _ ...llm.Option) (llm.Stream, error) {
	p.history = history
	return &sliceStream{fragments: append([]string(nil), p.fragments...), err: p.streamErr}, nil
}

type fakeTranscripts struct {
	mu       sync.Mutex
	sessions map[string][]store.Message
	err      error
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{sessions: map[string][]store.Message{}}
}

func (f *fakeTranscripts) Append(_ context.Context, sessionID string, messages ...store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sessions[sessionID] = append(f.sessions[sessionID], messages...)
	return nil
}

func (f *fakeTranscripts) List(_ context.Context, sessionID string) ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Message{}, f.sessions[sessionID]...), nil
}

type fakeEvents struct {
	mu        sync.Mutex
	published []events.Event
}

func (f *fakeEvents) Publish(_ context.Context, ev events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, ev)
	return nil
}

type recordingEmitter struct {
	events []sse.Event
}

func (r *recordingEmitter) Emit(ev sse.Event) error {
	r.events = append(r.events, ev)
	return nil
}

type fakePreferenceRepo struct {
	stored map[string]*entity.UserPreference
	finds  int
	err    error
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{stored: map[string]*entity.UserPreference{}}
}

func (f *fakePreferenceRepo) Save(_ context.Context, pref *entity.UserPreference) error {
	if f.err != nil {
		return f.err
	}
	cp := *pref
	f.stored[pref.UserId] = &cp
	return nil
}

func (f *fakePreferenceRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.UserPreference, error) {
	f.finds++
	if f.err != nil {
		return nil, f.err
	}
	for _, spec := range specs {
		if by, ok := spec.(specification.ByUserID); ok {
			return f.stored[by.UserID], nil
		}
	}
	return nil, nil
}

func (f *fakePreferenceRepo) Delete(_ context.Context, userId string) error {
	delete(f.stored, userId)
	return nil
}

type fakeVectorStore struct {
	mu       sync.Mutex
	items    map[string]vectorstore.Match
	upserted []vectorstore.Record
	err      error
}

func (f *fakeVectorStore) Query(context.Context, vectorstore.Query) ([]vectorstore.Match, error) {
	return nil, nil
}

func (f *fakeVectorStore) Get(_ context.Context, id string) (*vectorstore.Match, error) {
	if m, ok := f.items[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeVectorStore) Upsert(_ context.Context, records []vectorstore.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, records...)
	return nil
}

func (f *fakeVectorStore) records() []vectorstore.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]vectorstore.Record(nil), f.upserted...)
}

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}
