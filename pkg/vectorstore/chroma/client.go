package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"food-rag-be/pkg/embedding"
	"food-rag-be/pkg/rag/filter"
	"food-rag-be/pkg/vectorstore"
)

// Client is a minimal REST client for the Chroma v2 API.
// List metadata is stored JSON-encoded because Chroma metadata values are scalars.
type Client struct {
	baseURL    string
	tenant     string
	database   string
	collection string
	embedder   embedding.Provider
	http       *http.Client

	mu           sync.Mutex
	collectionID string
}

type Config struct {
	Host       string
	Port       int
	Tenant     string
	Database   string
	Collection string
	Timeout    time.Duration
}

var _ vectorstore.Store = (*Client)(nil)
var _ vectorstore.PredicateSupporter = (*Client)(nil)

func NewClient(cfg Config, embedder embedding.Provider) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	tenant := cfg.Tenant
	if tenant == "" {
		tenant = "default_tenant"
	}
	database := cfg.Database
	if database == "" {
		database = "default_database"
	}
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		tenant:     tenant,
		database:   database,
		collection: cfg.Collection,
		embedder:   embedder,
		http:       &http.Client{Timeout: timeout},
	}
}

// NewClientWithURL is used when the server address is already a URL (tests, proxies).
func NewClientWithURL(baseURL, collection string, embedder embedding.Provider) *Client {
	c := NewClient(Config{Collection: collection}, embedder)
	c.baseURL = baseURL
	return c
}

// Supports reports whether every atom is an equality; list containment cannot
// be expressed against JSON-encoded metadata strings.
func (c *Client) Supports(p filter.Predicate) bool {
	for _, atom := range filter.Atoms(p) {
		if _, ok := atom.(filter.Eq); !ok {
			return false
		}
	}
	return true
}

type queryRequest struct {
	QueryEmbeddings [][]float32            `json:"query_embeddings"`
	NResults        int                    `json:"n_results"`
	Where           map[string]interface{} `json:"where,omitempty"`
	Include         []string               `json:"include"`
}

type queryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Documents [][]*string                `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float64                `json:"distances"`
}

type getRequest struct {
	IDs     []string `json:"ids"`
	Include []string `json:"include"`
}

type getResponse struct {
	IDs       []string                 `json:"ids"`
	Documents []*string                `json:"documents"`
	Metadatas []map[string]interface{} `json:"metadatas"`
}

type upsertRequest struct {
	IDs        []string                 `json:"ids"`
	Embeddings [][]float32              `json:"embeddings"`
	Documents  []string                 `json:"documents"`
	Metadatas  []map[string]interface{} `json:"metadatas"`
}

type createCollectionRequest struct {
	Name        string                 `json:"name"`
	Metadata    map[string]interface{} `json:"metadata"`
	GetOrCreate bool                   `json:"get_or_create"`
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) Query(ctx context.Context, q vectorstore.Query) ([]vectorstore.Match, error) {
	id, err := c.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	vector, err := c.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        q.Limit,
		Include:         []string{"documents", "metadatas", "distances"},
	}
	if q.Where != nil {
		req.Where = filter.Document(q.Where)
	}

	var res queryResponse
	if err := c.post(ctx, c.collectionPath(id, "query"), req, &res); err != nil {
		return nil, err
	}

	if len(res.IDs) == 0 {
		return nil, nil
	}

	matches := make([]vectorstore.Match, 0, len(res.IDs[0]))
	for i, itemID := range res.IDs[0] {
		m := vectorstore.Match{ID: itemID, Metadata: map[string]interface{}{}}
		if len(res.Documents) > 0 && i < len(res.Documents[0]) && res.Documents[0][i] != nil {
			m.Document = *res.Documents[0][i]
		}
		if len(res.Metadatas) > 0 && i < len(res.Metadatas[0]) && res.Metadatas[0][i] != nil {
			m.Metadata = res.Metadatas[0][i]
		}
		if len(res.Distances) > 0 && i < len(res.Distances[0]) {
			m.Distance = res.Distances[0][i]
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (c *Client) Get(ctx context.Context, itemID string) (*vectorstore.Match, error) {
	id, err := c.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	var res getResponse
	req := getRequest{IDs: []string{itemID}, Include: []string{"documents", "metadatas"}}
	if err := c.post(ctx, c.collectionPath(id, "get"), req, &res); err != nil {
		return nil, err
	}
	if len(res.IDs) == 0 {
		return nil, nil
	}

	m := &vectorstore.Match{ID: res.IDs[0], Metadata: map[string]interface{}{}}
	if len(res.Documents) > 0 && res.Documents[0] != nil {
		m.Document = *res.Documents[0]
	}
	if len(res.Metadatas) > 0 && res.Metadatas[0] != nil {
		m.Metadata = res.Metadatas[0]
	}
	return m, nil
}

func (c *Client) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	id, err := c.ensureCollection(ctx)
	if err != nil {
		return err
	}

	req := upsertRequest{
		IDs:        make([]string, len(records)),
		Embeddings: make([][]float32, len(records)),
		Documents:  make([]string, len(records)),
		Metadatas:  make([]map[string]interface{}, len(records)),
	}
	for i, r := range records {
		vector, err := c.embedder.Embed(ctx, r.Document)
		if err != nil {
			return fmt.Errorf("embed %s: %w", r.ID, err)
		}
		req.IDs[i] = r.ID
		req.Embeddings[i] = vector
		req.Documents[i] = r.Document
		req.Metadatas[i] = flattenMetadata(r.Metadata)
	}

	return c.post(ctx, c.collectionPath(id, "upsert"), req, nil)
}

func (c *Client) ensureCollection(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.collectionID != "" {
		return c.collectionID, nil
	}

	var res collectionResponse
	req := createCollectionRequest{
		Name:        c.collection,
		Metadata:    map[string]interface{}{"hnsw:space": "cosine"},
		GetOrCreate: true,
	}
	path := fmt.Sprintf("/api/v2/tenants/%s/databases/%s/collections",
		url.PathEscape(c.tenant), url.PathEscape(c.database))
	if err := c.post(ctx, path, req, &res); err != nil {
		return "", fmt.Errorf("resolve collection %q: %w", c.collection, err)
	}
	if res.ID == "" {
		return "", fmt.Errorf("chroma returned no id for collection %q", c.collection)
	}
	c.collectionID = res.ID
	return res.ID, nil
}

func (c *Client) collectionPath(id, op string) string {
	return fmt.Sprintf("/api/v2/tenants/%s/databases/%s/collections/%s/%s",
		url.PathEscape(c.tenant), url.PathEscape(c.database), url.PathEscape(id), op)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chroma request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chroma error: status %d, body: %s", resp.StatusCode, string(raw))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// flattenMetadata JSON-encodes list values so Chroma accepts them.
func flattenMetadata(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		switch v.(type) {
		case []string, []interface{}:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out[k] = string(encoded)
		default:
			out[k] = v
		}
	}
	return out
}
