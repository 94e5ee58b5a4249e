package sse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedBody hands out one chunk per Read.
type chunkedBody struct {
	chunks [][]byte
	closed bool
	err    error
}

func (c *chunkedBody) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *chunkedBody) Close() error {
	c.closed = true
	return nil
}

func split(s string, at ...int) *chunkedBody {
	body := &chunkedBody{}
	prev := 0
	for _, i := range at {
		body.chunks = append(body.chunks, []byte(s[prev:i]))
		prev = i
	}
	body.chunks = append(body.chunks, []byte(s[prev:]))
	return body
}

func readAll(r *Reader) []string {
	var out []string
	for r.Next() {
		out = append(out, r.Text())
	}
	return out
}

const threeFrames = "data: {\"content\": \"A\"}\n\ndata: {\"content\": \"B\"}\n\ndata: {\"done\": true}\n\n"

func TestReaderThreeChunks(t *testing.T) {
	// Every pair of split points, including ones inside the JSON payloads.
	for i := 1; i < len(threeFrames)-1; i++ {
		for j := i + 1; j < len(threeFrames); j++ {
			body := split(threeFrames, i, j)
			r := NewReader(body)

			require.Equal(t, []string{"A", "B"}, readAll(r), "split at %d,%d", i, j)
			require.NoError(t, r.Err())
			ev, ok := r.Terminal()
			require.True(t, ok)
			require.True(t, ev.Done)
			require.True(t, body.closed)
		}
	}
}

func TestReaderMultiByteSplit(t *testing.T) {
	stream := "data: {\"content\": \"Masala chai ☕ and dosé\"}\n\ndata: {\"done\": true}\n\n"
	cup := strings.Index(stream, "☕")
	accent := strings.Index(stream, "é")

	r := NewReader(split(stream, cup+1, cup+2, accent+1))
	assert.Equal(t, []string{"Masala chai ☕ and dosé"}, readAll(r))
	assert.NoError(t, r.Err())
}

func TestReaderSkipsNoise(t *testing.T) {
	stream := ": comment\n" +
		"event: ping\n" +
		"data: {\"content\": \"A\"\n\n" +
		"data: not json\n\n" +
		"data: {}\n\n" +
		"data: {\"content\": \"\"}\n\n" +
		"data:{\"content\":\"B\"}\r\n\r\n" +
		"data: {\"done\": true}\n\n" +
		"data: {\"content\": \"after done\"}\n\n"

	r := NewReader(split(stream))
	assert.Equal(t, []string{"B"}, readAll(r))
	assert.Equal(t, 2, r.Dropped())
	assert.NoError(t, r.Err())
}

func TestReaderErrorFrame(t *testing.T) {
	stream := "data: {\"content\": \"A\"}\n\ndata: {\"content\": \"B\"}\n\ndata: {\"error\": \"generation failed\"}\n\n"
	r := NewReader(split(stream, 10))

	assert.Equal(t, []string{"A", "B"}, readAll(r))

	var evErr *EventError
	require.ErrorAs(t, r.Err(), &evErr)
	assert.Equal(t, "generation failed", evErr.Message)
	ev, ok := r.Terminal()
	assert.True(t, ok)
	assert.Equal(t, "generation failed", ev.Error)
}

func TestReaderEndsWithoutTerminal(t *testing.T) {
	r := NewReader(split("data: {\"content\": \"A\"}\n\ndata: {\"content\": \"B\"}"))

	assert.Equal(t, []string{"A", "B"}, readAll(r))
	assert.NoError(t, r.Err())
	_, ok := r.Terminal()
	assert.False(t, ok)
}

func TestReaderTransportError(t *testing.T) {
	body := split("data: {\"content\": \"A\"}\n\n")
	body.err = errors.New("connection reset")
	r := NewReader(body)

	assert.Equal(t, []string{"A"}, readAll(r))
	assert.ErrorContains(t, r.Err(), "connection reset")
	assert.True(t, body.closed)
}

func TestOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ContentType, r.Header.Get("Accept"))
		w.Header().Set("Content-Type", ContentType)
		sw := NewWriter(w)
		_ = sw.Emit(Content("Hello"))
		_ = sw.Emit(Done())
	}))
	defer srv.Close()

	r, err := Open(context.Background(), srv.Client(), srv.URL, map[string]string{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, readAll(r))
}

func TestOpenBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := Open(context.Background(), srv.Client(), srv.URL, map[string]string{"message": ""})
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.ErrorContains(t, err, "400")
}
