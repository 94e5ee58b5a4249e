package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrBadStatus = errors.New("unexpected response status")
	ErrNoBody    = errors.New("response has no body")
)

// EventError is returned by Reader.Err when the server sent an error frame.
type EventError struct {
	Message string
}

func (e *EventError) Error() string {
	return "stream error: " + e.Message
}

// frame distinguishes an absent field from an empty one.
type frame struct {
	Content *string `json:"content"`
	Done    bool    `json:"done"`
	Error   *string `json:"error"`
}

// Reader yields the content fragments of an event stream. Usage mirrors
// bufio.Scanner:
//
//	for r.Next() {
//		fmt.Print(r.Text())
//	}
//	if err := r.Err(); err != nil { ... }
//
// Bytes are decoded statefully, so a multi-byte character split across reads
// arrives intact. Frames that fail to parse are skipped and counted.
type Reader struct {
	body  io.ReadCloser
	src   io.Reader
	chunk []byte

	buf   string
	lines []string
	eof   bool

	text     string
	terminal *Event
	err      error
	dropped  int
	closed   bool
}

func NewReader(body io.ReadCloser) *Reader {
	return &Reader{
		body:  body,
		src:   transform.NewReader(body, unicode.UTF8.NewDecoder()),
		chunk: make([]byte, 4096),
	}
}

// Open POSTs payload as JSON and returns a Reader over the response. Status
// and body problems are reported here, before any fragment is read.
func Open(ctx context.Context, client *http.Client, url string, payload interface{}) (*Reader, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", ContentType)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrNoBody
	}
	return NewReader(resp.Body), nil
}

// Next advances to the next content fragment. It returns false after a
// terminal frame, at end of stream, or on a read error.
func (r *Reader) Next() bool {
	r.text = ""
	for !r.closed {
		for len(r.lines) > 0 {
			line := r.lines[0]
			r.lines = r.lines[1:]
			if r.handle(line) {
				return true
			}
			if r.closed {
				return false
			}
		}

		if r.eof {
			r.Close()
			return false
		}
		r.fill()
	}
	return false
}

// fill reads one chunk and moves every complete line into the queue; the
// trailing partial line stays buffered.
func (r *Reader) fill() {
	n, err := r.src.Read(r.chunk)
	if n > 0 {
		r.buf += string(r.chunk[:n])
		if i := strings.LastIndexByte(r.buf, '\n'); i >= 0 {
			r.lines = append(r.lines, strings.Split(r.buf[:i], "\n")...)
			r.buf = r.buf[i+1:]
		}
	}
	if err == nil {
		return
	}
	if errors.Is(err, io.EOF) {
		r.eof = true
		if r.buf != "" {
			r.lines = append(r.lines, r.buf)
			r.buf = ""
		}
		return
	}
	r.err = err
	r.Close()
}

// handle processes one complete line and reports whether it produced a fragment.
func (r *Reader) handle(line string) bool {
	line = strings.TrimRight(line, "\r")
	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return false
	}

	var f frame
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &f); err != nil {
		r.dropped++
		return false
	}

	switch {
	case f.Error != nil:
		r.terminal = &Event{Error: *f.Error}
		r.err = &EventError{Message: *f.Error}
		r.Close()
		return false
	case f.Done:
		r.terminal = &Event{Done: true}
		r.Close()
		return false
	case f.Content != nil && *f.Content != "":
		r.text = *f.Content
		return true
	default:
		return false
	}
}

// Text returns the fragment produced by the last successful Next.
func (r *Reader) Text() string {
	return r.text
}

// Err returns the read error or an *EventError. Reaching end of stream
// without a terminal frame is not an error; check Terminal for that.
func (r *Reader) Err() error {
	return r.err
}

// Terminal returns the terminal frame, if one was received.
func (r *Reader) Terminal() (Event, bool) {
	if r.terminal == nil {
		return Event{}, false
	}
	return *r.terminal, true
}

// Dropped counts data frames that could not be parsed.
func (r *Reader) Dropped() int {
	return r.dropped
}

// Close releases the connection. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.lines = nil
	return r.body.Close()
}
