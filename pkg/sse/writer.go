package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Writer frames events onto a client connection, flushing after each one.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Emit writes one frame. A non-nil error means the client is gone.
func (w *Writer) Emit(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w.w, "%s %s\n\n", dataPrefix, payload); err != nil {
		return err
	}
	return w.flush()
}

func (w *Writer) flush() error {
	switch f := w.w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case http.Flusher:
		f.Flush()
	}
	return nil
}
