package utils

import (
	"bytes"
	"io"
	"sync"
)

// HoldWriter writes to an underlying writer, except while held: writes made
// during a hold are buffered and written out by Release. Safe for concurrent
// use.
type HoldWriter struct {
	mu   sync.Mutex
	out  io.Writer
	held bool
	buf  bytes.Buffer
}

// NewHoldWriter returns a writer to out that starts released.
func NewHoldWriter(out io.Writer) *HoldWriter {
	return &HoldWriter{out: out}
}

func (h *HoldWriter) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.held {
		return h.buf.Write(p)
	}
	return h.out.Write(p)
}

// Hold starts buffering writes.
func (h *HoldWriter) Hold() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.held = true
}

// Release writes out everything buffered since Hold and stops buffering.
func (h *HoldWriter) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.held = false
	if h.buf.Len() == 0 {
		return nil
	}

	_, err := h.buf.WriteTo(h.out)
	return err
}
