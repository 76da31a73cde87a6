// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"strings"
	"sync"
)

type (
	// relay serializes line delivery from several writers.
	relay struct {
		mu      sync.Mutex
		handler LineHandler
	}

	// lineWriter splits written bytes into lines for one stream.
	lineWriter struct {
		relay  *relay
		stream Stream
		mu     sync.Mutex
		buf    []byte
	}
)

func newRelay(h LineHandler) *relay {
	return &relay{handler: h}
}

func (r *relay) emit(l Line) {
	if r.handler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler(l)
}

func (r *relay) writer(s Stream) *lineWriter {
	return &lineWriter{relay: r, stream: s}
}

// Write emits every complete line in p and keeps the remainder buffered.
func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.relay.emit(Line{Stream: w.stream, Text: strings.TrimSuffix(string(w.buf[:i]), "\r")})
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits a trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) == 0 {
		return
	}
	w.relay.emit(Line{Stream: w.stream, Text: strings.TrimSuffix(string(w.buf), "\r")})
	w.buf = nil
}
