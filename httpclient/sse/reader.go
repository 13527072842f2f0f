// Package sse reads Server-Sent Events from a streaming HTTP body.
package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"
)

// maxLineSize bounds a single SSE line. Realtime record payloads routinely
// exceed bufio's 64KiB default.
const maxLineSize = 4 << 20

// Event represents a single server-sent event.
type Event struct {
	// ID is the event ID (from "id:" line).
	ID string
	// Event is the SSE event type (from "event:" line). Empty means "message".
	Event string
	// Data is the event payload. Multi-line data is joined with newlines.
	Data string
	// Retry is the reconnection delay requested by the server, if any.
	Retry time.Duration
}

// Decode unmarshals Data as JSON into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal([]byte(e.Data), v)
}

// Reader reads server-sent events from a stream. It is not safe for
// concurrent use.
type Reader struct {
	scanner *bufio.Scanner
	body    io.ReadCloser
	lastID  string
}

// NewReader creates an SSE reader from a readable stream.
func NewReader(body io.ReadCloser) *Reader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner, body: body}
}

// LastEventID returns the most recent id seen on the stream.
func (r *Reader) LastEventID() string { return r.lastID }

// Next returns the next event. It returns io.EOF when the stream ends.
func (r *Reader) Next() (*Event, error) {
	var (
		event   Event
		data    []string
		pending bool
	)

	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if pending {
				event.Data = strings.Join(data, "\n")
				return &event, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseLine(line)
		switch field {
		case "data":
			data = append(data, value)
			pending = true
		case "event":
			event.Event = value
			pending = true
		case "id":
			event.ID = value
			r.lastID = value
			pending = true
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil {
				event.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if pending {
		event.Data = strings.Join(data, "\n")
		return &event, nil
	}
	return nil, io.EOF
}

// Close releases the underlying stream.
func (r *Reader) Close() error {
	return r.body.Close()
}

// parseLine splits "field: value", stripping one leading space from value.
func parseLine(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
