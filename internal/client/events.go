package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Event is one message from GET /api/events.
type Event struct {
	Type string
	Slug string
}

// Events subscribes to the server's event stream. The channel is closed
// when ctx is cancelled or the stream ends. Heartbeat comments are skipped.
func (c *Client) Events(ctx context.Context) (<-chan Event, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives the default client timeout.
	hc := *c.http
	hc.Timeout = 0
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: events: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, decodeError(resp)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer func() { _ = resp.Body.Close() }()

		var typ, data string
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			line := sc.Text()
			switch {
			case line == "":
				if typ != "" {
					ev := Event{Type: typ}
					var payload struct {
						Slug string `json:"slug"`
					}
					if json.Unmarshal([]byte(data), &payload) == nil {
						ev.Slug = payload.Slug
					}
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
				typ, data = "", ""
			case strings.HasPrefix(line, ":"):
			case strings.HasPrefix(line, "event:"):
				typ = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
	}()
	return out, nil
}
