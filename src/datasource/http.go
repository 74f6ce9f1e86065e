package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Akima-zed/teleSport/src/logging"
	"github.com/Akima-zed/teleSport/src/types"
)

// maxBodyBytes caps how much of a response is decoded.
const maxBodyBytes = 32 << 20

// HTTPSource fetches the dataset with a GET request. Timeouts come from the caller's
// context; Timeout, when set, adds a per-fetch deadline on top.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
	seq     atomic.Uint64
}

// NewHTTPSource returns a source for url using http.DefaultClient.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: http.DefaultClient, Timeout: timeout}
}

func (s *HTTPSource) FetchAll(ctx context.Context) (*types.DataSnapshot, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, &types.FetchError{Reason: "bad request for " + s.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		reason := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "request timed out"
		}
		return nil, &types.FetchError{Reason: reason, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &types.FetchError{Reason: resp.Status, StatusCode: resp.StatusCode}
	}
	snap, err := types.DecodeSnapshot(io.LimitReader(resp.Body, maxBodyBytes), s.seq.Add(1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, &types.FetchError{Reason: "body read interrupted", Err: ctx.Err()}
		}
		return nil, fmt.Errorf("decode %s: %w", s.URL, err)
	}
	logging.Debugf("[datasource] GET %s: %d countries in %s", s.URL, snap.Len(), time.Since(start).Round(time.Millisecond))
	return snap, nil
}
