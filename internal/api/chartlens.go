package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chartlens/internal/recorder"
	"chartlens/internal/ta"
	"chartlens/internal/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// ErrNoContent is returned by Upload when the server treated the request as a no-op
var ErrNoContent = errors.New("server returned no content")

// OutcomeView is the JSON shape of a finished cycle
type OutcomeView struct {
	types.Outcome
	Report *ReportView `json:"report,omitempty"`
	State  types.State `json:"state"`
}

type ReportView struct {
	types.Report
	Headline string `json:"headline"`
	Color    string `json:"color"`
}

// ChartLens is a typed client for the chartlens HTTP API
type ChartLens struct {
	c *Client
}

func NewChartLens(baseURL string, opts ...ClientOption) *ChartLens {
	return &ChartLens{c: NewClient(append([]ClientOption{WithBaseURL(baseURL)}, opts...)...)}
}

// WaitHealthy polls /api/health with backoff until it answers.
func (cl *ChartLens) WaitHealthy(ctx context.Context, attempts int) error {
	req := NewRequest(http.MethodGet, "/api/health").WithContext(ctx)
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialWait = 200 * time.Millisecond
	_, err := cl.c.DoWithRetry(req, cfg)
	return err
}

func (cl *ChartLens) State(ctx context.Context) (types.Snapshot, error) {
	var snap types.Snapshot
	resp, err := cl.c.GET(ctx, "/api/state")
	if err != nil {
		return snap, err
	}
	return snap, resp.ParseJSON(&snap)
}

func (cl *ChartLens) StartCamera(ctx context.Context, sc types.StreamConstraints) (types.Snapshot, error) {
	var snap types.Snapshot
	resp, err := cl.c.POST(ctx, "/api/camera/start", sc)
	if err != nil {
		return snap, err
	}
	return snap, resp.ParseJSON(&snap)
}

func (cl *ChartLens) StopCamera(ctx context.Context) (types.Snapshot, error) {
	var snap types.Snapshot
	resp, err := cl.c.POST(ctx, "/api/camera/stop", nil)
	if err != nil {
		return snap, err
	}
	return snap, resp.ParseJSON(&snap)
}

func (cl *ChartLens) Capture(ctx context.Context) (*OutcomeView, error) {
	resp, err := cl.c.POST(ctx, "/api/camera/capture", nil)
	if err != nil {
		return nil, err
	}
	var out OutcomeView
	return &out, resp.ParseJSON(&out)
}

func (cl *ChartLens) Upload(ctx context.Context, filename string, data []byte) (*OutcomeView, error) {
	resp, err := cl.c.PostFile(ctx, "/api/upload", "file", filename, data)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, ErrNoContent
	}
	var out OutcomeView
	return &out, resp.ParseJSON(&out)
}

func (cl *ChartLens) Series(ctx context.Context) (types.Series, error) {
	var s types.Series
	resp, err := cl.c.GET(ctx, "/api/series")
	if err != nil {
		return nil, err
	}
	return s, resp.ParseJSON(&s)
}

func (cl *ChartLens) SeriesStats(ctx context.Context) (ta.Summary, error) {
	var st ta.Summary
	resp, err := cl.c.GET(ctx, "/api/series/stats")
	if err != nil {
		return st, err
	}
	return st, resp.ParseJSON(&st)
}

// History fetches recorder stats; a zero since covers everything.
func (cl *ChartLens) History(ctx context.Context, since time.Time) (recorder.Stats, error) {
	var st recorder.Stats
	path := "/api/history"
	if !since.IsZero() {
		path += "?since=" + url.QueryEscape(since.Format(time.RFC3339))
	}
	resp, err := cl.c.GET(ctx, path)
	if err != nil {
		return st, err
	}
	return st, resp.ParseJSON(&st)
}

// Watch streams finished cycles from /api/feed into fn until ctx ends, the
// server closes the feed, or fn returns an error.
func (cl *ChartLens) Watch(ctx context.Context, fn func(OutcomeView) error) error {
	wsURL := "ws" + strings.TrimPrefix(cl.c.baseURL, "http") + "/api/feed"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer conn.CloseNow()

	for {
		var out OutcomeView
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusGoingAway || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := fn(out); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return err
		}
	}
}
