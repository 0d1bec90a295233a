package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"gridlife/internal/control"
	"gridlife/internal/logging"
	"gridlife/pkg/life"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts, startHub := newTestServerWithIdleHub(t)
	startHub()
	return ts
}

// newTestServerWithIdleHub starts the loop and HTTP server but leaves the hub
// to be started by the caller.
func newTestServerWithIdleHub(t *testing.T) (*httptest.Server, func()) {
	t.Helper()

	grid, err := life.New(20, 20)
	require.NoError(t, err)
	ctrl, err := control.New(grid, control.Options{Rate: 10, Preset: "glider", Paused: true})
	require.NoError(t, err)
	require.NoError(t, ctrl.Reset())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := logging.Discard()
	hub := NewHub(logger)
	loop := NewLoop(ctrl, hub, logger)
	go loop.Run(ctx)

	ts := httptest.NewServer(New(loop, hub, logger))
	t.Cleanup(ts.Close)
	return ts, func() { go hub.Run(ctx) }
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBoard(t *testing.T, resp *http.Response) BoardResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out BoardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetBoard(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/board")
	require.NoError(t, err)
	defer resp.Body.Close()

	out := decodeBoard(t, resp)
	require.Equal(t, 20, out.Board.Width)
	require.Equal(t, 20, out.Board.Height)
	require.Len(t, out.Board.Cells, 400)
	require.Equal(t, 5, out.Status.Population)
	require.True(t, out.Status.Paused)
	require.Equal(t, "glider", out.Status.Preset)
}

func TestStepAdvancesWhilePaused(t *testing.T) {
	ts := newTestServer(t)

	var out BoardResponse
	for i := 0; i < 4; i++ {
		out = decodeBoard(t, post(t, ts, "/api/step", ""))
	}
	require.Equal(t, 4, out.Status.Generation)
	require.Equal(t, 5, out.Status.Population)
	require.True(t, out.Board.Alive(3, 1))
	require.True(t, out.Board.Alive(1, 2))
	require.True(t, out.Board.Alive(3, 2))
	require.True(t, out.Board.Alive(2, 3))
	require.True(t, out.Board.Alive(3, 3))
}

func TestToggleOn(t *testing.T) {
	ts := newTestServer(t)
	decodeBoard(t, post(t, ts, "/api/clear", ""))

	out := decodeBoard(t, post(t, ts, "/api/cells", `{"x": 19, "y": 0}`))
	require.Equal(t, 1, out.Status.Population)
	require.True(t, out.Board.Alive(19, 0))

	out = decodeBoard(t, post(t, ts, "/api/cells", `{"x": 19, "y": 0}`))
	require.Equal(t, 1, out.Status.Population)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		path string
		body string
		code int
	}{
		{"out of bounds", "/api/cells", `{"x": 20, "y": 0}`, http.StatusBadRequest},
		{"negative", "/api/cells", `{"x": -1, "y": 3}`, http.StatusBadRequest},
		{"missing coordinate", "/api/cells", `{"x": 1}`, http.StatusBadRequest},
		{"malformed", "/api/cells", `{`, http.StatusBadRequest},
		{"unknown preset", "/api/presets/nope", "", http.StatusNotFound},
		{"preset too large", "/api/presets/pulsar", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, ts, tc.path, tc.body)
			require.Equal(t, tc.code, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.NotEmpty(t, body["error"])
		})
	}

	resp, err := http.Get(ts.URL + "/api/board")
	require.NoError(t, err)
	defer resp.Body.Close()
	out := decodeBoard(t, resp)
	require.Equal(t, "glider", out.Status.Preset)
	require.Equal(t, 5, out.Status.Population)
}

func TestPresets(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/presets")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Contains(t, list["presets"], "pulsar")
	require.Contains(t, list["presets"], "glider")

	out := decodeBoard(t, post(t, ts, "/api/presets/block", ""))
	require.Equal(t, "block", out.Status.Preset)
	require.Equal(t, 4, out.Status.Population)
}

func TestPauseResumeAndRate(t *testing.T) {
	ts := newTestServer(t)

	out := decodeBoard(t, post(t, ts, "/api/rate", `{"rate": 100}`))
	require.Equal(t, 100, out.Status.Rate)

	out = decodeBoard(t, post(t, ts, "/api/resume", ""))
	require.False(t, out.Status.Paused)

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/board")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var b BoardResponse
		if json.NewDecoder(resp.Body).Decode(&b) != nil {
			return false
		}
		return b.Status.Generation > 0
	}, 2*time.Second, 10*time.Millisecond)

	out = decodeBoard(t, post(t, ts, "/api/pause", ""))
	require.True(t, out.Status.Paused)
	gen := out.Status.Generation

	time.Sleep(50 * time.Millisecond)
	resp, err := http.Get(ts.URL + "/api/board")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, gen, decodeBoard(t, resp).Status.Generation)
}

func TestRandomizeIsSeeded(t *testing.T) {
	ts := newTestServer(t)

	a := decodeBoard(t, post(t, ts, "/api/randomize", `{"seed": 7}`))
	b := decodeBoard(t, post(t, ts, "/api/randomize", `{"seed": 7}`))
	require.Equal(t, a.Board.Cells, b.Board.Cells)
	require.Positive(t, a.Status.Population)
}

func TestRandomizeWithoutSeedVaries(t *testing.T) {
	ts := newTestServer(t)

	a := decodeBoard(t, post(t, ts, "/api/randomize", ""))
	b := decodeBoard(t, post(t, ts, "/api/randomize", ""))
	require.Positive(t, a.Status.Population)
	require.NotEqual(t, a.Board.Cells, b.Board.Cells)
}

func TestWebSocketReceivesUpdates(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "board", msg.Event)
	require.Equal(t, 5, msg.Status.Population)

	decodeBoard(t, post(t, ts, "/api/step", ""))

	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "update", msg.Event)
	require.Equal(t, 1, msg.Status.Generation)
}

func TestWebSocketJoinDoesNotMissUpdates(t *testing.T) {
	ts, startHub := newTestServerWithIdleHub(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The step is queued while the new client is still joining.
	time.Sleep(50 * time.Millisecond)
	stepped := make(chan int, 1)
	go func() {
		resp, err := http.Post(ts.URL+"/api/step", "application/json", nil)
		if err != nil {
			stepped <- 0
			return
		}
		resp.Body.Close()
		stepped <- resp.StatusCode
	}()
	time.Sleep(50 * time.Millisecond)
	startHub()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "board", msg.Event)
	if msg.Status.Generation == 0 {
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, "update", msg.Event)
	}
	require.Equal(t, 1, msg.Status.Generation)
	require.Equal(t, http.StatusOK, <-stepped)
}

func TestHubSkipsFramesOlderThanClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(logging.Discard())
	go hub.Run(ctx)

	c := &client{hub: hub, send: make(chan []byte, sendBuffer)}
	require.NoError(t, hub.join(ctx, c, Message{Seq: 5, Event: "board"}))
	hub.Publish(Message{Seq: 4, Event: "generation"})
	hub.Publish(Message{Seq: 6, Event: "generation"})

	for _, want := range []uint64{5, 6} {
		select {
		case data := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			require.Equal(t, want, msg.Seq)
		case <-time.After(2 * time.Second):
			t.Fatalf("no frame with seq %d", want)
		}
	}
}

func TestDoReportsOutcomeWhenContextEndsMidCommand(t *testing.T) {
	grid, err := life.New(5, 5)
	require.NoError(t, err)
	ctrl, err := control.New(grid, control.Options{Paused: true})
	require.NoError(t, err)

	loopCtx, stop := context.WithCancel(context.Background())
	defer stop()
	loop := NewLoop(ctrl, nil, logging.Discard())
	go loop.Run(loopCtx)

	ctx, cancel := context.WithCancel(context.Background())
	err = loop.Do(ctx, func(c *control.Controller) error {
		cancel()
		c.Step()
		return nil
	})
	require.NoError(t, err)

	var gen int
	require.NoError(t, loop.View(context.Background(), func(c *control.Controller) error {
		gen = c.Status().Generation
		return nil
	}))
	require.Equal(t, 1, gen)

	ctx, cancel = context.WithCancel(context.Background())
	err = loop.Do(ctx, func(c *control.Controller) error {
		cancel()
		return c.ToggleOn(-1, 0)
	})
	require.ErrorIs(t, err, life.ErrOutOfBounds)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoopStopped(t *testing.T) {
	grid, err := life.New(5, 5)
	require.NoError(t, err)
	ctrl, err := control.New(grid, control.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(ctrl, nil, logging.Discard())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	err = loop.Do(context.Background(), func(*control.Controller) error { return nil })
	require.ErrorIs(t, err, ErrStopped)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/clear", bytes.NewReader(nil))
	New(loop, NewHub(logging.Discard()), logging.Discard()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
