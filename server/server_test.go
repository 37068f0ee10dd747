package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brensch/floodsnek/config"
	"github.com/brensch/floodsnek/game"
	"github.com/brensch/floodsnek/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario from the strategy tests: food sits in a one-cell pocket, so the
// only roomy move is right.
const pocketRequest = `{
  "game": {"id": "g-1", "ruleset": {"name": "standard"}, "timeout": 500},
  "turn": 12,
  "board": {
    "height": 4, "width": 4,
    "food": [{"x": 0, "y": 1}],
    "hazards": [{"x": 3, "y": 3}],
    "snakes": [
      {"id": "me", "name": "me", "health": 50, "body": [{"x": 1, "y": 1}, {"x": 1, "y": 2}, {"x": 0, "y": 2}]},
      {"id": "them", "name": "them", "health": 50, "body": [{"x": 0, "y": 0}, {"x": 1, "y": 0}]}
    ]
  },
  "you": {"id": "me", "name": "me", "health": 50, "body": [{"x": 1, "y": 1}, {"x": 1, "y": 2}, {"x": 0, "y": 2}]}
}`

func newTestServer(t *testing.T, name string) (*Server, *bytes.Buffer) {
	t.Helper()
	s, err := strategy.New(name, strategy.WithSeed(1))
	require.NoError(t, err)
	var logs bytes.Buffer
	return New(s, config.DefaultAppearance, slog.New(slog.NewTextHandler(&logs, nil))), &logs
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t, "simple")
	rec := do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var info InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, InfoResponse{
		APIVersion: "1",
		Author:     "ni2scmn",
		Color:      "#FFD700",
		Head:       "bee",
		Tail:       "bolt",
		Version:    "1.0.0",
	}, info)
}

func TestMove(t *testing.T) {
	srv, logs := newTestServer(t, "simple")
	rec := do(t, srv, http.MethodPost, "/move", pocketRequest)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.JSONEq(t, `{"move":"right"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "reason=space")
	assert.Contains(t, logs.String(), "move=right")
	assert.Contains(t, logs.String(), "game=g-1")
}

func TestMove_StrategyWithoutEvaluate(t *testing.T) {
	srv, _ := newTestServer(t, "random")
	rec := do(t, srv, http.MethodPost, "/move", pocketRequest)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Move string `json:"move"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, err := game.ParseDirection(resp.Move)
	assert.NoError(t, err)
}

func TestMalformedRequests(t *testing.T) {
	srv, logs := newTestServer(t, "simple")
	for _, path := range []string{"/start", "/move", "/end"} {
		rec := do(t, srv, http.MethodPost, path, `{"board":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Contains(t, logs.String(), "bad request")
}

func TestStartAndEnd(t *testing.T) {
	srv, logs := newTestServer(t, "simple")
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/start", pocketRequest).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/end", pocketRequest).Code)
	assert.Contains(t, logs.String(), "result=won")

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/end", `{"you":{"id":"me"},"board":{"snakes":[]}}`).Code)
	assert.Contains(t, logs.String(), "result=draw")
}

func TestRouting(t *testing.T) {
	srv, _ := newTestServer(t, "simple")
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodGet, "/move", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/nope", "").Code)
}

func TestToGameState(t *testing.T) {
	var req GameRequest
	require.NoError(t, json.Unmarshal([]byte(pocketRequest), &req))
	state := req.ToGameState()

	assert.Equal(t, int32(4), state.Width)
	assert.Equal(t, int32(12), state.Turn)
	assert.Equal(t, "me", state.YouId)
	assert.Equal(t, []game.Point{{X: 0, Y: 1}}, state.Food)
	assert.Equal(t, []game.Point{{X: 3, Y: 3}}, state.Hazards)
	require.Len(t, state.Snakes, 2)
	assert.Equal(t, game.Point{X: 1, Y: 1}, state.You().Head())

	// "you" missing from board.snakes is added back.
	req.Board.Snakes = req.Board.Snakes[1:]
	state = req.ToGameState()
	require.NotNil(t, state.You())
	assert.Equal(t, 3, state.You().Length())
}
