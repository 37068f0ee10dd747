// Package replay fetches finished games from the Battlesnake engine and
// re-runs a strategy over them to see where it would have played
// differently.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/floodsnek/game"
)

// DefaultEngineURL is the public engine's event stream; %s is the game id.
const DefaultEngineURL = "wss://engine.battlesnake.com/games/%s/events"

var ErrNoFrames = errors.New("no frames received")

// Event is one message on the engine stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type GameInfo struct {
	Game struct {
		ID      string `json:"id"`
		Width   int32  `json:"width"`
		Height  int32  `json:"height"`
		Timeout int    `json:"timeout"`
	} `json:"game"`
	Ruleset struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"ruleset"`
}

type Frame struct {
	Turn    int          `json:"turn"`
	Snakes  []FrameSnake `json:"snakes"`
	Food    []Coord      `json:"food"`
	Hazards []Coord      `json:"hazards"`
	Board   struct {
		Width  int32 `json:"width"`
		Height int32 `json:"height"`
	} `json:"board"`
}

type FrameSnake struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int32   `json:"health"`
	Body   []Coord `json:"body"`
	Author string  `json:"author,omitempty"`
	Death  *Death  `json:"death,omitempty"`
}

type Coord struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type Death struct {
	Cause string `json:"cause"`
	Turn  int    `json:"turn"`
}

// Game is a downloaded game with its frames ordered by turn.
type Game struct {
	ID      string
	Ruleset string
	Width   int32
	Height  int32
	Frames  []Frame
}

// Winner names the only snake alive in the last frame, or returns "draw".
func (g *Game) Winner() string {
	if len(g.Frames) == 0 {
		return ""
	}
	var alive []FrameSnake
	for _, s := range g.Frames[len(g.Frames)-1].Snakes {
		if s.Death == nil && s.Health > 0 {
			alive = append(alive, s)
		}
	}
	if len(alive) == 1 {
		return alive[0].Name
	}
	return "draw"
}

// FindSnake resolves a snake by id or, failing that, by name.
func (g *Game) FindSnake(idOrName string) (FrameSnake, bool) {
	if len(g.Frames) == 0 {
		return FrameSnake{}, false
	}
	for _, s := range g.Frames[0].Snakes {
		if s.ID == idOrName {
			return s, true
		}
	}
	for _, s := range g.Frames[0].Snakes {
		if s.Name == idOrName {
			return s, true
		}
	}
	return FrameSnake{}, false
}

// State builds the board for frame i as youID saw it. Snakes that are
// already dead are left out.
func (g *Game) State(i int, youID string) *game.GameState {
	f := g.Frames[i]
	w, h := g.Width, g.Height
	if f.Board.Width > 0 && f.Board.Height > 0 {
		w, h = f.Board.Width, f.Board.Height
	}
	state := &game.GameState{
		Width:   w,
		Height:  h,
		YouId:   youID,
		Turn:    int32(f.Turn),
		Food:    toPoints(f.Food),
		Hazards: toPoints(f.Hazards),
	}
	for _, s := range f.Snakes {
		if s.Death != nil || len(s.Body) == 0 {
			continue
		}
		state.Snakes = append(state.Snakes, game.Snake{Id: s.ID, Health: s.Health, Body: toPoints(s.Body)})
	}
	return state
}

func toPoints(cs []Coord) []game.Point {
	out := make([]game.Point, len(cs))
	for i, c := range cs {
		out[i] = game.Point{X: c.X, Y: c.Y}
	}
	return out
}

type Downloader struct {
	// EngineURL is a format string taking the game id.
	EngineURL      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Log            *slog.Logger
}

func NewDownloader() *Downloader {
	return &Downloader{
		EngineURL:      DefaultEngineURL,
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
		Log:            slog.Default(),
	}
}

// Download reads the game's event stream until game_end or the server
// closes it. A stream that breaks after some frames still yields a game.
func (d *Downloader) Download(ctx context.Context, gameID string) (*Game, error) {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	url := fmt.Sprintf(d.EngineURL, gameID)
	dialer := websocket.Dialer{HandshakeTimeout: d.ConnectTimeout}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", gameID, err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	g := &Game{ID: gameID}
	byTurn := map[int]Frame{}

read:
	for {
		if d.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(d.ReadTimeout))
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || len(byTurn) > 0 {
				break
			}
			return nil, fmt.Errorf("read %s: %w", gameID, err)
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Warn("skipping unparseable event", "game", gameID, "err", err)
			continue
		}
		switch ev.Type {
		case "game_info":
			var info GameInfo
			if err := json.Unmarshal(ev.Data, &info); err != nil {
				log.Warn("bad game_info", "game", gameID, "err", err)
				continue
			}
			g.Ruleset = info.Ruleset.Name
			g.Width, g.Height = info.Game.Width, info.Game.Height
		case "frame":
			var f Frame
			if err := json.Unmarshal(ev.Data, &f); err != nil {
				log.Warn("bad frame", "game", gameID, "err", err)
				continue
			}
			byTurn[f.Turn] = f
		case "game_end":
			break read
		}
	}

	if len(byTurn) == 0 {
		return nil, fmt.Errorf("%s: %w", gameID, ErrNoFrames)
	}
	g.Frames = make([]Frame, 0, len(byTurn))
	for _, f := range byTurn {
		g.Frames = append(g.Frames, f)
	}
	sort.Slice(g.Frames, func(i, j int) bool { return g.Frames[i].Turn < g.Frames[j].Turn })

	if g.Width == 0 || g.Height == 0 {
		g.Width, g.Height = g.Frames[0].Board.Width, g.Frames[0].Board.Height
	}
	if g.Width == 0 || g.Height == 0 {
		return nil, fmt.Errorf("%s: board size missing from stream", gameID)
	}
	log.Debug("downloaded game", "game", gameID, "frames", len(g.Frames), "ruleset", g.Ruleset)
	return g, nil
}
