package server

import "github.com/brensch/floodsnek/game"

// Battlesnake API v1 request and response types.

type InfoResponse struct {
	APIVersion string `json:"apiversion"`
	Author     string `json:"author"`
	Color      string `json:"color"`
	Head       string `json:"head"`
	Tail       string `json:"tail"`
	Version    string `json:"version"`
}

type GameRequest struct {
	Game  Game        `json:"game"`
	Turn  int         `json:"turn"`
	Board Board       `json:"board"`
	You   Battlesnake `json:"you"`
}

type Game struct {
	ID      string  `json:"id"`
	Ruleset Ruleset `json:"ruleset"`
	Map     string  `json:"map"`
	Timeout int     `json:"timeout"`
	Source  string  `json:"source"`
}

type Ruleset struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Settings RulesetSettings `json:"settings"`
}

type RulesetSettings struct {
	FoodSpawnChance     int `json:"foodSpawnChance"`
	MinimumFood         int `json:"minimumFood"`
	HazardDamagePerTurn int `json:"hazardDamagePerTurn"`
}

type Board struct {
	Height  int           `json:"height"`
	Width   int           `json:"width"`
	Food    []Coord       `json:"food"`
	Hazards []Coord       `json:"hazards"`
	Snakes  []Battlesnake `json:"snakes"`
}

type Battlesnake struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Health  int     `json:"health"`
	Body    []Coord `json:"body"`
	Latency string  `json:"latency"`
	Head    Coord   `json:"head"`
	Length  int     `json:"length"`
	Shout   string  `json:"shout"`
	Squad   string  `json:"squad"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type MoveResponse struct {
	Move  game.Direction `json:"move"`
	Shout string         `json:"shout,omitempty"`
}

// ToGameState converts a request into the engine's board snapshot.
func (req *GameRequest) ToGameState() *game.GameState {
	state := &game.GameState{
		Width:   int32(req.Board.Width),
		Height:  int32(req.Board.Height),
		YouId:   req.You.ID,
		Turn:    int32(req.Turn),
		Food:    toPoints(req.Board.Food),
		Hazards: toPoints(req.Board.Hazards),
	}

	state.Snakes = make([]game.Snake, len(req.Board.Snakes))
	for i, s := range req.Board.Snakes {
		state.Snakes[i] = game.Snake{
			Id:     s.ID,
			Health: int32(s.Health),
			Body:   toPoints(s.Body),
		}
	}

	// Some engines omit "you" from board.snakes in custom setups.
	if req.You.ID != "" && state.You() == nil && len(req.You.Body) > 0 {
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     req.You.ID,
			Health: int32(req.You.Health),
			Body:   toPoints(req.You.Body),
		})
	}
	return state
}

func toPoints(cs []Coord) []game.Point {
	out := make([]game.Point, len(cs))
	for i, c := range cs {
		out[i] = game.Point{X: int32(c.X), Y: int32(c.Y)}
	}
	return out
}
