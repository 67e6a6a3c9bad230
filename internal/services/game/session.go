package game

import (
	"sync"
	"time"

	"github.com/mcoot/fogwalk/internal/dependencies/random"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/board"
	"github.com/mcoot/fogwalk/internal/services/fog"
	"github.com/mcoot/fogwalk/internal/services/turn"
)

type sessionKey struct {
	worldID  model.WorldID
	playerID model.PlayerID
}

// session is the live game of one player in one world.
// mu serializes every command; board, fog and machine are not safe on their own.
// A retired session holds state that must never be saved again; commands that
// find it retired after taking mu load the stored copy instead.
type session struct {
	mu      sync.Mutex
	retired bool

	worldID   model.WorldID
	playerID  model.PlayerID
	username  string
	locale    string
	createdAt time.Time

	state   *model.PlayerTurnState
	board   *board.Board
	fog     *fog.Tracker
	machine *turn.Machine
}

func newSession(worldID model.WorldID, player *model.Player, locale string, strategy board.Strategy, rnd random.Random, cfg Config, now time.Time) *session {
	s := &session{
		worldID:   worldID,
		playerID:  player.ID,
		username:  player.Username,
		locale:    locale,
		createdAt: now,
		state:     model.NewPlayerTurnState(model.Origin),
		board:     board.New(strategy),
		fog:       fog.New(cfg.VisibilityScale),
	}
	s.machine = turn.New(s.state, s.board, s.fog, rnd, cfg.VisibleRadius)
	s.machine.Reveal()
	return s
}

func restoreSession(stored *model.GameSession, strategy board.Strategy, rnd random.Random, cfg Config) *session {
	state := stored.Turn.Clone()
	s := &session{
		worldID:   stored.WorldID,
		playerID:  stored.PlayerID,
		username:  stored.Username,
		locale:    stored.Locale,
		createdAt: stored.CreatedAt,
		state:     &state,
		board:     board.New(strategy),
		fog:       fog.New(cfg.VisibilityScale),
	}
	s.board.Restore(stored.Cells)
	s.fog.Restore(stored.Explored)
	s.machine = turn.New(s.state, s.board, s.fog, rnd, cfg.VisibleRadius)
	s.machine.Reveal()
	return s
}

// record builds the persisted form
func (s *session) record(now time.Time) *model.GameSession {
	return &model.GameSession{
		WorldID:   s.worldID,
		PlayerID:  s.playerID,
		Username:  s.username,
		Locale:    s.locale,
		Turn:      s.state.Clone(),
		Cells:     s.board.Cells(),
		Explored:  s.fog.Explored(),
		CreatedAt: s.createdAt,
		UpdatedAt: now,
	}
}

// snapshot returns a point-in-time copy of the player's state
func (s *session) snapshot() *model.PlayerSnapshot {
	st := s.state.Clone()
	return &model.PlayerSnapshot{
		PlayerID:      s.playerID,
		Username:      s.username,
		WorldID:       s.worldID,
		Position:      st.Position,
		Phase:         st.Phase(),
		TurnNumber:    st.TurnNumber,
		Die1:          st.Die1,
		Die2:          st.Die2,
		CurrentRoll:   st.CurrentRollTotal,
		StepsTaken:    st.StepsTaken,
		StepsLeft:     st.StepsLeft(),
		PathTaken:     st.Path,
		BonusSteps:    st.PendingBonusSteps,
		TurnsToSkip:   st.PendingSkipTurns,
		VisibleCells:  fog.Keys(s.fog.Visible()),
		ExploredCells: fog.Keys(s.fog.Explored()),
		CellCount:     s.board.Len(),
	}
}

// window materializes the map around the player with fog flags applied
func (s *session) window(size int) (*model.MapWindow, error) {
	rows, err := s.board.Window(s.state.Position, size)
	if err != nil {
		return nil, err
	}

	cells := make([][]model.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]model.Cell, len(row))
		for j, cell := range row {
			s.fog.Annotate(cell)
			cells[i][j] = *cell
		}
	}

	return &model.MapWindow{
		Center:   s.state.Position,
		Size:     size,
		Cells:    cells,
		Position: s.state.Position,
		Path:     append([]model.Coordinate(nil), s.state.Path...),
	}, nil
}
