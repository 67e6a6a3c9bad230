// Package game owns live game sessions and runs player commands against them.
package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/fogwalk/internal/dependencies/clock"
	"github.com/mcoot/fogwalk/internal/dependencies/random"
	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/board"
	"github.com/mcoot/fogwalk/internal/services/events"
	"github.com/mcoot/fogwalk/internal/services/fog"
	"github.com/mcoot/fogwalk/internal/storage"
	"github.com/mcoot/fogwalk/internal/updates"
)

// Config holds gameplay settings
type Config struct {
	WindowSize      int
	VisibleRadius   int
	VisibilityScale float64
}

// DefaultConfig returns the standard 21×21 window with a radius-3 diamond of vision
func DefaultConfig() Config {
	return Config{
		WindowSize:      board.DefaultWindowSize,
		VisibleRadius:   fog.DefaultRadius,
		VisibilityScale: fog.DefaultScale,
	}
}

// RollResult is returned by Roll
type RollResult struct {
	model.DiceRolledPayload
	Message string                `json:"message"`
	Player  *model.PlayerSnapshot `json:"player"`
}

// MoveResult is returned by Move
type MoveResult struct {
	From      model.Coordinate      `json:"from"`
	To        model.Coordinate      `json:"to"`
	Event     model.CellEvent       `json:"event"`
	Triggered bool                  `json:"triggered"`
	Message   string                `json:"message"`
	StepsLeft int                   `json:"steps_left"`
	Player    *model.PlayerSnapshot `json:"player"`
}

// Controller manages game sessions and turn flow
type Controller struct {
	storage   storage.Storage
	strategy  board.Strategy
	localizer *i18n.Localizer
	bus       *updates.Bus
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	cfg       Config

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	registry *events.Registry,
	localizer *i18n.Localizer,
	bus *updates.Bus,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	defaults := DefaultConfig()
	if cfg.WindowSize <= 0 || cfg.WindowSize > board.MaxWindowSize || cfg.WindowSize%2 == 0 {
		cfg.WindowSize = defaults.WindowSize
	}
	if cfg.VisibleRadius <= 0 {
		cfg.VisibleRadius = defaults.VisibleRadius
	}
	return &Controller{
		storage:   storage,
		strategy:  board.NewDefaultStrategy(registry, random),
		localizer: localizer,
		bus:       bus,
		clock:     clock,
		random:    random,
		logger:    logger,
		cfg:       cfg,
		sessions:  make(map[sessionKey]*session),
	}
}

// SetStrategy replaces the generation strategy for sessions loaded from now on
func (c *Controller) SetStrategy(strategy board.Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = strategy
}

// Join attaches a player to a world, creating their session on first join and
// resuming it otherwise. The full state and map are published afterwards.
func (c *Controller) Join(ctx context.Context, worldID model.WorldID, player *model.Player, locale string) (*model.PlayerSnapshot, error) {
	if _, err := c.storage.GetWorld(ctx, worldID); err != nil {
		return nil, err
	}

	var (
		sess    *session
		created bool
	)
	for {
		var err error
		sess, created, err = c.loadOrCreate(ctx, worldID, player, locale)
		if err != nil {
			return nil, err
		}
		sess.mu.Lock()
		if !sess.retired {
			break
		}
		sess.mu.Unlock()
	}
	defer sess.mu.Unlock()

	sess.username = player.Username
	if locale != "" {
		sess.locale = c.localizer.Resolve(locale).String()
	}

	window, err := c.commit(ctx, sess, true)
	if err != nil {
		return nil, err
	}

	snapshot := sess.snapshot()
	c.publish(sess, model.UpdatePlayer, snapshot)
	c.publish(sess, model.UpdateMap, window)

	c.logger.Info("player joined world",
		slog.String("world_id", string(worldID)),
		slog.String("player_id", string(player.ID)),
		slog.Bool("new_session", created),
	)

	return snapshot, nil
}

// Roll starts a turn: a pending skip is consumed, otherwise the dice are rolled
func (c *Controller) Roll(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*RollResult, error) {
	sess, err := c.acquire(ctx, worldID, playerID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	result, err := sess.machine.StartTurn()
	if err != nil {
		c.reject(sess, model.CommandRoll, err)
		return nil, err
	}

	if _, err := c.commit(ctx, sess, false); err != nil {
		return nil, err
	}

	payload := model.DiceRolledPayload{
		Die1:         result.Die1,
		Die2:         result.Die2,
		Total:        result.Total,
		StepsLeft:    sess.state.StepsLeft(),
		BonusApplied: result.BonusApplied,
		TurnsToSkip:  sess.state.PendingSkipTurns,
		Skipped:      result.Skipped,
	}
	snapshot := sess.snapshot()

	c.publish(sess, model.UpdateDiceRolled, payload)
	c.publish(sess, model.UpdatePlayer, snapshot)

	c.logger.Debug("turn started",
		slog.String("world_id", string(worldID)),
		slog.String("player_id", string(playerID)),
		slog.Int("turn", sess.state.TurnNumber),
		slog.Int("total", result.Total),
		slog.Bool("skipped", result.Skipped),
	)

	return &RollResult{
		DiceRolledPayload: payload,
		Message:           c.localizer.Render(sess.locale, result.Message),
		Player:            snapshot,
	}, nil
}

// Move steps the player one cell and applies the destination's event
func (c *Controller) Move(ctx context.Context, worldID model.WorldID, playerID model.PlayerID, dir model.Direction) (*MoveResult, error) {
	sess, err := c.acquire(ctx, worldID, playerID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	result, err := sess.machine.Move(dir)
	if err != nil {
		c.reject(sess, model.CommandMove, err)
		return nil, err
	}

	window, err := c.commit(ctx, sess, true)
	if err != nil {
		return nil, err
	}

	message := c.localizer.Render(sess.locale, result.Message)
	if result.Triggered {
		message = c.localizer.RenderEvent(sess.locale, result.Message)
		c.publish(sess, model.UpdateEventTriggered, model.EventTriggeredPayload{
			Message:  message,
			Position: result.To,
			Kind:     result.Event.Kind,
		})
		c.logger.Debug("cell event triggered",
			slog.String("world_id", string(worldID)),
			slog.String("player_id", string(playerID)),
			slog.String("position", result.To.Key()),
			slog.String("kind", string(result.Event.Kind)),
		)
	}

	snapshot := sess.snapshot()
	c.publish(sess, model.UpdatePlayer, snapshot)
	c.publish(sess, model.UpdateMap, window)

	return &MoveResult{
		From:      result.From,
		To:        result.To,
		Event:     result.Event,
		Triggered: result.Triggered,
		Message:   message,
		StepsLeft: result.StepsLeft,
		Player:    snapshot,
	}, nil
}

// EndTurn finishes the current turn
func (c *Controller) EndTurn(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*model.PlayerSnapshot, error) {
	sess, err := c.acquire(ctx, worldID, playerID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.machine.EndTurn(); err != nil {
		c.reject(sess, model.CommandEndTurn, err)
		return nil, err
	}

	window, err := c.commit(ctx, sess, true)
	if err != nil {
		return nil, err
	}

	snapshot := sess.snapshot()
	c.publish(sess, model.UpdatePlayer, snapshot)
	c.publish(sess, model.UpdateMap, window)
	return snapshot, nil
}

// State returns the player's current snapshot
func (c *Controller) State(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*model.PlayerSnapshot, error) {
	sess, err := c.acquire(ctx, worldID, playerID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// Map returns the size×size window around the player. A non-positive size uses the configured default.
// Cells first generated by the window are persisted with the session.
func (c *Controller) Map(ctx context.Context, worldID model.WorldID, playerID model.PlayerID, size int) (*model.MapWindow, error) {
	if size <= 0 {
		size = c.cfg.WindowSize
	}

	sess, err := c.acquire(ctx, worldID, playerID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	before := sess.board.Len()
	window, err := sess.window(size)
	if err != nil {
		return nil, err
	}

	if sess.board.Len() != before {
		if err := c.save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return window, nil
}

// LegalMoves returns the directions the player could currently move in
func (c *Controller) LegalMoves(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) ([]model.Direction, error) {
	sess, err := c.acquire(ctx, worldID, playerID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.machine.LegalMoves(), nil
}

// Forget drops every cached session of a world. It returns once commands
// already running against those sessions have finished, and later commands
// will not save them.
func (c *Controller) Forget(worldID model.WorldID) {
	var dropped []*session
	c.mu.Lock()
	for key, sess := range c.sessions {
		if key.worldID == worldID {
			dropped = append(dropped, sess)
			delete(c.sessions, key)
		}
	}
	c.mu.Unlock()

	for _, sess := range dropped {
		sess.mu.Lock()
		sess.retired = true
		sess.mu.Unlock()
	}
}

// acquire returns the player's live session with its lock held
func (c *Controller) acquire(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*session, error) {
	for {
		sess, err := c.session(ctx, worldID, playerID)
		if err != nil {
			return nil, err
		}
		sess.mu.Lock()
		if !sess.retired {
			return sess, nil
		}
		sess.mu.Unlock()
	}
}

// session returns the live session, loading it from storage when it is not cached
func (c *Controller) session(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*session, error) {
	key := sessionKey{worldID: worldID, playerID: playerID}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sess, ok := c.sessions[key]; ok {
		return sess, nil
	}

	stored, err := c.storage.GetSession(ctx, worldID, playerID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.ErrNotJoined
		}
		return nil, err
	}

	sess := restoreSession(stored, c.strategy, c.random, c.cfg)
	c.sessions[key] = sess
	return sess, nil
}

func (c *Controller) loadOrCreate(ctx context.Context, worldID model.WorldID, player *model.Player, locale string) (*session, bool, error) {
	sess, err := c.session(ctx, worldID, player.ID)
	if err == nil {
		return sess, false, nil
	}
	if !errors.Is(err, model.ErrNotJoined) {
		return nil, false, err
	}

	key := sessionKey{worldID: worldID, playerID: player.ID}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A concurrent join may have won the race
	if sess, ok := c.sessions[key]; ok {
		return sess, false, nil
	}

	sess = newSession(worldID, player, c.localizer.Resolve(locale).String(), c.strategy, c.random, c.cfg, c.clock.Now())
	c.sessions[key] = sess
	return sess, true, nil
}

// commit persists the session, first materializing the map window when withMap is set
// so that every cell a consumer sees is stored.
func (c *Controller) commit(ctx context.Context, sess *session, withMap bool) (*model.MapWindow, error) {
	var window *model.MapWindow
	if withMap {
		w, err := sess.window(c.cfg.WindowSize)
		if err != nil {
			return nil, err
		}
		window = w
	}
	if err := c.save(ctx, sess); err != nil {
		return nil, err
	}
	return window, nil
}

// save persists the session. On failure the session is retired and dropped from
// the cache, so the next command reloads the last persisted state.
// Callers hold sess.mu.
func (c *Controller) save(ctx context.Context, sess *session) error {
	if err := c.storage.SaveSession(ctx, sess.record(c.clock.Now())); err != nil {
		c.logger.Error("failed to save game session",
			slog.String("world_id", string(sess.worldID)),
			slog.String("player_id", string(sess.playerID)),
			slog.String("error", err.Error()),
		)
		sess.retired = true
		c.evict(sess)
		return err
	}
	return nil
}

func (c *Controller) evict(sess *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := sessionKey{worldID: sess.worldID, playerID: sess.playerID}
	if c.sessions[key] == sess {
		delete(c.sessions, key)
	}
}

// reject publishes a localized error update for a refused command
func (c *Controller) reject(sess *session, command model.CommandType, err error) {
	c.logger.Debug("command rejected",
		slog.String("world_id", string(sess.worldID)),
		slog.String("player_id", string(sess.playerID)),
		slog.String("command", string(command)),
		slog.String("error", err.Error()),
	)
	c.publish(sess, model.UpdateError, model.ErrorPayload{
		Command: command,
		Message: c.localizer.RenderError(sess.locale, err),
	})
}

func (c *Controller) publish(sess *session, updateType model.UpdateType, payload any) {
	c.bus.Publish(model.Update{
		Type:      updateType,
		Timestamp: c.clock.Now(),
		WorldID:   sess.worldID,
		PlayerID:  sess.playerID,
		Payload:   payload,
	})
}

// Interface for dependency injection
type ControllerInterface interface {
	Join(ctx context.Context, worldID model.WorldID, player *model.Player, locale string) (*model.PlayerSnapshot, error)
	Roll(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*RollResult, error)
	Move(ctx context.Context, worldID model.WorldID, playerID model.PlayerID, dir model.Direction) (*MoveResult, error)
	EndTurn(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*model.PlayerSnapshot, error)
	State(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*model.PlayerSnapshot, error)
	Map(ctx context.Context, worldID model.WorldID, playerID model.PlayerID, size int) (*model.MapWindow, error)
	LegalMoves(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) ([]model.Direction, error)
	Forget(worldID model.WorldID)
}

var _ ControllerInterface = (*Controller)(nil)
