package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	loginIndex        map[string]model.PlayerID
	worlds            map[model.WorldID]*model.World
	sessions          map[sessionKey]*model.GameSession
}

type sessionKey struct {
	worldID  model.WorldID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		loginIndex:        make(map[string]model.PlayerID),
		worlds:            make(map[model.WorldID]*model.World),
		sessions:          make(map[sessionKey]*model.GameSession),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *rp
	s.registeredPlayers[rp.PlayerID] = &r
	s.loginIndex[rp.Login] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	r := *rp
	return &r, nil
}

func (s *Storage) GetRegisteredPlayerByLogin(ctx context.Context, login string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.loginIndex[login]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	r := *rp
	return &r, nil
}

// World operations

func (s *Storage) SaveWorld(ctx context.Context, world *model.World) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := *world
	s.worlds[world.ID] = &w
	return nil
}

func (s *Storage) GetWorld(ctx context.Context, id model.WorldID) (*model.World, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	world, ok := s.worlds[id]
	if !ok {
		return nil, model.ErrWorldNotFound
	}
	w := *world
	return &w, nil
}

func (s *Storage) ListWorlds(ctx context.Context) ([]*model.World, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	worlds := make([]*model.World, 0, len(s.worlds))
	for _, world := range s.worlds {
		w := *world
		worlds = append(worlds, &w)
	}
	storage.SortWorlds(worlds)
	return worlds, nil
}

func (s *Storage) DeleteWorld(ctx context.Context, id model.WorldID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.worlds, id)
	return nil
}

// Game session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey{worldID: session.WorldID, playerID: session.PlayerID}
	s.sessions[key] = cloneSession(session)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionKey{worldID: worldID, playerID: playerID}]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *Storage) GetSessionsForWorld(ctx context.Context, worldID model.WorldID) ([]*model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []*model.GameSession
	for key, session := range s.sessions {
		if key.worldID == worldID {
			sessions = append(sessions, cloneSession(session))
		}
	}
	return sessions, nil
}

func (s *Storage) DeleteSessionsForWorld(ctx context.Context, worldID model.WorldID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.sessions {
		if key.worldID == worldID {
			delete(s.sessions, key)
		}
	}
	return nil
}

// cloneSession copies the slices so stored sessions never alias caller memory
func cloneSession(session *model.GameSession) *model.GameSession {
	out := *session
	out.Turn = session.Turn.Clone()
	out.Cells = slices.Clone(session.Cells)
	out.Explored = slices.Clone(session.Explored)
	return &out
}
