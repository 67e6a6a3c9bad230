// Package world manages the named worlds players explore.
package world

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mcoot/fogwalk/internal/dependencies/clock"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/storage"
)

// MaxNameLength is the longest accepted world name, in runes
const MaxNameLength = 64

// Summary is a world with its player count
type Summary struct {
	model.World
	PlayerCount int `json:"player_count"`
}

// Service creates and lists worlds
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	logger   *slog.Logger
	onDelete []func(model.WorldID)
}

// New creates a world Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// OnDelete registers fn to run while a world is deleted, after the ownership
// check and before its sessions are removed. Register hooks before serving.
func (s *Service) OnDelete(fn func(model.WorldID)) {
	s.onDelete = append(s.onDelete, fn)
}

// Create makes a new world owned by createdBy
func (s *Service) Create(ctx context.Context, name string, createdBy model.PlayerID) (*model.World, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrWorldNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}

	world := &model.World{
		ID:        model.WorldID(uuid.NewString()),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.SaveWorld(ctx, world); err != nil {
		return nil, err
	}

	s.logger.Info("world created",
		slog.String("world_id", string(world.ID)),
		slog.String("name", world.Name),
		slog.String("created_by", string(createdBy)),
	)
	return world, nil
}

// Get returns one world with its player count
func (s *Service) Get(ctx context.Context, id model.WorldID) (*Summary, error) {
	world, err := s.storage.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.storage.GetSessionsForWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Summary{World: *world, PlayerCount: len(sessions)}, nil
}

// List returns every world, oldest first
func (s *Service) List(ctx context.Context) ([]*model.World, error) {
	return s.storage.ListWorlds(ctx)
}

// Delete removes a world and every session in it. Only the creator may delete.
func (s *Service) Delete(ctx context.Context, id model.WorldID, playerID model.PlayerID) error {
	world, err := s.storage.GetWorld(ctx, id)
	if err != nil {
		return err
	}
	if world.CreatedBy != playerID {
		return model.ErrNotWorldOwner
	}

	for _, fn := range s.onDelete {
		fn(id)
	}
	if err := s.storage.DeleteSessionsForWorld(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteWorld(ctx, id); err != nil {
		return err
	}

	s.logger.Info("world deleted", slog.String("world_id", string(id)))
	return nil
}

// EnsureDefault creates a world with the given name when no world exists yet
func (s *Service) EnsureDefault(ctx context.Context, name string) (*model.World, error) {
	worlds, err := s.storage.ListWorlds(ctx)
	if err != nil {
		return nil, err
	}
	if len(worlds) > 0 {
		return worlds[0], nil
	}
	return s.Create(ctx, name, "")
}

// Interface for dependency injection
type ServiceInterface interface {
	Create(ctx context.Context, name string, createdBy model.PlayerID) (*model.World, error)
	Get(ctx context.Context, id model.WorldID) (*Summary, error)
	List(ctx context.Context) ([]*model.World, error)
	Delete(ctx context.Context, id model.WorldID, playerID model.PlayerID) error
}

var _ ServiceInterface = (*Service)(nil)
