package storage

import (
	"context"

	"github.com/mcoot/fogwalk/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByLogin(ctx context.Context, login string) (*model.RegisteredPlayer, error)

	// World operations
	SaveWorld(ctx context.Context, world *model.World) error
	GetWorld(ctx context.Context, id model.WorldID) (*model.World, error)
	ListWorlds(ctx context.Context) ([]*model.World, error)
	DeleteWorld(ctx context.Context, id model.WorldID) error

	// Game session operations
	SaveSession(ctx context.Context, session *model.GameSession) error
	GetSession(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*model.GameSession, error)
	GetSessionsForWorld(ctx context.Context, worldID model.WorldID) ([]*model.GameSession, error)
	DeleteSessionsForWorld(ctx context.Context, worldID model.WorldID) error
}
