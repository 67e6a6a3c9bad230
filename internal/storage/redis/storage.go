package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getJSON loads key into out, returning notFound when the key is missing
func (s *Storage) getJSON(ctx context.Context, key string, out any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, out)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}
	return s.client.Set(ctx, playerKey(player.ID), data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0) // No TTL
	pipe.Set(ctx, loginIndexKey(rp.Login), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := s.getJSON(ctx, registeredPlayerKey(playerID), &rp, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByLogin(ctx context.Context, login string) (*model.RegisteredPlayer, error) {
	playerID, err := s.client.Get(ctx, loginIndexKey(login)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerID))
}

// World operations

func (s *Storage) SaveWorld(ctx context.Context, world *model.World) error {
	data, err := json.Marshal(world)
	if err != nil {
		return err
	}

	key := worldKey(world.ID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.cfg.WorldTTL)
	pipe.SAdd(ctx, worldsIndexKey(), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetWorld(ctx context.Context, id model.WorldID) (*model.World, error) {
	var world model.World
	if err := s.getJSON(ctx, worldKey(id), &world, model.ErrWorldNotFound); err != nil {
		return nil, err
	}
	return &world, nil
}

func (s *Storage) ListWorlds(ctx context.Context) ([]*model.World, error) {
	keys, err := s.client.SMembers(ctx, worldsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.World{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	worlds := make([]*model.World, 0, len(values))
	var expired []any
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			expired = append(expired, keys[i])
			continue
		}
		var world model.World
		if err := json.Unmarshal([]byte(str), &world); err != nil {
			continue // Skip invalid data
		}
		worlds = append(worlds, &world)
	}

	// Drop index entries whose world expired
	if len(expired) > 0 {
		_ = s.client.SRem(ctx, worldsIndexKey(), expired...).Err()
	}

	storage.SortWorlds(worlds)
	return worlds, nil
}

func (s *Storage) DeleteWorld(ctx context.Context, id model.WorldID) error {
	key := worldKey(id)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, worldsIndexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// Game session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := sessionKey(session.WorldID, session.PlayerID)
	indexKey := sessionsForWorldIndexKey(session.WorldID)

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, indexKey, key)
	if s.cfg.SessionTTL > 0 {
		pipe.Expire(ctx, indexKey, s.cfg.SessionTTL) // Keep index TTL in sync
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, worldID model.WorldID, playerID model.PlayerID) (*model.GameSession, error) {
	var session model.GameSession
	if err := s.getJSON(ctx, sessionKey(worldID, playerID), &session, model.ErrSessionNotFound); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) GetSessionsForWorld(ctx context.Context, worldID model.WorldID) ([]*model.GameSession, error) {
	keys, err := s.client.SMembers(ctx, sessionsForWorldIndexKey(worldID)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.GameSession{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.GameSession, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Session may have expired
		}
		var session model.GameSession
		if err := json.Unmarshal([]byte(str), &session); err != nil {
			continue
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

func (s *Storage) DeleteSessionsForWorld(ctx context.Context, worldID model.WorldID) error {
	indexKey := sessionsForWorldIndexKey(worldID)

	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	// Delete all sessions and the index in one pipeline
	pipe := s.client.TxPipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}
