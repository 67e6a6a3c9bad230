package redis

import (
	"fmt"

	"github.com/mcoot/fogwalk/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "fogwalk"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// loginIndexKey returns the Redis key for the login -> player_id index
func loginIndexKey(login string) string {
	return fmt.Sprintf("%s:idx:login:%s", keyPrefix, login)
}

// worldKey returns the Redis key for a World
func worldKey(id model.WorldID) string {
	return fmt.Sprintf("%s:world:%s", keyPrefix, id)
}

// worldsIndexKey returns the Redis key for the SET of world keys
func worldsIndexKey() string {
	return fmt.Sprintf("%s:idx:worlds", keyPrefix)
}

// sessionKey returns the Redis key for a GameSession
func sessionKey(worldID model.WorldID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:session:%s:%s", keyPrefix, worldID, playerID)
}

// sessionsForWorldIndexKey returns the Redis key for the SET of sessions in a world
func sessionsForWorldIndexKey(worldID model.WorldID) string {
	return fmt.Sprintf("%s:idx:sessions_for_world:%s", keyPrefix, worldID)
}
