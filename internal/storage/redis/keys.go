package redis

import (
	"fmt"

	"github.com/mikkelsonm/bitboxing/internal/model"
)

// Key prefix for all game data
const keyPrefix = "bitboxing"

// userKey returns the Redis key for a User
func userKey(username string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, username)
}

// puzzleKey returns the Redis key for a Puzzle
func puzzleKey(code model.CacheCode) string {
	return fmt.Sprintf("%s:puzzle:%s", keyPrefix, code)
}

// puzzleIndexKey returns the Redis key for the SET of catalog codes
func puzzleIndexKey() string {
	return fmt.Sprintf("%s:idx:puzzles", keyPrefix)
}

// findKey returns the Redis key for a FindRecord
func findKey(player string, cache model.CacheCode) string {
	return fmt.Sprintf("%s:find:%s:%s", keyPrefix, player, cache)
}

// playerFindsIndexKey returns the Redis key for the SET of cache codes a player has found
func playerFindsIndexKey(player string) string {
	return fmt.Sprintf("%s:idx:finds_by_player:%s", keyPrefix, player)
}

// cacheFindsIndexKey returns the Redis key for the SET of players who found a cache
func cacheFindsIndexKey(cache model.CacheCode) string {
	return fmt.Sprintf("%s:idx:finds_by_cache:%s", keyPrefix, cache)
}

// playersIndexKey returns the Redis key for the SET of players with any find
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}
