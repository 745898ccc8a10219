package redis

import "fmt"

const defaultKeyPrefix = "playersvc"

// playerKey returns the Redis key holding a player's JSON record
func (s *Storage) playerKey(id string) string {
	return fmt.Sprintf("%s:player:%s", s.cfg.KeyPrefix, id)
}

// playerIndexKey returns the Redis key for the sorted set of player ids,
// scored by creation time in milliseconds
func (s *Storage) playerIndexKey() string {
	return fmt.Sprintf("%s:idx:players", s.cfg.KeyPrefix)
}
