package redis

import "fmt"

// Default key prefix for everything the tool stores
const keyPrefix = "samuel"

// snapshotKey returns the Redis key holding the owned-games snapshot
func snapshotKey(namespace string) string {
	return fmt.Sprintf("%s:owned_games", namespace)
}
