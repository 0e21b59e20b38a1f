package model

import "errors"

// Common errors used across the application
var (
	// Startup errors
	ErrConfig = errors.New("invalid configuration")

	// Remote inventory errors
	ErrTransientFetch = errors.New("failed to fetch owned games")
	ErrProtocol       = errors.New("unexpected response from web api")

	// Cache errors
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheIO   = errors.New("failed to write cache")

	// Lookup and input errors
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")

	// Local achievement runtime errors
	ErrClientUnavailable  = errors.New("achievement runtime unavailable")
	ErrUnknownApp         = errors.New("unknown app")
	ErrUnknownAchievement = errors.New("unknown achievement")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrConfig, "config"},
	{ErrTransientFetch, "transient_fetch"},
	{ErrProtocol, "protocol"},
	{ErrCacheIO, "cache_io"},
	{ErrCacheMiss, "cache_miss"},
	{ErrNotFound, "not_found"},
	{ErrValidation, "validation"},
	{ErrClientUnavailable, "client_unavailable"},
	{ErrUnknownApp, "unknown_app"},
	{ErrUnknownAchievement, "unknown_achievement"},
}

// ErrorKind maps an error onto a stable, machine readable kind
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
