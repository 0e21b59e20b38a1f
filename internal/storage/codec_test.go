package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/samuel/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snap := &model.Snapshot{
		Games: []model.Game{
			{AppID: 10, Name: "A", PlaytimeForever: 50},
			{AppID: 20, Name: "Ünïcode \"quoted\"", PlaytimeForever: 0},
		},
		FetchedAt: time.Date(2024, 1, 1, 12, 0, 0, 123456789, time.UTC),
	}

	data, err := Encode(snap)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, snap.Games, decoded.Games)
	assert.True(t, snap.FetchedAt.Equal(decoded.FetchedAt))
}

func TestEncodeEmptyLibrary(t *testing.T) {
	data, err := Encode(&model.Snapshot{FetchedAt: time.Unix(0, 0).UTC()})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"games": []`)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.NotNil(t, decoded.Games)
	assert.Empty(t, decoded.Games)
}

func TestDecodeCorruptDataIsCacheMiss(t *testing.T) {
	cases := map[string]string{
		"garbage":         "\x00\x01not json",
		"truncated":       `{"version":1,"fetched_at":"2024-01-01T00:00:00Z","games":[{"appid":1`,
		"wrong version":   `{"version":99,"fetched_at":"2024-01-01T00:00:00Z","games":[]}`,
		"no timestamp":    `{"version":1,"games":[]}`,
		"duplicate appid": `{"version":1,"fetched_at":"2024-01-01T00:00:00Z","games":[{"appid":1},{"appid":1}]}`,
		"empty":           ``,
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			assert.ErrorIs(t, err, model.ErrCacheMiss)
		})
	}
}
