package database_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/scythe504/skribblr/internal"
	"github.com/scythe504/skribblr/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	svc       *database.Service
	setupErr  error
	container *postgres.PostgresContainer
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	setupErr = start(ctx)

	code := m.Run()

	if svc != nil {
		svc.Close()
	}
	if container != nil {
		testcontainers.TerminateContainer(container)
	}
	os.Exit(code)
}

func start(ctx context.Context) (err error) {
	// testcontainers panics when no docker daemon can be found.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("start postgres: %v", r)
		}
	}()

	container, err = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("skribblr"),
		postgres.WithUsername("skribblr"),
		postgres.WithPassword("skribblr"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return err
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return err
	}
	svc, err = database.New(ctx, url)
	return err
}

func requireDatabase(t *testing.T) {
	t.Helper()
	if setupErr != nil {
		t.Skipf("postgres unavailable: %v", setupErr)
	}
}

func TestWords(t *testing.T) {
	requireDatabase(t)
	ctx := context.Background()

	inserted, err := svc.SeedWords(ctx, []string{"apple", " pear ", "", "ice cream"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, inserted)

	t.Run("seeding is idempotent", func(t *testing.T) {
		inserted, err := svc.SeedWords(ctx, []string{"apple", "plum"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, inserted)
	})

	t.Run("nothing to seed", func(t *testing.T) {
		inserted, err := svc.SeedWords(ctx, []string{"  "})
		require.NoError(t, err)
		assert.Zero(t, inserted)
	})

	words, err := svc.Words(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "pear", "ice cream", "plum"}, words)
}

func TestResults(t *testing.T) {
	requireDatabase(t)
	ctx := context.Background()

	empty, err := svc.RecentResults(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	older := internal.FinalResults{
		RoomID:       "room-one",
		RoundsPlayed: 3,
		TotalPlayers: 2,
		FinishedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Leaderboard: []internal.GameResultData{
			{PlayerID: "a", Username: "Alice", Score: 900, Position: 1},
			{PlayerID: "b", Username: "Bob", Score: 400, Position: 2},
		},
	}
	newer := internal.FinalResults{
		RoomID:       "room-two",
		RoundsPlayed: 1,
		TotalPlayers: 1,
		FinishedAt:   older.FinishedAt.Add(time.Hour),
		Leaderboard: []internal.GameResultData{
			{PlayerID: "c", Username: "Carol", Score: 250, Position: 1},
		},
	}
	require.NoError(t, svc.RecordGame(ctx, older))
	require.NoError(t, svc.RecordGame(ctx, newer))

	games, err := svc.RecentResults(ctx, 10)
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, "room-two", games[0].RoomID)
	assert.Equal(t, newer.Leaderboard, games[0].Leaderboard)

	assert.Equal(t, "room-one", games[1].RoomID)
	assert.Equal(t, 3, games[1].RoundsPlayed)
	assert.True(t, older.FinishedAt.Equal(games[1].FinishedAt))
	assert.Equal(t, older.Leaderboard, games[1].Leaderboard)

	t.Run("limit", func(t *testing.T) {
		games, err := svc.RecentResults(ctx, 1)
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "room-two", games[0].RoomID)
	})

	t.Run("duplicate player rolls back", func(t *testing.T) {
		bad := older
		bad.RoomID = "room-bad"
		bad.Leaderboard = []internal.GameResultData{
			{PlayerID: "a", Username: "Alice", Score: 1, Position: 1},
			{PlayerID: "a", Username: "Alice", Score: 1, Position: 2},
		}
		assert.ErrorIs(t, svc.RecordGame(ctx, bad), database.ErrUnexpectedDatabase)

		games, err := svc.RecentResults(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, games, 2)
	})

	t.Run("cancelled context passes through", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.RecentResults(cancelled, 10)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHealth(t *testing.T) {
	requireDatabase(t)
	stats := svc.Health(context.Background())
	assert.Equal(t, "up", stats["status"])
	assert.NotEmpty(t, stats["max_conns"])
}
