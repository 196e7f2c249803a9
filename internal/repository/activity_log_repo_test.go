package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduquery-api/internal/models"
)

func exerciseActivityRepository(t *testing.T, repo ActivityLogRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	entries := []models.ActivityLog{
		{Action: models.ActionSearch, Term: "raffles", Data: map[string]interface{}{"username": "alice", "results_count": float64(3)}, Timestamp: base},
		{Action: models.ActionSearch, Term: "admiralty", Timestamp: base.Add(time.Minute)},
		{Action: models.ActionSearch, Term: "raffles", Timestamp: base.Add(2 * time.Minute)},
		{Action: models.ActionSchoolDeleted, Data: map[string]interface{}{"school_name": "Old School"}, Timestamp: base.Add(3 * time.Minute)},
	}
	for _, entry := range entries {
		require.NoError(t, repo.Append(ctx, entry))
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, models.ActionSchoolDeleted, recent[0].Action)
	require.Equal(t, "Old School", recent[0].Data["school_name"])
	require.Equal(t, "raffles", recent[1].Term)

	all, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "alice", all[3].Data["username"])
	require.True(t, all[3].Timestamp.Equal(base))

	terms, err := repo.PopularTerms(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []models.TermCount{{Term: "raffles", Count: 2}, {Term: "admiralty", Count: 1}}, terms)

	top, err := repo.PopularTerms(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "raffles", top[0].Term)
}

func TestActivityLogRepositorySQL(t *testing.T) {
	db := setupTestDB(t)
	exerciseActivityRepository(t, NewActivityLogRepository(db))
}

func TestActivityLogRepositoryRedisStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseActivityRepository(t, NewActivityStreamRepository(client, "test"))

	require.True(t, mr.Exists("test:activity"))
	require.True(t, mr.Exists("test:search_terms"))
}

func TestActivityStreamRepositoryEmptyStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewActivityStreamRepository(client, "")

	recent, err := repo.Recent(context.Background(), 20)
	require.NoError(t, err)
	require.Empty(t, recent)

	terms, err := repo.PopularTerms(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, terms)
}
