package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "results.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, finished time.Time) *Record {
	return &Record{
		ID:             id,
		Objective:      "sphere",
		Dimensions:     3,
		Status:         "completed",
		BestValue:      1.5e-9,
		BestParameters: []float64{1.2e-5, -3.0e-6, 7.7e-6},
		Iterations:     12,
		Evaluations:    418,
		StartedAt:      finished.Add(-2 * time.Second),
		FinishedAt:     finished,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := testRecord("job-1", time.Now())
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Objective, got.Objective)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.BestValue, got.BestValue)
	assert.Equal(t, want.BestParameters, got.BestParameters)
	assert.Equal(t, want.Iterations, got.Iterations)
	assert.Equal(t, want.Evaluations, got.Evaluations)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "no-such-job")
	require.Error(t, err)
}

func TestListOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.Save(ctx, testRecord(id, base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "new", records[0].ID)
	assert.Equal(t, "mid", records[1].ID)
	assert.Equal(t, "old", records[2].ID)
}

func TestListLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		rec := testRecord(string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Save(ctx, rec))
	}

	records, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := testRecord("job-1", time.Now())
	require.NoError(t, s.Save(ctx, rec))

	rec.Status = "failed"
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
