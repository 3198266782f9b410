package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	scheduler := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	now := time.Now().UTC()
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDEmbeddingBackfill,
		Name:        "Embedding Backfill",
		Interval:    15 * time.Minute,
		LastRun:     now.Add(-15 * time.Minute),
		NextRun:     now,
		LastSuccess: now.Add(-15 * time.Minute),
		Enabled:     true,
	}
	require.NoError(t, scheduler.SaveTask(ctx, task))

	got, err := scheduler.GetTask(ctx, domain.TaskIDEmbeddingBackfill)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, task.Name, got.Name)
	assert.Equal(t, task.Interval, got.Interval)
	assert.True(t, got.Enabled)
	assert.True(t, task.LastRun.Equal(got.LastRun))
	assert.True(t, task.NextRun.Equal(got.NextRun))
	assert.Empty(t, got.LastError)
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	scheduler := setupTestStore(t).SchedulerStore()

	task, err := scheduler.GetTask(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	scheduler := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	task := &domain.ScheduledTask{ID: domain.TaskIDTopicIngest, Name: "Topic Ingest", Interval: time.Hour, Enabled: true}
	require.NoError(t, scheduler.SaveTask(ctx, task))

	task.Interval = 24 * time.Hour
	task.Enabled = false
	task.LastError = "arxiv down"
	require.NoError(t, scheduler.SaveTask(ctx, task))

	tasks, err := scheduler.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 24*time.Hour, tasks[0].Interval)
	assert.False(t, tasks[0].Enabled)
	assert.Equal(t, "arxiv down", tasks[0].LastError)
	assert.True(t, tasks[0].LastRun.IsZero())
}

func TestSchedulerStore_NilArguments(t *testing.T) {
	scheduler := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	assert.ErrorIs(t, scheduler.SaveTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, scheduler.RecordResult(ctx, nil), domain.ErrInvalidInput)
}

func TestSchedulerStore_ListTasks_OrderedByID(t *testing.T) {
	scheduler := setupTestStore(t).SchedulerStore()
	ctx := context.Background()

	for _, id := range []string{domain.TaskIDTopicIngest, domain.TaskIDEmbeddingBackfill} {
		require.NoError(t, scheduler.SaveTask(ctx, &domain.ScheduledTask{ID: id, Name: id, Interval: time.Minute}))
	}

	tasks, err := scheduler.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.TaskIDEmbeddingBackfill, tasks[0].ID)
	assert.Equal(t, domain.TaskIDTopicIngest, tasks[1].ID)
}

func recordRuns(t *testing.T, store *Store, taskID string, n int) time.Time {
	t.Helper()
	ctx := context.Background()
	scheduler := store.SchedulerStore()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range n {
		start := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, scheduler.RecordResult(ctx, &domain.TaskResult{
			TaskID:         taskID,
			StartedAt:      start,
			EndedAt:        start.Add(500 * time.Millisecond),
			Success:        i%2 == 0,
			Error:          map[bool]string{true: "", false: "boom"}[i%2 == 0],
			ItemsProcessed: i,
		}))
	}
	return base
}

func TestSchedulerStore_TaskHistory(t *testing.T) {
	store := setupTestStore(t)
	base := recordRuns(t, store, domain.TaskIDEmbeddingBackfill, 5)

	history, err := store.SchedulerStore().GetTaskHistory(context.Background(), domain.TaskIDEmbeddingBackfill, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, 4, history[0].ItemsProcessed)
	assert.True(t, history[0].StartedAt.Equal(base.Add(4*time.Minute)))
	assert.True(t, history[0].EndedAt.Equal(base.Add(4*time.Minute+500*time.Millisecond)))
	assert.True(t, history[0].Success)
	assert.False(t, history[1].Success)
	assert.Equal(t, "boom", history[1].Error)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	recordRuns(t, store, domain.TaskIDEmbeddingBackfill, 6)
	recordRuns(t, store, domain.TaskIDTopicIngest, 2)

	scheduler := store.SchedulerStore()
	require.NoError(t, scheduler.PruneHistory(ctx, 3))

	backfill, err := scheduler.GetTaskHistory(ctx, domain.TaskIDEmbeddingBackfill, 100)
	require.NoError(t, err)
	require.Len(t, backfill, 3)
	assert.Equal(t, 5, backfill[0].ItemsProcessed)
	assert.Equal(t, 3, backfill[2].ItemsProcessed)

	ingest, err := scheduler.GetTaskHistory(ctx, domain.TaskIDTopicIngest, 100)
	require.NoError(t, err)
	assert.Len(t, ingest, 2)
}

func TestNullableTimeHelpers(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))

	ts := time.Date(2024, 1, 2, 3, 4, 5, 600, time.UTC)
	formatted, ok := formatNullableTime(ts).(string)
	require.True(t, ok)
	assert.Equal(t, "2024-01-02T03:04:05.000000600Z", formatted)
	assert.True(t, parseNullableTime(sql.NullString{String: formatted, Valid: true}).Equal(ts))

	assert.True(t, parseNullableTime(sql.NullString{}).IsZero())
	assert.True(t, parseNullableTime(sql.NullString{String: "garbage", Valid: true}).IsZero())
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", nullString("x"))
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}
