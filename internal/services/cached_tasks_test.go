package services

import (
	"testing"

	"employment-api/backend/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedTaskService_ReadThrough(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCachedTaskService(NewTaskService(), cache.NewMultiLevelCache(nil))

	task := createTaskFixture(t, db, svc)

	// First read populates the cache, second read is served from it.
	first, err := svc.GetTaskByID(db, task.ID)
	require.NoError(t, err)

	// Mutate the row behind the cache's back; the cached copy wins.
	require.NoError(t, db.Model(&first).Update("title", "changed directly").Error)

	second, err := svc.GetTaskByID(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, second.Title)
}

func TestCachedTaskService_UpdateRefreshesCache(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCachedTaskService(NewTaskService(), cache.NewMultiLevelCache(nil))

	task := createTaskFixture(t, db, svc)

	status := "done"
	_, err := svc.UpdateTask(db, task.ID, TaskUpdate{Status: &status}, 1)
	require.NoError(t, err)

	cached, err := svc.GetTaskByID(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", cached.Status)
}

func TestCachedTaskService_ListInvalidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCachedTaskService(NewTaskService(), cache.NewMultiLevelCache(nil))

	createTaskFixture(t, db, svc)

	tasks, err := svc.GetTasks(db, 0, 100)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	createTaskFixture(t, db, svc)

	tasks, err = svc.GetTasks(db, 0, 100)
	require.NoError(t, err)
	assert.Len(t, tasks, 2, "creating a task must invalidate cached listings")
}
