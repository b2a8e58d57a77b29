package services

import (
	"fmt"
	"time"

	"employment-api/backend/internal/cache"
	"employment-api/backend/internal/models"

	"gorm.io/gorm"
)

const (
	taskCacheTTL     = 30 * time.Minute
	taskListCacheTTL = 5 * time.Minute
)

// CachedTaskService decorates a TaskService with read-through caching.
// Single-task reads are cached per id; list reads per (skip, limit) page.
// Writes update the per-task entry and invalidate the list pages.
type CachedTaskService struct {
	taskService TaskService
	cache       cache.Cache
}

func NewCachedTaskService(taskService TaskService, cacheInstance cache.Cache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func taskCacheKey(id uint) string {
	return fmt.Sprintf("task:%d", id)
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	created, err := s.taskService.CreateTask(db, task)
	if err != nil {
		return created, err
	}

	s.cache.Set(taskCacheKey(created.ID), created, taskCacheTTL)
	s.cache.DeletePattern("tasks:list:*")

	return created, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, id uint) (models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(taskCacheKey(id), &cached); err == nil {
		return cached, nil
	}

	task, err := s.taskService.GetTaskByID(db, id)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskCacheKey(id), task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) GetTasks(db *gorm.DB, skip, limit int) ([]models.Task, error) {
	cacheKey := fmt.Sprintf("tasks:list:%d:%d", skip, limit)

	var cached []models.Task
	if err := s.cache.Get(cacheKey, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.taskService.GetTasks(db, skip, limit)
	if err != nil {
		return tasks, err
	}

	s.cache.Set(cacheKey, tasks, taskListCacheTTL)

	return tasks, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, id uint, update TaskUpdate, modifiedBy uint) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, id, update, modifiedBy)
	if err != nil {
		s.invalidate(id)
		return task, err
	}

	s.cache.Set(taskCacheKey(id), task, taskCacheTTL)
	s.cache.DeletePattern("tasks:list:*")

	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, id uint, deletedBy uint) (models.Task, error) {
	task, err := s.taskService.DeleteTask(db, id, deletedBy)
	if err != nil {
		s.invalidate(id)
		return task, err
	}

	// Soft delete keeps the row, so the entry is refreshed, not dropped.
	s.cache.Set(taskCacheKey(id), task, taskCacheTTL)
	s.cache.DeletePattern("tasks:list:*")

	return task, nil
}

// Cache failures never fail the request; a stale miss just falls back
// to the database on the next read.
func (s *CachedTaskService) invalidate(id uint) {
	s.cache.Delete(taskCacheKey(id))
	s.cache.DeletePattern("tasks:list:*")
}
