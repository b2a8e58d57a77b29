package services

import (
	"time"

	"employment-api/backend/internal/models"

	"gorm.io/gorm"
)

// TaskUpdate carries partial-update fields. Nil pointers leave the stored
// value untouched; only provided fields overwrite.
type TaskUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssignedTo  *uint      `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	IsDeleted   *bool      `json:"is_deleted"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, task models.Task) (models.Task, error)
	GetTaskByID(db *gorm.DB, id uint) (models.Task, error)
	GetTasks(db *gorm.DB, skip, limit int) ([]models.Task, error)
	UpdateTask(db *gorm.DB, id uint, update TaskUpdate, modifiedBy uint) (models.Task, error)
	DeleteTask(db *gorm.DB, id uint, deletedBy uint) (models.Task, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	if task.Status == "" {
		task.Status = "pending"
	}
	if task.Priority == "" {
		task.Priority = "normal"
	}
	err := db.Create(&task).Error
	return task, err
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, id uint) (models.Task, error) {
	var task models.Task
	result := db.Where("id = ?", id).First(&task)
	return task, result.Error
}

func (s *TaskServiceImpl) GetTasks(db *gorm.DB, skip, limit int) ([]models.Task, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var tasks []models.Task
	result := db.Offset(skip).Limit(limit).Find(&tasks)
	return tasks, result.Error
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, id uint, update TaskUpdate, modifiedBy uint) (models.Task, error) {
	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			return err
		}
		applyTaskUpdate(&task, update)
		task.ModifiedBy = &modifiedBy
		return tx.Save(&task).Error
	})
	return task, err
}

// DeleteTask flips the soft-delete flag; the row is never removed.
func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id uint, deletedBy uint) (models.Task, error) {
	deleted := true
	return s.UpdateTask(db, id, TaskUpdate{IsDeleted: &deleted}, deletedBy)
}

// applyTaskUpdate merges provided fields into the stored task, field by
// field with compile-time-checked names.
func applyTaskUpdate(task *models.Task, update TaskUpdate) {
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.AssignedTo != nil {
		task.AssignedTo = update.AssignedTo
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.IsDeleted != nil {
		task.IsDeleted = *update.IsDeleted
	}
}
