package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"employment-api/backend/internal/models"
	"employment-api/backend/internal/services"
	"employment-api/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	userService services.UserService
	jobs        *worker.JobQueue
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, userService services.UserService,
	jobs *worker.JobQueue) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, userService: userService, jobs: jobs}
}

type TaskCreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *uint      `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := resolveCurrentUser(c, h.db, h.userService)
	if !ok {
		return
	}

	var req TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		AssignedBy:  &user.ID,
	}

	created, err := h.taskService.CreateTask(h.db, task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create task"})
		return
	}

	if created.DueDate != nil {
		if err := h.jobs.EnqueueAt(worker.DefaultQueue, worker.JobTypeTaskReminder, map[string]interface{}{
			"task_id": created.ID,
			"title":   created.Title,
		}, *created.DueDate); err != nil {
			log.Printf("failed to enqueue reminder for task %d: %v", created.ID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Task created successfully",
		"task":    created,
	})
}

func (h *TaskHandler) ReadTask(c *gin.Context) {
	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskByID(h.db, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task read successfully",
		"task":    task,
	})
}

func (h *TaskHandler) ReadTasks(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	tasks, err := h.taskService.GetTasks(h.db, skip, limit)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task read successfully",
		"task":    tasks,
	})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := resolveCurrentUser(c, h.db, h.userService)
	if !ok {
		return
	}

	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	var update services.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, id, update, user.ID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := resolveCurrentUser(c, h.db, h.userService)
	if !ok {
		return
	}

	id, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.DeleteTask(h.db, id, user.ID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
		"task":    task,
	})
}

func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid task id"})
		return 0, false
	}
	return uint(id), true
}

func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Task not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to process task request"})
}
