package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamtodo-dev/teamtodo/db"
	"github.com/teamtodo-dev/teamtodo/internal/models"
	"github.com/teamtodo-dev/teamtodo/internal/types"
	"github.com/teamtodo-dev/teamtodo/internal/utils"
	"github.com/teamtodo-dev/teamtodo/internal/ws"
	"gorm.io/gorm"
)

type CreateTodoRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *uint      `json:"assignee_id"`
	TeamID      *uint      `json:"team_id"`
}

type UpdateTodoRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *uint      `json:"assignee_id"`
}

type TeamRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TodoResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     *time.Time          `json:"due_date"`
	Status      string              `json:"status"`
	Priority    string              `json:"priority"`
	AssigneeID  *uint               `json:"assignee_id"`
	TeamID      *uint               `json:"team_id"`
	CreatedByID uint                `json:"created_by_id"`
	Assignee    *types.UserResponse `json:"assignee"`
	Team        *TeamRef            `json:"team"`
	CreatedBy   types.UserResponse  `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type TodoHandler struct {
	hub *ws.Hub
}

func NewTodoHandler(hub *ws.Hub) *TodoHandler {
	return &TodoHandler{hub: hub}
}

func todoResponse(todo *models.Todo) TodoResponse {
	response := TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		DueDate:     todo.DueDate,
		Status:      todo.Status,
		Priority:    todo.Priority,
		AssigneeID:  todo.AssigneeID,
		TeamID:      todo.TeamID,
		CreatedByID: todo.CreatedByID,
		CreatedBy: types.UserResponse{
			ID:        todo.CreatedBy.ID,
			Email:     todo.CreatedBy.Email,
			FirstName: todo.CreatedBy.FirstName,
			LastName:  todo.CreatedBy.LastName,
		},
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}

	if todo.Assignee != nil {
		response.Assignee = &types.UserResponse{
			ID:        todo.Assignee.ID,
			Email:     todo.Assignee.Email,
			FirstName: todo.Assignee.FirstName,
			LastName:  todo.Assignee.LastName,
		}
	}

	if todo.Team != nil {
		response.Team = &TeamRef{ID: todo.Team.ID, Name: todo.Team.Name}
	}

	return response
}

// loadTodo fetches a todo with the Assignee, Team and CreatedBy relations,
// the relation set every todo endpoint responds with.
func loadTodo(id interface{}) (*models.Todo, error) {
	var todo models.Todo

	err := db.DB.Preload("Assignee").Preload("Team").Preload("CreatedBy").
		Where("id = ?", id).First(&todo).Error

	if err != nil {
		return nil, err
	}

	return &todo, nil
}

func todoListResponse(todos []models.Todo) []TodoResponse {
	response := make([]TodoResponse, 0, len(todos))

	for i := range todos {
		response = append(response, todoResponse(&todos[i]))
	}

	return response
}

func (h *TodoHandler) Create(ctx *gin.Context) {
	var body CreateTodoRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if body.TeamID != nil {
		team, err := loadTeam(fmt.Sprint(*body.TeamID))

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
			} else {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
			}
			return
		}

		if !team.HasMember(userID) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this team"})
			return
		}
	}

	todo := models.Todo{
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		Status:      body.Status,
		Priority:    body.Priority,
		AssigneeID:  body.AssigneeID,
		TeamID:      body.TeamID,
		CreatedByID: userID,
	}

	if todo.Status == "" {
		todo.Status = types.StatusPending
	}

	if todo.Priority == "" {
		todo.Priority = types.PriorityMedium
	}

	if err := db.DB.Create(&todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}

	created, err := loadTodo(todo.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		return
	}

	response := todoResponse(created)

	if created.TeamID != nil {
		h.hub.BroadcastToTeam(*created.TeamID, ws.EventTodoCreated, response)
	}

	if created.AssigneeID != nil && *created.AssigneeID != userID {
		notifyUser(h.hub, *created.AssigneeID, ws.NewEnvelope(
			"todo_created",
			"New Task Created",
			fmt.Sprintf("A new task has been created and assigned to you: %s", created.Title),
			response,
		))
	}

	ctx.JSON(http.StatusCreated, response)
}

func (h *TodoHandler) List(ctx *gin.Context) {
	var todos []models.Todo

	err := db.DB.Preload("Assignee").Preload("Team").Preload("CreatedBy").Find(&todos).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	ctx.JSON(http.StatusOK, todoListResponse(todos))
}

func (h *TodoHandler) MyTodos(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var todos []models.Todo

	err = db.DB.Preload("Assignee").Preload("Team").Preload("CreatedBy").
		Where("created_by_id = ? OR assignee_id = ?", userID, userID).
		Find(&todos).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	ctx.JSON(http.StatusOK, todoListResponse(todos))
}

func (h *TodoHandler) ByTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	team, err := loadTeam(ctx.Param("teamId"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	if !team.HasMember(userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this team"})
		return
	}

	var todos []models.Todo

	err = db.DB.Preload("Assignee").Preload("Team").Preload("CreatedBy").
		Where("team_id = ?", team.ID).
		Find(&todos).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	ctx.JSON(http.StatusOK, todoListResponse(todos))
}

func (h *TodoHandler) ByStatus(ctx *gin.Context) {
	status := ctx.Param("status")

	if !types.IsValidStatus(status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var todos []models.Todo

	err = db.DB.Preload("Assignee").Preload("Team").Preload("CreatedBy").
		Where("status = ? AND (created_by_id = ? OR assignee_id = ?)", status, userID, userID).
		Find(&todos).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	ctx.JSON(http.StatusOK, todoListResponse(todos))
}

func (h *TodoHandler) Overdue(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var todos []models.Todo

	err = db.DB.Preload("Assignee").Preload("Team").Preload("CreatedBy").
		Where("due_date < ? AND status != ? AND (created_by_id = ? OR assignee_id = ?)",
			time.Now(), types.StatusCompleted, userID, userID).
		Find(&todos).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	ctx.JSON(http.StatusOK, todoListResponse(todos))
}

func (h *TodoHandler) Get(ctx *gin.Context) {
	todo, err := loadTodo(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		}
		return
	}

	ctx.JSON(http.StatusOK, todoResponse(todo))
}

func (h *TodoHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateTodoRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	todo, err := loadTodo(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		}
		return
	}

	if !canModify(todo, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own todos or assigned todos"})
		return
	}

	if body.Title != nil {
		todo.Title = *body.Title
	}

	if body.Description != nil {
		todo.Description = *body.Description
	}

	if body.DueDate != nil {
		todo.DueDate = body.DueDate
	}

	if body.Status != nil {
		todo.Status = *body.Status
	}

	if body.Priority != nil {
		todo.Priority = *body.Priority
	}

	if body.AssigneeID != nil {
		todo.AssigneeID = body.AssigneeID
	}

	if err := db.DB.Save(todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		return
	}

	updated, err := loadTodo(todo.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		return
	}

	response := todoResponse(updated)

	if updated.TeamID != nil {
		h.hub.BroadcastToTeam(*updated.TeamID, ws.EventTodoUpdated, response)
	}

	if other := otherParty(updated, userID); other != 0 {
		notifyUser(h.hub, other, ws.NewEnvelope(
			"todo_updated",
			"Task Updated",
			fmt.Sprintf("Task %q has been updated", updated.Title),
			response,
		))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *TodoHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	todo, err := loadTodo(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		}
		return
	}

	if todo.CreatedByID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own todos"})
		return
	}

	teamID := todo.TeamID

	if err := db.DB.Delete(todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	if teamID != nil {
		h.hub.BroadcastToTeam(*teamID, ws.EventTodoDeleted, gin.H{"id": todo.ID})
	}

	ctx.Status(http.StatusNoContent)
}

func (h *TodoHandler) Assign(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	todo, err := loadTodo(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		}
		return
	}

	if todo.CreatedByID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You can only assign todos you created"})
		return
	}

	var assignee models.User

	if err := db.DB.Where("id = ?", ctx.Param("assigneeId")).First(&assignee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	if err := db.DB.Model(todo).Update("assignee_id", assignee.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign todo"})
		return
	}

	updated, err := loadTodo(todo.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		return
	}

	response := todoResponse(updated)

	if updated.TeamID != nil {
		h.hub.BroadcastToTeam(*updated.TeamID, ws.EventTodoAssigned, response)
	}

	notifyUser(h.hub, assignee.ID, ws.NewEnvelope(
		"todo_assigned",
		"Task Assigned",
		fmt.Sprintf("You have been assigned to task: %s", updated.Title),
		response,
	))

	ctx.JSON(http.StatusOK, response)
}

func (h *TodoHandler) UpdateStatus(ctx *gin.Context) {
	status := ctx.Param("status")

	if !types.IsValidStatus(status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	todo, err := loadTodo(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		}
		return
	}

	if !canModify(todo, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You can only update status of your own todos or assigned todos"})
		return
	}

	if err := db.DB.Model(todo).Update("status", status).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	updated, err := loadTodo(todo.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		return
	}

	response := todoResponse(updated)

	if updated.TeamID != nil {
		h.hub.BroadcastToTeam(*updated.TeamID, ws.EventTodoStatusChanged, response)
	}

	if other := otherParty(updated, userID); other != 0 {
		notifyUser(h.hub, other, ws.NewEnvelope(
			"todo_status_changed",
			"Task Status Changed",
			fmt.Sprintf("Task %q status changed to %s", updated.Title, status),
			response,
		))
	}

	ctx.JSON(http.StatusOK, response)
}

// canModify reports whether userID is the creator or current assignee.
func canModify(todo *models.Todo, userID uint) bool {
	if todo.CreatedByID == userID {
		return true
	}

	return todo.AssigneeID != nil && *todo.AssigneeID == userID
}

// otherParty returns the creator or assignee that is not the acting user,
// or 0 when there is no one else to notify.
func otherParty(todo *models.Todo, userID uint) uint {
	if todo.CreatedByID == userID {
		if todo.AssigneeID != nil && *todo.AssigneeID != userID {
			return *todo.AssigneeID
		}
		return 0
	}

	return todo.CreatedByID
}
