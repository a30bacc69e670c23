package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamtodo-dev/teamtodo/db"
	"github.com/teamtodo-dev/teamtodo/internal/models"
	"github.com/teamtodo-dev/teamtodo/internal/utils"
	"github.com/teamtodo-dev/teamtodo/internal/ws"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationResponse struct {
	ID        uint            `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ReadAt    *time.Time      `json:"read_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// notifyUser persists a notification row for userID and emits the envelope to
// their live connection. Delivery is best effort; a persistence failure is
// logged and does not stop the emit.
func notifyUser(hub *ws.Hub, userID uint, envelope ws.Envelope) {
	data, err := json.Marshal(envelope.Data)

	if err != nil {
		log.Printf("Failed to marshal notification data for user %d: %v", userID, err)
		data = nil
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    envelope.Type,
		Title:   envelope.Title,
		Message: envelope.Message,
		Data:    datatypes.JSON(data),
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to store notification for user %d: %v", userID, err)
	}

	hub.EmitToUser(userID, ws.EventNotification, envelope)
}

func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notifications []models.Notification

	err = db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))

	for _, n := range notifications {
		response = append(response, NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Data:      json.RawMessage(n.Data),
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func MarkNotificationRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notification models.Notification

	err = db.DB.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&notification).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification"})
		}
		return
	}

	now := time.Now()

	if err := db.DB.Model(&notification).Update("read_at", &now).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	ctx.JSON(http.StatusOK, NotificationResponse{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Data:      json.RawMessage(notification.Data),
		ReadAt:    &now,
		CreatedAt: notification.CreatedAt,
	})
}
