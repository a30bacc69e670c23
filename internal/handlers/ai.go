package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamtodo-dev/teamtodo/internal/ai"
)

type SuggestDueDateRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Priority     string `json:"priority" binding:"required,oneof=low medium high urgent"`
	TeamWorkload int    `json:"team_workload" binding:"required,min=1,max=10"`
}

type AnalyzeTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func SuggestDueDate(ctx *gin.Context) {
	var body SuggestDueDateRequest

	if err := ctx.BindJSON(&body); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx.JSON(http.StatusOK, ai.SuggestDueDate(body.Title, body.Description, body.Priority, body.TeamWorkload))
}

func AnalyzeTask(ctx *gin.Context) {
	var body AnalyzeTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx.JSON(http.StatusOK, ai.AnalyzeTask(body.Title, body.Description))
}
