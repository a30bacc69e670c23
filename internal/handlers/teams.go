package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamtodo-dev/teamtodo/db"
	"github.com/teamtodo-dev/teamtodo/internal/models"
	"github.com/teamtodo-dev/teamtodo/internal/types"
	"github.com/teamtodo-dev/teamtodo/internal/utils"
	"github.com/teamtodo-dev/teamtodo/internal/ws"
	"gorm.io/gorm"
)

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type TeamResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	OwnerID     uint                 `json:"owner_id"`
	Owner       types.UserResponse   `json:"owner"`
	Members     []types.UserResponse `json:"members"`
}

type TeamHandler struct {
	hub *ws.Hub
}

func NewTeamHandler(hub *ws.Hub) *TeamHandler {
	return &TeamHandler{hub: hub}
}

func teamResponse(team *models.Team) TeamResponse {
	members := make([]types.UserResponse, 0, len(team.Members))

	for _, member := range team.Members {
		members = append(members, types.UserResponse{
			ID:        member.ID,
			Email:     member.Email,
			FirstName: member.FirstName,
			LastName:  member.LastName,
		})
	}

	return TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		OwnerID:     team.OwnerID,
		Owner: types.UserResponse{
			ID:        team.Owner.ID,
			Email:     team.Owner.Email,
			FirstName: team.Owner.FirstName,
			LastName:  team.Owner.LastName,
		},
		Members: members,
	}
}

// loadTeam fetches a team with the Owner and Members relations, the exact
// relation set every team endpoint responds with.
func loadTeam(id string) (*models.Team, error) {
	var team models.Team

	err := db.DB.Preload("Owner").Preload("Members").Where("id = ?", id).First(&team).Error

	if err != nil {
		return nil, err
	}

	return &team, nil
}

func (h *TeamHandler) Create(ctx *gin.Context) {
	var body CreateTeamRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	team := models.Team{
		Name:        body.Name,
		Description: body.Description,
		OwnerID:     currentUser.ID,
	}

	if err := db.DB.Create(&team).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create team"})
		return
	}

	// Add the owner as an explicit member. This is a second persistence step,
	// not part of the create transaction.
	var owner models.User

	if err := db.DB.First(&owner, currentUser.ID).Error; err == nil {
		if err := db.DB.Model(&team).Association("Members").Append(&owner); err != nil {
			log.Printf("Failed to add owner as member of team %d: %v", team.ID, err)
		}
	}

	created, err := loadTeam(fmt.Sprint(team.ID))

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		return
	}

	ctx.JSON(http.StatusCreated, teamResponse(created))
}

func (h *TeamHandler) List(ctx *gin.Context) {
	var teams []models.Team

	if err := db.DB.Preload("Owner").Preload("Members").Find(&teams).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve teams"})
		return
	}

	response := make([]TeamResponse, 0, len(teams))

	for i := range teams {
		response = append(response, teamResponse(&teams[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *TeamHandler) MyTeams(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var teams []models.Team

	err = db.DB.Preload("Owner").Preload("Members").
		Where("owner_id = ?", userID).
		Or("id IN (?)", db.DB.Table("team_members").Select("team_id").Where("user_id = ?", userID)).
		Find(&teams).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve teams"})
		return
	}

	response := make([]TeamResponse, 0, len(teams))

	for i := range teams {
		response = append(response, teamResponse(&teams[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *TeamHandler) Get(ctx *gin.Context) {
	team, err := loadTeam(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	ctx.JSON(http.StatusOK, teamResponse(team))
}

func (h *TeamHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateTeamRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	team, err := loadTeam(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	if team.OwnerID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only team owner can update team"})
		return
	}

	team.Name = body.Name
	team.Description = body.Description

	if err := db.DB.Save(team).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update team"})
		return
	}

	response := teamResponse(team)
	h.hub.BroadcastToTeam(team.ID, ws.EventTeamUpdated, response)

	ctx.JSON(http.StatusOK, response)
}

func (h *TeamHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	team, err := loadTeam(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	if team.OwnerID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only team owner can delete team"})
		return
	}

	// Delete the team's todos first, then the team itself
	if err := db.DB.Where("team_id = ?", team.ID).Delete(&models.Todo{}).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete team todos"})
		return
	}

	if err := db.DB.Select("Members").Delete(team).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete team"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *TeamHandler) AddMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body AddMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	team, err := loadTeam(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	if !team.HasMember(userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to add members to this team"})
		return
	}

	var user models.User

	if err := db.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	for _, member := range team.Members {
		if member.ID == user.ID {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "User is already a member of this team"})
			return
		}
	}

	if err := db.DB.Model(team).Association("Members").Append(&user); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	updated, err := loadTeam(ctx.Param("id"))

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		return
	}

	response := teamResponse(updated)

	h.hub.BroadcastToTeam(updated.ID, ws.EventMemberAdded, gin.H{
		"team": response,
		"member": types.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
		"added_by": userID,
	})

	notifyUser(h.hub, user.ID, ws.NewEnvelope(
		"team_member_added",
		"Added to Team",
		fmt.Sprintf("You have been added to team: %s", updated.Name),
		gin.H{"team": response, "added_by": userID},
	))

	ctx.JSON(http.StatusOK, response)
}

func (h *TeamHandler) RemoveMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	team, err := loadTeam(ctx.Param("id"))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	if team.OwnerID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only team owner can remove members"})
		return
	}

	memberID, err := strconv.ParseUint(ctx.Param("memberId"), 10, 32)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member id"})
		return
	}

	var removed *models.User

	for i := range team.Members {
		if team.Members[i].ID == uint(memberID) {
			removed = &team.Members[i]
			break
		}
	}

	if removed != nil {
		if err := db.DB.Model(team).Association("Members").Delete(removed); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
			return
		}
	}

	updated, err := loadTeam(ctx.Param("id"))

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		return
	}

	response := teamResponse(updated)

	// The removal event goes out whether or not the id was in the members
	// list; only an actual member gets a personal notification
	h.hub.BroadcastToTeam(updated.ID, ws.EventMemberRemoved, gin.H{"id": uint(memberID)})

	if removed != nil {
		notifyUser(h.hub, removed.ID, ws.NewEnvelope(
			"team_member_removed",
			"Removed from Team",
			fmt.Sprintf("You have been removed from team: %s", updated.Name),
			gin.H{"team": response, "removed_by": userID},
		))
	}

	ctx.JSON(http.StatusOK, response)
}
