package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamtodo-dev/teamtodo/db"
	"github.com/teamtodo-dev/teamtodo/internal/auth"
	"github.com/teamtodo-dev/teamtodo/internal/router"
	"github.com/teamtodo-dev/teamtodo/internal/ws"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServer(t *testing.T) (*gin.Engine, *ws.Hub) {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("Failed to init JWT secret: %v", err)
	}

	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.DB = gdb

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	hub := ws.NewHub()

	return router.NewRouter(hub), hub
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}

	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}

	return result
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()

	var result []map[string]interface{}

	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}

	return result
}

func registerUser(t *testing.T, r *gin.Engine, email string) (token string, id uint) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      email,
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "User",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to register %s: %d %s", email, w.Code, w.Body.String())
	}

	result := decode(t, w)
	token = result["access_token"].(string)
	id = uint(result["user"].(map[string]interface{})["id"].(float64))

	return token, id
}

func createTeam(t *testing.T, r *gin.Engine, token, name string) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/teams", token, gin.H{"name": name})

	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create team: %d %s", w.Code, w.Body.String())
	}

	return uint(decode(t, w)["id"].(float64))
}

func TestAuthFlow(t *testing.T) {
	r, _ := setupServer(t)

	token, _ := registerUser(t, r, "alice@example.com")

	// Duplicate email
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      "alice@example.com",
		"password":   "password123",
		"first_name": "Alice",
		"last_name":  "Smith",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate email, got %d", w.Code)
	}

	// Login
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on login, got %d %s", w.Code, w.Body.String())
	}
	if decode(t, w)["access_token"] == nil {
		t.Error("Expected access_token in login response")
	}

	// Wrong password
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for wrong password, got %d", w.Code)
	}

	// Me with and without token
	w = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for /auth/me with token, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for /auth/me without token, got %d", w.Code)
	}
}

func TestTeamLifecycle(t *testing.T) {
	r, _ := setupServer(t)

	ownerToken, ownerID := registerUser(t, r, "owner@example.com")
	memberToken, memberID := registerUser(t, r, "member@example.com")
	_, _ = registerUser(t, r, "third@example.com")

	teamID := createTeam(t, r, ownerToken, "Backend")
	teamPath := fmt.Sprintf("/api/teams/%d", teamID)

	// Creator becomes owner and an explicit member
	w := doJSON(t, r, http.MethodGet, teamPath, ownerToken, nil)
	team := decode(t, w)
	if uint(team["owner_id"].(float64)) != ownerID {
		t.Errorf("Expected owner_id %d, got %v", ownerID, team["owner_id"])
	}
	if members := team["members"].([]interface{}); len(members) != 1 {
		t.Errorf("Expected owner auto-added as member, got %d members", len(members))
	}

	// Non-owner cannot update or delete
	w = doJSON(t, r, http.MethodPut, teamPath, memberToken, gin.H{"name": "Hijacked"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-owner update, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, teamPath, memberToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-owner delete, got %d", w.Code)
	}

	// Non-member cannot add members
	w = doJSON(t, r, http.MethodPost, teamPath+"/members", memberToken, gin.H{"email": "third@example.com"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-member adding members, got %d", w.Code)
	}

	// Owner adds a member
	w = doJSON(t, r, http.MethodPost, teamPath+"/members", ownerToken, gin.H{"email": "member@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 adding member, got %d %s", w.Code, w.Body.String())
	}

	// Adding again is rejected distinctly
	w = doJSON(t, r, http.MethodPost, teamPath+"/members", ownerToken, gin.H{"email": "member@example.com"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for already-member, got %d", w.Code)
	}

	// Unknown target user
	w = doJSON(t, r, http.MethodPost, teamPath+"/members", ownerToken, gin.H{"email": "ghost@example.com"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown user, got %d", w.Code)
	}

	// An existing member may add members too
	w = doJSON(t, r, http.MethodPost, teamPath+"/members", memberToken, gin.H{"email": "third@example.com"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for member adding member, got %d %s", w.Code, w.Body.String())
	}

	// Only the owner removes members
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("%s/members/%d", teamPath, memberID), memberToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-owner removing member, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("%s/members/%d", teamPath, memberID), ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for owner removing member, got %d %s", w.Code, w.Body.String())
	}

	// my-teams reflects membership
	w = doJSON(t, r, http.MethodGet, "/api/teams/my-teams", ownerToken, nil)
	if len(decodeList(t, w)) != 1 {
		t.Errorf("Expected owner to see one team, got %s", w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/teams/my-teams", memberToken, nil)
	if len(decodeList(t, w)) != 0 {
		t.Errorf("Expected removed member to see no teams, got %s", w.Body.String())
	}
}

func TestOwnerIsImplicitMember(t *testing.T) {
	r, _ := setupServer(t)

	ownerToken, ownerID := registerUser(t, r, "owner@example.com")
	teamID := createTeam(t, r, ownerToken, "Backend")

	// Remove the owner from the explicit members list
	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/teams/%d/members/%d", teamID, ownerID), ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to remove owner from members: %d %s", w.Code, w.Body.String())
	}

	// Membership checks still treat the owner as a member
	w = doJSON(t, r, http.MethodPost, "/api/todos", ownerToken, gin.H{
		"title":   "Ship release",
		"team_id": teamID,
	})
	if w.Code != http.StatusCreated {
		t.Errorf("Expected owner to create team todos as implicit member, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/team/%d", teamID), ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected owner to list team todos as implicit member, got %d", w.Code)
	}
}

func TestTodoAuthorization(t *testing.T) {
	r, _ := setupServer(t)

	creatorToken, _ := registerUser(t, r, "creator@example.com")
	otherToken, otherID := registerUser(t, r, "other@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/todos", creatorToken, gin.H{"title": "Personal task"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create todo: %d %s", w.Code, w.Body.String())
	}
	todoID := uint(decode(t, w)["id"].(float64))
	todoPath := fmt.Sprintf("/api/todos/%d", todoID)

	// A user who is neither creator nor assignee cannot touch it
	w = doJSON(t, r, http.MethodPut, todoPath, otherToken, gin.H{"title": "Hijacked"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for stranger update, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPut, todoPath+"/status/completed", otherToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for stranger status change, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("%s/assign/%d", todoPath, otherID), otherToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for stranger assignment, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, todoPath, otherToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for stranger delete, got %d", w.Code)
	}

	// Creator assigns; the assignee gains update rights but not delete
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("%s/assign/%d", todoPath, otherID), creatorToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for creator assignment, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, todoPath+"/status/in_progress", otherToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for assignee status change, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, todoPath, otherToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for assignee delete, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, todoPath, creatorToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for creator delete, got %d", w.Code)
	}
}

func TestTeamTodoRoundTrip(t *testing.T) {
	r, _ := setupServer(t)

	ownerToken, _ := registerUser(t, r, "owner@example.com")
	memberToken, _ := registerUser(t, r, "member@example.com")
	outsiderToken, _ := registerUser(t, r, "outsider@example.com")

	teamID := createTeam(t, r, ownerToken, "Backend")

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/teams/%d/members", teamID), ownerToken,
		gin.H{"email": "member@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to add member: %d %s", w.Code, w.Body.String())
	}

	// Outsiders cannot create todos in the team
	w = doJSON(t, r, http.MethodPost, "/api/todos", outsiderToken, gin.H{
		"title":   "Sneaky task",
		"team_id": teamID,
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for outsider todo creation, got %d", w.Code)
	}

	// A member creates a team todo and can read it back from the team feed
	w = doJSON(t, r, http.MethodPost, "/api/todos", memberToken, gin.H{
		"title":   "Write integration tests",
		"team_id": teamID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create team todo: %d %s", w.Code, w.Body.String())
	}
	todoID := uint(decode(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/team/%d", teamID), memberToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for member team feed, got %d", w.Code)
	}

	found := false
	for _, todo := range decodeList(t, w) {
		if uint(todo["id"].(float64)) == todoID {
			found = true
		}
	}
	if !found {
		t.Error("Expected created todo in team feed")
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/team/%d", teamID), outsiderToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for outsider team feed, got %d", w.Code)
	}
}

func TestTeamDeleteCascadesTodos(t *testing.T) {
	r, _ := setupServer(t)

	ownerToken, _ := registerUser(t, r, "owner@example.com")
	teamID := createTeam(t, r, ownerToken, "Backend")

	var teamTodoIDs []uint

	for _, title := range []string{"First", "Second"} {
		w := doJSON(t, r, http.MethodPost, "/api/todos", ownerToken, gin.H{
			"title":   title,
			"team_id": teamID,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("Failed to create todo: %d %s", w.Code, w.Body.String())
		}
		teamTodoIDs = append(teamTodoIDs, uint(decode(t, w)["id"].(float64)))
	}

	w := doJSON(t, r, http.MethodPost, "/api/todos", ownerToken, gin.H{"title": "Personal"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create personal todo: %d", w.Code)
	}
	personalID := uint(decode(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/teams/%d", teamID), ownerToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 deleting team, got %d %s", w.Code, w.Body.String())
	}

	for _, id := range teamTodoIDs {
		w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/%d", id), ownerToken, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected team todo %d gone after cascade, got %d", id, w.Code)
		}
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/%d", personalID), ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected personal todo to survive team deletion, got %d", w.Code)
	}
}

func TestTodoStatusAndOverdue(t *testing.T) {
	r, _ := setupServer(t)

	token, _ := registerUser(t, r, "alice@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/todos", token, gin.H{
		"title":    "Expired task",
		"due_date": time.Now().Add(-48 * time.Hour).Format(time.RFC3339),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create todo: %d %s", w.Code, w.Body.String())
	}
	overdueID := uint(decode(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodPost, "/api/todos", token, gin.H{
		"title":    "Finished task",
		"due_date": time.Now().Add(-48 * time.Hour).Format(time.RFC3339),
		"status":   "completed",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create completed todo: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/todos/overdue", token, nil)
	overdue := decodeList(t, w)
	if len(overdue) != 1 || uint(overdue[0]["id"].(float64)) != overdueID {
		t.Errorf("Expected exactly the pending expired todo, got %s", w.Body.String())
	}

	// Closed status enum on both status routes
	w = doJSON(t, r, http.MethodGet, "/api/todos/status/bogus", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status filter, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/todos/%d/status/bogus", overdueID), token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status value, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/todos/status/pending", token, nil)
	if len(decodeList(t, w)) != 1 {
		t.Errorf("Expected one pending todo, got %s", w.Body.String())
	}
}

func TestAIEndpoints(t *testing.T) {
	r, _ := setupServer(t)

	token, _ := registerUser(t, r, "alice@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/ai/suggest-due-date", "", gin.H{
		"title":         "Implement search",
		"priority":      "high",
		"team_workload": 3,
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/ai/suggest-due-date", token, gin.H{
		"title":         "Implement search",
		"description":   "Full text search over todos with ranking and filters",
		"priority":      "high",
		"team_workload": 3,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	suggestion := decode(t, w)
	if suggestion["suggestedDueDate"] == nil || suggestion["reasoning"] == nil {
		t.Errorf("Expected suggestion fields, got %s", w.Body.String())
	}
	if confidence := suggestion["confidence"].(float64); confidence < 0.3 || confidence > 0.95 {
		t.Errorf("Expected confidence within [0.3, 0.95], got %v", confidence)
	}

	// Workload outside the documented 1-10 range
	w = doJSON(t, r, http.MethodPost, "/api/ai/suggest-due-date", token, gin.H{
		"title":         "Implement search",
		"priority":      "high",
		"team_workload": 11,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out-of-range workload, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/ai/analyze-task", token, gin.H{
		"title":       "Update email template",
		"description": "Change the welcome email text",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	analysis := decode(t, w)
	if analysis["complexity"] != "low" {
		t.Errorf("Expected low complexity, got %v", analysis["complexity"])
	}
	if hours := analysis["estimatedHours"].(float64); hours >= 4 {
		t.Errorf("Expected estimated hours < 4, got %v", hours)
	}
}

func TestNotificationsPersistence(t *testing.T) {
	r, _ := setupServer(t)

	creatorToken, _ := registerUser(t, r, "creator@example.com")
	assigneeToken, assigneeID := registerUser(t, r, "assignee@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/todos", creatorToken, gin.H{"title": "Review PR"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create todo: %d", w.Code)
	}
	todoID := uint(decode(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/todos/%d/assign/%d", todoID, assigneeID), creatorToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to assign todo: %d %s", w.Code, w.Body.String())
	}

	// The assignee has a stored notification even though no socket was live
	w = doJSON(t, r, http.MethodGet, "/api/notifications", assigneeToken, nil)
	notifications := decodeList(t, w)
	if len(notifications) != 1 {
		t.Fatalf("Expected one notification, got %s", w.Body.String())
	}
	if notifications[0]["type"] != "todo_assigned" {
		t.Errorf("Expected todo_assigned notification, got %v", notifications[0]["type"])
	}
	if notifications[0]["read_at"] != nil {
		t.Errorf("Expected unread notification, got %v", notifications[0]["read_at"])
	}

	notificationID := uint(notifications[0]["id"].(float64))

	// Only the recipient can mark it read
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", notificationID), creatorToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 marking someone else's notification, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", notificationID), assigneeToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 marking read, got %d %s", w.Code, w.Body.String())
	}
	if decode(t, w)["read_at"] == nil {
		t.Error("Expected read_at to be set")
	}
}

type roomListener struct {
	mu     sync.Mutex
	events []string
}

func (l *roomListener) WriteEvent(event string, data interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *roomListener) received(event string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.events {
		if e == event {
			return true
		}
	}
	return false
}

func TestRemoveMember_AlwaysBroadcastsRemoval(t *testing.T) {
	r, hub := setupServer(t)

	ownerToken, _ := registerUser(t, r, "owner@example.com")
	_, strangerID := registerUser(t, r, "stranger@example.com")

	teamID := createTeam(t, r, ownerToken, "Backend")

	listener := &roomListener{}
	connID := hub.Register(listener)
	hub.JoinTeam(connID, teamID)

	// The stranger was never a member; the removal event still goes out
	w := doJSON(t, r, http.MethodDelete,
		fmt.Sprintf("/api/teams/%d/members/%d", teamID, strangerID), ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for no-op removal, got %d %s", w.Code, w.Body.String())
	}

	if !listener.received(ws.EventMemberRemoved) {
		t.Error("Expected a member-removed broadcast even when nothing was removed")
	}

	w = doJSON(t, r, http.MethodDelete,
		fmt.Sprintf("/api/teams/%d/members/not-a-number", teamID), ownerToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed member id, got %d", w.Code)
	}
}

func TestUserProfileUpdate(t *testing.T) {
	r, _ := setupServer(t)

	token, _ := registerUser(t, r, "alice@example.com")
	_, _ = registerUser(t, r, "bob@example.com")

	w := doJSON(t, r, http.MethodPut, "/api/users/profile", token, gin.H{"first_name": "Alicia"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 updating profile, got %d %s", w.Code, w.Body.String())
	}
	if decode(t, w)["first_name"] != "Alicia" {
		t.Errorf("Expected updated first name, got %s", w.Body.String())
	}

	// Taking another user's email is a conflict
	w = doJSON(t, r, http.MethodPut, "/api/users/profile", token, gin.H{"email": "bob@example.com"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for taken email, got %d", w.Code)
	}

	// Login still works with the new password after a password change
	w = doJSON(t, r, http.MethodPut, "/api/users/profile", token, gin.H{"password": "newpassword123"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 changing password, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "newpassword123",
	})
	if w.Code != http.StatusOK {
		t.Errorf("Expected login with new password, got %d %s", w.Code, w.Body.String())
	}
}
