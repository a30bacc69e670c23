// Package utils holds small helpers shared across handlers.
package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/teamtodo-dev/teamtodo/internal/middleware"
	"github.com/teamtodo-dev/teamtodo/internal/types"
)

// GetCurrentUser returns the identity the auth middleware stored on the
// request context. Only meaningful on routes behind AuthMiddleware.
func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

// GetCurrentUserID is a shortcut for handlers that only need the id.
func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}
