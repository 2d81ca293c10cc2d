package server

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	app "profileserv/src/app"
	cfg "profileserv/src/configuration"
	"profileserv/src/logger"
	db "profileserv/src/repository"
)

type AppHandler struct {
	auth          app.Authenticator
	storage       app.ObjectStorage
	profiles      db.ProfileDB
	bucket        string
	deleteObjects bool
	locks         userLocks
}

func NewHandler(config *cfg.Properties, auth app.Authenticator, storage app.ObjectStorage, profiles db.ProfileDB) *AppHandler {
	return &AppHandler{
		auth:          auth,
		storage:       storage,
		profiles:      profiles,
		bucket:        config.Storage.Bucket,
		deleteObjects: config.Storage.DeleteObjects,
		locks:         userLocks{table: make(map[string]*sync.Mutex)},
	}
}

func (a *AppHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// bearerToken pulls the raw token out of the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// currentUser runs the token-extraction and token-verification stages shared
// by every authenticated endpoint. When it returns nil the response has
// already been written and no provider side effects may follow.
func (a *AppHandler) currentUser(c *gin.Context) *app.User {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return nil
	}
	user, err := a.auth.GetUser(c.Request.Context(), token)
	if err != nil {
		logger.Log.Errorw("token verification failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return nil
	}
	return user
}

// failUpstream logs the provider error and answers with a generic message;
// upstream detail never reaches the client.
func failUpstream(c *gin.Context, publicMsg string, err error) {
	logger.Log.Errorw(publicMsg, "error", err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, app.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"message": publicMsg})
}

// userLocks serializes the fetch-append-upsert sequence on the image list per
// user id, so concurrent uploads for one user cannot lose an appended URL.
type userLocks struct {
	mu    sync.Mutex
	table map[string]*sync.Mutex
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.table[userID]
	if !ok {
		m = &sync.Mutex{}
		l.table[userID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
