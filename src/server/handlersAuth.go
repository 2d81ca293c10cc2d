package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"profileserv/src/logger"
)

type (
	SignUpBody struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	SignInBody struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
)

// SignUp registers a new identity with the username as profile metadata. No
// profile row is created here; the first upsert creates it lazily.
func (a *AppHandler) SignUp(c *gin.Context) {
	var body SignUpBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username, email and password are required"})
		return
	}

	if err := a.auth.SignUp(c.Request.Context(), body.Username, body.Email, body.Password); err != nil {
		failUpstream(c, "Error signing up", err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *AppHandler) SignIn(c *gin.Context) {
	var body SignInBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	token, userID, err := a.auth.SignIn(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		failUpstream(c, "Error signing in", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "userId": userID})
}

// SignOut invalidates the caller's session when a bearer token accompanies
// the request. Clients may call /sign-out without one; the endpoint still
// reports success.
func (a *AppHandler) SignOut(c *gin.Context) {
	token, _ := bearerToken(c)
	if err := a.auth.SignOut(c.Request.Context(), token); err != nil {
		logger.Log.Errorw("sign-out failed", "error", err)
		c.String(http.StatusInternalServerError, "Error signing out")
		return
	}
	c.String(http.StatusOK, "User signed out successfully")
}

// UserData returns the identity provider's user record as-is.
func (a *AppHandler) UserData(c *gin.Context) {
	user := a.currentUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User data fetched successfully", "user": user})
}
