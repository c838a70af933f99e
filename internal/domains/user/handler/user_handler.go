package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"wanderlust/internal/domains/user"
	"wanderlust/internal/shared/middleware"
	"wanderlust/internal/shared/response"
	"wanderlust/internal/shared/validator"
)

const (
	MsgWelcome        = "Welcome to WanderLust"
	MsgWelcomeBack    = "Welcome Back to WanderLust"
	MsgLoggedOut      = "You are successfully logged out"
	MsgUserExists     = "A user with the given username is already registered"
	MsgBadCredentials = "Password or username is incorrect"
	defaultAfterLogin = "/listings"
	viewSignup        = "users/signup"
	viewLogin         = "users/login"
)

// UserHandler serves signup, login and logout.
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes mounts the identity routes on r.
func (h *UserHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/signup", response.Handler(h.SignupForm))
	r.POST("/signup", response.Handler(h.Signup))
	r.GET("/login", response.Handler(h.LoginForm))
	r.POST("/login", response.Handler(h.Login))
	r.GET("/logout", response.Handler(h.Logout))
}

// ========================================
// SIGNUP
// ========================================

func (h *UserHandler) SignupForm(c *gin.Context) response.Outcome {
	return response.Render(viewSignup, gin.H{"Title": "Sign up"})
}

// Signup registers the user and logs them in straight away.
func (h *UserHandler) Signup(c *gin.Context) response.Outcome {
	var req user.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		return response.Failure("/signup", err.Error())
	}

	u, err := h.service.Register(c.Request.Context(), req)
	switch {
	case errors.Is(err, user.ErrUserExists):
		return response.Failure("/signup", MsgUserExists)
	case errors.Is(err, validator.ErrValidation):
		return response.Failure("/signup", err.Error())
	case err != nil:
		return response.FailFrom(err)
	}

	middleware.GetSession(c).Login(u.ID)
	return response.Success("/listings", MsgWelcome)
}

// ========================================
// LOGIN / LOGOUT
// ========================================

func (h *UserHandler) LoginForm(c *gin.Context) response.Outcome {
	return response.Render(viewLogin, gin.H{"Title": "Login"})
}

// Login authenticates and resumes at the URL saved by RequireLogin.
func (h *UserHandler) Login(c *gin.Context) response.Outcome {
	var req user.LoginRequest
	if err := c.ShouldBind(&req); err != nil || req.Validate() != nil {
		return response.Failure("/login", MsgBadCredentials)
	}

	u, err := h.service.Authenticate(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		return response.Failure("/login", MsgBadCredentials)
	}
	if err != nil {
		return response.FailFrom(err)
	}

	sess := middleware.GetSession(c)
	returnTo := safeReturnTo(sess.PopReturnTo())
	sess.Login(u.ID)
	return response.Success(returnTo, MsgWelcomeBack)
}

func (h *UserHandler) Logout(c *gin.Context) response.Outcome {
	middleware.GetSession(c).Logout()
	return response.Success("/listings", MsgLoggedOut)
}

// safeReturnTo only follows local paths.
func safeReturnTo(url string) string {
	if !strings.HasPrefix(url, "/") || strings.HasPrefix(url, "//") || strings.HasPrefix(url, "/\\") {
		return defaultAfterLogin
	}
	return url
}
