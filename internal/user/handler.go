package user

import (
	"net/http"

	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/middleware"
	"github.com/AutoMercado/AutoMercado/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler exposes the auth service REST surface under /auth.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Mount wires the routes. Login has its own tighter rate bucket.
func (h *Handler) Mount(r *gin.Engine, authCfg config.AuthConfig, loginLimiter middleware.RateLimiter) {
	g := r.Group("/auth")

	g.POST("/login", server.RateLimit(loginLimiter), h.login)

	g.Use(server.RequireAuth(authCfg))
	g.GET("/me", h.me)
	g.POST("/register", server.RequireRoles(RoleAdmin), h.register)
	g.GET("/users", server.RequireRoles(RoleAdmin), h.listUsers)
	g.GET("/users/:id", h.getUser)
	g.PUT("/users/:id", h.updateUser)
	g.DELETE("/users/:id", server.RequireRoles(RoleAdmin), h.deactivateUser)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.FailValidation(c, []string{"body must be valid JSON with email and password"})
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "login successful",
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user":      result.User,
	})
}

func (h *Handler) me(c *gin.Context) {
	actor := server.ActorFrom(c)
	u, err := h.svc.Get(c.Request.Context(), actor, actor.ID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.FailValidation(c, []string{"body must be valid JSON"})
		return
	}

	u, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered", "user": u})
}

func (h *Handler) listUsers(c *gin.Context) {
	f := ListFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Page:   server.PageFromQuery(c),
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		f.Active = &active
	}

	users, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": domain.NewPagination(f.Page, total),
	})
}

func (h *Handler) getUser(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), server.ActorFrom(c), c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) updateUser(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.FailValidation(c, []string{"body must be valid JSON"})
		return
	}

	u, err := h.svc.Update(c.Request.Context(), server.ActorFrom(c), c.Param("id"), in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated", "user": u})
}

func (h *Handler) deactivateUser(c *gin.Context) {
	u, err := h.svc.Deactivate(c.Request.Context(), server.ActorFrom(c), c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deactivated", "user": u})
}
