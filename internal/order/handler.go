package order

import (
	"net/http"
	"strings"

	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/server"
	"github.com/AutoMercado/AutoMercado/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler exposes the order service REST surface under /orders.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Mount wires the routes. Everything requires a token; roles gate the
// routes and per-order ownership is enforced in the service.
func (h *Handler) Mount(r *gin.Engine, authCfg config.AuthConfig) {
	g := r.Group("/orders")
	g.Use(server.RequireAuth(authCfg))

	g.POST("", server.RequireRoles(user.RoleClient, user.RoleAdmin), h.create)
	g.GET("", h.list)
	g.GET("/vendor/orders", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.listSales)
	g.GET("/vehicle/:vehicleId", h.listByVehicle)
	g.GET("/:id", h.get)
	g.PUT("/:id/approve", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.approve)
	g.PUT("/:id/reject", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.reject)
	g.PUT("/:id/complete", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.complete)
	g.PUT("/:id/cancel", server.RequireRoles(user.RoleClient, user.RoleAdmin), h.cancel)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.FailValidation(c, []string{"body must be valid JSON"})
		return
	}

	o, err := h.svc.Create(c.Request.Context(), server.ActorFrom(c), in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "order placed", "order": o})
}

func (h *Handler) list(c *gin.Context) {
	f := ListFilter{Status: c.Query("status"), Page: server.PageFromQuery(c)}
	orders, total, err := h.svc.List(c.Request.Context(), server.ActorFrom(c), f)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": domain.NewPagination(f.Page, total),
	})
}

func (h *Handler) listSales(c *gin.Context) {
	f := ListFilter{Status: c.Query("status"), Page: server.PageFromQuery(c)}
	orders, total, err := h.svc.ListSales(c.Request.Context(), server.ActorFrom(c), f)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": domain.NewPagination(f.Page, total),
	})
}

func (h *Handler) listByVehicle(c *gin.Context) {
	orders, err := h.svc.ListByVehicle(c.Request.Context(), server.ActorFrom(c), c.Param("vehicleId"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), server.ActorFrom(c), c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}

func (h *Handler) approve(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	o, err := h.svc.Approve(c.Request.Context(), server.ActorFrom(c), token, c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order approved", "order": o})
}

// transitionRequest is the optional body on reject/cancel carrying the
// actor's reason.
type transitionRequest struct {
	Notes string `json:"notes"`
}

func bindNotes(c *gin.Context) (string, bool) {
	if c.Request.ContentLength == 0 {
		return "", true
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.FailValidation(c, []string{"body must be valid JSON"})
		return "", false
	}
	return req.Notes, true
}

func (h *Handler) reject(c *gin.Context) {
	notes, ok := bindNotes(c)
	if !ok {
		return
	}
	o, err := h.svc.Reject(c.Request.Context(), server.ActorFrom(c), c.Param("id"), notes)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order rejected", "order": o})
}

func (h *Handler) complete(c *gin.Context) {
	o, err := h.svc.Complete(c.Request.Context(), server.ActorFrom(c), c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order completed", "order": o})
}

func (h *Handler) cancel(c *gin.Context) {
	notes, ok := bindNotes(c)
	if !ok {
		return
	}
	o, err := h.svc.Cancel(c.Request.Context(), server.ActorFrom(c), c.Param("id"), notes)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order cancelled", "order": o})
}
