package vehicle

import (
	"net/http"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/server"
	"github.com/AutoMercado/AutoMercado/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler exposes the vehicle service REST surface under /vehicles.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Mount wires the routes. Browsing is public; everything that mutates
// inventory needs a vendor or admin token. The sell endpoint is what the
// order service calls when an order is approved.
func (h *Handler) Mount(r *gin.Engine, authCfg config.AuthConfig) {
	g := r.Group("/vehicles")

	g.GET("", h.list)
	g.GET("/:id", h.get)

	authed := g.Group("")
	authed.Use(server.RequireAuth(authCfg))
	authed.GET("/my/vehicles", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.listMine)
	authed.GET("/sold/vehicles", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.listSold)
	authed.POST("", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.create)
	authed.PUT("/:id", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.update)
	authed.DELETE("/:id", server.RequireRoles(user.RoleVendor, user.RoleAdmin), h.remove)
	authed.POST("/:id/sell", h.sell)
}

func (h *Handler) list(c *gin.Context) {
	f := ListFilter{
		Make:         c.Query("make"),
		Model:        c.Query("model"),
		Fuel:         c.Query("fuel"),
		Transmission: c.Query("transmission"),
		Sort:         c.Query("sort"),
		Page:         server.PageFromQuery(c),
	}
	if v, ok := server.IntQuery(c, "yearMin"); ok {
		f.YearMin = v
	}
	if v, ok := server.IntQuery(c, "yearMax"); ok {
		f.YearMax = v
	}
	if v, ok := server.FloatQuery(c, "priceMin"); ok {
		f.PriceMin, f.HasPriceMin = v, true
	}
	if v, ok := server.FloatQuery(c, "priceMax"); ok {
		f.PriceMax, f.HasPriceMax = v, true
	}

	vehicles, total, err := h.svc.ListForSale(c.Request.Context(), f)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vehicles":   presentAll(vehicles),
		"pagination": domain.NewPagination(f.Page, total),
	})
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": present(v)})
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.FailValidation(c, []string{"body must be valid JSON"})
		return
	}

	v, err := h.svc.Create(c.Request.Context(), server.ActorFrom(c), in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "vehicle listed for sale", "vehicle": present(v)})
}

func (h *Handler) update(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.FailValidation(c, []string{"body must be valid JSON"})
		return
	}

	v, err := h.svc.Update(c.Request.Context(), server.ActorFrom(c), c.Param("id"), in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle updated", "vehicle": present(v)})
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), server.ActorFrom(c), c.Param("id")); err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle removed"})
}

type sellRequest struct {
	BuyerID string `json:"buyerId"`
}

func (h *Handler) sell(c *gin.Context) {
	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.FailValidation(c, []string{"body must be valid JSON with buyerId"})
		return
	}

	v, err := h.svc.MarkSold(c.Request.Context(), c.Param("id"), req.BuyerID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle marked as sold", "vehicle": present(v)})
}

func (h *Handler) listMine(c *gin.Context) {
	page := server.PageFromQuery(c)
	vehicles, total, err := h.svc.ListMine(c.Request.Context(), server.ActorFrom(c), c.Query("status"), page)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vehicles":   presentAll(vehicles),
		"pagination": domain.NewPagination(page, total),
	})
}

func (h *Handler) listSold(c *gin.Context) {
	f := SoldFilter{
		Sort: c.Query("sort"),
		Page: server.PageFromQuery(c),
	}
	if v := c.Query("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &ts
		}
	}
	if v := c.Query("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &ts
		}
	}

	vehicles, total, err := h.svc.ListSold(c.Request.Context(), server.ActorFrom(c), f)
	if err != nil {
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vehicles":   presentAll(vehicles),
		"pagination": domain.NewPagination(f.Page, total),
	})
}
