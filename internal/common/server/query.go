package server

import (
	"strconv"

	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/gin-gonic/gin"
)

// PageFromQuery reads page/limit query parameters, normalized.
func PageFromQuery(c *gin.Context) domain.PageRequest {
	p := domain.PageRequest{}
	if v, ok := IntQuery(c, "page"); ok {
		p.Page = v
	}
	if v, ok := IntQuery(c, "limit"); ok {
		p.Limit = v
	}
	return p.Normalize()
}

// IntQuery parses an integer query parameter.
func IntQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FloatQuery parses a float query parameter.
func FloatQuery(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
