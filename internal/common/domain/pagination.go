package domain

// PageRequest carries normalized paging parameters. Zero values are replaced
// by the defaults; Limit is capped so a client cannot dump a whole table.
type PageRequest struct {
	Page  int
	Limit int
}

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Normalize clamps page/limit into their valid ranges.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = defaultPage
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns the row offset for the normalized request.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Pagination is the envelope returned alongside every list response.
type Pagination struct {
	Page       int   `json:"page"`
	TotalPages int64 `json:"totalPages"`
	Total      int64 `json:"total"`
	PerPage    int   `json:"perPage"`
}

// NewPagination computes the envelope for a normalized request and a total
// row count.
func NewPagination(p PageRequest, total int64) Pagination {
	n := p.Normalize()
	pages := total / int64(n.Limit)
	if total%int64(n.Limit) != 0 {
		pages++
	}
	return Pagination{
		Page:       n.Page,
		TotalPages: pages,
		Total:      total,
		PerPage:    n.Limit,
	}
}
