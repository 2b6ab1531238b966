package utils

import (
	"github.com/gofiber/fiber/v2"
)

// MaxPageLimit caps the page size a client can request.
const MaxPageLimit = 200

// Pagination describes one page of an in-memory result list.
type Pagination struct {
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Offset   int   `json:"offset"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// GetPagination reads ?page and ?limit, falling back to the defaults for
// missing or non-positive values and clamping limit to MaxPageLimit.
func GetPagination(c *fiber.Ctx, defaultPage, defaultLimit int) Pagination {
	page := c.QueryInt("page", defaultPage)
	if page < 1 {
		page = defaultPage
	}

	limit := c.QueryInt("limit", defaultLimit)
	switch {
	case limit < 1:
		limit = defaultLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}

	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func (p *Pagination) SetTotal(total int64) {
	p.Total = total
	p.LastPage = int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Window returns the [start, end) bounds of the current page within n items.
func (p *Pagination) Window(n int) (int, int) {
	start := min(p.Offset, n)
	return start, min(start+p.Limit, n)
}

// PaginatedResponse is the list envelope: {"data": [...], "pagination": {...}}.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

func NewPaginatedResponse(data interface{}, pagination Pagination) PaginatedResponse {
	return PaginatedResponse{Data: data, Pagination: pagination}
}
