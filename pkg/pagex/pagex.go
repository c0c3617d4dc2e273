// Package pagex parses page/limit query parameters and computes the page
// metadata returned by list endpoints.
package pagex

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a 1-indexed page request.
type Params struct {
	Page  int
	Limit int
}

// New clamps page and limit into range. Non-positive values fall back to the
// defaults and limits above MaxLimit are capped.
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// FromRequest reads "page" and "limit" from the query string.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	return New(atoi(q.Get("page")), atoi(q.Get("limit")))
}

// Offset is the number of rows to skip.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages rounds total/limit up.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
