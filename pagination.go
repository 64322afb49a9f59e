package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageSize is the fixed window for single-resource list endpoints.
const pageSize = 10

// paginatedResponse is a page-number window over an ordered list: the total
// count plus links to the neighbouring pages (null when absent).
type paginatedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// pageParam reads the 1-based page query parameter and returns the
// LIMIT/OFFSET to apply. Malformed or non-positive values fall back to page 1.
func pageParam(c *gin.Context) (page, limit, offset int) {
	page = 1
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	return page, pageSize, (page - 1) * pageSize
}

// pageLink rebuilds the request URL pointing at the given page, or nil when
// that page does not exist.
func pageLink(c *gin.Context, page int, exists bool) *string {
	if !exists {
		return nil
	}
	u := *c.Request.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func paginate(c *gin.Context, count int64, page int, results interface{}) paginatedResponse {
	return paginatedResponse{
		Count:    count,
		Next:     pageLink(c, page+1, int64(page*pageSize) < count),
		Previous: pageLink(c, page-1, page > 1),
		Results:  results,
	}
}
