package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Params holds validated pagination parameters. Limit == 0 means
// "no pagination requested" — the listing returns everything, which is
// what callers of the original API expect.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse extracts optional page/limit from query parameters.
func Parse(c *gin.Context) Params {
	if c.Query("page") == "" && c.Query("limit") == "" {
		return Params{}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
