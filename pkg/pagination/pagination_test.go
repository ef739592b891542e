package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(query string) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseAbsentMeansUnpaginated(t *testing.T) {
	p := parseQuery("")
	assert.Zero(t, p.Limit)
	assert.Zero(t, p.Offset)
}

func TestParseDefaults(t *testing.T) {
	p := parseQuery("page=2")
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, DefaultLimit, p.Offset)
}

func TestParseExplicit(t *testing.T) {
	p := parseQuery("page=3&limit=20")
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 40, p.Offset)
}

func TestParseClampsBadValues(t *testing.T) {
	p := parseQuery("page=-1&limit=9999")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Zero(t, p.Offset)
}
