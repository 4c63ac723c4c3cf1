package ginutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParamAndQueryHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?id_user=42&bad=x", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}, {Key: "neg", Value: "-3"}}

	id, err := ParamInt64(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = ParamUint64(c, "neg")
	assert.Error(t, err)

	u, err := ParamUint64(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), u)

	q, err := QueryInt64(c, "id_user")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), q)

	_, err = QueryInt64(c, "bad")
	assert.Error(t, err)

	_, err = QueryInt64(c, "missing")
	assert.Error(t, err)
}
