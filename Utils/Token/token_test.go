package Token

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithAuth(t *testing.T, authorization string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c.Request = req
	return c
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")
	t.Setenv("TOKEN_HOUR_LIFESPAN", "1")

	token, err := GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	c := contextWithAuth(t, "Bearer "+token)
	require.NoError(t, TokenValid(c))

	uid, err := ExtractTokenID(c)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
}

func TestTokenRejectsTampering(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")

	token, err := GenerateToken(42)
	require.NoError(t, err)

	c := contextWithAuth(t, "Bearer "+token+"x")
	assert.Error(t, TokenValid(c))

	_, err = ExtractTokenID(c)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	c := contextWithAuth(t, "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", ExtractToken(c))

	c = contextWithAuth(t, "")
	assert.Equal(t, "", ExtractToken(c))

	c = contextWithAuth(t, "malformed")
	assert.Equal(t, "", ExtractToken(c))
}
