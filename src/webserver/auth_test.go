package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/dao-govern/src/data"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

const (
	ownerAddr = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	userAddr  = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
)

// memNonces is an in-memory NonceStore for handler tests.
type memNonces struct {
	values map[string]string
}

func newMemNonces() *memNonces { return &memNonces{values: make(map[string]string)} }

func (m *memNonces) Set(_ context.Context, addr, nonce string) error {
	m.values[addr] = nonce
	return nil
}

func (m *memNonces) Get(_ context.Context, addr string) (string, error) {
	nonce, ok := m.values[addr]
	if !ok {
		return "", errors.New("not found")
	}
	return nonce, nil
}

func (m *memNonces) Del(_ context.Context, addr string) { delete(m.values, addr) }

func (m *memNonces) Confirm(_ context.Context, addr string) error {
	if _, ok := m.values[addr]; !ok {
		return errors.New("not found")
	}
	m.values[addr] = data.AirgapConfirmed
	return nil
}

func newAuthRouter(t *testing.T, nonces *memNonces) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authH := NewAuth(nonces, testSecret, func(addr string) bool { return addr == ownerAddr })
	r := gin.New()
	r.POST("/auth/challenge", authH.Challenge)
	r.POST("/auth/verify", authH.Verify)
	r.POST("/auth/confirm", JWTMiddleware(testSecret), authH.Confirm)
	return r
}

func doJSON(r *gin.Engine, path, token string, body any) *httptest.ResponseRecorder {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAirgapLoginFlow(t *testing.T) {
	nonces := newMemNonces()
	r := newAuthRouter(t, nonces)

	w := doJSON(r, "/auth/challenge", "", gin.H{"address": userAddr, "method": "airgap"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, nonces.values[userAddr])

	// Unconfirmed remark does not authenticate.
	w = doJSON(r, "/auth/verify", "", gin.H{"address": userAddr, "method": "airgap"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	ownerToken, err := issueJWT(ownerAddr, testSecret)
	require.NoError(t, err)
	w = doJSON(r, "/auth/confirm", ownerToken, gin.H{"address": userAddr})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "/auth/verify", "", gin.H{"address": userAddr, "method": "airgap"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	// The challenge is one-time.
	w = doJSON(r, "/auth/verify", "", gin.H{"address": userAddr, "method": "airgap"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConfirmRequiresOwner(t *testing.T) {
	nonces := newMemNonces()
	r := newAuthRouter(t, nonces)

	w := doJSON(r, "/auth/challenge", "", gin.H{"address": userAddr, "method": "airgap"})
	require.Equal(t, http.StatusOK, w.Code)

	userToken, err := issueJWT(userAddr, testSecret)
	require.NoError(t, err)
	w = doJSON(r, "/auth/confirm", userToken, gin.H{"address": userAddr})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, "/auth/confirm", "", gin.H{"address": userAddr})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	ownerToken, err := issueJWT(ownerAddr, testSecret)
	require.NoError(t, err)
	w = doJSON(r, "/auth/confirm", ownerToken, gin.H{"address": ownerAddr})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestJWTMiddlewareRejectsBadTokens(t *testing.T) {
	r := newAuthRouter(t, newMemNonces())

	w := doJSON(r, "/auth/confirm", "not-a-token", gin.H{"address": userAddr})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := issueJWT(ownerAddr, []byte("wrong-secret"))
	require.NoError(t, err)
	w = doJSON(r, "/auth/confirm", forged, gin.H{"address": userAddr})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
