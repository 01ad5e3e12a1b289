package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-relay-bot/internal/application/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	stats authz.Stats
	err   error
}

func (s stubStats) Stats(context.Context) (authz.Stats, error) { return s.stats, s.err }

func TestHealth(t *testing.T) {
	h := NewOpsHandler(stubStats{})
	rec := httptest.NewRecorder()

	h.Health(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, 200, rec.Code)
	var body MessageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Message)
}

func TestStats_OK(t *testing.T) {
	h := NewOpsHandler(stubStats{stats: authz.Stats{AuthorizedUsers: 4, Uptime: 90 * time.Second}})
	rec := httptest.NewRecorder()

	h.Stats(rec, httptest.NewRequest("GET", "/stats", nil))

	assert.Equal(t, 200, rec.Code)
	var body StatsEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.AuthorizedUsers)
	assert.Equal(t, "1m30s", body.Uptime)
}

func TestStats_StoreFailure(t *testing.T) {
	h := NewOpsHandler(stubStats{err: errors.New("dynamo down")})
	rec := httptest.NewRecorder()

	h.Stats(rec, httptest.NewRequest("GET", "/stats", nil))

	assert.Equal(t, 500, rec.Code)
}
