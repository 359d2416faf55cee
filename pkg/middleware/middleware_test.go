package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/explore-events/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID_GeneratesNew(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		assert.Equal(t, GetRequestID(c), RequestIDFromContext(c.Request.Context()))
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	headerID := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, headerID)
	assert.Equal(t, headerID, w.Body.String())
}

func TestRequestID_UsesExisting(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "existing-request-id-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "existing-request-id-123", w.Body.String())
}

func TestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(logger.Nop()))
	r.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

// memoryRedis is an in-memory RedisClient
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: make(map[string]string)}
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	if v, ok := m.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *memoryRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx)
	if _, ok := m.data[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	m.data[key] = value.(string)
	cmd.SetVal(true)
	return cmd
}

func (m *memoryRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

func newIdempotentRouter(store *memoryRedis, calls *int, status int) *gin.Engine {
	r := gin.New()
	r.Use(Idempotency(DefaultIdempotencyConfig(store)))
	r.POST("/users/:userId/requests", func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	return r
}

func doPost(r *gin.Engine, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	store := newMemoryRedis()
	calls := 0
	r := newIdempotentRouter(store, &calls, http.StatusCreated)

	first := doPost(r, "/users/1/requests?eventId=5", "key-1", "")
	second := doPost(r, "/users/1/requests?eventId=5", "key-1", "")

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestIdempotency_WithoutKeyPassesThrough(t *testing.T) {
	store := newMemoryRedis()
	calls := 0
	r := newIdempotentRouter(store, &calls, http.StatusCreated)

	doPost(r, "/users/1/requests?eventId=5", "", "")
	doPost(r, "/users/1/requests?eventId=5", "", "")

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotency_KeyReusedForDifferentRequest(t *testing.T) {
	store := newMemoryRedis()
	calls := 0
	r := newIdempotentRouter(store, &calls, http.StatusCreated)

	doPost(r, "/users/1/requests?eventId=5", "key-1", "")
	w := doPost(r, "/users/2/requests?eventId=5", "key-1", "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, 1, calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	store := newMemoryRedis()
	calls := 0
	r := newIdempotentRouter(store, &calls, http.StatusCreated)

	req := httptest.NewRequest(http.MethodPost, "/users/1/requests?eventId=5", nil)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	c.Params = gin.Params{{Key: "userId", Value: "1"}}
	record := &IdempotencyRecord{
		Key:         "key-1",
		Status:      StatusProcessing,
		RequestHash: generateRequestHash(c, nil, "userId"),
	}
	require.True(t, trySetIdempotencyRecord(context.Background(), store, IdempotencyKeyPrefix+"key-1", record, time.Minute))

	w := doPost(r, "/users/1/requests?eventId=5", "key-1", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	store := newMemoryRedis()
	calls := 0
	r := newIdempotentRouter(store, &calls, http.StatusInternalServerError)

	doPost(r, "/users/1/requests?eventId=5", "key-1", "")
	doPost(r, "/users/1/requests?eventId=5", "key-1", "")

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}
