package stats

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prohmpiriya/explore-events/pkg/config"
	"github.com/prohmpiriya/explore-events/pkg/kafka"
	"github.com/prohmpiriya/explore-events/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventURI_RoundTrip(t *testing.T) {
	assert.Equal(t, "/events/42", EventURI(42))

	id, err := ParseEventID(EventURI(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseEventID("/events")
	assert.Error(t, err)
}

func TestViewsByEventID(t *testing.T) {
	views := ViewsByEventID([]ViewStats{
		{URI: "/events/1", Hits: 5},
		{URI: "/events/2", Hits: 3},
		{URI: "/events", Hits: 100},
	})

	assert.Equal(t, map[int64]int64{1: 5, 2: 3}, views)
	assert.Zero(t, views[3])
}

func TestHTTPClient_RecordHit(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/hit", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ts := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
	err := NewHTTPClient(srv.URL, retry.Policy{}).RecordHit(context.Background(), Hit{
		App: "ewm-main-service", URI: "/events/1", IP: "10.0.0.1", Timestamp: ts,
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"app":       "ewm-main-service",
		"uri":       "/events/1",
		"ip":        "10.0.0.1",
		"timestamp": "2026-05-01 10:30:00",
	}, got)
}

func TestHTTPClient_Views(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/stats", r.URL.Path)
		assert.Equal(t, "2026-05-01 09:59:00", q.Get("start"))
		assert.Equal(t, "2026-05-01 12:01:00", q.Get("end"))
		assert.Equal(t, []string{"/events/1", "/events/2"}, q["uris"])
		assert.Equal(t, "true", q.Get("unique"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"app":"ewm-main-service","uri":"/events/1","hits":7}]`))
	}))
	defer srv.Close()

	start := time.Date(2026, 5, 1, 9, 59, 0, 0, time.UTC)
	end := time.Date(2026, 5, 1, 12, 1, 0, 0, time.UTC)
	stats, err := NewHTTPClient(srv.URL, retry.Policy{}).Views(context.Background(), start, end, []string{"/events/1", "/events/2"}, true)

	require.NoError(t, err)
	assert.Equal(t, []ViewStats{{App: "ewm-main-service", URI: "/events/1", Hits: 7}}, stats)
}

func TestHTTPClient_Views_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, retry.Policy{}).Views(context.Background(), time.Now(), time.Now(), []string{"/events/1"}, true)
	assert.Error(t, err)
}

func TestHTTPClient_Views_DefaultConfigDoesNotRetry(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, RetryPolicy(cfg.Stats.MaxRetries))
	_, err = client.Views(context.Background(), time.Now(), time.Now(), []string{"/events/1"}, true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_Views_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"app":"ewm-main-service","uri":"/events/1","hits":2}]`))
	}))
	defer srv.Close()

	policy := RetryPolicy(2)
	policy.InitialInterval = time.Millisecond
	stats, err := NewHTTPClient(srv.URL, policy).Views(context.Background(), time.Now(), time.Now(), []string{"/events/1"}, true)

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []ViewStats{{App: "ewm-main-service", URI: "/events/1", Hits: 2}}, stats)
}

func TestHTTPClient_RecordHit_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	policy := retry.Policy{MaxRetries: 3, InitialInterval: time.Millisecond}
	err := NewHTTPClient(srv.URL, policy).RecordHit(context.Background(), Hit{URI: "/events/1", Timestamp: time.Now()})

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

type fakeProducer struct {
	messages []*kafka.Message
	err      error
}

func (p *fakeProducer) ProduceAsync(_ context.Context, msg *kafka.Message, onDone func(error)) {
	p.messages = append(p.messages, msg)
	if onDone != nil {
		onDone(p.err)
	}
}

func TestKafkaHitRecorder(t *testing.T) {
	p := &fakeProducer{}
	r := NewKafkaHitRecorder(p, "")

	ts := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, r.RecordHit(context.Background(), Hit{App: "app", URI: "/events/9", IP: "1.2.3.4", Timestamp: ts}))

	require.Len(t, p.messages, 1)
	msg := p.messages[0]
	assert.Equal(t, DefaultHitTopic, msg.Topic)
	assert.Equal(t, "/events/9", string(msg.Key))
	assert.JSONEq(t, `{"app":"app","uri":"/events/9","ip":"1.2.3.4","timestamp":"2026-05-01 10:30:00"}`, string(msg.Value))
}

func TestKafkaHitRecorder_DeliveryFailureIsNotReturned(t *testing.T) {
	p := &fakeProducer{err: errors.New("broker down")}
	r := NewKafkaHitRecorder(p, "custom.hits")

	assert.NoError(t, r.RecordHit(context.Background(), Hit{URI: "/events"}))
	assert.Equal(t, "custom.hits", p.messages[0].Topic)
}
