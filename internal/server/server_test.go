package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nihilistkernel/internal/api"
	"nihilistkernel/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://nihilist-kernel.vercel.app"

type fakeGenerator struct {
	mu       sync.Mutex
	topics   []string
	dialogue string
	err      error
	panicMsg string
	started  chan struct{}
	release  chan struct{}
	calls    atomic.Int32
}

func (f *fakeGenerator) Generate(ctx context.Context, topic string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.topics = append(f.topics, topic)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.dialogue, f.err
}

type brokenCache struct {
	getErr error
	putErr error
}

func (b brokenCache) Get(context.Context, string) (string, bool, error) { return "", false, b.getErr }
func (b brokenCache) Put(context.Context, string, string) error        { return b.putErr }

func newTestServer(t *testing.T, gen *fakeGenerator, cache Cache) *Server {
	t.Helper()
	if cache == nil {
		c, err := store.Open(store.MemoryPath)
		require.NoError(t, err)
		t.Cleanup(func() { c.Close() })
		cache = c
	}
	srv, err := New(Config{
		Addr:          "127.0.0.1:0",
		AllowedOrigin: testOrigin,
		Mode:          gin.TestMode,
		Generator:     gen,
		Cache:         cache,
	})
	require.NoError(t, err)
	return srv
}

func postGenerate(srv *Server, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, api.GeneratePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func decodeDialogue(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Dialogue)
	return *body.Dialogue
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{Mode: gin.TestMode})
	assert.Error(t, err)

	_, err = New(Config{Mode: gin.TestMode, Generator: &fakeGenerator{}})
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{}, nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGenerate_NoInput(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen, nil)

	for _, body := range []string{`{}`, `{"userInput":""}`, `{"userInput":"   "}`} {
		w := postGenerate(srv, body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, MsgNoInput, decodeError(t, w))
	}
	assert.Zero(t, gen.calls.Load())
}

func TestGenerate_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{}, nil)

	w := postGenerate(srv, `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgInvalidBody, decodeError(t, w))
}

func TestGenerate_NormalizesAndCaches(t *testing.T) {
	gen := &fakeGenerator{dialogue: "Marty: hi\nRust: hello"}
	srv := newTestServer(t, gen, nil)

	w := postGenerate(srv, `{"userInput":"  KeRNeL "}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Marty: hi\nRust: hello", decodeDialogue(t, w))

	w = postGenerate(srv, `{"userInput":"kernel"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Marty: hi\nRust: hello", decodeDialogue(t, w))

	assert.Equal(t, []string{"kernel"}, gen.topics)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestGenerate_GeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	cache, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	defer cache.Close()
	srv := newTestServer(t, gen, cache)

	w := postGenerate(srv, `{"userInput":"Kernel"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgGenerateFailed, decodeError(t, w))

	n, err := cache.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "failures are not cached")
}

func TestGenerate_GeneratorPanic(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{panicMsg: "boom"}, nil)

	w := postGenerate(srv, `{"userInput":"Kernel"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgGenerateFailed, decodeError(t, w))
}

func TestGenerate_CacheFailures(t *testing.T) {
	tests := []struct {
		name  string
		cache brokenCache
	}{
		{"lookup", brokenCache{getErr: errors.New("disk I/O error")}},
		{"store", brokenCache{putErr: errors.New("database is locked")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeGenerator{dialogue: "Rust: hello"}, tt.cache)
			w := postGenerate(srv, `{"userInput":"Kernel"}`, nil)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, MsgGenerateFailed, decodeError(t, w))
		})
	}
}

func TestGenerate_ConcurrentIdenticalTopicsShareGeneration(t *testing.T) {
	gen := &fakeGenerator{
		dialogue: "Rust: time is a flat circle",
		started:  make(chan struct{}, 2),
		release:  make(chan struct{}),
	}
	srv := newTestServer(t, gen, nil)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i, input := range []string{"Kernel", " kernel"} {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			codes[i] = postGenerate(srv, `{"userInput":"`+input+`"}`, nil).Code
		}(i, input)
		if i == 0 {
			<-gen.started
		}
	}

	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{dialogue: "Rust: hello"}, nil)

	w := postGenerate(srv, `{"userInput":"api"}`, map[string]string{api.HeaderRequestID: "req-42"})
	assert.Equal(t, "req-42", w.Header().Get(api.HeaderRequestID))

	w = postGenerate(srv, `{"userInput":"api"}`, nil)
	assert.NotEmpty(t, w.Header().Get(api.HeaderRequestID))
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{dialogue: "Rust: hello"}, nil)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, api.GeneratePath, nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	})

	t.Run("preflight from other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, api.GeneratePath, nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request", func(t *testing.T) {
		w := postGenerate(srv, `{"userInput":"bash"}`, map[string]string{"Origin": testOrigin})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("health is not cors enabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, HealthPath, nil)
		req.Header.Set("Origin", testOrigin)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORS_Wildcard(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS("*"))
	engine.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "kernel", Normalize("  KERNEL\n"))
	assert.Equal(t, "garbage collector", Normalize("Garbage Collector"))
	assert.Equal(t, "", Normalize(" \t "))
}
