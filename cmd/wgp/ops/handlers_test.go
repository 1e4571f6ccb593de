package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/local"
	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/memory"
	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/usecase"
	"github.com/stuagano/wolf-goat-pig/pkg/admin"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	"github.com/stuagano/wolf-goat-pig/pkg/grpc_client/base"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

func init() {
	logger.Init(logger.Config{Level: "error", Format: "console"})
}

type fakeProfiler struct {
	duration time.Duration
}

func (f *fakeProfiler) CollectPerformance(_ context.Context, _, instance string, d time.Duration) (*base.Profile, error) {
	f.duration = d
	if instance == "" {
		instance = "10.0.0.1:50052"
	}
	return &base.Profile{
		Instance: instance,
		Host:     "game-host",
		Data: map[admin.DataType][]byte{
			admin.CPUProfile:   []byte("cpu"),
			admin.HeapSnapshot: []byte("heap"),
		},
	}, nil
}

func newOps(t *testing.T) (*gin.Engine, *opsServer, *fakeProfiler) {
	gin.SetMode(gin.TestMode)
	prof := &fakeProfiler{}
	uc := usecase.NewGameUseCase(memory.NewGameRepository(), nil, domain.Course{Name: "Test"})
	ops := &opsServer{
		registry:   discovery.NewStaticRegistry(map[string][]string{discovery.GameService: {"10.0.0.1:50052"}}),
		client:     prof,
		games:      local.NewHandler(uc),
		storageDir: filepath.Join(t.TempDir(), "pprof"),
	}
	r := gin.New()
	ops.RegisterRoutes(r.Group("/api"))
	return r, ops, prof
}

func call(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListServices(t *testing.T) {
	r, _, _ := newOps(t)
	w := call(r, http.MethodGet, "/api/services", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []serviceInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, discovery.GatewayService, got[1].Name)
	assert.Equal(t, 0, got[1].Count)
}

func TestRecordListAndDeleteProfiles(t *testing.T) {
	r, ops, prof := newOps(t)

	w := call(r, http.MethodPost, "/api/performance/record", `{"duration": 9999}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, maxProfileSeconds*time.Second, prof.duration)

	var rec struct {
		Instance string            `json:"instance"`
		Files    map[string]string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "10.0.0.1:50052", rec.Instance)
	require.Contains(t, rec.Files, "cpu_profile")
	data, err := os.ReadFile(filepath.Join(ops.storageDir, rec.Files["cpu_profile"]))
	require.NoError(t, err)
	assert.Equal(t, "cpu", string(data))

	w = call(r, http.MethodGet, "/api/performance/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history []historyItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, discovery.GameService, history[0].ServiceName)
	assert.Equal(t, "10.0.0.1:50052", history[0].Instance)
	assert.Contains(t, history[0].Files, "heap")

	w = call(r, http.MethodDelete, "/api/performance/history?folder=../escape", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodDelete, "/api/performance/history?folder="+history[0].Folder, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = call(r, http.MethodGet, "/api/performance/history", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestInspectGame(t *testing.T) {
	r, ops, _ := newOps(t)

	w := call(r, http.MethodGet, "/api/games/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), string(service.CodeGameNotFound))

	view, err := ops.games.CreateGame(context.Background(), &service.CreateGameReq{
		Players: []domain.Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}},
	})
	require.NoError(t, err)

	w = call(r, http.MethodGet, "/api/games/"+view.GameID, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = call(r, http.MethodGet, "/api/games/"+view.GameID+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"holes":[]`)
}
