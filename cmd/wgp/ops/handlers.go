package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	wgpHttp "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/http"
	"github.com/stuagano/wolf-goat-pig/pkg/admin"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	"github.com/stuagano/wolf-goat-pig/pkg/grpc_client/base"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

const maxProfileSeconds = 300

var profileFiles = map[admin.DataType]string{
	admin.CPUProfile:    "cpu.prof",
	admin.TraceData:     "trace.out",
	admin.HeapSnapshot:  "heap.prof",
	admin.GoroutineDump: "goroutine.prof",
	admin.BlockProfile:  "block.prof",
	admin.MutexProfile:  "mutex.prof",
}

type profiler interface {
	CollectPerformance(ctx context.Context, serviceName, instance string, duration time.Duration) (*base.Profile, error)
}

type opsServer struct {
	registry   discovery.Registry
	client     profiler
	games      service.WGPService
	storageDir string
}

type serviceInfo struct {
	Name      string   `json:"name"`
	Instances []string `json:"instances"`
	Count     int      `json:"count"`
}

type historyItem struct {
	Folder      string            `json:"folder"`
	Timestamp   int64             `json:"timestamp"`
	ServiceName string            `json:"service_name"`
	Instance    string            `json:"instance"`
	Files       map[string]string `json:"files"`
}

func (o *opsServer) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/services", o.handleListServices)
	api.GET("/games/:id", o.handleGetGame)
	api.GET("/games/:id/history", o.handleGameHistory)

	api.POST("/performance/record", o.handleRecordPerformance)
	api.GET("/performance/history", o.handleListPerformanceHistory)
	api.DELETE("/performance/history", o.handleDeletePerformanceHistory)
	api.Static("/performance/download", o.storageDir)
}

func (o *opsServer) handleListServices(c *gin.Context) {
	result := []serviceInfo{}
	for _, name := range []string{discovery.GameService, discovery.GatewayService} {
		// a service with no instances is listed empty rather than failing the page
		addrs, _ := o.registry.GetServices(name)
		result = append(result, serviceInfo{Name: name, Instances: addrs, Count: len(addrs)})
	}
	c.JSON(http.StatusOK, result)
}

func (o *opsServer) handleGetGame(c *gin.Context) {
	view, err := o.games.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		code := service.CodeOf(err)
		c.JSON(wgpHttp.StatusFor(code), gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (o *opsServer) handleGameHistory(c *gin.Context) {
	holes, err := o.games.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		code := service.CodeOf(err)
		c.JSON(wgpHttp.StatusFor(code), gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": c.Param("id"), "holes": holes})
}

func (o *opsServer) handleRecordPerformance(c *gin.Context) {
	var body struct {
		Service  string `json:"service"`
		Instance string `json:"instance"` // optional ip:port
		Duration int    `json:"duration"` // seconds
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if body.Service == "" {
		body.Service = discovery.GameService
	}
	if body.Duration <= 0 {
		body.Duration = 30
	}
	if body.Duration > maxProfileSeconds {
		body.Duration = maxProfileSeconds
	}

	duration := time.Duration(body.Duration) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), duration+10*time.Second)
	defer cancel()

	p, err := o.client.CollectPerformance(ctx, body.Service, body.Instance, duration)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("CollectPerformance RPC failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("RPC failed: %v", err)})
		return
	}

	timestamp := time.Now().Unix()
	// Folder format: {timestamp}__{service}__{instance}
	folder := fmt.Sprintf("%d__%s__%s", timestamp, body.Service, strings.ReplaceAll(p.Instance, ":", "-"))
	dir := filepath.Join(o.storageDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create storage dir"})
		return
	}

	files := map[string]string{}
	for kind, name := range profileFiles {
		data := p.Data[kind]
		if len(data) == 0 {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			logger.Warn(ctx).Err(err).Str("file", name).Msg("Failed to write profile")
			continue
		}
		files[string(kind)] = folder + "/" + name
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"timestamp":    timestamp,
		"service_name": body.Service,
		"instance":     p.Instance,
		"host":         p.Host,
		"files":        files,
	})
}

func (o *opsServer) handleListPerformanceHistory(c *gin.Context) {
	entries, err := os.ReadDir(o.storageDir)
	if err != nil && !os.IsNotExist(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list directory"})
		return
	}

	history := []historyItem{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		parts := strings.Split(e.Name(), "__")
		if len(parts) != 3 {
			continue
		}
		ts, _ := strconv.ParseInt(parts[0], 10, 64)
		item := historyItem{
			Folder:      e.Name(),
			Timestamp:   ts,
			ServiceName: parts[1],
			Instance:    strings.ReplaceAll(parts[2], "-", ":"),
			Files:       map[string]string{},
		}
		files, _ := os.ReadDir(filepath.Join(o.storageDir, e.Name()))
		for _, f := range files {
			key := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
			item.Files[key] = e.Name() + "/" + f.Name()
		}
		history = append(history, item)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Timestamp > history[j].Timestamp })
	c.JSON(http.StatusOK, history)
}

func (o *opsServer) handleDeletePerformanceHistory(c *gin.Context) {
	folder := c.Query("folder")
	if folder == "" {
		if err := os.RemoveAll(o.storageDir); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": "all"})
		return
	}
	if folder != filepath.Base(folder) || strings.HasPrefix(folder, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder"})
		return
	}
	if err := os.RemoveAll(filepath.Join(o.storageDir, folder)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": folder})
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
