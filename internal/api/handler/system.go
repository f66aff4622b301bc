package handler

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/homedeck/homedeck/internal/cache"
	"github.com/homedeck/homedeck/internal/openapi"
	"github.com/homedeck/homedeck/internal/service"
	"github.com/homedeck/homedeck/internal/static"
	"github.com/shirou/gopsutil/v3/process"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CacheStatser interface {
	GetStats() *cache.Stats
}

// SystemHandler serves health and API documentation endpoints.
type SystemHandler struct {
	db        Pinger
	cache     CacheStatser
	serverURL string
	version   string
	started   time.Time
}

// NewSystem creates the system handler. cacheStats may be nil.
func NewSystem(db Pinger, cacheStats CacheStatser, serverURL, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		cache:     cacheStats,
		serverURL: serverURL,
		version:   version,
		started:   time.Now(),
	}
}

// HealthResponse describes the state of the service.
type HealthResponse struct {
	Status     string       `json:"status"`
	Database   string       `json:"database"`
	Uptime     string       `json:"uptime"`
	Timestamp  string       `json:"timestamp"`
	Goroutines int          `json:"goroutines"`
	MemoryRSS  uint64       `json:"memoryRss,omitempty"`
	Cache      *cache.Stats `json:"cache,omitempty"`
}

// Health handles GET /health.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	health := HealthResponse{
		Status:     "ok",
		Database:   "ok",
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Goroutines: runtime.NumGoroutine(),
		MemoryRSS:  processRSS(),
	}
	if h.cache != nil {
		health.Cache = h.cache.GetStats()
	}

	if err := h.db.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		health.Status = "degraded"
		health.Database = "unreachable"
		respond(c, service.Response{
			Message:        "Service is degraded",
			ResponseObject: health,
			StatusCode:     http.StatusServiceUnavailable,
		})
		return
	}

	respond(c, service.Success("Service is healthy", health, http.StatusOK))
}

func processRSS() uint64 {
	pid, err := safecast.Convert[int32](os.Getpid())
	if err != nil {
		return 0
	}
	p, err := process.NewProcess(pid)
	if err != nil {
		return 0
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0
	}
	return mem.RSS
}

// SwaggerUI handles GET /swagger.
func (h *SystemHandler) SwaggerUI(c *gin.Context) {
	page, err := static.GetSwaggerUI()
	if err != nil {
		log.Error("failed to load swagger ui", "error", err)
		respond(c, service.Internal("Failed to load API documentation"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// SwaggerJSON handles GET /swagger.json. The server entry follows the host the
// document was requested from.
func (h *SystemHandler) SwaggerJSON(c *gin.Context) {
	c.JSON(http.StatusOK, openapi.Build(h.requestServerURL(c), h.version))
}

func (h *SystemHandler) requestServerURL(c *gin.Context) string {
	host := c.Request.Host
	if host == "" {
		return h.serverURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + host
}
