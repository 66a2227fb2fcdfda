package handler

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// Check - проверка зависимости для readiness
type Check func(ctx context.Context) error

const readinessTimeout = 2 * time.Second

// HealthResponse - ответ /health
type HealthResponse struct {
	Status        int     `json:"status"`
	StatusMessage string  `json:"status_message"`
	Timestamp     string  `json:"timestamp"`
	IPAddress     string  `json:"ip_address"`
	Echo          *string `json:"echo"`
	PathEcho      *string `json:"path_echo"`
}

type HealthHandler struct {
	checks map[string]Check
	now    func() time.Time
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, now: time.Now}
}

// Health отвечает 200 и возвращает echo из query и path_echo из пути, если они переданы
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:        http.StatusOK,
		StatusMessage: "OK",
		Timestamp:     h.now().UTC().Format("2006-01-02T15:04:05.000000") + "Z",
		IPAddress:     hostIP(),
	}
	if echo, ok := c.GetQuery("echo"); ok {
		resp.Echo = &echo
	}
	if pathEcho := c.Param("path_echo"); pathEcho != "" {
		resp.PathEcho = &pathEcho
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness прогоняет все проверки; любая ошибка дает 503
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = "error: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	overall := "ready"
	if status != http.StatusOK {
		overall = "not ready"
	}
	c.JSON(status, gin.H{"status": overall, "components": components})
}

func hostIP() string {
	name, err := os.Hostname()
	if err != nil {
		return "127.0.0.1"
	}
	addrs, err := net.LookupHost(name)
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		if ip := net.ParseIP(addr); ip != nil && ip.To4() != nil {
			return addr
		}
	}
	if len(addrs) > 0 {
		return addrs[0]
	}
	return "127.0.0.1"
}
