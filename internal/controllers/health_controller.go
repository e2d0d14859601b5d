package controllers

import (
	"fmt"
	"net/http"
	"time"
	"wxhm/internal/notify"
	"wxhm/internal/services"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	groups     services.GroupServiceInterface
	dispatcher notify.DispatcherInterface
	startTime  time.Time
}

type healthResponse struct {
	Status        string                 `json:"status"`
	Uptime        string                 `json:"uptime"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Groups        int                    `json:"groups"`
	QueueLength   int                    `json:"queue_length"`
	Notifications notify.DispatcherStats `json:"notifications"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "ok"
	groups, err := hc.groups.ListGroups()
	if err != nil {
		status = "degraded"
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        status,
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Groups:        len(groups),
		QueueLength:   hc.dispatcher.QueueLen(),
		Notifications: hc.dispatcher.Stats(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(groups services.GroupServiceInterface, dispatcher notify.DispatcherInterface) *HealthController {
	return &HealthController{
		groups:     groups,
		dispatcher: dispatcher,
		startTime:  time.Now(),
	}
}
