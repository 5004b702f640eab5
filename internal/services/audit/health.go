package audit

import (
	"encoding/json"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/messages"
)

// ConnChecker reports the broker connection; mqtt.Client satisfies it.
type ConnChecker interface {
	IsConnectionOpen() bool
}

var _ ConnChecker = (mqtt.Client)(nil)

type healthHandler struct {
	mqtt     ConnChecker
	influxOK bool
	writer   *Writer
}

func NewHealthHandler(m ConnChecker, influxOK bool, w *Writer) http.Handler {
	return &healthHandler{mqtt: m, influxOK: influxOK, writer: w}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status          string  `json:"status"`
		MQTTConnected   bool    `json:"mqtt_connected"`
		InfluxOK        bool    `json:"influx_ok"`
		LastWriteErrorS float64 `json:"last_write_error_age_sec"`
		StoredOK        int64   `json:"stored_ok"`
		StoredError     int64   `json:"stored_error"`
	}
	st := status{
		MQTTConnected:   h.mqtt != nil && h.mqtt.IsConnectionOpen(),
		InfluxOK:        h.influxOK,
		LastWriteErrorS: h.writer.LastErrorAge().Seconds(),
		StoredOK:        h.writer.Count(messages.StatusOK),
		StoredError:     h.writer.Count(messages.StatusError),
	}
	switch {
	case st.MQTTConnected && st.InfluxOK && h.writer.LastErrorAge() > 30*time.Second:
		st.Status = "ok"
	case st.MQTTConnected || st.InfluxOK:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

type readyHandler struct {
	mqtt     ConnChecker
	influxOK bool
	writer   *Writer
	minError time.Duration
}

// NewReadyHandler answers 200 only when the broker is connected and no write failed within minOkErrorAge.
func NewReadyHandler(m ConnChecker, influxOK bool, w *Writer, minOkErrorAge time.Duration) http.Handler {
	return &readyHandler{mqtt: m, influxOK: influxOK, writer: w, minError: minOkErrorAge}
}

func (h *readyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	ready := h.mqtt != nil && h.mqtt.IsConnectionOpen() && h.influxOK && h.writer.LastErrorAge() > h.minError
	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ready": ready})
}
