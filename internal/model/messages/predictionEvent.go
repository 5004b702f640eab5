package messages

import (
	"time"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// PredictionEvent is published after each prediction attempt that passed validation.
type PredictionEvent struct {
	ID             string                  `json:"id"`
	Status         string                  `json:"status"` // ok | error
	Month          string                  `json:"month"`
	Year           int                     `json:"year"`
	Latitude       float64                 `json:"latitude"`
	Longitude      float64                 `json:"longitude"`
	Features       *entities.FeatureVector `json:"features,omitempty"`
	ClassIndex     *int                    `json:"class_index,omitempty"`
	Crop           string                  `json:"crop,omitempty"`
	CatalogVersion string                  `json:"catalog_version"`
	Error          string                  `json:"error,omitempty"`
	LatencyMs      int64                   `json:"latency_ms"`
	Timestamp      time.Time               `json:"timestamp"`
}
