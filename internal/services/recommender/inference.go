package recommender

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
)

const inferenceUpstream = "inference"

type inferenceResp struct {
	Prediction *float64 `json:"prediction"`
	Error      string   `json:"error,omitempty"`
}

// InferenceClient posts feature vectors to the crop model service.
type InferenceClient struct {
	url string
	up  *upstream
}

func NewInferenceClient(url string, client *http.Client, bs BreakerSettings, m *Metrics) *InferenceClient {
	return &InferenceClient{url: url, up: newUpstream(inferenceUpstream, client, bs, m)}
}

func (c *InferenceClient) Name() string { return c.up.Name() }

func (c *InferenceClient) BreakerState() gobreaker.State { return c.up.State() }

// Classify returns the zero-based class index predicted for fv.
func (c *InferenceClient) Classify(ctx context.Context, fv entities.FeatureVector) (int, error) {
	var out inferenceResp
	if err := c.up.postJSON(ctx, c.url, fv, &out); err != nil {
		return 0, err
	}
	if out.Prediction == nil {
		msg := "Inference service returned no prediction"
		if out.Error != "" {
			msg = fmt.Sprintf("%s: %s", msg, out.Error)
		}
		return 0, &UpstreamDataError{Upstream: inferenceUpstream, Msg: msg}
	}
	p := *out.Prediction
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > math.MaxInt32 {
		return 0, &UpstreamDataError{
			Upstream: inferenceUpstream,
			Msg:      fmt.Sprintf("Inference service returned unknown crop class %v", p),
		}
	}
	if p != math.Trunc(p) {
		return 0, &UpstreamDataError{
			Upstream: inferenceUpstream,
			Msg:      fmt.Sprintf("Inference service returned a non-integer class %v", p),
		}
	}
	return int(p), nil
}
