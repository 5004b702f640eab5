package recommender

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/messages"
)

const maxBodyBytes = 1 << 20

type RouterOptions struct {
	Logger logrus.FieldLogger
	// Gatherer backs GET /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
	// UI is mounted on / when set.
	UI             http.Handler
	AllowedOrigins []string
}

type api struct {
	rec *Recommender
}

func NewRouter(rec *Recommender, opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	a := &api{rec: rec}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/readyz", a.handleReady)
	r.Post("/predict", a.handlePredict)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.UI != nil {
		r.Handle("/*", opts.UI)
	}
	return r
}

// POST /predict {N,P,K,ph,month,latitude,longitude} -> {crop}
func (a *api) handlePredict(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r.Context())

	var req messages.PredictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		renderError(log, w, &ValidationError{Msg: "Invalid request body", Err: err})
		return
	}

	pred, err := a.rec.Predict(r.Context(), req)
	if err != nil {
		renderError(log, w, err)
		return
	}
	log.WithFields(logrus.Fields{
		"crop":        pred.Crop,
		"class_index": pred.ClassIndex,
		"year":        pred.Year,
	}).Info("crop predicted")
	writeJSON(w, http.StatusOK, messages.PredictionResponse{
		Crop:           string(pred.Crop),
		CatalogVersion: pred.CatalogVersion,
	})
}

// GET /readyz: 503 while any upstream breaker is open.
func (a *api) handleReady(w http.ResponseWriter, _ *http.Request) {
	type resp struct {
		Ready    bool              `json:"ready"`
		Breakers map[string]string `json:"breakers"`
	}
	out := resp{Ready: true, Breakers: map[string]string{}}
	for name, st := range a.rec.Breakers() {
		out.Breakers[name] = st.String()
		if st == gobreaker.StateOpen {
			out.Ready = false
		}
	}
	code := http.StatusOK
	if !out.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, out)
}

func renderError(log logrus.FieldLogger, w http.ResponseWriter, err error) {
	code := StatusCode(err)
	entry := log.WithError(err).WithField("status", code)

	var ce *UpstreamCallError
	if errors.As(err, &ce) {
		entry = entry.WithFields(logrus.Fields{
			"upstream":        ce.Upstream,
			"upstream_status": ce.Status,
			"upstream_body":   ce.Body,
		})
	}
	if code >= http.StatusInternalServerError {
		entry.Error("prediction failed")
	} else {
		entry.Info("prediction rejected")
	}
	writeJSON(w, code, messages.ErrorResponse{Error: PublicMessage(err)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
