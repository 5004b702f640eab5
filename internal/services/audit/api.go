package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
)

// ErrUnknownCrop rejects a crop filter that is not a catalog label.
var ErrUnknownCrop = errors.New("unknown crop")

// Querier is the subset of api.QueryAPI used by the recent-predictions handler.
type Querier interface {
	Query(ctx context.Context, query string) (*api.QueryTableResult, error)
}

// Prediction is one stored event as exposed by GET /predictions/recent.
type Prediction struct {
	Time        string   `json:"time"`
	Status      string   `json:"status"`
	Crop        string   `json:"crop,omitempty"`
	Month       string   `json:"month"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ClassIndex  *int64   `json:"class_index,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Rainfall    *float64 `json:"rainfall,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type recentParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
	Crop      string
}

// parseRecent clamps the numeric params. The crop filter must be a catalog label, so
// only known identifiers ever reach the Flux text.
func parseRecent(r *http.Request) (recentParams, error) {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	p := recentParams{
		Minutes:   get("minutes", 1440, 1, 30*24*60),
		Limit:     get("limit", 20, 1, 500),
		TimeoutMS: get("timeout_ms", 2000, 200, 5000),
		Crop:      strings.TrimSpace(q.Get("crop")),
	}
	if p.Crop != "" && entities.DefaultCatalog.Index(entities.CropLabel(p.Crop)) < 0 {
		return p, errors.Wrapf(ErrUnknownCrop, "%q", p.Crop)
	}
	return p, nil
}

func buildFlux(bucket string, p recentParams) string {
	cropFilter := ""
	if p.Crop != "" {
		cropFilter = fmt.Sprintf("\n  |> filter(fn: (r) => r.crop == %q)", p.Crop)
	}
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q)%s
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> group()
  |> sort(columns: ["_time"], desc: true)
  |> limit(n: %d)
`, bucket, p.Minutes, Measurement, cropFilter, p.Limit)
}

// NewRecentHandler serves GET /predictions/recent?minutes=&limit=&crop=
func NewRecentHandler(q Querier, bucket string, log logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := parseRecent(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		res, err := q.Query(ctx, buildFlux(bucket, p))
		if err != nil {
			log.WithError(err).Warn("influx query failed")
			w.Header().Set("X-Error", "influx-query-error")
			_, _ = w.Write([]byte("[]"))
			return
		}
		defer res.Close()

		out := make([]Prediction, 0, p.Limit)
		for res.Next() {
			rec := res.Record()
			out = append(out, Prediction{
				Time:        rec.Time().UTC().Format(time.RFC3339),
				Status:      str(rec.ValueByKey("status")),
				Crop:        str(rec.ValueByKey("crop")),
				Month:       str(rec.ValueByKey("month")),
				Latitude:    num(rec.ValueByKey("latitude")),
				Longitude:   num(rec.ValueByKey("longitude")),
				ClassIndex:  intPtr(rec.ValueByKey("class_index")),
				Temperature: numPtr(rec.ValueByKey("temperature")),
				Humidity:    numPtr(rec.ValueByKey("humidity")),
				Rainfall:    numPtr(rec.ValueByKey("rainfall")),
				Error:       str(rec.ValueByKey("error")),
			})
		}
		if res.Err() != nil {
			w.Header().Set("X-Error", "influx-iter-error")
		}
		_ = json.NewEncoder(w).Encode(out)
	})
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func num(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	}
	return 0
}

func numPtr(v interface{}) *float64 {
	if v == nil {
		return nil
	}
	f := num(v)
	return &f
}

func intPtr(v interface{}) *int64 {
	switch x := v.(type) {
	case int64:
		return &x
	case float64:
		n := int64(x)
		return &n
	}
	return nil
}
