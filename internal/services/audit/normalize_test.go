package audit

import (
	"testing"
	"time"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
	"github.com/LeonardoBeccarini/crop_recommender/internal/model/messages"
)

func TestEventToPoint(t *testing.T) {
	idx := 20
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	evt := messages.PredictionEvent{
		ID:             "e1",
		Status:         messages.StatusOK,
		Month:          "June",
		Year:           2024,
		Latitude:       26.8467,
		Longitude:      80.9462,
		Features:       &entities.FeatureVector{N: 90, P: 42, K: 43, Temperature: 31.5, Humidity: 58.7, Ph: 6.5, Rainfall: 110.2},
		ClassIndex:     &idx,
		Crop:           "rice",
		CatalogVersion: "crop-v1",
		LatencyMs:      412,
		Timestamp:      ts,
	}

	p := EventToPoint(evt)
	if p.Name() != Measurement {
		t.Fatalf("measurement = %q", p.Name())
	}
	if !p.Time().Equal(ts) {
		t.Fatalf("time = %v", p.Time())
	}

	tags := map[string]string{}
	for _, tg := range p.TagList() {
		tags[tg.Key] = tg.Value
	}
	for k, want := range map[string]string{"status": "ok", "crop": "rice", "month": "June", "catalog_version": "crop-v1"} {
		if tags[k] != want {
			t.Errorf("tag %s = %q, want %q", k, tags[k], want)
		}
	}

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	checks := map[string]interface{}{
		"event_id":    "e1",
		"class_index": int64(20),
		"year":        int64(2024),
		"latency_ms":  int64(412),
		"temperature": 31.5,
		"humidity":    58.7,
		"rainfall":    110.2,
		"N":           90.0,
	}
	for k, want := range checks {
		if fields[k] != want {
			t.Errorf("field %s = %v (%T), want %v", k, fields[k], fields[k], want)
		}
	}
	if _, ok := fields["error"]; ok {
		t.Error("ok event must not carry an error field")
	}
}

func TestEventToPointForFailure(t *testing.T) {
	p := EventToPoint(messages.PredictionEvent{
		ID:     "e2",
		Status: messages.StatusError,
		Month:  "June",
		Error:  "No weather data for 2024-06",
	})
	for _, tg := range p.TagList() {
		if tg.Key == "crop" {
			t.Fatal("failed event must not be tagged with a crop")
		}
	}
	var gotErr interface{}
	for _, f := range p.FieldList() {
		if f.Key == "error" {
			gotErr = f.Value
		}
		if f.Key == "class_index" || f.Key == "temperature" {
			t.Errorf("unexpected field %s", f.Key)
		}
	}
	if gotErr != "No weather data for 2024-06" {
		t.Fatalf("error field = %v", gotErr)
	}
}
