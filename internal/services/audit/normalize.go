package audit

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/messages"
)

const Measurement = "crop_prediction"

// EventToPoint maps a PredictionEvent onto one InfluxDB point.
func EventToPoint(evt messages.PredictionEvent) *write.Point {
	tags := map[string]string{
		"status":          evt.Status,
		"month":           evt.Month,
		"catalog_version": evt.CatalogVersion,
	}
	if evt.Crop != "" {
		tags["crop"] = evt.Crop
	}

	fields := map[string]interface{}{
		"event_id":   evt.ID,
		"latitude":   evt.Latitude,
		"longitude":  evt.Longitude,
		"year":       int64(evt.Year),
		"latency_ms": evt.LatencyMs,
	}
	if f := evt.Features; f != nil {
		fields["N"] = f.N
		fields["P"] = f.P
		fields["K"] = f.K
		fields["temperature"] = f.Temperature
		fields["humidity"] = f.Humidity
		fields["ph"] = f.Ph
		fields["rainfall"] = f.Rainfall
	}
	if evt.ClassIndex != nil {
		fields["class_index"] = int64(*evt.ClassIndex)
	}
	if evt.Error != "" {
		fields["error"] = evt.Error
	}
	return influxdb2.NewPoint(Measurement, tags, fields, evt.Timestamp)
}
