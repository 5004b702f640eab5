package recommender

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
	"github.com/LeonardoBeccarini/crop_recommender/internal/model/messages"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	MeteostatURL   string
	RapidAPIHost   string
	RapidAPIKey    string
	PowerURL       string
	PowerCommunity string
	InferenceURL   string

	HTTPTimeout time.Duration
	Breaker     BreakerSettings

	Catalog entities.CropCatalog
	// Now resolves "last year"; time.Now when nil.
	Now func() time.Time
}

// ClimateSource returns the monthly records of one calendar year at a point.
type ClimateSource interface {
	MonthlyWeather(ctx context.Context, coord entities.Coordinate, year int) ([]entities.WeatherSample, error)
}

// HumiditySource returns long-term relative humidity keyed by three-letter month code.
type HumiditySource interface {
	MonthlyHumidity(ctx context.Context, coord entities.Coordinate) (map[string]float64, error)
}

// Classifier scores a feature vector and returns the class index.
type Classifier interface {
	Classify(ctx context.Context, fv entities.FeatureVector) (int, error)
}

// EventSink receives one event per prediction attempt that passed validation.
type EventSink interface {
	Publish(ctx context.Context, evt messages.PredictionEvent) error
}

type breakerReporter interface {
	Name() string
	BreakerState() gobreaker.State
}

// Dependencies overrides the upstream clients built from Config; nil fields get the defaults.
type Dependencies struct {
	Climate    ClimateSource
	Humidity   HumiditySource
	Classifier Classifier
	Sink       EventSink
	Metrics    *Metrics
	Logger     logrus.FieldLogger
}

// Input is a validated prediction request.
type Input struct {
	N, P, K, Ph float64
	Coord       entities.Coordinate
	Month       entities.Month
}

// Prediction is the outcome of a successful Predict.
type Prediction struct {
	Crop           entities.CropLabel
	ClassIndex     int
	Features       entities.FeatureVector
	Year           int
	CatalogVersion string
}

type Recommender struct {
	cfg        Config
	climate    ClimateSource
	humidity   HumiditySource
	classifier Classifier
	sink       EventSink
	metrics    *Metrics
	log        logrus.FieldLogger
}

func New(cfg Config, deps Dependencies) *Recommender {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.Catalog.Labels) == 0 {
		cfg.Catalog = entities.DefaultCatalog
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Climate == nil {
		deps.Climate = NewMeteostatClient(cfg.MeteostatURL, cfg.RapidAPIHost, cfg.RapidAPIKey,
			newHTTPClient(cfg.HTTPTimeout, nil), cfg.Breaker, deps.Metrics)
	}
	if deps.Humidity == nil {
		deps.Humidity = NewPowerClient(cfg.PowerURL, cfg.PowerCommunity,
			newHTTPClient(cfg.HTTPTimeout, nil), cfg.Breaker, deps.Metrics)
	}
	if deps.Classifier == nil {
		deps.Classifier = NewInferenceClient(cfg.InferenceURL,
			newHTTPClient(cfg.HTTPTimeout, nil), cfg.Breaker, deps.Metrics)
	}
	if deps.Sink == nil {
		deps.Sink = NopSink{}
	}
	return &Recommender{
		cfg:        cfg,
		climate:    deps.Climate,
		humidity:   deps.Humidity,
		classifier: deps.Classifier,
		sink:       deps.Sink,
		metrics:    deps.Metrics,
		log:        deps.Logger,
	}
}

func (r *Recommender) Catalog() entities.CropCatalog { return r.cfg.Catalog }

// Breakers reports the circuit state of every upstream that has one.
func (r *Recommender) Breakers() map[string]gobreaker.State {
	out := map[string]gobreaker.State{}
	for _, dep := range []any{r.climate, r.humidity, r.classifier} {
		if br, ok := dep.(breakerReporter); ok {
			out[br.Name()] = br.BreakerState()
		}
	}
	return out
}

// Validate checks presence of every field and resolves the month. It performs no I/O.
// Missing fields and out-of-range coordinates are a ValidationError (400); an unknown
// month is an InputError (500).
func Validate(req messages.PredictionRequest) (Input, error) {
	if !req.Complete() {
		return Input{}, &ValidationError{Msg: MsgMissingFields}
	}
	month, err := entities.ParseMonth(req.Month)
	if err != nil {
		return Input{}, &InputError{Msg: "Invalid month name", Err: err}
	}
	in := Input{
		N:     req.N.Value,
		P:     req.P.Value,
		K:     req.K.Value,
		Ph:    req.Ph.Value,
		Coord: entities.Coordinate{Lat: req.Latitude.Value, Lon: req.Longitude.Value},
		Month: month,
	}
	if !in.Coord.Valid() {
		return Input{}, &ValidationError{Msg: fmt.Sprintf("Coordinate %s is out of range", in.Coord)}
	}
	return in, nil
}

// Predict validates req, enriches it with climate data of the previous calendar year and
// long-term humidity, and asks the classifier for a crop.
func (r *Recommender) Predict(ctx context.Context, req messages.PredictionRequest) (Prediction, error) {
	start := time.Now()
	in, err := Validate(req)
	if err != nil {
		r.metrics.observePrediction("invalid", "", time.Since(start))
		return Prediction{}, err
	}

	pred, err := r.predict(ctx, in)
	r.metrics.observePrediction(statusOf(err), string(pred.Crop), time.Since(start))
	r.emit(ctx, in, pred, err, time.Since(start))
	return pred, err
}

func (r *Recommender) predict(ctx context.Context, in Input) (Prediction, error) {
	year := r.cfg.Now().Year() - 1
	pred := Prediction{Year: year, CatalogVersion: r.cfg.Catalog.Version}

	var (
		weather  entities.WeatherSample
		humidity entities.HumiditySample
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		samples, err := r.climate.MonthlyWeather(gctx, in.Coord, year)
		if err != nil {
			return err
		}
		weather, err = pickMonth(samples, year, in.Month)
		return err
	})
	g.Go(func() error {
		table, err := r.humidity.MonthlyHumidity(gctx, in.Coord)
		if err != nil {
			return err
		}
		humidity, err = pickHumidity(table, in.Month)
		return err
	})
	if err := g.Wait(); err != nil {
		return pred, err
	}

	pred.Features = entities.FeatureVector{
		N:           in.N,
		P:           in.P,
		K:           in.K,
		Temperature: weather.TemperatureAvgC,
		Humidity:    humidity.RelativeHumidityPct,
		Ph:          in.Ph,
		Rainfall:    weather.PrecipitationMm,
	}
	r.log.WithFields(logrus.Fields{
		"coord":    in.Coord.String(),
		"month":    in.Month.String(),
		"year":     year,
		"features": pred.Features.Values(),
	}).Debug("feature vector assembled")

	idx, err := r.classifier.Classify(ctx, pred.Features)
	if err != nil {
		return pred, err
	}
	pred.ClassIndex = idx
	crop, err := r.cfg.Catalog.Label(idx)
	if err != nil {
		return pred, &UpstreamDataError{
			Upstream: inferenceUpstream,
			Msg:      fmt.Sprintf("Inference service returned unknown crop class %d", idx),
			Err:      err,
		}
	}
	pred.Crop = crop
	return pred, nil
}

// pickMonth finds the record dated {year}-{month} in a year of monthly records.
func pickMonth(samples []entities.WeatherSample, year int, month entities.Month) (entities.WeatherSample, error) {
	if len(samples) == 0 {
		return entities.WeatherSample{}, &UpstreamDataError{
			Upstream: meteostatUpstream,
			Msg:      "No weather data found for this location/year",
		}
	}
	target := fmt.Sprintf("%d-%s", year, month.Number())
	for _, s := range samples {
		if !strings.HasPrefix(s.Date, target) {
			continue
		}
		if math.IsNaN(s.TemperatureAvgC) || math.IsNaN(s.PrecipitationMm) {
			return entities.WeatherSample{}, &UpstreamDataError{
				Upstream: meteostatUpstream,
				Msg:      "Incomplete weather data for " + target,
			}
		}
		return s, nil
	}
	return entities.WeatherSample{}, &UpstreamDataError{
		Upstream: meteostatUpstream,
		Msg:      "No weather data for " + target,
	}
}

func pickHumidity(table map[string]float64, month entities.Month) (entities.HumiditySample, error) {
	v, ok := table[month.Code()]
	if !ok || v <= powerFillValue {
		return entities.HumiditySample{}, &UpstreamDataError{
			Upstream: powerUpstream,
			Msg:      "No humidity data for " + month.Code(),
		}
	}
	return entities.HumiditySample{Month: month, RelativeHumidityPct: v}, nil
}

func statusOf(err error) string {
	if err == nil {
		return messages.StatusOK
	}
	return messages.StatusError
}

func (r *Recommender) emit(ctx context.Context, in Input, pred Prediction, perr error, took time.Duration) {
	evt := messages.PredictionEvent{
		ID:             uuid.NewString(),
		Status:         statusOf(perr),
		Month:          in.Month.String(),
		Year:           pred.Year,
		Latitude:       in.Coord.Lat,
		Longitude:      in.Coord.Lon,
		CatalogVersion: pred.CatalogVersion,
		LatencyMs:      took.Milliseconds(),
		Timestamp:      time.Now().UTC(),
	}
	if pred.Features != (entities.FeatureVector{}) {
		fv := pred.Features
		evt.Features = &fv
	}
	if perr == nil {
		idx := pred.ClassIndex
		evt.ClassIndex = &idx
		evt.Crop = string(pred.Crop)
	} else {
		evt.Error = perr.Error()
	}
	// detached from ctx: a client disconnect must not drop the event
	if err := r.sink.Publish(context.WithoutCancel(ctx), evt); err != nil {
		r.log.WithError(errors.Wrap(err, "publish prediction event")).Warn("audit event dropped")
	}
}

// NopSink discards events; used when auditing is disabled.
type NopSink struct{}

func (NopSink) Publish(context.Context, messages.PredictionEvent) error { return nil }
