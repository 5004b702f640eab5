package recommender

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
)

const meteostatUpstream = "meteostat"

type meteostatRecord struct {
	Date string   `json:"date"`
	Tavg *float64 `json:"tavg"` // °C
	Prcp *float64 `json:"prcp"` // mm
}

type meteostatResp struct {
	Data []meteostatRecord `json:"data"`
}

// MeteostatClient reads monthly point statistics from the Meteostat API on RapidAPI.
type MeteostatClient struct {
	base string
	up   *upstream
}

func NewMeteostatClient(base, rapidHost, rapidKey string, client *http.Client, bs BreakerSettings, m *Metrics) *MeteostatClient {
	if client == nil {
		client = newHTTPClient(0, nil)
	}
	inner := client.Transport
	if inner == nil {
		inner = http.DefaultTransport
	}
	c := *client
	c.Transport = &rapidAPITransport{base: inner, host: rapidHost, key: rapidKey}
	return &MeteostatClient{base: trimBase(base), up: newUpstream(meteostatUpstream, &c, bs, m)}
}

func (c *MeteostatClient) Name() string { return c.up.Name() }

func (c *MeteostatClient) BreakerState() gobreaker.State { return c.up.State() }

// MonthlyWeather returns the monthly records of a whole calendar year at coord.
// A month without temperature or precipitation carries NaN in that field.
func (c *MeteostatClient) MonthlyWeather(ctx context.Context, coord entities.Coordinate, year int) ([]entities.WeatherSample, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	q.Set("start", fmt.Sprintf("%d-01-01", year))
	q.Set("end", fmt.Sprintf("%d-12-31", year))
	q.Set("model", "true")
	q.Set("units", "metric")

	var out meteostatResp
	if err := c.up.getJSON(ctx, c.base+"/point/monthly?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	samples := make([]entities.WeatherSample, 0, len(out.Data))
	for _, r := range out.Data {
		samples = append(samples, entities.WeatherSample{
			Date:            r.Date,
			TemperatureAvgC: valueOrNaN(r.Tavg),
			PrecipitationMm: valueOrNaN(r.Prcp),
		})
	}
	return samples, nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
