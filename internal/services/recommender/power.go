package recommender

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
)

const (
	powerUpstream = "nasa-power"
	// relative humidity at 2 meters
	powerHumidityParam = "RH2M"
	// POWER marks missing values with this fill value
	powerFillValue = -999
)

type powerResp struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// PowerClient reads long-term climatology from the NASA POWER API.
type PowerClient struct {
	base      string
	community string
	up        *upstream
}

func NewPowerClient(base, community string, client *http.Client, bs BreakerSettings, m *Metrics) *PowerClient {
	if community == "" {
		community = "AG"
	}
	return &PowerClient{base: trimBase(base), community: community, up: newUpstream(powerUpstream, client, bs, m)}
}

func (c *PowerClient) Name() string { return c.up.Name() }

func (c *PowerClient) BreakerState() gobreaker.State { return c.up.State() }

// MonthlyHumidity returns mean relative humidity (%) keyed by month code (JAN..DEC, ANN).
func (c *PowerClient) MonthlyHumidity(ctx context.Context, coord entities.Coordinate) (map[string]float64, error) {
	q := url.Values{}
	q.Set("parameters", powerHumidityParam)
	q.Set("community", c.community)
	q.Set("latitude", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	q.Set("format", "JSON")

	var out powerResp
	if err := c.up.getJSON(ctx, c.base+"/api/temporal/climatology/point?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	table := out.Properties.Parameter[powerHumidityParam]
	if len(table) == 0 {
		return nil, &UpstreamDataError{Upstream: powerUpstream, Msg: "No humidity data found for this location"}
	}
	return table, nil
}
