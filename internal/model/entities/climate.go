package entities

import "fmt"

// Coordinate is a WGS84 point picked on the map.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinate) String() string { return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon) }

// WeatherSample is one monthly record of the climate source for a past year.
type WeatherSample struct {
	Date            string  `json:"date"`              // YYYY-MM-DD, first day of the month
	TemperatureAvgC float64 `json:"temperature_avg_c"` // °C
	PrecipitationMm float64 `json:"precipitation_mm"`  // mm over the month
}

// HumiditySample is the long-term mean relative humidity of a month (climatology, no year).
type HumiditySample struct {
	Month               Month   `json:"month"`
	RelativeHumidityPct float64 `json:"relative_humidity_pct"`
}
