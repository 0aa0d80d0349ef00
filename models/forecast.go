package models

// ForecastSample is one raw 3-hour point of the 5-day forecast
type ForecastSample struct {
	TimestampText string  `json:"timestampText"` // provider dt_txt, "2006-01-02 15:04:05"
	TemperatureC  float64 `json:"temperatureC"`
	IconID        string  `json:"iconId"`
}

// ForecastEntry is one day of the simplified daily forecast
type ForecastEntry struct {
	Date         string `json:"date"`         // calendar day, "2006-01-02"
	TemperatureC int    `json:"temperatureC"` // rounded
	IconID       string `json:"iconId"`
}
