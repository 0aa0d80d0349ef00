package models

// CurrentConditions is the latest observed weather for the selected city
type CurrentConditions struct {
	LocationName         string  `json:"locationName"`
	ConditionCode        string  `json:"conditionCode"`        // coarse category, e.g. "Rain"
	ConditionDescription string  `json:"conditionDescription"` // detailed text, e.g. "light rain"
	IconID               string  `json:"iconId"`
	TemperatureC         float64 `json:"temperatureC"`
	HumidityPercent      int     `json:"humidityPercent"`
	WindSpeedMS          float64 `json:"windSpeedMS"`
}
