package models

// CityCandidate is a geocoding match offered as a search suggestion
type CityCandidate struct {
	Name      string  `json:"name"`
	Country   *string `json:"country,omitempty"` // ISO 3166 alpha-2, absent for some matches
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// InCountry reports whether the candidate carries the given country code
func (c CityCandidate) InCountry(code string) bool {
	return c.Country != nil && *c.Country == code
}
