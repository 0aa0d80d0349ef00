package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/Zeyadhatem391/Weather/models"
	"github.com/Zeyadhatem391/Weather/theme"
	"github.com/Zeyadhatem391/Weather/widget"
)

//go:embed templates/*.html
var templateFS embed.FS

type suggestionView struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

type dayView struct {
	Label   string
	IconURL string
	Temp    int
}

type cardView struct {
	City         string
	Today        string
	IconURL      string
	Temp         int
	Condition    string
	Humidity     int
	Wind         float64
	HumidityIcon string
	WindIcon     string
	Forecast     []dayView
}

type pageView struct {
	Theme       string
	Query       string
	Placeholder string
	Version     uint64
	Suggestions []suggestionView
	Card        *cardView
}

// renderEvent is what /api/events pushes after every state change
type renderEvent struct {
	Version     uint64 `json:"version"`
	Theme       string `json:"theme"`
	Query       string `json:"query"`
	Suggestions string `json:"suggestions"`
	Card        string `json:"card"`
}

// view turns snapshots into markup
type view struct {
	templates   *template.Template
	placeholder string
	now         func() time.Time
}

func newView(countryLabel string, now func() time.Time) (*view, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	placeholder := "Search city..."
	if countryLabel != "" {
		placeholder = fmt.Sprintf("Search %s city...", countryLabel)
	}
	return &view{templates: templates, placeholder: placeholder, now: now}, nil
}

func (v *view) page(s widget.Snapshot) pageView {
	p := pageView{
		Theme:       s.Theme,
		Query:       s.Query,
		Placeholder: v.placeholder,
		Version:     s.Version,
	}
	for _, c := range s.Suggestions {
		sv := suggestionView{Name: c.Name, Lat: c.Latitude, Lon: c.Longitude}
		if c.Country != nil {
			sv.Country = *c.Country
		}
		p.Suggestions = append(p.Suggestions, sv)
	}
	if s.Current != nil {
		p.Card = v.card(*s.Current, s.Forecast)
	}
	return p
}

func (v *view) card(current models.CurrentConditions, forecast []models.ForecastEntry) *cardView {
	c := &cardView{
		City:         current.LocationName,
		Today:        v.now().Format("Mon Jan 02"),
		IconURL:      theme.IconURL(current.IconID),
		Temp:         widget.RoundHalfUp(current.TemperatureC),
		Condition:    current.ConditionCode,
		Humidity:     current.HumidityPercent,
		Wind:         current.WindSpeedMS,
		HumidityIcon: theme.HumidityIcon,
		WindIcon:     theme.WindIcon,
	}
	for _, day := range forecast {
		c.Forecast = append(c.Forecast, dayView{
			Label:   dayLabel(day.Date),
			IconURL: theme.IconURL(day.IconID),
			Temp:    day.TemperatureC,
		})
	}
	return c
}

// dayLabel formats a calendar day like "Mon, Oct 20"
func dayLabel(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("Mon, Jan 2")
}

func (v *view) renderPage(s widget.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.templates.ExecuteTemplate(&buf, "page", v.page(s)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *view) renderEvent(s widget.Snapshot) ([]byte, error) {
	p := v.page(s)

	var suggestions, card bytes.Buffer
	if err := v.templates.ExecuteTemplate(&suggestions, "suggestions", p.Suggestions); err != nil {
		return nil, err
	}
	if err := v.templates.ExecuteTemplate(&card, "card", p.Card); err != nil {
		return nil, err
	}

	return json.Marshal(renderEvent{
		Version:     s.Version,
		Theme:       s.Theme,
		Query:       s.Query,
		Suggestions: suggestions.String(),
		Card:        card.String(),
	})
}
