package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Zeyadhatem391/Weather/models"
	"github.com/Zeyadhatem391/Weather/widget"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Widget server base URL")
	query := flag.String("q", "Cai", "Partial city name to search for")
	flag.Parse()

	fmt.Println("Weather Widget Client")
	fmt.Println("=====================")

	client := &http.Client{Timeout: 30 * time.Second}

	fmt.Printf("\nSearching for %q...\n", *query)
	searchURL := fmt.Sprintf("%s/api/search?q=%s", *baseURL, url.QueryEscape(*query))
	state, err := getState(client, http.MethodGet, searchURL, nil)
	if err != nil {
		fmt.Printf("Error searching: %v\n", err)
		os.Exit(1)
	}

	if len(state.Suggestions) == 0 {
		fmt.Println("No suggestions. Try another query.")
		return
	}
	for i, c := range state.Suggestions {
		fmt.Printf("  %d. %s (%.2f, %.2f)\n", i+1, c.Name, c.Latitude, c.Longitude)
	}

	// Select the first suggestion
	candidate := state.Suggestions[0]
	fmt.Printf("\nSelecting %s...\n", candidate.Name)
	body, _ := json.Marshal(candidate)
	state, err = getState(client, http.MethodPost, *baseURL+"/api/select", body)
	if err != nil {
		fmt.Printf("Error selecting: %v\n", err)
		os.Exit(1)
	}

	if state.Current == nil {
		fmt.Println("Weather is not available yet.")
		return
	}
	printWeather(*state.Current, state.Forecast)
}

func getState(client *http.Client, method, target string, body []byte) (widget.Snapshot, error) {
	var snap widget.Snapshot

	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	if err != nil {
		return snap, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return snap, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	err = json.NewDecoder(resp.Body).Decode(&snap)
	return snap, err
}

func printWeather(current models.CurrentConditions, forecast []models.ForecastEntry) {
	fmt.Printf("\n%s: %d°C, %s\n", current.LocationName, widget.RoundHalfUp(current.TemperatureC), current.ConditionCode)
	fmt.Printf("Humidity: %d%%  Wind: %.1f m/s\n", current.HumidityPercent, current.WindSpeedMS)

	if len(forecast) == 0 {
		return
	}
	fmt.Println("\nForecast:")
	for _, day := range forecast {
		fmt.Printf("  %s  %d°C\n", day.Date, day.TemperatureC)
	}
}
