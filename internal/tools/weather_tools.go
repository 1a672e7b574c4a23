package tools

import (
	"context"
	"encoding/json"

	"github.com/voyagent/voyagent/internal/weather"
)

func weatherTools(client *weather.Client) []Tool {
	return []Tool{
		{
			Name:        "getWeather",
			Description: "Get the current weather at a location",
			Parameters: object(map[string]any{
				"latitude":  num("Latitude coordinate"),
				"longitude": num("Longitude coordinate"),
			}, "latitude", "longitude"),
			Handler: weatherHandler(client),
		},
	}
}

func weatherHandler(client *weather.Client) Handler {
	type args struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse weather arguments.")
		}

		payload, err := client.Current(ctx, a.Latitude, a.Longitude)
		if err != nil {
			return Error("weather_failed", "Unable to fetch weather data at this time.")
		}
		return Success(payload)
	}
}
