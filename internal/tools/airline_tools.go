package tools

import (
	"context"
	"encoding/json"

	"github.com/voyagent/voyagent/internal/service/trips"
)

func airlineTools(svc trips.TripUseCase) []Tool {
	return []Tool{
		{
			Name:        "getAirlineInfo",
			Description: "Get airline information by IATA code",
			Parameters: object(map[string]any{
				"airlineCode": str("Airline IATA code"),
			}, "airlineCode"),
			Handler: airlineInfoHandler(svc),
		},
	}
}

func airlineInfoHandler(svc trips.TripUseCase) Handler {
	type args struct {
		AirlineCode string `json:"airlineCode"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse airline info arguments.")
		}

		airline, err := svc.AirlineDetails(ctx, a.AirlineCode)
		if err != nil {
			return Error("airline_info_failed", "Unable to retrieve airline information at this time.")
		}
		if airline == nil {
			return NoResults("No airline found for that IATA code.")
		}
		return Success(airline)
	}
}
