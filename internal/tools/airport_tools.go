package tools

import (
	"context"
	"encoding/json"

	"github.com/voyagent/voyagent/internal/service/trips"
)

func airportTools(svc trips.TripUseCase) []Tool {
	return []Tool{
		{
			Name:        "searchAirports",
			Description: "Search for airports by keyword",
			Parameters: object(map[string]any{
				"keyword": str("Airport name or city"),
			}, "keyword"),
			Handler: searchAirportsHandler(svc),
		},
		{
			Name:        "getAirportInfo",
			Description: "Get airport information",
			Parameters: object(map[string]any{
				"iataCode": str("Airport IATA code"),
			}, "iataCode"),
			Handler: airportInfoHandler(svc),
		},
	}
}

func searchAirportsHandler(svc trips.TripUseCase) Handler {
	type args struct {
		Keyword string `json:"keyword"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse airport search arguments.")
		}

		airports, err := svc.SearchAirports(ctx, a.Keyword)
		if err != nil {
			return Error("airport_search_failed", "Unable to retrieve airport information at this time.")
		}
		if len(airports) == 0 {
			return NoResults("No airports matched that keyword.")
		}
		return Success(airports)
	}
}

func airportInfoHandler(svc trips.TripUseCase) Handler {
	type args struct {
		IataCode string `json:"iataCode"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse airport info arguments.")
		}

		airport, err := svc.AirportDetails(ctx, a.IataCode)
		if err != nil {
			return Error("airport_info_failed", "Unable to retrieve detailed airport information at this time.")
		}
		if airport == nil {
			return NoResults("No airport found for that IATA code.")
		}
		return Success(airport)
	}
}
