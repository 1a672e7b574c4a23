package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/voyagent/voyagent/internal/service/trips"
)

func flightTools(svc trips.TripUseCase) []Tool {
	return []Tool{
		{
			Name:        "searchFlights",
			Description: "Search for flights based on the given parameters",
			Parameters: object(map[string]any{
				"origin":        str("Origin airport or city IATA code"),
				"destination":   str("Destination airport or city IATA code"),
				"departureDate": str("Departure date (YYYY-MM-DD)"),
				"returnDate":    str("Return date for round trip (YYYY-MM-DD)"),
				"adults":        str("Number of adult passengers"),
			}, "origin", "destination", "departureDate"),
			Handler: searchFlightsHandler(svc),
		},
		{
			Name:        "selectSeats",
			Description: "Select seats for a flight",
			Parameters: object(map[string]any{
				"flightNumber":  str("Flight number"),
				"flightOfferId": str("Flight offer ID from search results"),
			}, "flightNumber", "flightOfferId"),
			Handler: selectSeatsHandler(svc),
		},
		{
			Name:        "displayFlightStatus",
			Description: "Display the status of a flight",
			Parameters: object(map[string]any{
				"carrierCode":  str("Airline carrier code (e.g., AA, BA)"),
				"flightNumber": str("Flight number without carrier code"),
				"date":         str("Flight date (YYYY-MM-DD)"),
			}, "carrierCode", "flightNumber", "date"),
			Handler: flightStatusHandler(svc),
		},
		{
			Name:        "getFlightPriceMetrics",
			Description: "Get flight price analysis",
			Parameters: object(map[string]any{
				"origin":      str("Origin airport IATA code"),
				"destination": str("Destination airport IATA code"),
				"date":        str("Flight date YYYY-MM-DD"),
			}, "origin", "destination", "date"),
			Handler: priceMetricsHandler(svc),
		},
		{
			Name:        "getFlightInspirations",
			Description: "Get flight inspiration suggestions from an origin",
			Parameters: object(map[string]any{
				"origin":   str("Origin airport IATA code"),
				"maxPrice": num("Maximum price in USD"),
			}, "origin"),
			Handler: inspirationsHandler(svc),
		},
		{
			Name:        "getCheapestDates",
			Description: "Get cheapest dates for flights between two locations",
			Parameters: object(map[string]any{
				"origin":      str("Origin airport IATA code"),
				"destination": str("Destination airport IATA code"),
			}, "origin", "destination"),
			Handler: cheapestDatesHandler(svc),
		},
	}
}

func searchFlightsHandler(svc trips.TripUseCase) Handler {
	type args struct {
		Origin        string `json:"origin"`
		Destination   string `json:"destination"`
		DepartureDate string `json:"departureDate"`
		ReturnDate    string `json:"returnDate"`
		Adults        string `json:"adults"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse flight search arguments.")
		}

		flights, err := svc.SearchFlights(ctx, trips.SearchInput{
			Origin:        a.Origin,
			Destination:   a.Destination,
			DepartureDate: a.DepartureDate,
			ReturnDate:    a.ReturnDate,
			Adults:        a.Adults,
		})
		if err != nil {
			return Error("search_failed", "Unable to search for flights at this time.")
		}
		if len(flights) == 0 {
			return NoResults("No flights found for the specified criteria.")
		}
		return Success(map[string]any{"flights": flights})
	}
}

func selectSeatsHandler(svc trips.TripUseCase) Handler {
	type args struct {
		FlightNumber  string `json:"flightNumber"`
		FlightOfferID string `json:"flightOfferId"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse seat selection arguments.")
		}

		// "1" is the placeholder id some model turns invent; calling the
		// provider with it always fails.
		if a.FlightOfferID == "" || a.FlightOfferID == "1" {
			return NoResults("No seat information available for this flight.")
		}

		seats, err := svc.SeatMap(ctx, a.FlightOfferID)
		if err != nil {
			if errors.Is(err, trips.ErrOfferNotFound) {
				return NoResults("This flight offer has expired. Please search for flights again.")
			}
			return Error("seat_map_failed", "Unable to retrieve seat map information at this time.")
		}
		if len(seats) == 0 {
			return NoResults("No seat information available for this flight.")
		}
		return Success(map[string]any{
			"flightNumber":  a.FlightNumber,
			"flightOfferId": a.FlightOfferID,
			"seats":         seats,
		})
	}
}

func flightStatusHandler(svc trips.TripUseCase) Handler {
	type args struct {
		CarrierCode  string `json:"carrierCode"`
		FlightNumber string `json:"flightNumber"`
		Date         string `json:"date"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse flight status arguments.")
		}

		status, err := svc.FlightStatus(ctx, a.CarrierCode, a.FlightNumber, a.Date)
		if err != nil {
			return Error("status_failed", "Unable to retrieve flight status information at this time.")
		}
		if status == nil {
			return NoResults("No schedule information found for this flight.")
		}
		return Success(status)
	}
}

func priceMetricsHandler(svc trips.TripUseCase) Handler {
	type args struct {
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
		Date        string `json:"date"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse price metrics arguments.")
		}

		metrics, err := svc.PriceMetrics(ctx, a.Origin, a.Destination, a.Date)
		if err != nil {
			return Error("price_metrics_failed", "Unable to retrieve flight price information at this time.")
		}
		return Success(metrics)
	}
}

func inspirationsHandler(svc trips.TripUseCase) Handler {
	type args struct {
		Origin   string  `json:"origin"`
		MaxPrice float64 `json:"maxPrice"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse flight inspiration arguments.")
		}

		result, err := svc.FlightInspirations(ctx, a.Origin, int(a.MaxPrice))
		if err != nil {
			return Error("inspirations_failed", "Unable to retrieve flight inspiration suggestions at this time.")
		}
		if len(result) == 0 || string(result) == "null" || string(result) == "[]" {
			return NoResults("Flight inspiration search unavailable for this origin.")
		}
		return Success(result)
	}
}

func cheapestDatesHandler(svc trips.TripUseCase) Handler {
	type args struct {
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse cheapest dates arguments.")
		}

		result, err := svc.CheapestDates(ctx, a.Origin, a.Destination)
		if err != nil {
			return Error("cheapest_dates_failed", "This route may not be available in the current environment.")
		}
		if len(result) == 0 || string(result) == "null" || string(result) == "[]" {
			return NoResults("No date suggestions found for this route.")
		}
		return Success(result)
	}
}
