package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/voyagent/voyagent/internal/domain"
	"github.com/voyagent/voyagent/internal/repository"
	"github.com/voyagent/voyagent/internal/service/reservation"
)

func reservationTools(svc reservation.ReservationUseCase) []Tool {
	return []Tool{
		{
			Name:        "createReservation",
			Description: "Display pending reservation details",
			Parameters: object(map[string]any{
				"seats":         strArray("Array of selected seat numbers"),
				"flightNumber":  str("Flight number"),
				"flightOfferId": str("Flight offer ID from search results"),
				"departure":     endpointSchema("departure"),
				"arrival":       endpointSchema("arrival"),
				"passengerName": str("Name of the passenger"),
			}, "seats", "flightNumber", "flightOfferId", "departure", "arrival", "passengerName"),
			Handler: createReservationHandler(svc),
		},
		{
			Name:        "displayBoardingPass",
			Description: "Display a boarding pass",
			Parameters: object(map[string]any{
				"reservationId": str("Unique identifier for the reservation"),
				"passengerName": str("Name of the passenger, in title case"),
				"flightNumber":  str("Flight number"),
				"seat":          str("Seat number"),
				"departure":     endpointSchema("departure"),
				"arrival":       endpointSchema("arrival"),
			}, "reservationId", "passengerName", "flightNumber", "seat", "departure", "arrival"),
			Handler: boardingPassHandler(svc),
		},
	}
}

func createReservationHandler(svc reservation.ReservationUseCase) Handler {
	type args struct {
		Seats         []string        `json:"seats"`
		FlightNumber  string          `json:"flightNumber"`
		FlightOfferID string          `json:"flightOfferId"`
		Departure     domain.Endpoint `json:"departure"`
		Arrival       domain.Endpoint `json:"arrival"`
		PassengerName string          `json:"passengerName"`
	}
	return func(ctx context.Context, sess Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse reservation arguments.")
		}

		// Precondition checked before anything touches storage or the
		// provider: an unauthenticated call performs no writes.
		if sess.UserID == "" {
			return Error("not_authenticated", "You must be signed in to create a reservation.")
		}

		res, booking, err := svc.Create(ctx, reservation.CreateInput{
			UserID:        sess.UserID,
			Seats:         a.Seats,
			FlightNumber:  a.FlightNumber,
			FlightOfferID: a.FlightOfferID,
			Departure:     a.Departure,
			Arrival:       a.Arrival,
			PassengerName: a.PassengerName,
		})
		if err != nil {
			switch {
			case errors.Is(err, reservation.ErrNotAuthenticated):
				return Error("not_authenticated", "You must be signed in to create a reservation.")
			case errors.Is(err, reservation.ErrOfferExpired):
				return Error("offer_expired", "This flight offer has expired. Please search for flights again.")
			default:
				return Error("reservation_failed", "Unable to get accurate pricing information. Please try again or select another flight.")
			}
		}

		return Success(map[string]any{
			"id":                  res.ID,
			"seats":               a.Seats,
			"flightNumber":        a.FlightNumber,
			"flightOfferId":       a.FlightOfferID,
			"departure":           a.Departure,
			"arrival":             a.Arrival,
			"passengerName":       a.PassengerName,
			"totalPriceInUSD":     booking.TotalPrice,
			"hasCompletedPayment": false,
		})
	}
}

func boardingPassHandler(svc reservation.ReservationUseCase) Handler {
	type args struct {
		ReservationID string          `json:"reservationId"`
		PassengerName string          `json:"passengerName"`
		FlightNumber  string          `json:"flightNumber"`
		Seat          string          `json:"seat"`
		Departure     domain.Endpoint `json:"departure"`
		Arrival       domain.Endpoint `json:"arrival"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse boarding pass arguments.")
		}

		// The one hard invariant: no boarding pass until payment is
		// verified against the stored reservation.
		if err := svc.CheckBoardingPass(ctx, a.ReservationID); err != nil {
			switch {
			case errors.Is(err, reservation.ErrPaymentIncomplete):
				return Error("payment_required", "Your payment must be completed before viewing the boarding pass.")
			case errors.Is(err, repository.ErrReservationNotFound):
				return Error("not_found", "No reservation found with that id.")
			default:
				return Error("boarding_pass_failed", "Unable to display your boarding pass at this time.")
			}
		}

		return Success(map[string]any{
			"reservationId": a.ReservationID,
			"passengerName": a.PassengerName,
			"flightNumber":  a.FlightNumber,
			"seat":          a.Seat,
			"departure":     a.Departure,
			"arrival":       a.Arrival,
		})
	}
}
