package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/voyagent/voyagent/internal/repository"
	"github.com/voyagent/voyagent/internal/service/reservation"
)

// Payment tools report the persisted flag only. The flip to "paid" happens
// on an external confirmation path, never through the conversation.
func paymentTools(svc reservation.ReservationUseCase) []Tool {
	return []Tool{
		{
			Name:        "authorizePayment",
			Description: "User will enter credentials to authorize payment, wait for user to respond when they are done",
			Parameters: object(map[string]any{
				"reservationId": str("Unique identifier for the reservation"),
			}, "reservationId"),
			Handler: paymentStatusHandler(svc, true),
		},
		{
			Name:        "verifyPayment",
			Description: "Verify payment status",
			Parameters: object(map[string]any{
				"reservationId": str("Unique identifier for the reservation"),
			}, "reservationId"),
			Handler: paymentStatusHandler(svc, false),
		},
	}
}

func paymentStatusHandler(svc reservation.ReservationUseCase, includeID bool) Handler {
	type args struct {
		ReservationID string `json:"reservationId"`
	}
	return func(ctx context.Context, _ Session, raw json.RawMessage) ToolResult {
		var a args
		if err := json.Unmarshal(raw, &a); err != nil {
			return Error("invalid_arguments", "Could not parse payment arguments.")
		}

		completed, err := svc.PaymentStatus(ctx, a.ReservationID)
		if err != nil {
			if errors.Is(err, repository.ErrReservationNotFound) {
				return Error("not_found", "No reservation found with that id.")
			}
			return Error("payment_status_failed", "Unable to verify payment status at this time.")
		}

		payload := map[string]any{"hasCompletedPayment": completed}
		if includeID {
			payload["reservationId"] = a.ReservationID
		}
		return Success(payload)
	}
}
