package domain

import (
	"encoding/json"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
)

// Reservation is a user's pending-or-paid claim on a flight offer plus
// selected seats. HasCompletedPayment starts false and only ever moves to
// true; nothing in this service writes it back to false.
type Reservation struct {
	ID                  string
	UserID              string
	Details             json.RawMessage
	HasCompletedPayment bool
	CreatedAt           time.Time
}

type FlightBooking struct {
	ID            int64
	ReservationID string
	FlightNumber  string
	FlightOfferID string
	SeatNumbers   []string
	TotalPrice    float64
	Status        BookingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReservationDetails is the structured blob stored on a Reservation.
type ReservationDetails struct {
	Seats           []string `json:"seats"`
	FlightNumber    string   `json:"flightNumber"`
	FlightOfferID   string   `json:"flightOfferId"`
	Departure       Endpoint `json:"departure"`
	Arrival         Endpoint `json:"arrival"`
	PassengerName   string   `json:"passengerName"`
	TotalPriceInUSD float64  `json:"totalPriceInUSD"`
}
