package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/voyagent/voyagent/internal/amadeus"
	"github.com/voyagent/voyagent/internal/domain"
	"github.com/voyagent/voyagent/internal/kafka"
	"github.com/voyagent/voyagent/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated  = errors.New("user is not signed in")
	ErrOfferExpired      = errors.New("flight offer not found or expired")
	ErrPaymentIncomplete = errors.New("payment not completed")
)

type ReservationUseCase interface {
	Create(ctx context.Context, input CreateInput) (*domain.Reservation, *domain.FlightBooking, error)
	PaymentStatus(ctx context.Context, reservationID string) (bool, error)
	CheckBoardingPass(ctx context.Context, reservationID string) error
	GetWithBooking(ctx context.Context, reservationID string) (*domain.Reservation, *domain.FlightBooking, error)
	ConfirmPayment(ctx context.Context, reservationID string) error
}

// Pricer is the slice of the provider client the workflow needs: live
// pricing confirmation and seat prices for the selected seats.
type Pricer interface {
	ConfirmPricing(ctx context.Context, offer domain.FlightOffer) (*amadeus.PricedOffer, error)
	SeatMapForOffer(ctx context.Context, offer domain.FlightOffer) (*amadeus.SeatMap, error)
}

type OfferStore interface {
	OfferByID(ctx context.Context, offerID string) (*domain.FlightOffer, bool, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ReservationService struct {
	reservations repository.ReservationRepository
	offers       OfferStore
	pricer       Pricer
	producer     Producer
	topic        string
	log          *zap.Logger
}

func NewReservationService(
	reservations repository.ReservationRepository,
	offers OfferStore,
	pricer Pricer,
	producer Producer,
	topic string,
	log *zap.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		offers:       offers,
		pricer:       pricer,
		producer:     producer,
		topic:        topic,
		log:          log,
	}
}

type CreateInput struct {
	UserID        string
	Seats         []string
	FlightNumber  string
	FlightOfferID string
	Departure     domain.Endpoint
	Arrival       domain.Endpoint
	PassengerName string
}

// Create prices the offer against live availability, adds per-seat prices
// and persists the reservation with its booking in one transaction. The
// payment flag always starts false. No pricing fallback: if the provider
// cannot confirm the price, the reservation is not created.
func (s *ReservationService) Create(ctx context.Context, input CreateInput) (*domain.Reservation, *domain.FlightBooking, error) {
	if input.UserID == "" {
		return nil, nil, ErrNotAuthenticated
	}
	if input.FlightOfferID == "" {
		return nil, nil, ErrOfferExpired
	}

	offer, ok, err := s.offers.OfferByID(ctx, input.FlightOfferID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrOfferExpired
	}

	priced, err := s.pricer.ConfirmPricing(ctx, *offer)
	if err != nil {
		return nil, nil, err
	}
	total, err := strconv.ParseFloat(priced.Offer.Price.Total, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("parse confirmed price %q: %w", priced.Offer.Price.Total, err)
	}

	if len(input.Seats) > 0 {
		seatTotal, err := s.seatPrices(ctx, *offer, input.Seats)
		if err != nil {
			return nil, nil, err
		}
		total += seatTotal
	}

	details, err := json.Marshal(domain.ReservationDetails{
		Seats:           input.Seats,
		FlightNumber:    input.FlightNumber,
		FlightOfferID:   input.FlightOfferID,
		Departure:       input.Departure,
		Arrival:         input.Arrival,
		PassengerName:   input.PassengerName,
		TotalPriceInUSD: total,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encode reservation details: %w", err)
	}

	res := &domain.Reservation{
		ID:      uuid.NewString(),
		UserID:  input.UserID,
		Details: details,
	}
	booking := &domain.FlightBooking{
		ReservationID: res.ID,
		FlightNumber:  input.FlightNumber,
		FlightOfferID: input.FlightOfferID,
		SeatNumbers:   input.Seats,
		TotalPrice:    total,
	}

	if err := s.reservations.Create(ctx, res, booking); err != nil {
		return nil, nil, err
	}

	s.publish(ctx, "reservation_created", res, booking)
	return res, booking, nil
}

func (s *ReservationService) seatPrices(ctx context.Context, offer domain.FlightOffer, seats []string) (float64, error) {
	seatMap, err := s.pricer.SeatMapForOffer(ctx, offer)
	if err != nil {
		return 0, err
	}

	prices := make(map[string]float64)
	for _, deck := range seatMap.Decks {
		for _, row := range deck.Rows {
			for _, seat := range row.Seats {
				if len(seat.TravelerPricing) == 0 {
					continue
				}
				if price, err := strconv.ParseFloat(seat.TravelerPricing[0].Price.Total, 64); err == nil {
					prices[seat.Number] = price
				}
			}
		}
	}

	var total float64
	for _, number := range seats {
		price, ok := prices[number]
		if !ok {
			s.log.Warn("seat missing from seat map, no price added", zap.String("seat", number))
			continue
		}
		total += price
	}
	return total, nil
}

// PaymentStatus reports the persisted flag. It never flips it: payment
// confirmation arrives from an external path.
func (s *ReservationService) PaymentStatus(ctx context.Context, reservationID string) (bool, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return false, err
	}
	return res.HasCompletedPayment, nil
}

// CheckBoardingPass re-reads the reservation and refuses boarding-pass
// display until payment is completed.
func (s *ReservationService) CheckBoardingPass(ctx context.Context, reservationID string) error {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if !res.HasCompletedPayment {
		return ErrPaymentIncomplete
	}
	return nil
}

func (s *ReservationService) GetWithBooking(ctx context.Context, reservationID string) (*domain.Reservation, *domain.FlightBooking, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	booking, err := s.reservations.GetBookingByReservation(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	return res, booking, nil
}

// ConfirmPayment applies an external payment confirmation. Only the worker
// consuming the payments topic calls this; the conversational path never
// does.
func (s *ReservationService) ConfirmPayment(ctx context.Context, reservationID string) error {
	if err := s.reservations.MarkPaymentCompleted(ctx, reservationID); err != nil {
		return err
	}
	s.log.Info("payment confirmed", zap.String("reservation_id", reservationID))
	return nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, res *domain.Reservation, booking *domain.FlightBooking) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: res.ID,
		UserID:        res.UserID,
		FlightNumber:  booking.FlightNumber,
		TotalPrice:    booking.TotalPrice,
		CreatedAt:     time.Now(),
	}
	if err := s.producer.Publish(ctx, s.topic, res.ID, event); err != nil {
		s.log.Warn("publish reservation event failed",
			zap.String("type", eventType),
			zap.String("reservation_id", res.ID),
			zap.Error(err))
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
