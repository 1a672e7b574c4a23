package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voyagent/voyagent/internal/domain"
)

var ErrReservationNotFound = errors.New("reservation not found")

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation, booking *domain.FlightBooking) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetBookingByReservation(ctx context.Context, reservationID string) (*domain.FlightBooking, error)
	MarkPaymentCompleted(ctx context.Context, reservationID string) error
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

// Create inserts the reservation and its flight booking in one transaction
// so a failure can never leave a reservation without its booking record.
func (r *PGReservationRepository) Create(ctx context.Context, reservation *domain.Reservation, booking *domain.FlightBooking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	reservation.HasCompletedPayment = false
	if err := tx.QueryRow(ctx, `INSERT INTO reservations (id, user_id, details, has_completed_payment)
		VALUES ($1, $2, $3, false)
		RETURNING created_at`, reservation.ID, reservation.UserID, reservation.Details).
		Scan(&reservation.CreatedAt); err != nil {
		return err
	}

	seats, err := json.Marshal(booking.SeatNumbers)
	if err != nil {
		return fmt.Errorf("encode seat numbers: %w", err)
	}

	booking.Status = domain.BookingStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO flight_bookings (reservation_id, flight_number, flight_offer_id, seat_numbers, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`, booking.ReservationID, booking.FlightNumber, booking.FlightOfferID, seats, booking.TotalPrice, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, details, has_completed_payment, created_at FROM reservations WHERE id=$1`, id)
	var res domain.Reservation
	if err := row.Scan(&res.ID, &res.UserID, &res.Details, &res.HasCompletedPayment, &res.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGReservationRepository) GetBookingByReservation(ctx context.Context, reservationID string) (*domain.FlightBooking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, reservation_id, flight_number, flight_offer_id, seat_numbers, total_price, status, created_at, updated_at
		FROM flight_bookings WHERE reservation_id=$1`, reservationID)

	var b domain.FlightBooking
	var seats []byte
	if err := row.Scan(&b.ID, &b.ReservationID, &b.FlightNumber, &b.FlightOfferID, &seats, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(seats, &b.SeatNumbers); err != nil {
		return nil, fmt.Errorf("decode seat numbers: %w", err)
	}
	return &b, nil
}

// MarkPaymentCompleted flips has_completed_payment to true. The flag only
// ever moves false to true; there is no write path back.
func (r *PGReservationRepository) MarkPaymentCompleted(ctx context.Context, reservationID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE reservations SET has_completed_payment = true WHERE id=$1`, reservationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrReservationNotFound
	}

	if _, err := tx.Exec(ctx, `UPDATE flight_bookings SET status=$1, updated_at=now() WHERE reservation_id=$2`,
		domain.BookingStatusConfirmed, reservationID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
