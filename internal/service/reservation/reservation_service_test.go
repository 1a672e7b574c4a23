package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/voyagent/voyagent/internal/amadeus"
	"github.com/voyagent/voyagent/internal/domain"
	"go.uber.org/zap"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, res *domain.Reservation, booking *domain.FlightBooking) error {
	args := m.Called(ctx, res, booking)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetBookingByReservation(ctx context.Context, reservationID string) (*domain.FlightBooking, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightBooking), args.Error(1)
}

func (m *MockReservationRepository) MarkPaymentCompleted(ctx context.Context, reservationID string) error {
	args := m.Called(ctx, reservationID)
	return args.Error(0)
}

type MockOfferStore struct {
	mock.Mock
}

func (m *MockOfferStore) OfferByID(ctx context.Context, offerID string) (*domain.FlightOffer, bool, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.FlightOffer), args.Bool(1), args.Error(2)
}

type MockPricer struct {
	mock.Mock
}

func (m *MockPricer) ConfirmPricing(ctx context.Context, offer domain.FlightOffer) (*amadeus.PricedOffer, error) {
	args := m.Called(ctx, offer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*amadeus.PricedOffer), args.Error(1)
}

func (m *MockPricer) SeatMapForOffer(ctx context.Context, offer domain.FlightOffer) (*amadeus.SeatMap, error) {
	args := m.Called(ctx, offer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*amadeus.SeatMap), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newService(repo *MockReservationRepository, offers *MockOfferStore, pricer *MockPricer, producer *MockProducer) *ReservationService {
	return NewReservationService(repo, offers, pricer, producer, "reservations", zap.NewNop())
}

func testOffer(id string) *domain.FlightOffer {
	return &domain.FlightOffer{
		ID:    id,
		Price: domain.OfferPrice{Currency: "USD", Total: "200.00"},
		Raw:   json.RawMessage(`{"id":"` + id + `"}`),
	}
}

func TestReservationService_Create_NotAuthenticated(t *testing.T) {
	repo := &MockReservationRepository{}
	offers := &MockOfferStore{}
	pricer := &MockPricer{}
	producer := &MockProducer{}
	service := newService(repo, offers, pricer, producer)

	_, _, err := service.Create(context.Background(), CreateInput{
		FlightOfferID: "7",
		FlightNumber:  "UA1234",
	})

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	offers.AssertNotCalled(t, "OfferByID", mock.Anything, mock.Anything)
}

func TestReservationService_Create_OfferExpired(t *testing.T) {
	repo := &MockReservationRepository{}
	offers := &MockOfferStore{}
	pricer := &MockPricer{}
	producer := &MockProducer{}
	service := newService(repo, offers, pricer, producer)

	offers.On("OfferByID", mock.Anything, "7").Return(nil, false, nil)

	_, _, err := service.Create(context.Background(), CreateInput{
		UserID:        "user-1",
		FlightOfferID: "7",
		FlightNumber:  "UA1234",
	})

	assert.ErrorIs(t, err, ErrOfferExpired)
	pricer.AssertNotCalled(t, "ConfirmPricing", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_Create_PricingFails(t *testing.T) {
	repo := &MockReservationRepository{}
	offers := &MockOfferStore{}
	pricer := &MockPricer{}
	producer := &MockProducer{}
	service := newService(repo, offers, pricer, producer)

	offer := testOffer("7")
	wantErr := errors.New("pricing unavailable")
	offers.On("OfferByID", mock.Anything, "7").Return(offer, true, nil)
	pricer.On("ConfirmPricing", mock.Anything, *offer).Return(nil, wantErr)

	_, _, err := service.Create(context.Background(), CreateInput{
		UserID:        "user-1",
		FlightOfferID: "7",
		FlightNumber:  "UA1234",
	})

	assert.ErrorIs(t, err, wantErr)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_Create_Success(t *testing.T) {
	repo := &MockReservationRepository{}
	offers := &MockOfferStore{}
	pricer := &MockPricer{}
	producer := &MockProducer{}
	service := newService(repo, offers, pricer, producer)

	offer := testOffer("7")
	offers.On("OfferByID", mock.Anything, "7").Return(offer, true, nil)
	pricer.On("ConfirmPricing", mock.Anything, *offer).Return(&amadeus.PricedOffer{Offer: domain.FlightOffer{
		ID:    "7",
		Price: domain.OfferPrice{Currency: "USD", Total: "210.50"},
	}}, nil)
	pricer.On("SeatMapForOffer", mock.Anything, *offer).Return(&amadeus.SeatMap{Decks: []amadeus.Deck{{
		Rows: []amadeus.SeatRow{{Seats: []amadeus.Seat{
			{Number: "12A", TravelerPricing: []amadeus.SeatPricing{{Price: amadeus.SeatPrice{Total: "40.00"}}}},
		}}},
	}}}, nil)
	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	producer.On("Publish", mock.Anything, "reservations", mock.Anything, mock.Anything).Return(nil)

	res, booking, err := service.Create(context.Background(), CreateInput{
		UserID:        "user-1",
		Seats:         []string{"12A"},
		FlightNumber:  "UA1234",
		FlightOfferID: "7",
		PassengerName: "Ada Lovelace",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "user-1", res.UserID)
	assert.False(t, res.HasCompletedPayment)
	assert.Equal(t, res.ID, booking.ReservationID)
	assert.Equal(t, 250.50, booking.TotalPrice)
	assert.Equal(t, []string{"12A"}, booking.SeatNumbers)

	var details domain.ReservationDetails
	assert.NoError(t, json.Unmarshal(res.Details, &details))
	assert.Equal(t, "Ada Lovelace", details.PassengerName)
	assert.Equal(t, 250.50, details.TotalPriceInUSD)
	repo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestReservationService_Create_SeatMissingFromMap(t *testing.T) {
	repo := &MockReservationRepository{}
	offers := &MockOfferStore{}
	pricer := &MockPricer{}
	producer := &MockProducer{}
	service := newService(repo, offers, pricer, producer)

	offer := testOffer("7")
	offers.On("OfferByID", mock.Anything, "7").Return(offer, true, nil)
	pricer.On("ConfirmPricing", mock.Anything, *offer).Return(&amadeus.PricedOffer{Offer: domain.FlightOffer{
		Price: domain.OfferPrice{Total: "210.50"},
	}}, nil)
	pricer.On("SeatMapForOffer", mock.Anything, *offer).Return(&amadeus.SeatMap{}, nil)
	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	producer.On("Publish", mock.Anything, "reservations", mock.Anything, mock.Anything).Return(nil)

	_, booking, err := service.Create(context.Background(), CreateInput{
		UserID:        "user-1",
		Seats:         []string{"99Z"},
		FlightNumber:  "UA1234",
		FlightOfferID: "7",
	})

	assert.NoError(t, err)
	assert.Equal(t, 210.50, booking.TotalPrice)
}

func TestReservationService_CheckBoardingPass_PaymentIncomplete(t *testing.T) {
	repo := &MockReservationRepository{}
	service := newService(repo, &MockOfferStore{}, &MockPricer{}, &MockProducer{})

	repo.On("GetByID", mock.Anything, "res-1").Return(&domain.Reservation{
		ID:                  "res-1",
		HasCompletedPayment: false,
	}, nil)

	err := service.CheckBoardingPass(context.Background(), "res-1")

	assert.ErrorIs(t, err, ErrPaymentIncomplete)
}

func TestReservationService_PaymentLifecycle(t *testing.T) {
	repo := &MockReservationRepository{}
	service := newService(repo, &MockOfferStore{}, &MockPricer{}, &MockProducer{})

	repo.On("GetByID", mock.Anything, "res-1").Return(&domain.Reservation{
		ID: "res-1", HasCompletedPayment: false,
	}, nil).Twice()

	completed, err := service.PaymentStatus(context.Background(), "res-1")
	assert.NoError(t, err)
	assert.False(t, completed)
	assert.ErrorIs(t, service.CheckBoardingPass(context.Background(), "res-1"), ErrPaymentIncomplete)

	repo.On("MarkPaymentCompleted", mock.Anything, "res-1").Return(nil)
	assert.NoError(t, service.ConfirmPayment(context.Background(), "res-1"))

	repo.ExpectedCalls = repo.ExpectedCalls[:0]
	repo.On("GetByID", mock.Anything, "res-1").Return(&domain.Reservation{
		ID: "res-1", HasCompletedPayment: true,
	}, nil)

	completed, err = service.PaymentStatus(context.Background(), "res-1")
	assert.NoError(t, err)
	assert.True(t, completed)
	assert.NoError(t, service.CheckBoardingPass(context.Background(), "res-1"))
}

func TestReservationService_Create_PublishFailureDoesNotFail(t *testing.T) {
	repo := &MockReservationRepository{}
	offers := &MockOfferStore{}
	pricer := &MockPricer{}
	producer := &MockProducer{}
	service := newService(repo, offers, pricer, producer)

	offer := testOffer("7")
	offers.On("OfferByID", mock.Anything, "7").Return(offer, true, nil)
	pricer.On("ConfirmPricing", mock.Anything, *offer).Return(&amadeus.PricedOffer{Offer: domain.FlightOffer{
		Price: domain.OfferPrice{Total: "210.50"},
	}}, nil)
	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	producer.On("Publish", mock.Anything, "reservations", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	res, _, err := service.Create(context.Background(), CreateInput{
		UserID:        "user-1",
		FlightNumber:  "UA1234",
		FlightOfferID: "7",
	})

	assert.NoError(t, err)
	assert.NotNil(t, res)
}
