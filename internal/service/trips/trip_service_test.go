package trips

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

type MockTravelAPI struct {
	mock.Mock
}

func (m *MockTravelAPI) SearchFlightOffers(ctx context.Context, p amadeus.SearchParams) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

func (m *MockTravelAPI) SeatMapForOffer(ctx context.Context, offer domain.FlightOffer) (*amadeus.SeatMap, error) {
	args := m.Called(ctx, offer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*amadeus.SeatMap), args.Error(1)
}

func (m *MockTravelAPI) FlightStatus(ctx context.Context, carrierCode, flightNumber, date string) (*domain.FlightStatus, error) {
	args := m.Called(ctx, carrierCode, flightNumber, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightStatus), args.Error(1)
}

func (m *MockTravelAPI) SearchAirports(ctx context.Context, keyword string) ([]amadeus.Airport, error) {
	args := m.Called(ctx, keyword)
	return args.Get(0).([]amadeus.Airport), args.Error(1)
}

func (m *MockTravelAPI) AirportDetails(ctx context.Context, iataCode string) (*amadeus.Airport, error) {
	args := m.Called(ctx, iataCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*amadeus.Airport), args.Error(1)
}

func (m *MockTravelAPI) AirlineDetails(ctx context.Context, airlineCode string) (*amadeus.Airline, error) {
	args := m.Called(ctx, airlineCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*amadeus.Airline), args.Error(1)
}

func (m *MockTravelAPI) PriceMetrics(ctx context.Context, origin, destination, departureDate string) (json.RawMessage, error) {
	args := m.Called(ctx, origin, destination, departureDate)
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockTravelAPI) FlightInspirations(ctx context.Context, origin string, maxPrice int) (json.RawMessage, error) {
	args := m.Called(ctx, origin, maxPrice)
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockTravelAPI) CheapestDates(ctx context.Context, origin, destination string) (json.RawMessage, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(json.RawMessage), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Lookup(ctx context.Context, endpoint string, params map[string]string) ([]byte, bool, error) {
	args := m.Called(ctx, endpoint, params)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCache) Store(ctx context.Context, endpoint string, params map[string]string, payload []byte) error {
	args := m.Called(ctx, endpoint, params, payload)
	return args.Error(0)
}

func (m *MockCache) OfferByID(ctx context.Context, offerID string) (*domain.FlightOffer, bool, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.FlightOffer), args.Bool(1), args.Error(2)
}

func (m *MockCache) StoreOffers(ctx context.Context, offers []domain.FlightOffer) error {
	args := m.Called(ctx, offers)
	return args.Error(0)
}

func sampleOffer(id, total string) domain.FlightOffer {
	return domain.FlightOffer{
		ID: id,
		Itineraries: []domain.Itinerary{{
			Segments: []domain.Segment{
				{
					Departure:   domain.SegmentPoint{IataCode: "LAX", At: "2026-09-10T08:00:00"},
					Arrival:     domain.SegmentPoint{IataCode: "DEN", At: "2026-09-10T11:30:00"},
					CarrierCode: "UA",
					Number:      "1234",
				},
				{
					Departure:   domain.SegmentPoint{IataCode: "DEN", At: "2026-09-10T13:00:00"},
					Arrival:     domain.SegmentPoint{IataCode: "JFK", At: "2026-09-10T18:45:00"},
					CarrierCode: "UA",
					Number:      "5678",
				},
			},
		}},
		Price:                  domain.OfferPrice{Currency: "USD", Total: total},
		ValidatingAirlineCodes: []string{"UA", "LH"},
	}
}

func TestTripService_SearchFlights_Success(t *testing.T) {
	mockAPI := &MockTravelAPI{}
	mockCache := &MockCache{}
	service := NewTripService(mockAPI, mockCache, zap.NewNop())

	input := SearchInput{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-09-10"}
	offers := []domain.FlightOffer{sampleOffer("7", "345.60")}

	mockCache.On("Lookup", mock.Anything, "flight-offers", input.cacheParams()).Return(nil, false, nil)
	mockAPI.On("SearchFlightOffers", mock.Anything, mock.Anything).Return(offers, nil)
	mockCache.On("StoreOffers", mock.Anything, offers).Return(nil)
	mockCache.On("Store", mock.Anything, "flight-offers", input.cacheParams(), mock.Anything).Return(nil)

	summaries, err := service.SearchFlights(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "7", summaries[0].FlightOfferID)
	assert.Equal(t, "LAX", summaries[0].Departure.AirportCode)
	assert.Equal(t, "JFK", summaries[0].Arrival.AirportCode)
	assert.Equal(t, "UA1234", summaries[0].FlightNumber)
	assert.Equal(t, 345.60, summaries[0].PriceInUSD)
	assert.Equal(t, 1, summaries[0].NumberOfStops)
	assert.Equal(t, []string{"UA"}, summaries[0].Airlines)
	mockAPI.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestTripService_SearchFlights_CacheHit(t *testing.T) {
	mockAPI := &MockTravelAPI{}
	mockCache := &MockCache{}
	service := NewTripService(mockAPI, mockCache, zap.NewNop())

	input := SearchInput{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-09-10"}
	cached, _ := json.Marshal([]domain.FlightSummary{{ID: "7", FlightOfferID: "7", PriceInUSD: 345.60}})
	mockCache.On("Lookup", mock.Anything, "flight-offers", input.cacheParams()).Return(cached, true, nil)

	summaries, err := service.SearchFlights(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "7", summaries[0].ID)
	mockAPI.AssertNotCalled(t, "SearchFlightOffers", mock.Anything, mock.Anything)
}

func TestTripService_SearchFlights_Empty(t *testing.T) {
	mockAPI := &MockTravelAPI{}
	mockCache := &MockCache{}
	service := NewTripService(mockAPI, mockCache, zap.NewNop())

	input := SearchInput{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-09-10"}
	mockCache.On("Lookup", mock.Anything, "flight-offers", input.cacheParams()).Return(nil, false, nil)
	mockAPI.On("SearchFlightOffers", mock.Anything, mock.Anything).Return([]domain.FlightOffer{}, nil)

	summaries, err := service.SearchFlights(context.Background(), input)

	assert.NoError(t, err)
	assert.Empty(t, summaries)
	mockCache.AssertNotCalled(t, "StoreOffers", mock.Anything, mock.Anything)
}

func TestTripService_SearchFlights_SkipsMalformedOffer(t *testing.T) {
	mockAPI := &MockTravelAPI{}
	mockCache := &MockCache{}
	service := NewTripService(mockAPI, mockCache, zap.NewNop())

	input := SearchInput{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-09-10"}
	offers := []domain.FlightOffer{
		sampleOffer("7", "345.60"),
		{ID: "8", Price: domain.OfferPrice{Total: "not-a-number"}},
	}
	mockCache.On("Lookup", mock.Anything, "flight-offers", input.cacheParams()).Return(nil, false, nil)
	mockAPI.On("SearchFlightOffers", mock.Anything, mock.Anything).Return(offers, nil)
	mockCache.On("StoreOffers", mock.Anything, offers).Return(nil)
	mockCache.On("Store", mock.Anything, "flight-offers", input.cacheParams(), mock.Anything).Return(nil)

	summaries, err := service.SearchFlights(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "7", summaries[0].ID)
}

func TestTripService_SeatMap_OfferExpired(t *testing.T) {
	mockAPI := &MockTravelAPI{}
	mockCache := &MockCache{}
	service := NewTripService(mockAPI, mockCache, zap.NewNop())

	mockCache.On("OfferByID", mock.Anything, "42").Return(nil, false, nil)

	_, err := service.SeatMap(context.Background(), "42")

	assert.ErrorIs(t, err, ErrOfferNotFound)
	mockAPI.AssertNotCalled(t, "SeatMapForOffer", mock.Anything, mock.Anything)
}

func TestTripService_SeatMap_Success(t *testing.T) {
	mockAPI := &MockTravelAPI{}
	mockCache := &MockCache{}
	service := NewTripService(mockAPI, mockCache, zap.NewNop())

	offer := sampleOffer("42", "100.00")
	seatMap := &amadeus.SeatMap{Decks: []amadeus.Deck{{
		Rows: []amadeus.SeatRow{{
			Seats: []amadeus.Seat{
				{
					Number: "12A",
					TravelerPricing: []amadeus.SeatPricing{{
						SeatAvailabilityStatus: "AVAILABLE",
						Cabin:                  "BUSINESS",
						Price:                  amadeus.SeatPrice{Total: "55.00"},
					}},
				},
				{
					Number: "12B",
					TravelerPricing: []amadeus.SeatPricing{{
						SeatAvailabilityStatus: "OCCUPIED",
						Price:                  amadeus.SeatPrice{Total: "30.00"},
					}},
				},
			},
		}},
	}}}

	mockCache.On("OfferByID", mock.Anything, "42").Return(&offer, true, nil)
	mockAPI.On("SeatMapForOffer", mock.Anything, offer).Return(seatMap, nil)

	options, err := service.SeatMap(context.Background(), "42")

	assert.NoError(t, err)
	assert.Len(t, options, 2)
	assert.Equal(t, "12A", options[0].SeatNumber)
	assert.True(t, options[0].IsAvailable)
	assert.Equal(t, "BUSINESS", options[0].Cabin)
	assert.Equal(t, 55.00, options[0].PriceInUSD)
	assert.False(t, options[1].IsAvailable)
	assert.Equal(t, "ECONOMY", options[1].Cabin)
}

func TestFlattenSeatMap_Nil(t *testing.T) {
	assert.Empty(t, FlattenSeatMap(nil))
}

func TestTripService_SearchFlights_APIError(t *testing.T) {
	mockAPI := &MockTravelAPI{}
	mockCache := &MockCache{}
	service := NewTripService(mockAPI, mockCache, zap.NewNop())

	input := SearchInput{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-09-10"}
	wantErr := errors.New("provider unavailable")
	mockCache.On("Lookup", mock.Anything, "flight-offers", input.cacheParams()).Return(nil, false, nil)
	mockAPI.On("SearchFlightOffers", mock.Anything, mock.Anything).Return([]domain.FlightOffer{}, wantErr)

	_, err := service.SearchFlights(context.Background(), input)

	assert.ErrorIs(t, err, wantErr)
}
