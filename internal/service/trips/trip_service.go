package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/voyagent/voyagent/internal/amadeus"
	"github.com/voyagent/voyagent/internal/domain"
	"go.uber.org/zap"
)

// ErrOfferNotFound means a flight offer id could not be resolved to a full
// cached payload, usually because the search result expired.
var ErrOfferNotFound = errors.New("flight offer not found or expired")

type TripUseCase interface {
	SearchFlights(ctx context.Context, input SearchInput) ([]domain.FlightSummary, error)
	SeatMap(ctx context.Context, flightOfferID string) ([]domain.SeatOption, error)
	FlightStatus(ctx context.Context, carrierCode, flightNumber, date string) (*domain.FlightStatus, error)
	SearchAirports(ctx context.Context, keyword string) ([]amadeus.Airport, error)
	AirportDetails(ctx context.Context, iataCode string) (*amadeus.Airport, error)
	AirlineDetails(ctx context.Context, airlineCode string) (*amadeus.Airline, error)
	PriceMetrics(ctx context.Context, origin, destination, date string) (json.RawMessage, error)
	FlightInspirations(ctx context.Context, origin string, maxPrice int) (json.RawMessage, error)
	CheapestDates(ctx context.Context, origin, destination string) (json.RawMessage, error)
}

// TravelAPI is the slice of the provider client this service needs.
type TravelAPI interface {
	SearchFlightOffers(ctx context.Context, p amadeus.SearchParams) ([]domain.FlightOffer, error)
	SeatMapForOffer(ctx context.Context, offer domain.FlightOffer) (*amadeus.SeatMap, error)
	FlightStatus(ctx context.Context, carrierCode, flightNumber, date string) (*domain.FlightStatus, error)
	SearchAirports(ctx context.Context, keyword string) ([]amadeus.Airport, error)
	AirportDetails(ctx context.Context, iataCode string) (*amadeus.Airport, error)
	AirlineDetails(ctx context.Context, airlineCode string) (*amadeus.Airline, error)
	PriceMetrics(ctx context.Context, origin, destination, departureDate string) (json.RawMessage, error)
	FlightInspirations(ctx context.Context, origin string, maxPrice int) (json.RawMessage, error)
	CheapestDates(ctx context.Context, origin, destination string) (json.RawMessage, error)
}

type Cache interface {
	Lookup(ctx context.Context, endpoint string, params map[string]string) ([]byte, bool, error)
	Store(ctx context.Context, endpoint string, params map[string]string, payload []byte) error
	OfferByID(ctx context.Context, offerID string) (*domain.FlightOffer, bool, error)
	StoreOffers(ctx context.Context, offers []domain.FlightOffer) error
}

type TripService struct {
	api   TravelAPI
	cache Cache
	log   *zap.Logger
}

func NewTripService(api TravelAPI, cache Cache, log *zap.Logger) *TripService {
	return &TripService{api: api, cache: cache, log: log}
}

type SearchInput struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
	Adults        string `json:"adults,omitempty"`
}

func (i SearchInput) cacheParams() map[string]string {
	return map[string]string{
		"origin":        i.Origin,
		"destination":   i.Destination,
		"departureDate": i.DepartureDate,
		"returnDate":    i.ReturnDate,
		"adults":        i.Adults,
	}
}

// SearchFlights returns display-ready summaries for matching offers. The
// summaries are memoized per search parameters, and the raw offers land in
// the offer store so later seat-map and pricing calls can resolve them.
func (s *TripService) SearchFlights(ctx context.Context, input SearchInput) ([]domain.FlightSummary, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Lookup(ctx, "flight-offers", input.cacheParams()); err == nil && ok {
			var summaries []domain.FlightSummary
			if err := json.Unmarshal(data, &summaries); err == nil {
				return summaries, nil
			}
		}
	}

	offers, err := s.api.SearchFlightOffers(ctx, amadeus.SearchParams{
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: input.DepartureDate,
		ReturnDate:    input.ReturnDate,
		Adults:        input.Adults,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.FlightSummary, 0, len(offers))
	for _, offer := range offers {
		summary, err := summarize(offer)
		if err != nil {
			s.log.Warn("skipping malformed offer", zap.String("offer_id", offer.ID), zap.Error(err))
			continue
		}
		summaries = append(summaries, summary)
	}

	if s.cache != nil && len(offers) > 0 {
		if err := s.cache.StoreOffers(ctx, offers); err != nil {
			s.log.Warn("store offers failed", zap.Error(err))
		}
		if data, err := json.Marshal(summaries); err == nil {
			if err := s.cache.Store(ctx, "flight-offers", input.cacheParams(), data); err != nil {
				s.log.Warn("memoize search failed", zap.Error(err))
			}
		}
	}

	return summaries, nil
}

func summarize(offer domain.FlightOffer) (domain.FlightSummary, error) {
	if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
		return domain.FlightSummary{}, errors.New("offer has no segments")
	}
	segments := offer.Itineraries[0].Segments
	first := segments[0]
	last := segments[len(segments)-1]

	price, err := strconv.ParseFloat(offer.Price.Total, 64)
	if err != nil {
		return domain.FlightSummary{}, fmt.Errorf("parse offer price %q: %w", offer.Price.Total, err)
	}

	airlines := offer.ValidatingAirlineCodes
	if len(airlines) > 1 {
		airlines = airlines[:1]
	}

	return domain.FlightSummary{
		ID:            offer.ID,
		FlightOfferID: offer.ID,
		Departure: domain.Endpoint{
			CityName:    first.Departure.IataCode,
			AirportCode: first.Departure.IataCode,
			Timestamp:   first.Departure.At,
		},
		Arrival: domain.Endpoint{
			CityName:    last.Arrival.IataCode,
			AirportCode: last.Arrival.IataCode,
			Timestamp:   last.Arrival.At,
		},
		Airlines:      airlines,
		FlightNumber:  first.CarrierCode + first.Number,
		PriceInUSD:    price,
		NumberOfStops: len(segments) - 1,
	}, nil
}

// SeatMap resolves the full offer from the offer store and flattens the
// provider's deck/row/seat structure into selectable seat options.
func (s *TripService) SeatMap(ctx context.Context, flightOfferID string) ([]domain.SeatOption, error) {
	if s.cache == nil {
		return nil, ErrOfferNotFound
	}
	offer, ok, err := s.cache.OfferByID(ctx, flightOfferID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOfferNotFound
	}

	seatMap, err := s.api.SeatMapForOffer(ctx, *offer)
	if err != nil {
		return nil, err
	}

	return FlattenSeatMap(seatMap), nil
}

// FlattenSeatMap walks decks, rows and seats in provider order.
func FlattenSeatMap(seatMap *amadeus.SeatMap) []domain.SeatOption {
	options := make([]domain.SeatOption, 0)
	if seatMap == nil {
		return options
	}
	for _, deck := range seatMap.Decks {
		for _, row := range deck.Rows {
			for _, seat := range row.Seats {
				option := domain.SeatOption{
					SeatNumber: seat.Number,
					Cabin:      seat.Cabin,
				}
				if option.Cabin == "" {
					option.Cabin = "ECONOMY"
				}
				if len(seat.TravelerPricing) > 0 {
					p := seat.TravelerPricing[0]
					option.IsAvailable = p.SeatAvailabilityStatus == "AVAILABLE"
					if p.Cabin != "" {
						option.Cabin = p.Cabin
					}
					if price, err := strconv.ParseFloat(p.Price.Total, 64); err == nil {
						option.PriceInUSD = price
					}
				}
				options = append(options, option)
			}
		}
	}
	return options
}

func (s *TripService) FlightStatus(ctx context.Context, carrierCode, flightNumber, date string) (*domain.FlightStatus, error) {
	params := map[string]string{"carrierCode": carrierCode, "flightNumber": flightNumber, "date": date}
	if s.cache != nil {
		if data, ok, err := s.cache.Lookup(ctx, "schedule-flights", params); err == nil && ok {
			var status domain.FlightStatus
			if err := json.Unmarshal(data, &status); err == nil {
				return &status, nil
			}
		}
	}

	status, err := s.api.FlightStatus(ctx, carrierCode, flightNumber, date)
	if err != nil {
		return nil, err
	}
	if status != nil && s.cache != nil {
		if data, err := json.Marshal(status); err == nil {
			_ = s.cache.Store(ctx, "schedule-flights", params, data)
		}
	}
	return status, nil
}

func (s *TripService) SearchAirports(ctx context.Context, keyword string) ([]amadeus.Airport, error) {
	params := map[string]string{"keyword": keyword}
	if s.cache != nil {
		if data, ok, err := s.cache.Lookup(ctx, "airports", params); err == nil && ok {
			var airports []amadeus.Airport
			if err := json.Unmarshal(data, &airports); err == nil {
				return airports, nil
			}
		}
	}

	airports, err := s.api.SearchAirports(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if data, err := json.Marshal(airports); err == nil {
			_ = s.cache.Store(ctx, "airports", params, data)
		}
	}
	return airports, nil
}

func (s *TripService) AirportDetails(ctx context.Context, iataCode string) (*amadeus.Airport, error) {
	return s.api.AirportDetails(ctx, iataCode)
}

func (s *TripService) AirlineDetails(ctx context.Context, airlineCode string) (*amadeus.Airline, error) {
	params := map[string]string{"airlineCode": airlineCode}
	if s.cache != nil {
		if data, ok, err := s.cache.Lookup(ctx, "airlines", params); err == nil && ok {
			var airline amadeus.Airline
			if err := json.Unmarshal(data, &airline); err == nil {
				return &airline, nil
			}
		}
	}

	airline, err := s.api.AirlineDetails(ctx, airlineCode)
	if err != nil {
		return nil, err
	}
	if airline != nil && s.cache != nil {
		if data, err := json.Marshal(airline); err == nil {
			_ = s.cache.Store(ctx, "airlines", params, data)
		}
	}
	return airline, nil
}

func (s *TripService) PriceMetrics(ctx context.Context, origin, destination, date string) (json.RawMessage, error) {
	params := map[string]string{"origin": origin, "destination": destination, "date": date}
	if s.cache != nil {
		if data, ok, err := s.cache.Lookup(ctx, "price-metrics", params); err == nil && ok {
			return data, nil
		}
	}

	metrics, err := s.api.PriceMetrics(ctx, origin, destination, date)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Store(ctx, "price-metrics", params, metrics)
	}
	return metrics, nil
}

func (s *TripService) FlightInspirations(ctx context.Context, origin string, maxPrice int) (json.RawMessage, error) {
	params := map[string]string{"origin": origin, "maxPrice": strconv.Itoa(maxPrice)}
	if s.cache != nil {
		if data, ok, err := s.cache.Lookup(ctx, "flight-destinations", params); err == nil && ok {
			return data, nil
		}
	}

	result, err := s.api.FlightInspirations(ctx, origin, maxPrice)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Store(ctx, "flight-destinations", params, result)
	}
	return result, nil
}

func (s *TripService) CheapestDates(ctx context.Context, origin, destination string) (json.RawMessage, error) {
	params := map[string]string{"origin": origin, "destination": destination}
	if s.cache != nil {
		if data, ok, err := s.cache.Lookup(ctx, "flight-dates", params); err == nil && ok {
			return data, nil
		}
	}

	result, err := s.api.CheapestDates(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Store(ctx, "flight-dates", params, result)
	}
	return result, nil
}

var _ TripUseCase = (*TripService)(nil)
