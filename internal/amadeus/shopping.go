package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/voyagent/voyagent/internal/domain"
)

// ErrFullOfferRequired is returned when a caller passes an offer without its
// complete provider payload. Seat maps and pricing need the whole offer
// object; an id alone cannot be resolved here.
var ErrFullOfferRequired = errors.New("full flight offer payload required")

type SearchParams struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        string
}

// SearchFlightOffers queries the itinerary search endpoint and returns up to
// four offers, each carrying its raw provider payload.
func (c *Client) SearchFlightOffers(ctx context.Context, p SearchParams) ([]domain.FlightOffer, error) {
	q := url.Values{
		"originLocationCode":      {p.Origin},
		"destinationLocationCode": {p.Destination},
		"departureDate":           {p.DepartureDate},
		"max":                     {"4"},
	}
	if p.Adults != "" {
		q.Set("adults", p.Adults)
	} else {
		q.Set("adults", "1")
	}
	if p.ReturnDate != "" {
		q.Set("returnDate", p.ReturnDate)
	}

	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/v2/shopping/flight-offers", q, &resp); err != nil {
		return nil, err
	}

	offers := make([]domain.FlightOffer, 0, len(resp.Data))
	for _, raw := range resp.Data {
		var offer domain.FlightOffer
		if err := json.Unmarshal(raw, &offer); err != nil {
			return nil, fmt.Errorf("decode flight offer: %w", err)
		}
		offer.Raw = raw
		offers = append(offers, offer)
	}
	return offers, nil
}

// SeatMap is the provider's deck/row/seat structure for one offer.
type SeatMap struct {
	Decks []Deck `json:"decks"`
}

type Deck struct {
	Rows []SeatRow `json:"rows"`
}

type SeatRow struct {
	Number string `json:"number"`
	Seats  []Seat `json:"seats"`
}

type Seat struct {
	Number          string        `json:"number"`
	Cabin           string        `json:"cabin"`
	TravelerPricing []SeatPricing `json:"travelerPricing"`
}

type SeatPricing struct {
	SeatAvailabilityStatus string    `json:"seatAvailabilityStatus"`
	Cabin                  string    `json:"cabin"`
	Price                  SeatPrice `json:"price"`
}

type SeatPrice struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

// SeatMapForOffer fetches the seat map for an offer. The provider endpoint
// needs the full itinerary context, so the offer must carry its raw payload.
func (c *Client) SeatMapForOffer(ctx context.Context, offer domain.FlightOffer) (*SeatMap, error) {
	if len(offer.Raw) == 0 {
		return nil, ErrFullOfferRequired
	}

	body, err := json.Marshal(map[string]any{"data": []json.RawMessage{offer.Raw}})
	if err != nil {
		return nil, fmt.Errorf("encode seat map request: %w", err)
	}

	var resp struct {
		Data []SeatMap `json:"data"`
	}
	if err := c.post(ctx, "/v1/shopping/seatmaps", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return &SeatMap{}, nil
	}
	return &resp.Data[0], nil
}

// PricedOffer is the pricing confirmation result for one offer.
type PricedOffer struct {
	Offer domain.FlightOffer
}

// ConfirmPricing re-prices an offer against live availability. A bare offer
// id is rejected as a caller error rather than guessed at.
func (c *Client) ConfirmPricing(ctx context.Context, offer domain.FlightOffer) (*PricedOffer, error) {
	if len(offer.Raw) == 0 {
		return nil, ErrFullOfferRequired
	}

	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"type":         "flight-offers-pricing",
			"flightOffers": []json.RawMessage{offer.Raw},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode pricing request: %w", err)
	}

	var resp struct {
		Data struct {
			FlightOffers []json.RawMessage `json:"flightOffers"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/v1/shopping/flight-offers/pricing", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data.FlightOffers) == 0 {
		return nil, &APIError{Title: "EMPTY PRICING RESPONSE", Detail: "provider returned no priced offers", HTTPStatus: 502}
	}

	var priced domain.FlightOffer
	if err := json.Unmarshal(resp.Data.FlightOffers[0], &priced); err != nil {
		return nil, fmt.Errorf("decode priced offer: %w", err)
	}
	priced.Raw = resp.Data.FlightOffers[0]
	return &PricedOffer{Offer: priced}, nil
}
