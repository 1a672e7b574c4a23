package domain

import "encoding/json"

// FlightOffer is a priced, bookable itinerary issued by the travel-data
// provider. Raw keeps the complete provider payload because seat-map and
// pricing calls need the full offer object, not just its id.
type FlightOffer struct {
	ID                     string      `json:"id"`
	Itineraries            []Itinerary `json:"itineraries"`
	Price                  OfferPrice  `json:"price"`
	ValidatingAirlineCodes []string    `json:"validatingAirlineCodes"`

	Raw json.RawMessage `json:"-"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Departure   SegmentPoint `json:"departure"`
	Arrival     SegmentPoint `json:"arrival"`
	CarrierCode string       `json:"carrierCode"`
	Number      string       `json:"number"`
}

type SegmentPoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type OfferPrice struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

// FlightSummary is the display-ready shape handed to the language model
// after a search.
type FlightSummary struct {
	ID            string   `json:"id"`
	FlightOfferID string   `json:"flightOfferId"`
	Departure     Endpoint `json:"departure"`
	Arrival       Endpoint `json:"arrival"`
	Airlines      []string `json:"airlines"`
	FlightNumber  string   `json:"flightNumber"`
	PriceInUSD    float64  `json:"priceInUSD"`
	NumberOfStops int      `json:"numberOfStops"`
}

type Endpoint struct {
	CityName    string `json:"cityName"`
	AirportCode string `json:"airportCode"`
	AirportName string `json:"airportName,omitempty"`
	Timestamp   string `json:"timestamp"`
	Terminal    string `json:"terminal,omitempty"`
	Gate        string `json:"gate,omitempty"`
}

// SeatOption is one selectable seat flattened out of the provider's
// deck/row/seat structure.
type SeatOption struct {
	SeatNumber  string  `json:"seatNumber"`
	PriceInUSD  float64 `json:"priceInUSD"`
	IsAvailable bool    `json:"isAvailable"`
	Cabin       string  `json:"cabin"`
}

type FlightStatus struct {
	FlightNumber string   `json:"flightNumber"`
	Departure    Endpoint `json:"departure"`
	Arrival      Endpoint `json:"arrival"`
}
