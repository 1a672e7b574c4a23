package amadeus

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/voyagent/voyagent/internal/domain"
)

type Airport struct {
	IataCode    string `json:"iataCode"`
	Name        string `json:"name"`
	CityName    string `json:"cityName"`
	CountryName string `json:"countryName,omitempty"`
}

type locationData struct {
	IataCode string `json:"iataCode"`
	Name     string `json:"name"`
	Address  struct {
		CityName    string `json:"cityName"`
		CountryName string `json:"countryName"`
	} `json:"address"`
}

// SearchAirports looks up airports by free-text keyword.
func (c *Client) SearchAirports(ctx context.Context, keyword string) ([]Airport, error) {
	q := url.Values{"keyword": {keyword}, "subType": {"AIRPORT"}}

	var resp struct {
		Data []locationData `json:"data"`
	}
	if err := c.get(ctx, "/v1/reference-data/locations", q, &resp); err != nil {
		return nil, err
	}

	airports := make([]Airport, 0, len(resp.Data))
	for _, d := range resp.Data {
		airports = append(airports, Airport{
			IataCode:    d.IataCode,
			Name:        d.Name,
			CityName:    d.Address.CityName,
			CountryName: d.Address.CountryName,
		})
	}
	return airports, nil
}

// AirportDetails returns the first airport matching an IATA code.
func (c *Client) AirportDetails(ctx context.Context, iataCode string) (*Airport, error) {
	airports, err := c.SearchAirports(ctx, iataCode)
	if err != nil {
		return nil, err
	}
	if len(airports) == 0 {
		return nil, nil
	}
	return &airports[0], nil
}

type Airline struct {
	IataCode     string `json:"iataCode"`
	ICAOCode     string `json:"icaoCode,omitempty"`
	BusinessName string `json:"businessName"`
	CommonName   string `json:"commonName,omitempty"`
}

func (c *Client) AirlineDetails(ctx context.Context, airlineCode string) (*Airline, error) {
	q := url.Values{"airlineCodes": {airlineCode}}

	var resp struct {
		Data []Airline `json:"data"`
	}
	if err := c.get(ctx, "/v1/reference-data/airlines", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

// PriceMetrics returns the provider's itinerary price analysis unchanged;
// the payload shape belongs to the provider, not this service.
func (c *Client) PriceMetrics(ctx context.Context, origin, destination, departureDate string) (json.RawMessage, error) {
	q := url.Values{
		"originIataCode":      {origin},
		"destinationIataCode": {destination},
		"departureDate":       {departureDate},
	}

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/v1/analytics/itinerary-price-metrics", q, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// FlightInspirations suggests destinations reachable from an origin.
func (c *Client) FlightInspirations(ctx context.Context, origin string, maxPrice int) (json.RawMessage, error) {
	q := url.Values{"origin": {origin}}
	if maxPrice > 0 {
		q.Set("maxPrice", strconv.Itoa(maxPrice))
	}

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/v1/shopping/flight-destinations", q, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CheapestDates returns the cheapest travel dates between two locations.
func (c *Client) CheapestDates(ctx context.Context, origin, destination string) (json.RawMessage, error) {
	q := url.Values{"origin": {origin}, "destination": {destination}}

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "/v1/shopping/flight-dates", q, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type scheduleFlight struct {
	FlightDesignator struct {
		CarrierCode  string `json:"carrierCode"`
		FlightNumber int    `json:"flightNumber"`
	} `json:"flightDesignator"`
	FlightPoints []struct {
		IataCode  string        `json:"iataCode"`
		Departure *flightTiming `json:"departure"`
		Arrival   *flightTiming `json:"arrival"`
	} `json:"flightPoints"`
}

type flightTiming struct {
	Timings []struct {
		Qualifier string `json:"qualifier"`
		Value     string `json:"value"`
	} `json:"timings"`
}

func (t *flightTiming) first() string {
	if t == nil || len(t.Timings) == 0 {
		return ""
	}
	return t.Timings[0].Value
}

// FlightStatus fetches the schedule for a dated flight and maps the first
// and last flight points into departure/arrival summaries.
func (c *Client) FlightStatus(ctx context.Context, carrierCode, flightNumber, date string) (*domain.FlightStatus, error) {
	q := url.Values{
		"carrierCode":            {carrierCode},
		"flightNumber":           {flightNumber},
		"scheduledDepartureDate": {date},
	}

	var resp struct {
		Data []scheduleFlight `json:"data"`
	}
	if err := c.get(ctx, "/v2/schedule/flights", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}

	f := resp.Data[0]
	status := &domain.FlightStatus{FlightNumber: carrierCode + flightNumber}
	if len(f.FlightPoints) > 0 {
		dep := f.FlightPoints[0]
		status.Departure = domain.Endpoint{
			CityName:    dep.IataCode,
			AirportCode: dep.IataCode,
			AirportName: dep.IataCode + " Airport",
			Timestamp:   dep.Departure.first(),
		}
		arr := f.FlightPoints[len(f.FlightPoints)-1]
		status.Arrival = domain.Endpoint{
			CityName:    arr.IataCode,
			AirportCode: arr.IataCode,
			AirportName: arr.IataCode + " Airport",
			Timestamp:   arr.Arrival.first(),
		}
	}
	return status, nil
}
