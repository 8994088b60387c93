// Package darwin looks up live departures from the National Rail Darwin
// OpenLDBWS SOAP service.
package darwin

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"railwatch/internal/domain/journey"
	"railwatch/internal/domain/watch"
)

const (
	soapNS        = "http://schemas.xmlsoap.org/soap/envelope/"
	tokenNS       = "http://thalesgroup.com/RTTI/2013-11-28/Token/types"
	ldbNS         = "http://thalesgroup.com/RTTI/2016-02-16/ldb/"
	departureSOAP = "http://thalesgroup.com/RTTI/2012-01-13/ldb/GetDepartureBoard"

	defaultRows  = 10
	maxBodyBytes = 1 << 20
)

var (
	ErrFault       = errors.New("darwin returned a SOAP fault")
	ErrBadResponse = errors.New("unexpected darwin response")
)

type requestEnvelope struct {
	XMLName xml.Name     `xml:"soap:Envelope"`
	SoapNS  string       `xml:"xmlns:soap,attr"`
	TypNS   string       `xml:"xmlns:typ,attr"`
	LdbNS   string       `xml:"xmlns:ldb,attr"`
	Token   string       `xml:"soap:Header>typ:AccessToken>typ:TokenValue"`
	Request boardRequest `xml:"soap:Body>ldb:GetDepartureBoardRequest"`
}

type boardRequest struct {
	NumRows    int    `xml:"ldb:numRows"`
	CRS        string `xml:"ldb:crs"`
	FilterCRS  string `xml:"ldb:filterCrs"`
	FilterType string `xml:"ldb:filterType"`
}

type responseEnvelope struct {
	Body struct {
		Fault *struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
		Services []service `xml:"GetDepartureBoardResponse>GetStationBoardResult>trainServices>service"`
	} `xml:"Body"`
}

type service struct {
	STD         string `xml:"std"`
	ETD         string `xml:"etd"`
	IsCancelled bool   `xml:"isCancelled"`
}

// Client implements journey.Lookup against OpenLDBWS.
type Client struct {
	httpClient *http.Client
	url        string
	token      string
	rows       int
}

func NewClient(url, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, url: url, token: token, rows: defaultRows}
}

// Lookup returns departures from one station calling at another, in board
// order. Cancelled services are left out.
func (c *Client) Lookup(ctx context.Context, from, to watch.Station) ([]journey.Timing, error) {
	payload, err := xml.Marshal(requestEnvelope{
		SoapNS: soapNS,
		TypNS:  tokenNS,
		LdbNS:  ldbNS,
		Token:  c.token,
		Request: boardRequest{
			NumRows:    c.rows,
			CRS:        string(from),
			FilterCRS:  string(to),
			FilterType: "to",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding darwin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return nil, fmt.Errorf("building darwin request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", departureSOAP)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling darwin: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading darwin response: %w", err)
	}

	var env responseEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: status %d: %w", ErrBadResponse, resp.StatusCode, err)
	}
	if f := env.Body.Fault; f != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrFault, f.Code, f.String)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	timings := make([]journey.Timing, 0, len(env.Body.Services))
	for _, s := range env.Body.Services {
		t, ok, err := toTiming(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
		}
		if ok {
			timings = append(timings, t)
		}
	}
	return timings, nil
}

// toTiming maps a board row. etd is "On time", a clock time, "Delayed" or
// "Cancelled".
func toTiming(s service) (journey.Timing, bool, error) {
	etd := strings.TrimSpace(s.ETD)
	if s.IsCancelled || strings.EqualFold(etd, "Cancelled") {
		return journey.Timing{}, false, nil
	}

	scheduled, err := watch.ParseTimeOfDay(s.STD)
	if err != nil {
		return journey.Timing{}, false, err
	}

	var opts []journey.Option
	switch {
	case strings.EqualFold(etd, "On time"):
		opts = append(opts, journey.WithExpected(scheduled))
	case strings.Contains(etd, ":"):
		expected, err := watch.ParseTimeOfDay(etd)
		if err != nil {
			return journey.Timing{}, false, err
		}
		opts = append(opts, journey.WithExpected(expected))
	}

	t, err := journey.NewTiming(scheduled, opts...)
	if err != nil {
		return journey.Timing{}, false, err
	}
	return t, true, nil
}
