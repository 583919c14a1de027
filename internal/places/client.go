package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"places-insight/internal/services/analysis"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	// Google caps nearby search at 60 results across 3 pages, and a
	// next_page_token only becomes valid a moment after it is issued.
	maxPages       = 3
	pageTokenDelay = 2 * time.Second
)

// Client talks to the Google Places API: nearby search plus a details
// request per place to collect reviews.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	pageDelay  time.Duration
}

type Option func(*Client)

// WithBaseURL points the client at a different endpoint, used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithPageDelay overrides the pagination delay, used by tests.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) { c.pageDelay = d }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		pageDelay:  pageTokenDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
	NextPageToken string        `json:"next_page_token"`
	Results       []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           float64  `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		PriceLevel       *int     `json:"price_level"`
		Types            []string `json:"types"`
		Reviews          []struct {
			Text string `json:"text"`
		} `json:"reviews"`
	} `json:"result"`
}

// SearchNearby finds places around a coordinate matching the keyword
// and resolves each into a full business record with its reviews
// joined by the pipeline's review delimiter.
func (c *Client) SearchNearby(ctx context.Context, lat, lng float64, keyword string, radius int) ([]analysis.Business, error) {
	log.Info().
		Float64("lat", lat).
		Float64("lng", lng).
		Str("keyword", keyword).
		Int("radius", radius).
		Msg("Starting places search")

	var results []placeResult
	pageToken := ""

	for page := 0; page < maxPages; page++ {
		if pageToken != "" {
			// Token needs a beat before it becomes valid.
			time.Sleep(c.pageDelay)
		}

		resp, err := c.searchPage(ctx, lat, lng, keyword, radius, pageToken)
		if err != nil {
			return nil, err
		}
		results = append(results, resp.Results...)

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	businesses := make([]analysis.Business, 0, len(results))
	for _, result := range results {
		business, err := c.fetchBusiness(ctx, result)
		if err != nil {
			log.Warn().Err(err).Str("place", result.Name).Msg("Failed to fetch place details, keeping basic record")
			businesses = append(businesses, analysis.Business{
				Name:    result.Name,
				Address: result.Vicinity,
				Lat:     result.Geometry.Location.Lat,
				Lng:     result.Geometry.Location.Lng,
			})
			continue
		}
		businesses = append(businesses, business)
	}

	log.Info().Int("places", len(businesses)).Msg("Places search completed")
	return businesses, nil
}

func (c *Client) searchPage(ctx context.Context, lat, lng float64, keyword string, radius int, pageToken string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%v,%v", lat, lng))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("keyword", keyword)
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/nearbysearch/json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		if resp.ErrorMessage != "" {
			return nil, fmt.Errorf("places api error: %s", resp.ErrorMessage)
		}
		return nil, fmt.Errorf("places api returned status %s", resp.Status)
	}

	return &resp, nil
}

func (c *Client) fetchBusiness(ctx context.Context, result placeResult) (analysis.Business, error) {
	params := url.Values{}
	params.Set("place_id", result.PlaceID)
	params.Set("fields", "name,formatted_address,rating,user_ratings_total,price_level,types,reviews")
	params.Set("key", c.apiKey)

	var resp detailsResponse
	if err := c.getJSON(ctx, c.baseURL+"/details/json?"+params.Encode(), &resp); err != nil {
		return analysis.Business{}, err
	}

	if resp.Status != "OK" {
		if resp.ErrorMessage != "" {
			return analysis.Business{}, fmt.Errorf("place details error: %s", resp.ErrorMessage)
		}
		return analysis.Business{}, fmt.Errorf("place details returned status %s", resp.Status)
	}

	reviews := make([]string, 0, len(resp.Result.Reviews))
	for _, review := range resp.Result.Reviews {
		if text := strings.TrimSpace(review.Text); text != "" {
			reviews = append(reviews, text)
		}
	}

	name := resp.Result.Name
	if name == "" {
		name = result.Name
	}
	address := resp.Result.FormattedAddress
	if address == "" {
		address = result.Vicinity
	}

	return analysis.Business{
		Name:             name,
		Address:          address,
		Rating:           resp.Result.Rating,
		UserRatingsTotal: resp.Result.UserRatingsTotal,
		PriceLevel:       resp.Result.PriceLevel,
		Types:            resp.Result.Types,
		Lat:              result.Geometry.Location.Lat,
		Lng:              result.Geometry.Location.Lng,
		Reviews:          strings.Join(reviews, analysis.ReviewDelimiter),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("places api error (status %d): %s", res.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response failed: %w", err)
	}
	return nil
}
