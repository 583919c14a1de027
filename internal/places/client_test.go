package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func placesHandler(t *testing.T, detailsFail bool) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/nearbysearch/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			t.Errorf("search request missing key")
		}

		var body map[string]interface{}
		if r.URL.Query().Get("pagetoken") == "" {
			body = map[string]interface{}{
				"status":          "OK",
				"next_page_token": "page2",
				"results": []map[string]interface{}{
					{
						"place_id": "p1",
						"name":     "First Cafe",
						"vicinity": "1 Main St",
						"geometry": map[string]interface{}{
							"location": map[string]float64{"lat": 40.1, "lng": -74.1},
						},
					},
				},
			}
		} else {
			body = map[string]interface{}{
				"status": "OK",
				"results": []map[string]interface{}{
					{
						"place_id": "p2",
						"name":     "Second Cafe",
						"vicinity": "2 Main St",
						"geometry": map[string]interface{}{
							"location": map[string]float64{"lat": 40.2, "lng": -74.2},
						},
					},
				},
			}
		}
		json.NewEncoder(w).Encode(body)
	})

	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {
		// The legacy API rejects unknown field names outright, so the
		// mask has to use the exact documented spellings.
		wantFields := "name,formatted_address,rating,user_ratings_total,price_level,types,reviews"
		if fields := r.URL.Query().Get("fields"); fields != wantFields {
			t.Errorf("details fields = %q, want %q", fields, wantFields)
		}
		if r.URL.Query().Get("place_id") == "" {
			t.Errorf("details request missing place_id")
		}

		if detailsFail {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":        "REQUEST_DENIED",
				"error_message": "bad key",
			})
			return
		}

		placeID := r.URL.Query().Get("place_id")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"result": map[string]interface{}{
				"name":               placeID + " detailed",
				"formatted_address":  "Full address",
				"rating":             4.2,
				"user_ratings_total": 55,
				"price_level":        2,
				"types":              []string{"cafe"},
				"reviews": []map[string]string{
					{"text": "Lovely spot"},
					{"text": "  "},
					{"text": "Would return"},
				},
			},
		})
	})

	return mux
}

func TestSearchNearby(t *testing.T) {
	server := httptest.NewServer(placesHandler(t, false))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithPageDelay(0))
	businesses, err := client.SearchNearby(context.Background(), 40.0, -74.0, "cafe", 1500)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}

	if len(businesses) != 2 {
		t.Fatalf("got %d businesses, want 2 (both pages)", len(businesses))
	}

	first := businesses[0]
	if first.Name != "p1 detailed" {
		t.Fatalf("name = %q", first.Name)
	}
	if first.Address != "Full address" || first.Rating != 4.2 || first.UserRatingsTotal != 55 {
		t.Fatalf("details not applied: %+v", first)
	}
	if first.Lat != 40.1 || first.Lng != -74.1 {
		t.Fatalf("coordinates = %v, %v", first.Lat, first.Lng)
	}

	// Blank review texts are dropped before joining.
	reviews := strings.Split(first.Reviews, "|||")
	if len(reviews) != 2 || reviews[0] != "Lovely spot" || reviews[1] != "Would return" {
		t.Fatalf("reviews = %q", first.Reviews)
	}
}

func TestSearchNearby_DetailsFailureKeepsBasicRecord(t *testing.T) {
	server := httptest.NewServer(placesHandler(t, true))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithPageDelay(0))
	businesses, err := client.SearchNearby(context.Background(), 40.0, -74.0, "cafe", 1500)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}

	if len(businesses) != 2 {
		t.Fatalf("got %d businesses, want 2", len(businesses))
	}
	first := businesses[0]
	if first.Name != "First Cafe" || first.Address != "1 Main St" {
		t.Fatalf("basic record = %+v", first)
	}
	if first.Reviews != "" {
		t.Fatalf("degraded record should carry no reviews")
	}
}

func TestSearchNearby_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "OVER_QUERY_LIMIT",
			"error_message": "quota exceeded",
		})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithPageDelay(0))
	_, err := client.SearchNearby(context.Background(), 40.0, -74.0, "cafe", 1500)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v", err)
	}
}

func TestSearchNearby_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ZERO_RESULTS"})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithPageDelay(0))
	businesses, err := client.SearchNearby(context.Background(), 40.0, -74.0, "cafe", 1500)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if len(businesses) != 0 {
		t.Fatalf("got %d businesses, want 0", len(businesses))
	}
}
