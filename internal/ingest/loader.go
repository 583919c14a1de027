package ingest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"places-insight/internal/services/analysis"

	"github.com/rs/zerolog/log"
)

// Loader reads business records from places-export JSON files.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadFromDirectory loads every .json file under dirPath.
func (l *Loader) LoadFromDirectory(dirPath string) ([]analysis.Business, error) {
	var businesses []analysis.Business

	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".json") {
			return nil
		}

		loaded, err := l.LoadFromFile(path)
		if err != nil {
			return err
		}
		businesses = append(businesses, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return businesses, nil
}

// LoadFromFile decodes one JSON array of business records. Records
// that fail validation are logged and skipped rather than aborting the
// whole file.
func (l *Loader) LoadFromFile(filePath string) ([]analysis.Business, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	var raw []json.RawMessage
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON from %s: %w", filePath, err)
	}

	businesses := make([]analysis.Business, 0, len(raw))
	skipped := 0
	for i, record := range raw {
		var business analysis.Business
		if err := json.Unmarshal(record, &business); err != nil {
			log.Warn().Err(err).Int("index", i).Str("file", filePath).Msg("Failed to parse business record")
			skipped++
			continue
		}
		if business.Name == "" {
			log.Warn().Int("index", i).Str("file", filePath).Msg("Skipping business record without a name")
			skipped++
			continue
		}
		businesses = append(businesses, business)
	}

	log.Info().
		Str("file", filePath).
		Int("loaded", len(businesses)).
		Int("skipped", skipped).
		Msg("Loaded business records")

	return businesses, nil
}

// FilterByRating keeps businesses whose rating falls inside the range.
func FilterByRating(businesses []analysis.Business, min, max float64) []analysis.Business {
	var filtered []analysis.Business
	for _, b := range businesses {
		if b.Rating >= min && b.Rating <= max {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// FilterByReviewCount keeps businesses with at least minReviews
// ratings.
func FilterByReviewCount(businesses []analysis.Business, minReviews int) []analysis.Business {
	var filtered []analysis.Business
	for _, b := range businesses {
		if b.UserRatingsTotal >= minReviews {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

func intPtr(i int) *int {
	return &i
}

// SampleBusinesses returns a small fixture fleet for demo runs and
// tests, covering clearly positive, negative and middling review
// texts.
func SampleBusinesses() []analysis.Business {
	return []analysis.Business{
		{
			Name:             "Amazing Coffee Shop",
			Address:          "123 Main St, City",
			Rating:           4.5,
			UserRatingsTotal: 150,
			PriceLevel:       intPtr(2),
			Types:            analysis.TypeList{"cafe", "restaurant"},
			Lat:              40.7128,
			Lng:              -74.0060,
			Reviews: "Great coffee and friendly staff!|||The atmosphere is cozy and perfect for working." +
				"|||Best cappuccino in town!|||Love coming here every morning.|||The wifi is fast and reliable.",
		},
		{
			Name:             "Terrible Pizza Place",
			Address:          "456 Oak Ave, City",
			Rating:           2.1,
			UserRatingsTotal: 89,
			PriceLevel:       intPtr(1),
			Types:            analysis.TypeList{"restaurant", "meal_delivery"},
			Lat:              40.7589,
			Lng:              -73.9851,
			Reviews: "Worst pizza I've ever had. Cold, soggy, and overpriced.|||Staff was rude and unhelpful." +
				"|||Never ordering from here again.|||The place looks dirty and unprofessional.",
		},
		{
			Name:             "Decent Burger Joint",
			Address:          "789 Pine St, City",
			Rating:           3.8,
			UserRatingsTotal: 245,
			PriceLevel:       intPtr(2),
			Types:            analysis.TypeList{"restaurant", "food"},
			Lat:              40.7505,
			Lng:              -73.9934,
			Reviews: "The burgers are okay, nothing special.|||Service is average. Good fries though." +
				"|||Sometimes the wait is long but the food is consistent.|||Fair prices for the quality.",
		},
	}
}
