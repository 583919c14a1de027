package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"places-insight/internal/services/analysis"
	"places-insight/internal/services/sentiment"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Writer renders one pipeline run into report files under a directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Output names the files one WriteAll call produced.
type Output struct {
	SummaryPath  string
	DetailedPath string
	CSVPath      string
	TextPath     string
}

// summaryEntry is the per-business record of the compact JSON report.
type summaryEntry struct {
	Name            string   `json:"name"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// detailedReport is the full JSON report: every analysis plus the
// fleet aggregates.
type detailedReport struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Businesses  []analysis.Analysis   `json:"businesses"`
	Fleet       sentiment.FleetReport `json:"fleet_report"`
	Trends      sentiment.Trends      `json:"sentiment_trends"`
	Patterns    map[string][]string   `json:"sentiment_patterns"`
	Insights    []string              `json:"insights"`
}

// WriteAll writes the four report files. The renders are independent,
// so they run concurrently; the first failure aborts the rest.
func (w *Writer) WriteAll(analyses []analysis.Analysis) (Output, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Output{}, fmt.Errorf("failed to create report directory: %w", err)
	}

	views := analysis.FleetView(analyses)
	fleet := sentiment.AggregateFleet(views)
	trends := sentiment.CalculateTrends(views)
	patterns := sentiment.IdentifyPatterns(views)
	insights := sentiment.GenerateInsights(views)

	out := Output{
		SummaryPath:  filepath.Join(w.dir, "analysis_summary.json"),
		DetailedPath: filepath.Join(w.dir, "analysis_detailed.json"),
		CSVPath:      filepath.Join(w.dir, "sentiment_summary.csv"),
		TextPath:     filepath.Join(w.dir, "sentiment_report.txt"),
	}

	var g errgroup.Group
	g.Go(func() error {
		return w.writeSummaryJSON(out.SummaryPath, analyses)
	})
	g.Go(func() error {
		return w.writeDetailedJSON(out.DetailedPath, detailedReport{
			GeneratedAt: time.Now().UTC(),
			Businesses:  analyses,
			Fleet:       fleet,
			Trends:      trends,
			Patterns:    patterns,
			Insights:    insights,
		})
	})
	g.Go(func() error {
		return w.writeCSV(out.CSVPath, analyses)
	})
	g.Go(func() error {
		text := RenderText(analyses, fleet, trends, patterns, insights)
		return writeFile(out.TextPath, []byte(text))
	})

	if err := g.Wait(); err != nil {
		return Output{}, err
	}

	log.Info().
		Str("dir", w.dir).
		Int("businesses", len(analyses)).
		Msg("Reports written")
	return out, nil
}

func (w *Writer) writeSummaryJSON(path string, analyses []analysis.Analysis) error {
	entries := make([]summaryEntry, 0, len(analyses))
	for _, a := range analyses {
		entries = append(entries, summaryEntry{
			Name:            a.Name,
			Summary:         a.Summary,
			Recommendations: a.Recommendations,
		})
	}
	return writeJSON(path, entries)
}

func (w *Writer) writeDetailedJSON(path string, report detailedReport) error {
	return writeJSON(path, report)
}

var csvHeader = []string{
	"business_name",
	"overall_sentiment",
	"sentiment_score",
	"positive_percentage",
	"negative_percentage",
	"neutral_percentage",
	"dominant_emotions",
	"total_reviews_analyzed",
	"summary",
}

func (w *Writer) writeCSV(path string, analyses []analysis.Analysis) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range analyses {
		a := &analyses[i]
		d := a.SentimentDistribution()
		row := []string{
			a.Name,
			a.OverallSentiment(),
			strconv.FormatFloat(a.SentimentScore(), 'f', 3, 64),
			strconv.FormatFloat(d.Positive, 'f', 3, 64),
			strconv.FormatFloat(d.Negative, 'f', 3, 64),
			strconv.FormatFloat(d.Neutral, 'f', 3, 64),
			strings.Join(a.Emotions(), ", "),
			strconv.Itoa(len(a.ReviewSentiments)),
			a.Summary,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", a.Name, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
