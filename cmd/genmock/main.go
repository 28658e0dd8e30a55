// Command genmock writes deterministic synthetic AEW track files in the
// per-year exporter format, for local development and the default DATA_DIR.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data \
//	  -years 2010,2011,2012 \
//	  -tracks 24
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/aew-track-map/internal/config"
	"github.com/couchcryptid/aew-track-map/internal/domain"
	"github.com/paulmach/orb"
)

// stormNames are handed out in order to tracks that develop into cyclones.
var stormNames = []string{
	"Alberto", "Beryl", "Chris", "Debby", "Ernesto", "Florence", "Gordon",
	"Helene", "Isaac", "Joyce", "Kirk", "Leslie", "Michael", "Nadine",
}

const sampleStep = 6 * time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data", "output directory for year files")
	yearsFlag := flag.String("years", "2012", "comma-separated years to generate")
	perYear := flag.Int("tracks", 24, "tracks per year")
	seed := flag.Uint64("seed", 42, "random seed")
	template := flag.String("template", "aew_tracks_{year}_interactive.json", "file name template")
	flag.Parse()

	if *perYear <= 0 {
		return fmt.Errorf("-tracks must be positive")
	}
	if !strings.Contains(*template, config.YearPlaceholder) {
		return fmt.Errorf("-template must contain %s", config.YearPlaceholder)
	}
	years, err := parseYears(*yearsFlag)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	for _, year := range years {
		rng := rand.New(rand.NewPCG(*seed, uint64(year)))
		tracks := generateYear(rng, year, *perYear)

		path := filepath.Join(*outDir, strings.ReplaceAll(*template, config.YearPlaceholder, strconv.Itoa(year)))
		if err := writeYear(path, year, tracks); err != nil {
			return fmt.Errorf("writing %d: %w", year, err)
		}
		log.Printf("%d: wrote %d tracks to %s", year, len(tracks), path)
	}

	return nil
}

func parseYears(s string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y < 1000 || y > 9999 {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no years given")
	}
	return years, nil
}

func writeYear(path string, year int, tracks []domain.Track) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := domain.EncodeCollection(f, fmt.Sprintf("aew_tracks_%d", year), tracks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// generateYear lays waves out across June to October. Each wave leaves the
// African coast and drifts west-northwest with a strength that peaks mid-life.
func generateYear(rng *rand.Rand, year, n int) []domain.Track {
	seasonStart := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	seasonDays := 150

	tracks := make([]domain.Track, 0, n)
	named := 0
	for i := range n {
		start := seasonStart.Add(time.Duration(i*seasonDays/n) * 24 * time.Hour).
			Add(time.Duration(rng.IntN(4)) * sampleStep)
		steps := 8 + rng.IntN(40)

		lon := 10 - rng.Float64()*15
		lat := 8 + rng.Float64()*8
		peak := (1.5 + rng.Float64()*6) * 1e-5

		t := domain.Track{
			SystemID: fmt.Sprintf("%d_%02d", year, i+1),
			Year:     year,
		}
		for s := range steps {
			ts := start.Add(time.Duration(s) * sampleStep)
			phase := float64(s) / float64(steps-1)
			strength := peak * (0.3 + 0.7*math.Sin(math.Pi*phase))

			t.Coordinates = append(t.Coordinates, orb.Point{round(lon, 2), round(lat, 2)})
			t.Samples = append(t.Samples, domain.Sample{
				Time:     ts.Format("2006-01-02 15:04"),
				Strength: strength,
				Month:    int(ts.Month()),
			})
			if !slices.Contains(t.Months, int(ts.Month())) {
				t.Months = append(t.Months, int(ts.Month()))
			}

			lon -= 1.2 + rng.Float64()*0.8
			lat += rng.Float64()*0.5 - 0.15
		}

		// Strong waves that reach the western Atlantic sometimes spin up.
		if peak > 5e-5 && rng.IntN(3) > 0 && named < len(stormNames) {
			genesis := start.Add(time.Duration(steps/2) * sampleStep)
			t.Cyclogenesis = domain.Cyclogenesis{
				Developed:   true,
				Name:        stormNames[named],
				GenesisTime: genesis.Format("2006-01-02 15:04"),
			}
			named++
		}

		tracks = append(tracks, t)
	}
	return tracks
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
