// Command validate checks a directory of per-year AEW track files: every file
// must decode, every track must satisfy the structural invariants the map
// relies on, and every year must render in both display modes.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data \
//	  -template aew_tracks_{year}_interactive.json
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/aew-track-map/internal/config"
	"github.com/couchcryptid/aew-track-map/internal/domain"
	"github.com/couchcryptid/aew-track-map/internal/observability"
	"github.com/couchcryptid/aew-track-map/internal/render"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// yearFile is one decoded file.
type yearFile struct {
	path   string
	year   int
	tracks []domain.Track
}

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing year files")
	template := flag.String("template", "aew_tracks_{year}_interactive.json", "file name template")
	flag.Parse()

	if !strings.Contains(*template, config.YearPlaceholder) {
		fmt.Fprintf(os.Stderr, "-template must contain %s\n", config.YearPlaceholder)
		os.Exit(1)
	}

	if code := run(*dataDir, *template); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, template string) int {
	fmt.Println("=== AEW Track Data Validation ===")
	fmt.Println()

	paths, err := findYearFiles(dataDir, template)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: scan %s: %v\n", dataDir, err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no files matching %s in %s\n", template, dataDir)
		return 1
	}

	decode, files := validateDecode(paths)
	phases := []*phase{
		decode,
		validateTrackIntegrity(files),
		validateRendering(files),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	printStats(files)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// findYearFiles maps each matching file name back to its year.
func findYearFiles(dir, template string) (map[int]string, error) {
	prefix, suffix, _ := strings.Cut(template, config.YearPlaceholder)
	re := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d{4})` + regexp.QuoteMeta(suffix) + "$")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		out[year] = filepath.Join(dir, e.Name())
	}
	return out, nil
}

// ── Phase 1: Decode ──

func validateDecode(paths map[int]string) (*phase, []yearFile) {
	p := &phase{name: "Phase 1: Decode (FeatureCollection)"}

	years := make([]int, 0, len(paths))
	for y := range paths {
		years = append(years, y)
	}
	sort.Ints(years)

	files := make([]yearFile, 0, len(years))
	for _, year := range years {
		path := paths[year]
		f, err := os.Open(path)
		if err != nil {
			p.errorf("%s: %v", path, err)
			continue
		}
		tracks, err := domain.DecodeCollection(f)
		f.Close()
		if err != nil {
			p.errorf("%s: %v", path, err)
			continue
		}
		if len(tracks) == 0 {
			p.errorf("%s: no tracks", path)
		}
		files = append(files, yearFile{path: path, year: year, tracks: tracks})
	}
	return p, files
}

// ── Phase 2: Track Integrity ──

func validateTrackIntegrity(files []yearFile) *phase {
	p := &phase{name: "Phase 2: Track Integrity (properties)"}

	for _, f := range files {
		seen := make(map[string]bool, len(f.tracks))
		for i, t := range f.tracks {
			label := fmt.Sprintf("%d track %d (%s)", f.year, i, t.SystemID)
			if err := t.Validate(); err != nil {
				p.errorf("%s: %v", label, err)
			}
			if t.Year != 0 && t.Year != f.year {
				p.errorf("%s: year property %d in file for %d", label, t.Year, f.year)
			}
			if t.SystemID != "" {
				if seen[t.SystemID] {
					p.errorf("%s: duplicate system_id", label)
				}
				seen[t.SystemID] = true
			}
			if len(t.Months) == 0 {
				p.errorf("%s: empty months list, hidden under every month filter", label)
			}
			checkCoordinates(p, label, t)
			checkChronology(p, label, t)
			if t.Cyclogenesis.Developed && t.Cyclogenesis.Name == "" {
				p.errorf("%s: developed_into_tc without tc_name", label)
			}
		}
	}
	return p
}

func checkCoordinates(p *phase, label string, t domain.Track) {
	for j, pt := range t.Coordinates {
		if pt.Lon() < -180 || pt.Lon() > 180 || pt.Lat() < -90 || pt.Lat() > 90 {
			p.errorf("%s: point %d out of range (%g, %g)", label, j, pt.Lon(), pt.Lat())
		}
	}
}

// checkChronology relies on "YYYY-MM-DD HH:MM" sorting lexically.
func checkChronology(p *phase, label string, t domain.Track) {
	for j := 1; j < len(t.Samples); j++ {
		if t.Samples[j].Time < t.Samples[j-1].Time {
			p.errorf("%s: sample %d at %s precedes sample %d", label, j, t.Samples[j].Time, j-1)
			return
		}
	}
}

// ── Phase 3: Rendering ──
// Renders each year in both modes and checks element counts against the data.

func validateRendering(files []yearFile) *phase {
	p := &phase{name: "Phase 3: Rendering (lines and points)"}

	surface := render.NewSurface(slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	all, _ := domain.ParseMonthFilter(domain.AllMonths)

	for _, f := range files {
		var wantPoints, wantSegments int
		for _, t := range f.tracks {
			wantPoints += t.Len()
			wantSegments += max(t.Len()-1, 0)
		}

		res := surface.Render(f.tracks, all, domain.ModePoints, nil)
		if res.Tracks != len(f.tracks) {
			p.errorf("%d: points mode drew %d tracks, want %d", f.year, res.Tracks, len(f.tracks))
		}
		if res.Elements != wantPoints {
			p.errorf("%d: points mode drew %d markers, want %d", f.year, res.Elements, wantPoints)
		}
		if wantPoints > 0 && !res.HasBounds {
			p.errorf("%d: no bounds to fit", f.year)
		}

		res = surface.Render(f.tracks, all, domain.ModeLines, nil)
		if res.Elements != wantSegments {
			p.errorf("%d: lines mode drew %d segments, want %d", f.year, res.Elements, wantSegments)
		}
	}
	surface.Clear()
	return p
}

func printStats(files []yearFile) {
	for _, f := range files {
		var points, developed int
		var peak float64
		months := map[int]int{}
		for _, t := range f.tracks {
			s := domain.Summarize(t)
			points += s.Points
			peak = max(peak, s.StrengthMax)
			if t.Cyclogenesis.Developed {
				developed++
			}
			for _, m := range t.Months {
				months[m]++
			}
		}
		fmt.Printf("%d: %d tracks, %d points, %d developed, peak %.2f ×10⁻⁵ s⁻¹, August tracks %d\n",
			f.year, len(f.tracks), points, developed, peak, months[8])
	}
}
