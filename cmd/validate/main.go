// Command validate performs integrity checks on a crop reference JSON file
// before it ships: identity and ordering, agronomic range sanity, localized
// name coverage, planting windows, and economics.
//
// Usage:
//
//	go run ./cmd/validate -crops internal/refstore/crops.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
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

func main() {
	cropsPath := flag.String("crops", "", "path to crop reference JSON file")
	flag.Parse()

	if *cropsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*cropsPath); code != 0 {
		os.Exit(code)
	}
}

func run(cropsPath string) int {
	fmt.Println("=== Crop Reference Data Validation ===")
	fmt.Println()

	data, err := os.ReadFile(cropsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read crops file: %v\n", err)
		return 1
	}
	var crops []domain.CropReference
	if err := json.Unmarshal(data, &crops); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse crops file: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateIdentity(crops),
		validateNames(crops),
		validateAgronomy(crops),
		validateSeasons(crops),
		validateEconomics(crops),
	}

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
	fmt.Printf("Records: %d crops\n", len(crops))

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

// ── Phase 1: Identity ──
// Crop ids must be positive, unique, and sorted ascending so ranking
// tie-breaks stay stable across releases.

func validateIdentity(crops []domain.CropReference) *phase {
	p := &phase{name: "Phase 1: Identity (ids unique and ordered)"}

	if len(crops) == 0 {
		p.errorf("file contains no crops")
		return p
	}

	seen := map[int64]bool{}
	var prev int64
	for i, c := range crops {
		if c.ID <= 0 {
			p.errorf("record %d: non-positive id %d", i, c.ID)
		}
		if seen[c.ID] {
			p.errorf("record %d: duplicate id %d", i, c.ID)
		}
		seen[c.ID] = true
		if c.ID < prev {
			p.errorf("record %d: id %d out of ascending order (previous %d)", i, c.ID, prev)
		}
		prev = c.ID
	}
	return p
}

// ── Phase 2: Names ──

var knownLanguages = map[string]bool{
	"en": true, "hi": true, "pa": true, "mr": true,
	"ta": true, "te": true, "bn": true, "gu": true, "kn": true,
}

func validateNames(crops []domain.CropReference) *phase {
	p := &phase{name: "Phase 2: Names (English required)"}

	for _, c := range crops {
		if c.Names["en"] == "" {
			p.errorf("crop %d: missing English name", c.ID)
		}
		for lang, name := range c.Names {
			if !knownLanguages[lang] {
				p.errorf("crop %d: unknown language code %q", c.ID, lang)
			}
			if name == "" {
				p.errorf("crop %d: empty name for language %q", c.ID, lang)
			}
		}
	}
	return p
}

// ── Phase 3: Agronomy ──

func validateAgronomy(crops []domain.CropReference) *phase {
	p := &phase{name: "Phase 3: Agronomy (tolerance ranges)"}

	knownSoils := map[domain.SoilType]bool{}
	for _, s := range domain.KnownSoilTypes {
		knownSoils[s] = true
	}

	for _, c := range crops {
		if len(c.SoilTypes) == 0 {
			p.errorf("crop %d: no accepted soil types", c.ID)
		}
		for _, s := range c.SoilTypes {
			if !knownSoils[s] {
				p.errorf("crop %d: unknown soil type %q", c.ID, s)
			}
		}

		if c.PHMin < 0 || c.PHMax > 14 || c.PHMin >= c.PHMax {
			p.errorf("crop %d: invalid pH range [%g, %g]", c.ID, c.PHMin, c.PHMax)
		}
		if c.TempMin >= c.TempMax {
			p.errorf("crop %d: invalid temperature range [%g, %g]", c.ID, c.TempMin, c.TempMax)
		}
		if c.TempMin < -20 || c.TempMax > 55 {
			p.errorf("crop %d: temperature range [%g, %g] outside plausible bounds", c.ID, c.TempMin, c.TempMax)
		}
		if c.RainfallMin < 0 || c.RainfallMin >= c.RainfallMax {
			p.errorf("crop %d: invalid rainfall range [%g, %g]", c.ID, c.RainfallMin, c.RainfallMax)
		}
		if c.GrowingDaysMin <= 0 || c.GrowingDaysMin > c.GrowingDaysMax {
			p.errorf("crop %d: invalid growing days range [%d, %d]", c.ID, c.GrowingDaysMin, c.GrowingDaysMax)
		}
		if c.GrowingDaysMax > 450 {
			p.errorf("crop %d: growing days max %d outside plausible bounds", c.ID, c.GrowingDaysMax)
		}
	}
	return p
}

// ── Phase 4: Seasons ──

func validateSeasons(crops []domain.CropReference) *phase {
	p := &phase{name: "Phase 4: Seasons (planting windows)"}

	for _, c := range crops {
		if c.PlantingStart < 1 || c.PlantingStart > 12 {
			p.errorf("crop %d: planting start month %d out of range", c.ID, c.PlantingStart)
		}
		if c.PlantingEnd < 1 || c.PlantingEnd > 12 {
			p.errorf("crop %d: planting end month %d out of range", c.ID, c.PlantingEnd)
		}
	}
	return p
}

// ── Phase 5: Economics ──

func validateEconomics(crops []domain.CropReference) *phase {
	p := &phase{name: "Phase 5: Economics (price and yield)"}

	for _, c := range crops {
		if c.MarketPrice <= 0 {
			p.errorf("crop %d: non-positive market price %g", c.ID, c.MarketPrice)
		}
		if c.ProfitabilityScore <= 0 {
			p.errorf("crop %d: non-positive profitability score %g", c.ID, c.ProfitabilityScore)
		}
	}
	return p
}
