package pest

import (
	"time"
)

// Pest is the closed set of tracked pests. Unrecognized names map to
// PestUnknown instead of failing, so community reports with free-text pest
// names still land.
type Pest string

const (
	PestUnknown          Pest = "unknown"
	PestFallArmyworm     Pest = "fall_armyworm"
	PestWhitefly         Pest = "whitefly"
	PestPinkBollworm     Pest = "pink_bollworm"
	PestBrownPlanthopper Pest = "brown_planthopper"
	PestStemBorer        Pest = "stem_borer"
	PestAphids           Pest = "aphids"
	PestFruitFly         Pest = "fruit_fly"
	PestThrips           Pest = "thrips"
)

// ParsePest maps a raw pest identifier onto the closed set.
func ParsePest(raw string) Pest {
	switch Pest(raw) {
	case PestFallArmyworm, PestWhitefly, PestPinkBollworm, PestBrownPlanthopper,
		PestStemBorer, PestAphids, PestFruitFly, PestThrips:
		return Pest(raw)
	default:
		return PestUnknown
	}
}

// Season is the Indian agricultural season.
type Season string

const (
	SeasonKharif Season = "kharif"
	SeasonRabi   Season = "rabi"
	SeasonSummer Season = "summer"
)

// SeasonOf maps a month onto the agricultural season: June-October is
// kharif, November-March is rabi, April-May is summer.
func SeasonOf(month time.Month) Season {
	switch {
	case month >= time.June && month <= time.October:
		return SeasonKharif
	case month >= time.November || month <= time.March:
		return SeasonRabi
	default:
		return SeasonSummer
	}
}

// Conditions describes the weather window a pest thrives in. Zero bounds
// mean the pest is indifferent to that axis.
type Conditions struct {
	TempMin     float64
	TempMax     float64
	HumidityMin float64
	HumidityMax float64
}

// Profile is the static knowledge about one pest.
type Profile struct {
	Name     string
	Crops    []string
	Seasons  []Season
	Cond     Conditions
	Severity string
	Symptoms []string
}

var profiles = map[Pest]Profile{
	PestFallArmyworm: {
		Name:     "Fall Armyworm",
		Crops:    []string{"maize", "rice", "sorghum", "sugarcane"},
		Seasons:  []Season{SeasonKharif},
		Cond:     Conditions{TempMin: 25, TempMax: 35, HumidityMin: 60},
		Severity: "high",
		Symptoms: []string{"Ragged holes in leaves", "Frass visible", "Damaged whorls"},
	},
	PestWhitefly: {
		Name:     "Whitefly",
		Crops:    []string{"cotton", "tomato", "brinjal", "chili", "okra"},
		Seasons:  []Season{SeasonKharif, SeasonSummer},
		Cond:     Conditions{TempMin: 28, TempMax: 38, HumidityMax: 70},
		Severity: "high",
		Symptoms: []string{"Yellow leaves", "Sticky honeydew", "Sooty mold", "Leaf curl virus"},
	},
	PestPinkBollworm: {
		Name:     "Pink Bollworm",
		Crops:    []string{"cotton"},
		Seasons:  []Season{SeasonKharif},
		Cond:     Conditions{TempMin: 25, TempMax: 30, HumidityMin: 50},
		Severity: "critical",
		Symptoms: []string{"Rosetted flowers", "Damaged bolls", "Premature boll opening"},
	},
	PestBrownPlanthopper: {
		Name:     "Brown Planthopper",
		Crops:    []string{"rice"},
		Seasons:  []Season{SeasonKharif, SeasonRabi},
		Cond:     Conditions{TempMin: 25, TempMax: 30, HumidityMin: 80},
		Severity: "critical",
		Symptoms: []string{"Hopper burn", "Circular patches", "Honeydew"},
	},
	PestStemBorer: {
		Name:     "Stem Borer",
		Crops:    []string{"rice", "sugarcane", "maize"},
		Seasons:  []Season{SeasonKharif, SeasonRabi},
		Cond:     Conditions{TempMin: 22, TempMax: 32, HumidityMin: 70},
		Severity: "high",
		Symptoms: []string{"Dead hearts", "White heads", "Bore holes in stem"},
	},
	PestAphids: {
		Name:     "Aphids",
		Crops:    []string{"wheat", "mustard", "vegetables", "cotton"},
		Seasons:  []Season{SeasonRabi},
		Cond:     Conditions{TempMin: 15, TempMax: 28, HumidityMin: 50},
		Severity: "medium",
		Symptoms: []string{"Curled leaves", "Stunted growth", "Honeydew"},
	},
	PestFruitFly: {
		Name:     "Fruit Fly",
		Crops:    []string{"mango", "guava", "citrus", "cucurbits"},
		Seasons:  []Season{SeasonSummer, SeasonKharif},
		Cond:     Conditions{TempMin: 25, TempMax: 35, HumidityMin: 60},
		Severity: "high",
		Symptoms: []string{"Oviposition marks", "Fruit decay", "Maggots inside fruit"},
	},
	PestThrips: {
		Name:     "Thrips",
		Crops:    []string{"chili", "onion", "garlic", "grapes", "cotton"},
		Seasons:  []Season{SeasonSummer, SeasonKharif},
		Cond:     Conditions{TempMin: 25, TempMax: 35, HumidityMax: 60},
		Severity: "high",
		Symptoms: []string{"Silvery patches", "Curled leaves", "Bud necrosis"},
	},
}

// Lookup returns the static profile for a pest.
func Lookup(p Pest) (Profile, bool) {
	prof, ok := profiles[p]
	return prof, ok
}

// ForCrop returns the pests known to attack the given crop.
func ForCrop(crop string) []Pest {
	var out []Pest
	for p, prof := range profiles {
		for _, c := range prof.Crops {
			if c == crop {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Sighting is one community pest report.
type Sighting struct {
	ID         string    `json:"id"`
	Pest       Pest      `json:"pest"`
	Severity   string    `json:"severity"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Notes      string    `json:"notes,omitempty"`
	ObservedAt time.Time `json:"observedAt"`
}
