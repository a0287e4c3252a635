package pest

import (
	"sort"
	"time"
)

// Weather is the slice of a weather report that drives pest risk.
type Weather struct {
	Temperature float64
	Humidity    float64
}

// Risk is one pest scored against current conditions.
type Risk struct {
	Pest    Pest    `json:"pest"`
	Profile Profile `json:"profile"`
	Score   int     `json:"score"`
	Level   string  `json:"level"`
}

const riskThreshold = 50

// RisksFromWeather scores every known pest against the given conditions and
// returns those above the reporting threshold, highest risk first. Scoring:
// temperature inside the pest's window counts 40 (20 when within five
// degrees of it), a humidity match counts 30, in-season counts 30.
func RisksFromWeather(w Weather, at time.Time) []Risk {
	season := SeasonOf(at.Month())
	var risks []Risk
	for p, prof := range profiles {
		score := 0

		switch {
		case w.Temperature >= prof.Cond.TempMin && w.Temperature <= prof.Cond.TempMax:
			score += 40
		case w.Temperature >= prof.Cond.TempMin-5 && w.Temperature <= prof.Cond.TempMax+5:
			score += 20
		}

		switch {
		case prof.Cond.HumidityMin > 0 && w.Humidity >= prof.Cond.HumidityMin:
			score += 30
		case prof.Cond.HumidityMax > 0 && w.Humidity <= prof.Cond.HumidityMax:
			score += 30
		default:
			score += 10
		}

		for _, s := range prof.Seasons {
			if s == season {
				score += 30
				break
			}
		}

		if score >= riskThreshold {
			risks = append(risks, Risk{Pest: p, Profile: prof, Score: score, Level: riskLevel(score)})
		}
	}
	sort.Slice(risks, func(i, j int) bool {
		if risks[i].Score != risks[j].Score {
			return risks[i].Score > risks[j].Score
		}
		return risks[i].Pest < risks[j].Pest
	})
	return risks
}

func riskLevel(score int) string {
	switch {
	case score >= 80:
		return "high"
	case score >= 60:
		return "medium"
	default:
		return "low"
	}
}
