package scan

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

// colorProfile is the coarse leaf-color breakdown the offline heuristic
// works from.
type colorProfile struct {
	Green  float64
	Brown  float64
	Yellow float64
}

// Outcome is a local best-effort diagnosis, replaced by the remote result
// once the scan syncs.
type Outcome struct {
	PlantName       string
	HealthStatus    cache.HealthStatus
	Diseases        []cache.Disease
	Recommendations []string
	Confidence      float64
	Summary         string
}

// OfflineAnalyzer produces a heuristic diagnosis from leaf-color ratios when
// the remote AI is unreachable. It is deliberately simple; its output is
// flagged offline and reconciled with the authoritative result on sync.
type OfflineAnalyzer struct{}

// NewOfflineAnalyzer constructs the fallback analyzer.
func NewOfflineAnalyzer() *OfflineAnalyzer {
	return &OfflineAnalyzer{}
}

// Analyze decodes the image and classifies it from color dominance.
func (a *OfflineAnalyzer) Analyze(data []byte) (Outcome, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Outcome{}, apperrors.Wrap(apperrors.CodeInvalidInput, "image could not be decoded", err)
	}
	profile := sampleColors(img)
	return classify(profile), nil
}

// sampleColors walks a coarse grid over the image and measures how much of
// it reads as green, brown, or yellow.
func sampleColors(img image.Image) colorProfile {
	bounds := img.Bounds()
	stepX := max(1, bounds.Dx()/100)
	stepY := max(1, bounds.Dy()/100)

	var green, brown, yellow, total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r, g, b := float64(r16>>8), float64(g16>>8), float64(b16>>8)
			if g > r && g > b {
				green++
			}
			if r > g && r > 100 && g > 50 && g < 150 {
				brown++
			}
			if r > 150 && g > 150 && b < 100 {
				yellow++
			}
			total++
		}
	}
	if total == 0 {
		return colorProfile{}
	}
	return colorProfile{Green: green / total, Brown: brown / total, Yellow: yellow / total}
}

func classify(p colorProfile) Outcome {
	status := cache.HealthHealthy
	var diseases []cache.Disease

	if p.Brown > 0.15 {
		status = cache.HealthModerate
		severity := "medium"
		if p.Brown > 0.25 {
			severity = "high"
		}
		diseases = append(diseases, cache.Disease{
			Name:        "Early Blight",
			Severity:    severity,
			Description: "Brown spots detected on leaves",
		})
	}
	if p.Yellow > 0.2 {
		if p.Brown > 0.1 {
			status = cache.HealthSevere
		} else {
			status = cache.HealthMild
		}
		diseases = append(diseases, cache.Disease{
			Name:        "Nutrient Deficiency",
			Severity:    "medium",
			Description: "Yellowing of leaves indicates nutrient issues",
		})
	}
	if p.Green > 0.5 && p.Brown < 0.1 && p.Yellow < 0.1 {
		status = cache.HealthHealthy
		diseases = nil
	}

	return Outcome{
		PlantName:       "Detected Plant",
		HealthStatus:    status,
		Diseases:        diseases,
		Recommendations: offlineRecommendations(status, diseases),
		Confidence:      offlineConfidence(status, p),
		Summary:         offlineSummary(status, diseases),
	}
}

// offlineConfidence is deterministic: it scales with how unambiguous the
// color profile is.
func offlineConfidence(status cache.HealthStatus, p colorProfile) float64 {
	if status == cache.HealthHealthy {
		return min(0.95, 0.8+p.Green*0.2)
	}
	return min(0.9, 0.65+(p.Brown+p.Yellow)*0.5)
}

func offlineRecommendations(status cache.HealthStatus, diseases []cache.Disease) []string {
	if status == cache.HealthHealthy {
		return []string{
			"Continue regular watering and care",
			"Monitor for any changes in leaf color",
		}
	}
	var recs []string
	for _, d := range diseases {
		switch {
		case strings.Contains(d.Name, "Blight"):
			recs = append(recs,
				"Remove affected leaves immediately",
				"Apply fungicide (Mancozeb or Copper-based)",
				"Improve air circulation around plants",
			)
		case strings.Contains(d.Name, "Nutrient"):
			recs = append(recs,
				"Apply balanced NPK fertilizer",
				"Check soil pH levels",
				"Consider adding organic compost",
			)
		}
	}
	return recs
}

func offlineSummary(status cache.HealthStatus, diseases []cache.Disease) string {
	if status == cache.HealthHealthy {
		return "Your plant looks healthy! Keep up the good care. (Analyzed offline)"
	}
	names := make([]string, 0, len(diseases))
	for _, d := range diseases {
		names = append(names, d.Name)
	}
	return fmt.Sprintf("Detected issues: %s. Please see recommendations. (Analyzed offline - will sync when online)", strings.Join(names, ", "))
}
