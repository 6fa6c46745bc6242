package identify

import (
	"math"
	"strings"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

const (
	// baseSimilarity reflects agreement on brand/model/category, which is what
	// shortlisted the candidate in the first place
	baseSimilarity = 0.60
	// maxBonus is the ceiling for each of the logo and object bonuses
	maxBonus = 0.20
)

// ScoreCandidate computes the bounded similarity of one catalog candidate
// against one vision result. Pure: no I/O, deterministic for equal inputs.
func ScoreCandidate(product domain.Product, result *domain.VisionResult) domain.ScoredCandidate {
	logoBonus, matchedLogos := setBonus(result.Logos, product.LogoNames())
	objectBonus, matchedObjects := setBonus(result.Objects, product.ObjectNames())

	total := baseSimilarity + logoBonus + objectBonus
	if total > 1.0 {
		total = 1.0
	}

	return domain.ScoredCandidate{
		Product:        product,
		BaseSimilarity: baseSimilarity,
		LogoBonus:      logoBonus,
		ObjectBonus:    objectBonus,
		Total:          round4(total),
		MatchedLogos:   matchedLogos,
		MatchedObjects: matchedObjects,
	}
}

// setBonus scores the overlap between the image's detected set and the
// candidate's stored set. Both sets empty is a weak positive signal and earns
// the full bonus; exactly one empty earns nothing. Otherwise the bonus is the
// case-insensitive intersection divided by the larger set, scaled to maxBonus.
func setBonus(detected, stored []string) (float64, []string) {
	if len(detected) == 0 && len(stored) == 0 {
		return maxBonus, nil
	}
	if len(detected) == 0 || len(stored) == 0 {
		return 0, nil
	}

	storedSet := lowerSet(stored)
	seen := make(map[string]struct{}, len(detected))
	var matched []string
	for _, name := range detected {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := storedSet[key]; ok {
			matched = append(matched, name)
		}
	}

	larger := len(seen)
	if len(storedSet) > larger {
		larger = len(storedSet)
	}

	bonus := round4(maxBonus * float64(len(matched)) / float64(larger))
	return bonus, matched
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

// round4 rounds half-up to 4 decimal places
func round4(v float64) float64 {
	return math.Floor(v*10000+0.5) / 10000
}
