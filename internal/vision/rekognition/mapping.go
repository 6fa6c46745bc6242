package rekognition

import (
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// modelNumberPattern matches catalog-style model codes: mixed letters and
// digits, at least 4 characters, e.g. "STMT74101" or "DCD777C2".
var modelNumberPattern = regexp.MustCompile(`^[A-Z]{1,6}[A-Z0-9-]{2,}[0-9][A-Z0-9-]*$`)

// brandPattern matches short alphabetic lines that read like a brand name
var brandPattern = regexp.MustCompile(`^[A-Za-zÀ-ÿ][A-Za-zÀ-ÿ&.' -]{1,29}$`)

// buildVisionResult condenses Rekognition labels, dominant colors and OCR
// lines into the engine's VisionResult shape.
func buildVisionResult(labels []types.Label, colors, textLines []string, box *domain.BoundingBox) domain.VisionResult {
	result := domain.VisionResult{
		Category:    domain.DefaultCategory,
		Colors:      colors,
		BoundingBox: box,
	}

	for _, label := range labels {
		name := aws.ToString(label.Name)
		if name == "" {
			continue
		}

		result.Objects = appendUnique(result.Objects, name)
		result.ImageTags = appendUnique(result.ImageTags, name)

		for _, alias := range label.Aliases {
			result.ImageTags = appendUnique(result.ImageTags, aws.ToString(alias.Name))
		}
		for _, parent := range label.Parents {
			result.UsageTags = appendUnique(result.UsageTags, aws.ToString(parent.Name))
		}

		// The first label category becomes the inferred product category
		if result.Category == domain.DefaultCategory && len(label.Categories) > 0 {
			if category := aws.ToString(label.Categories[0].Name); category != "" {
				result.Category = category
			}
		}
	}

	result.Brand, result.ModelNumber, result.Logos = classifyTextLines(textLines)

	if result.SuggestedName == "" {
		result.SuggestedName = suggestName(result.Brand, result.Objects)
	}

	return result
}

// classifyTextLines splits OCR lines into a brand candidate, a model number
// candidate and the set of logo-like text marks. The first brand-looking
// line wins; every brand-looking line is also recorded as a logo.
func classifyTextLines(lines []string) (brand, modelNumber string, logos []string) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if modelNumber == "" && modelNumberPattern.MatchString(strings.ToUpper(trimmed)) {
			modelNumber = strings.ToUpper(trimmed)
			continue
		}

		if brandPattern.MatchString(trimmed) {
			if brand == "" {
				brand = trimmed
			}
			logos = appendUnique(logos, trimmed)
		}
	}

	return brand, modelNumber, logos
}

func suggestName(brand string, objects []string) string {
	switch {
	case brand != "" && len(objects) > 0:
		return brand + " " + objects[0]
	case len(objects) > 0:
		return objects[0]
	default:
		return ""
	}
}

// appendUnique appends value to the slice unless it is empty or already
// present (case-insensitive).
func appendUnique(values []string, value string) []string {
	if value == "" {
		return values
	}
	for _, existing := range values {
		if strings.EqualFold(existing, value) {
			return values
		}
	}
	return append(values, value)
}
