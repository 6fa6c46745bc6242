package identify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

const (
	// temporaryConfidence is the fixed confidence of a detected-but-unknown
	// placeholder entry
	temporaryConfidence = 0.50
	// maxConcurrentObjects bounds the per-object matching pipelines so a
	// crowded photo cannot flood the embedder and the database at once
	maxConcurrentObjects = 4
)

// IdentifyMultiple runs the multi-object flow: one vision pass in multi mode,
// an independent matching pipeline per detected object, then grouping by
// catalog identity. Objects that cannot be cropped, embedded or matched
// degrade to temporary placeholders instead of failing the batch.
// minConfidence > 0 filters out groups below that mean confidence.
func (s *Service) IdentifyMultiple(ctx context.Context, image []byte, minConfidence float64) (*domain.MultiDetectionResult, error) {
	cfg, err := s.thresholds.ActiveOrDefault(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.analyzer.AnalyzeMultiple(ctx, image)
	if err != nil {
		return nil, domain.ErrVisionAnalysisFailed.WithError(err)
	}

	detections := make([]domain.DetectedProduct, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentObjects)
	for i, result := range results {
		i, result := i, result
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detections[i] = s.identifyObject(gctx, image, i, result, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := groupDetections(detections)

	if minConfidence > 0 {
		filtered := groups[:0]
		for _, group := range groups {
			if group.Confidence >= minConfidence {
				filtered = append(filtered, group)
			}
		}
		groups = filtered
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Confidence > groups[b].Confidence
	})

	identified := 0
	unknown := 0
	for _, detection := range detections {
		if detection.Temporary {
			unknown++
		} else {
			identified++
		}
	}

	return &domain.MultiDetectionResult{
		Groups:          groups,
		TotalDetected:   len(detections),
		TotalIdentified: identified,
		TotalUnknown:    unknown,
		ConfigVersion:   cfg.Version,
	}, nil
}

// identifyObject matches one detected object. Every failure path degrades to
// a temporary placeholder so one bad crop never aborts the batch.
func (s *Service) identifyObject(ctx context.Context, image []byte, index int, result domain.VisionResult, cfg *domain.ThresholdConfig) domain.DetectedProduct {
	region := image
	if result.BoundingBox != nil {
		cropped, err := cropImage(image, result.BoundingBox)
		if err != nil {
			s.logger.Warn("crop failed, degrading to temporary entry",
				slog.Int("index", index), slog.Any("error", err))
			return temporaryDetection(index, &result)
		}
		region = cropped
	}

	match, err := s.matchExact(ctx, &result)
	if err != nil {
		s.logger.Warn("exact match failed, degrading to temporary entry",
			slog.Int("index", index), slog.Any("error", err))
		return temporaryDetection(index, &result)
	}

	if match == nil {
		embedding, err := s.embedder.Embed(ctx, region)
		if err != nil {
			s.logger.Warn("embedding failed, degrading to temporary entry",
				slog.Int("index", index), slog.Any("error", err))
			return temporaryDetection(index, &result)
		}

		match, err = s.matchEmbedding(ctx, embedding, cfg)
		if err != nil {
			s.logger.Warn("similarity search failed, degrading to temporary entry",
				slog.Int("index", index), slog.Any("error", err))
			return temporaryDetection(index, &result)
		}
	}

	if match == nil {
		return temporaryDetection(index, &result)
	}

	return domain.DetectedProduct{Index: index, Match: *match}
}

// temporaryDetection builds the "detected but unknown" placeholder. The
// product keeps a nil identity; grouping keys it by detection index so
// placeholders never collapse with each other or with catalog entries.
func temporaryDetection(index int, result *domain.VisionResult) domain.DetectedProduct {
	category := result.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	return domain.DetectedProduct{
		Index:     index,
		Temporary: true,
		Match: domain.IdentificationMatch{
			Product: domain.Product{
				Name:             suggestProductName(result, category),
				Category:         category,
				Colors:           result.Colors,
				LogoDetections:   domain.NewDetections(result.Logos),
				ObjectDetections: domain.NewDetections(result.Objects),
				UsageTags:        result.UsageTags,
				ImageTags:        result.ImageTags,
			},
			Confidence: temporaryConfidence,
			MatchType:  domain.MatchTypeTemporary,
			Details:    fmt.Sprintf("object %d detected but not identified", index),
		},
	}
}

// groupDetections aggregates detections of the same catalog entry. Group
// confidence is the arithmetic mean of member confidences, rounded half-up
// to 4 decimals.
func groupDetections(detections []domain.DetectedProduct) []domain.ProductGroup {
	type accumulator struct {
		group *domain.ProductGroup
		sum   float64
	}

	order := make([]domain.GroupKey, 0, len(detections))
	byKey := make(map[domain.GroupKey]*accumulator, len(detections))

	for _, detection := range detections {
		key := detection.Key()
		acc, ok := byKey[key]
		if !ok {
			acc = &accumulator{group: &domain.ProductGroup{
				Product:   detection.Match.Product,
				Temporary: detection.Temporary,
				MatchType: detection.Match.MatchType,
			}}
			byKey[key] = acc
			order = append(order, key)
		}
		acc.group.Quantity++
		acc.group.Indexes = append(acc.group.Indexes, detection.Index)
		acc.sum += detection.Match.Confidence
	}

	groups := make([]domain.ProductGroup, 0, len(order))
	for _, key := range order {
		acc := byKey[key]
		mean := round4(acc.sum / float64(acc.group.Quantity))
		acc.group.Confidence = mean
		acc.group.IsConfirmed = mean >= domain.ConfirmedGroupThreshold
		groups = append(groups, *acc.group)
	}

	return groups
}
