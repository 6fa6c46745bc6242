package rekognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
	"github.com/saturnino-fabrica-de-software/identika/internal/vision"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100

	errCodeAccessDenied     = "AccessDeniedException"
	errCodeInvalidImage     = "InvalidImageFormatException"
	errCodeImageTooLarge    = "ImageTooLargeException"
	errCodeInvalidParameter = "InvalidParameterException"
)

// Provider implements vision.Analyzer using AWS Rekognition DetectLabels
// and DetectText. Labels become objects/category/tags, detected text lines
// become brand and model number candidates.
type Provider struct {
	client *rekognition.Client
	config Config
}

// Ensure Provider implements vision.Analyzer at compile time
var _ vision.Analyzer = (*Provider)(nil)

// NewProvider creates a new Rekognition vision analyzer.
// It uses the AWS default credential chain to authenticate.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Provider{
		client: rekognition.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// Analyze runs label and text detection on the full image and condenses
// everything into a single VisionResult.
func (p *Provider) Analyze(ctx context.Context, image []byte) (*domain.VisionResult, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	labels, colors, err := p.detectLabels(ctx, image)
	if err != nil {
		return nil, err
	}

	lines, err := p.detectTextLines(ctx, image)
	if err != nil {
		return nil, err
	}

	result := buildVisionResult(labels, colors, lines, nil)
	return &result, nil
}

// AnalyzeMultiple returns one VisionResult per detected object instance,
// each carrying the instance's normalized bounding box. When the image
// yields labels but no located instances, a single result without a
// bounding box is returned so the caller can still match on the whole image.
func (p *Provider) AnalyzeMultiple(ctx context.Context, image []byte) ([]domain.VisionResult, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	labels, colors, err := p.detectLabels(ctx, image)
	if err != nil {
		return nil, err
	}

	lines, err := p.detectTextLines(ctx, image)
	if err != nil {
		return nil, err
	}

	var results []domain.VisionResult
	for _, label := range labels {
		for _, instance := range label.Instances {
			if instance.BoundingBox == nil {
				continue
			}
			box := &domain.BoundingBox{
				X:      float64(aws.ToFloat32(instance.BoundingBox.Left)),
				Y:      float64(aws.ToFloat32(instance.BoundingBox.Top)),
				Width:  float64(aws.ToFloat32(instance.BoundingBox.Width)),
				Height: float64(aws.ToFloat32(instance.BoundingBox.Height)),
			}
			results = append(results, buildVisionResult(labels, colors, lines, box))
		}
	}

	if len(results) == 0 {
		results = append(results, buildVisionResult(labels, colors, lines, nil))
	}

	return results, nil
}

func (p *Provider) detectLabels(ctx context.Context, image []byte) ([]types.Label, []string, error) {
	input := &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(p.config.MaxLabels),
		MinConfidence: aws.Float32(p.config.MinLabelConfidence),
		Features: []types.DetectLabelsFeatureName{
			types.DetectLabelsFeatureNameGeneralLabels,
			types.DetectLabelsFeatureNameImageProperties,
		},
	}

	output, err := p.client.DetectLabels(ctx, input)
	if err != nil {
		return nil, nil, parseAPIError("detect labels", err)
	}

	var colors []string
	if output.ImageProperties != nil {
		for _, c := range output.ImageProperties.DominantColors {
			if name := aws.ToString(c.SimplifiedColor); name != "" {
				colors = appendUnique(colors, name)
			}
		}
	}

	return output.Labels, colors, nil
}

func (p *Provider) detectTextLines(ctx context.Context, image []byte) ([]string, error) {
	output, err := p.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return nil, parseAPIError("detect text", err)
	}

	var lines []string
	for _, detection := range output.TextDetections {
		if detection.Type != types.TextTypesLine {
			continue
		}
		if aws.ToFloat32(detection.Confidence) < p.config.MinTextConfidence {
			continue
		}
		if text := aws.ToString(detection.DetectedText); text != "" {
			lines = append(lines, text)
		}
	}

	return lines, nil
}

func parseAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		case errCodeInvalidImage, errCodeImageTooLarge, errCodeInvalidParameter:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalidImage, apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
