package identify

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// cropImage cuts the region described by a normalized bounding box out of the
// image. Pixel coordinates are the normalized values scaled by the image
// dimensions and clamped to the image bounds.
func cropImage(data []byte, box *domain.BoundingBox) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	x0 := bounds.Min.X + clamp(int(box.X*float64(width)), 0, width)
	y0 := bounds.Min.Y + clamp(int(box.Y*float64(height)), 0, height)
	x1 := bounds.Min.X + clamp(int((box.X+box.Width)*float64(width)), 0, width)
	y1 := bounds.Min.Y + clamp(int((box.Y+box.Height)*float64(height)), 0, height)

	if x1 <= x0 || y1 <= y0 {
		return nil, fmt.Errorf("bounding box [%v] collapses to an empty region", *box)
	}

	cropped := image.NewRGBA(image.Rect(0, 0, x1-x0, y1-y0))
	draw.Draw(cropped, cropped.Bounds(), img, image.Pt(x0, y0), draw.Src)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, cropped)
	default:
		err = jpeg.Encode(&buf, cropped, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("encode cropped image: %w", err)
	}

	return buf.Bytes(), nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
