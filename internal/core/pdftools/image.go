package pdftools

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is a rectangle expressed as fractions of the image size.
type Region struct {
	X0, Y0, X1, Y1 float64
}

// PartsTableRegion is where the parts list sits on a cross-section drawing sheet.
var PartsTableRegion = Region{X0: 0.13, Y0: 0.70, X1: 0.96, Y1: 1.00}

// Rect maps the region onto bounds, truncating to whole pixels.
func (r Region) Rect(bounds image.Rectangle) image.Rectangle {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	return image.Rect(
		bounds.Min.X+int(w*r.X0),
		bounds.Min.Y+int(h*r.Y0),
		bounds.Min.X+int(w*r.X1),
		bounds.Min.Y+int(h*r.Y1),
	)
}

// CropRotate crops region out of img and rotates it 90 degrees counter-clockwise.
func CropRotate(img image.Image, region Region) (image.Image, error) {
	rect := region.Rect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("crop region is empty for %v", img.Bounds())
	}
	return imaging.Rotate90(imaging.Crop(img, rect)), nil
}

// CropRotateFile reads in, applies CropRotate and writes the PNG to out.
func CropRotateFile(in, out string, region Region) error {
	img, err := imaging.Open(in)
	if err != nil {
		return fmt.Errorf("open %s: %w", in, err)
	}
	cropped, err := CropRotate(img, region)
	if err != nil {
		return err
	}
	if err := imaging.Save(cropped, out); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	return nil
}
