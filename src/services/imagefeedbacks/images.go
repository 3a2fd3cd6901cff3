package imagefeedbacks

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"

	"github.com/disintegration/imaging"
)

const (
	MaxImagesPerFeedback = 5
	MaxImageBytes        = 5 << 20
	jpegQuality          = 85
)

// normalizeImage decodes an upload and re-encodes it as a JPEG no larger than
// maxDimension on either side. EXIF orientation is applied first.
func normalizeImage(upload models.ImageUpload, maxDimension int) (models.ImageUpload, error) {
	if len(upload.Data) == 0 {
		return models.ImageUpload{}, apperror.Validation("image is empty", fmt.Sprintf("%s is empty", upload.Filename))
	}
	if len(upload.Data) > MaxImageBytes {
		return models.ImageUpload{}, apperror.Validation("image is too large",
			fmt.Sprintf("%s exceeds %d MB", upload.Filename, MaxImageBytes>>20))
	}

	img, err := imaging.Decode(bytes.NewReader(upload.Data), imaging.AutoOrientation(true))
	if err != nil {
		return models.ImageUpload{}, apperror.Validation("unsupported image",
			fmt.Sprintf("%s is not a jpeg, png or gif image", upload.Filename))
	}
	b := img.Bounds()
	if maxDimension > 0 && (b.Dx() > maxDimension || b.Dy() > maxDimension) {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return models.ImageUpload{}, apperror.Dependency("failed to encode image", err)
	}
	return models.ImageUpload{
		Filename:    jpegName(upload.Filename),
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

func jpegName(filename string) string {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	if base == "" {
		base = "image"
	}
	return base + ".jpg"
}
