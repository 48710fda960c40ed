package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned for payloads no registered codec accepts.
var ErrInvalidImage = errors.New("invalid image")

// Decoder decodes bytes into an image.
type Decoder interface {
	Decode(data []byte) (image.Image, string, error)
}

// ImageDecoder sniffs the format of the payload and decodes it with the
// matching codec: png, jpeg, gif, bmp, tiff or webp.
type ImageDecoder struct{}

func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{}
}

// Decode returns the image and its format name.
func (d *ImageDecoder) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, "", fmt.Errorf("%w: empty %s image", ErrInvalidImage, format)
	}
	return img, format, nil
}
