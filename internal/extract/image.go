package extract

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// validateRaster confirms the payload decodes as a supported raster image
// before it is handed to the recognizer.
func validateRaster(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty image", ErrCorruptInput)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptInput, err)
	}
	return nil
}
