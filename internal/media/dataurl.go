package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
)

const DefaultJPEGQuality = 80

// EncodeDataURL encodes img as a base64 JPEG data URL.
func EncodeDataURL(img image.Image, quality int) (string, error) {
	if img == nil {
		return "", errors.New("encode frame: no image")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
