package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for data that is not an image in one of
// the supported formats.
var ErrUnsupportedFormat = errors.New("asset: unsupported image format")

type decodeFunc func(io.Reader) (image.Image, error)

// decoders maps sniffed MIME types to decoders.
var decoders = map[string]decodeFunc{
	"image/png":  png.Decode,
	"image/jpeg": jpeg.Decode,
	"image/gif":  gif.Decode,
	"image/webp": webp.Decode,
	"image/bmp":  bmp.Decode,
	"image/tiff": tiff.Decode,
}

// Sniff returns the MIME type of an image from its leading bytes.
func Sniff(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if kind == filetype.Unknown {
		return "", fmt.Errorf("%w: unrecognized content", ErrUnsupportedFormat)
	}
	if _, ok := decoders[kind.MIME.Value]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}
	return kind.MIME.Value, nil
}

// Decode decodes an encoded image into premultiplied RGBA. The format is
// detected from the content, not from any file name.
func Decode(data []byte) (*image.RGBA, error) {
	mime, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	img, err := decoders[mime](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mime, err)
	}
	return clone.AsShallowRGBA(img), nil
}
