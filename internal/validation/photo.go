package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxPhotoSize is the largest accepted meal photo.
const MaxPhotoSize = 5 << 20

var photoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// SniffPhoto checks a meal photo by content, not by the client's filename
// or header. It returns the detected content type, a file extension and a
// reader that replays the sniffed bytes.
func SniffPhoto(r io.Reader, size int64) (string, string, io.Reader, error) {
	if size > MaxPhotoSize {
		return "", "", nil, fmt.Errorf("photo is too large (max %d MB)", MaxPhotoSize>>20)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return "", "", nil, errors.New("photo is empty")
		}
		return "", "", nil, fmt.Errorf("failed to read photo: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := photoTypes[contentType]
	if !ok {
		return "", "", nil, fmt.Errorf("unsupported photo type %s (jpeg, png or webp)", contentType)
	}
	return contentType, ext, io.MultiReader(bytes.NewReader(head), r), nil
}
