package services

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rpupo63/personal-blog-backend/errs"
)

// ImageEncoder checks uploaded images and prepares them for storage on blogs, posts and users.
type ImageEncoder struct {
	maxBytes int
}

func NewImageEncoder(maxBytes int) *ImageEncoder {
	return &ImageEncoder{maxBytes: maxBytes}
}

// Encode validates data as an image and returns the blob to store.
func (e *ImageEncoder) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errs.NewInvalidFieldError("image", "is empty")
	}
	if e.maxBytes > 0 && len(data) > e.maxBytes {
		return nil, errs.NewInvalidFieldError("image", fmt.Sprintf("exceeds %d bytes", e.maxBytes))
	}
	if ct := e.ContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, errs.NewInvalidFieldError("image", fmt.Sprintf("unsupported content type %s", ct))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// EncodePath reads and encodes an image file, e.g. the default profile picture.
func (e *ImageEncoder) EncodePath(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return e.Encode(data)
}

// ContentType sniffs the MIME type from the first bytes.
func (e *ImageEncoder) ContentType(data []byte) string {
	return http.DetectContentType(data)
}
