package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// EncodeImage reads an uploaded image and returns it as a base64 data URI
// suitable for Memory.ImageURL. It reads at most one byte past the size limit.
func (s *MemoryStore) EncodeImage(ctx context.Context, r io.Reader) (domain.EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.EncodedImage{}, err
	}
	if r == nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: no image provided", domain.ErrDecode)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxImageSize+1))
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if len(data) == 0 {
		return domain.EncodedImage{}, fmt.Errorf("%w: image is empty", domain.ErrDecode)
	}
	if int64(len(data)) > s.maxImageSize {
		return domain.EncodedImage{}, fmt.Errorf("%w: image size must be at most %d bytes", domain.ErrValidation, s.maxImageSize)
	}

	mtype := mimetype.Detect(data)
	contentType := mtype.String()
	if !strings.HasPrefix(contentType, "image/") {
		return domain.EncodedImage{}, fmt.Errorf("%w: %s is not an image", domain.ErrValidation, contentType)
	}
	// Drop parameters such as "; charset=utf-8" that svg detection may add.
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	return domain.EncodedImage{
		DataURI:     "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}
