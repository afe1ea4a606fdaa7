package storage

import (
	"io"
	"net/http"
	"strings"

	"github.com/rpupo63/project-showcase-backend/errs"
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Image is an uploaded screenshot whose type was sniffed from its bytes.
type Image struct {
	Data        []byte
	ContentType string
}

func (i Image) Extension() string {
	switch i.ContentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}

// ReadImage reads at most maxBytes from r and checks the content is an
// image. The declared content type is ignored.
func ReadImage(r io.Reader, maxBytes int64) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Image{}, errs.NewMalformedPayloadError("screenshot", err)
	}
	if int64(len(data)) > maxBytes {
		return Image{}, errs.NewMaxBodySizeExceededError(maxBytes)
	}
	if len(data) == 0 {
		return Image{}, errs.NewMissingRequiredFieldError("screenshot")
	}

	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	for _, allowed := range allowedImageTypes {
		if contentType == allowed {
			return Image{Data: data, ContentType: contentType}, nil
		}
	}
	return Image{}, errs.NewUnsupportedMediaTypeError(contentType, allowedImageTypes)
}
