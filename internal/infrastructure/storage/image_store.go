package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrStorage wraps every failure to persist an upload.
var ErrStorage = errors.New("image storage failed")

const previewSuffix = "_preview"

// Upload is a received image file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageRef is the durable reference kept on a listing.
type ImageRef struct {
	URL string
	Key string
}

// ObjectStorage is the blob backend; *MinIOStorage satisfies it.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageStore validates, normalises and stores listing images.
type ImageStore struct {
	objects   ObjectStorage
	processor *ImageProcessor
	prefix    string
	timeout   time.Duration
}

func NewImageStore(objects ObjectStorage, processor *ImageProcessor, prefix string, timeout time.Duration) *ImageStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ImageStore{
		objects:   objects,
		processor: processor,
		prefix:    strings.Trim(prefix, "/"),
		timeout:   timeout,
	}
}

// Store uploads the image and its preview. Invalid input yields
// ErrInvalidImage, backend failures ErrStorage.
// The upload is detached from ctx cancellation but bounded by the store timeout.
func (s *ImageStore) Store(ctx context.Context, up Upload) (ImageRef, error) {
	if err := s.processor.ValidateImage(up.Data); err != nil {
		return ImageRef{}, err
	}

	original, preview, err := s.processor.Process(up.Data)
	if err != nil {
		return ImageRef{}, err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	key := fmt.Sprintf("%s/%s.jpg", s.prefix, uuid.NewString())

	url, err := s.objects.Upload(ctx, key, original, "image/jpeg")
	if err != nil {
		return ImageRef{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if _, err := s.objects.Upload(ctx, PreviewKey(key), preview, "image/jpeg"); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			zerolog.Ctx(ctx).Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned image")
		}
		return ImageRef{}, fmt.Errorf("%w: preview: %v", ErrStorage, err)
	}

	zerolog.Ctx(ctx).Debug().Str("key", key).Str("filename", up.Filename).Msg("image stored")
	return ImageRef{URL: url, Key: key}, nil
}

// Delete removes an image and its preview.
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return errors.Join(
		s.objects.Delete(ctx, key),
		s.objects.Delete(ctx, PreviewKey(key)),
	)
}

// PreviewURL returns the 250x200 variant URL for a stored image URL.
// URLs not produced by this store are returned unchanged.
func (s *ImageStore) PreviewURL(url string) string {
	if !strings.HasSuffix(url, ".jpg") || strings.HasSuffix(url, previewSuffix+".jpg") {
		return url
	}
	return strings.TrimSuffix(url, ".jpg") + previewSuffix + ".jpg"
}

// PreviewKey derives the preview object key from an image key.
func PreviewKey(key string) string {
	return strings.TrimSuffix(key, ".jpg") + previewSuffix + ".jpg"
}
