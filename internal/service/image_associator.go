package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/media"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
)

const (
	defaultMaxListingImages = 10
	defaultMaxImageBytes    = int64(5 * 1024 * 1024)
)

type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// ImageSource is one gallery entry, either an uploaded file or an image that
// is already hosted elsewhere. Entries with neither are skipped.
type ImageSource struct {
	Upload *ImageUpload
	URL    string
}

func (s ImageSource) empty() bool {
	if s.Upload != nil {
		return s.Upload.Reader == nil || s.Upload.Size <= 0
	}
	return strings.TrimSpace(s.URL) == ""
}

type ImageAssociatorConfig struct {
	Bucket        string
	MaxImages     int
	MaxImageBytes int64
	Logger        *slog.Logger
}

// ImageAssociator stores a listing's gallery at creation time. The first entry
// that survives skipping becomes the main image.
type ImageAssociator struct {
	images  ports.ListingImageRepository
	storage ports.ObjectStorage

	bucket        string
	maxImages     int
	maxImageBytes int64
	now           func() time.Time
	logger        *slog.Logger
}

func NewImageAssociator(images ports.ListingImageRepository, storage ports.ObjectStorage, cfg ImageAssociatorConfig) *ImageAssociator {
	maxImages := cfg.MaxImages
	if maxImages <= 0 {
		maxImages = defaultMaxListingImages
	}
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageAssociator{
		images:        images,
		storage:       storage,
		bucket:        strings.TrimSpace(cfg.Bucket),
		maxImages:     maxImages,
		maxImageBytes: maxBytes,
		now:           time.Now,
		logger:        logger,
	}
}

type preparedImage struct {
	data        []byte
	contentType string
	extension   string
	url         string
}

// Attach persists one image per non-empty source, in input order. Blobs it
// uploaded are removed again when a later step fails.
func (a *ImageAssociator) Attach(ctx context.Context, listing *domain.Listing, sources []ImageSource) ([]domain.ListingImage, error) {
	if listing == nil {
		return nil, ErrListingNotFound
	}
	prepared, err := a.prepare(sources)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return []domain.ListingImage{}, nil
	}

	stamp := a.now().UTC().Format("20060102T150405Z0700")
	records := make([]domain.ListingImage, 0, len(prepared))
	for idx, item := range prepared {
		record := domain.ListingImage{
			ListingID: listing.ID,
			URL:       item.url,
			IsMain:    idx == 0,
			Position:  idx,
		}
		if item.data != nil {
			objectKey := fmt.Sprintf("listings/%s/%s_%d%s", listing.ID.String(), stamp, idx, item.extension)
			uploaded, err := a.storage.Upload(ctx, a.bucket, objectKey, item.contentType, bytes.NewReader(item.data), int64(len(item.data)))
			if err != nil {
				a.Discard(ctx, records)
				return nil, fmt.Errorf("%w: upload image %d: %w", ErrStorageFailure, idx+1, err)
			}
			record.URL = uploaded
			record.ObjectKey = objectKey
		}
		records = append(records, record)
	}

	if err := a.images.CreateMany(ctx, records); err != nil {
		a.Discard(ctx, records)
		return nil, fmt.Errorf("%w: save images: %w", ErrStorageFailure, err)
	}
	return records, nil
}

// Discard removes uploaded blobs for images whose rows will not survive.
func (a *ImageAssociator) Discard(ctx context.Context, images []domain.ListingImage) {
	for _, image := range images {
		if image.ObjectKey == "" {
			continue
		}
		if err := a.storage.Delete(ctx, a.bucket, image.ObjectKey); err != nil {
			a.logger.Warn("could not remove orphaned listing image",
				slog.String("object_key", image.ObjectKey),
				slog.String("error", err.Error()))
		}
	}
}

func (a *ImageAssociator) prepare(sources []ImageSource) ([]preparedImage, error) {
	kept := make([]ImageSource, 0, len(sources))
	for _, source := range sources {
		if !source.empty() {
			kept = append(kept, source)
		}
	}
	if len(kept) > a.maxImages {
		return nil, fmt.Errorf("%w: maximum %d images allowed", ErrListingValidation, a.maxImages)
	}

	prepared := make([]preparedImage, 0, len(kept))
	for idx, source := range kept {
		if source.Upload == nil {
			ref, err := validateImageURL(source.URL)
			if err != nil {
				return nil, fmt.Errorf("%w: image %d: %v", ErrListingValidation, idx+1, err)
			}
			prepared = append(prepared, preparedImage{url: ref})
			continue
		}

		upload := source.Upload
		if upload.Size > a.maxImageBytes {
			return nil, fmt.Errorf("%w: image %d exceeds size limit (%d bytes)", ErrListingValidation, idx+1, a.maxImageBytes)
		}
		data, info, err := media.Inspect(io.LimitReader(upload.Reader, a.maxImageBytes+1))
		if err != nil {
			if errors.Is(err, media.ErrUnsupportedImage) {
				return nil, fmt.Errorf("%w: image %d: %v", ErrListingValidation, idx+1, err)
			}
			return nil, err
		}
		if int64(len(data)) > a.maxImageBytes {
			return nil, fmt.Errorf("%w: image %d exceeds size limit (%d bytes)", ErrListingValidation, idx+1, a.maxImageBytes)
		}
		prepared = append(prepared, preparedImage{
			data:        data,
			contentType: info.ContentType,
			extension:   info.Extension,
		})
	}
	return prepared, nil
}

func validateImageURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid image url %q", trimmed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("image url %q must be http or https", trimmed)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("image url %q has no host", trimmed)
	}
	return trimmed, nil
}
