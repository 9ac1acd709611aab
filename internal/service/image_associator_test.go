package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
)

func newTestAssociator(store *memStore, storage *fakeStorage) *ImageAssociator {
	a := NewImageAssociator(fakeImageRepo{s: store}, storage, ImageAssociatorConfig{Bucket: "listings", MaxImages: 3, MaxImageBytes: 4096})
	a.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return a
}

func TestAttachObjectKeysAndOrder(t *testing.T) {
	store := newMemStore()
	storage := newFakeStorage()
	a := newTestAssociator(store, storage)
	listing := &domain.Listing{ID: uuid.New()}

	images, err := a.Attach(context.Background(), listing, []ImageSource{
		{URL: "https://img.example.com/front.jpg"},
		pngUpload(t),
	})
	if err != nil {
		t.Fatalf("Attach returned error: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if !images[0].IsMain || images[0].ObjectKey != "" {
		t.Fatalf("hosted url should be main and have no object key: %+v", images[0])
	}
	wantKey := "listings/" + listing.ID.String() + "/20240506T070809Z_1.png"
	if images[1].ObjectKey != wantKey {
		t.Fatalf("expected object key %q, got %q", wantKey, images[1].ObjectKey)
	}
	if _, ok := storage.objects["listings/"+wantKey]; !ok {
		t.Fatalf("expected blob stored under %q", wantKey)
	}
}

func TestAttachWithoutImages(t *testing.T) {
	a := newTestAssociator(newMemStore(), newFakeStorage())
	images, err := a.Attach(context.Background(), &domain.Listing{ID: uuid.New()}, nil)
	if err != nil {
		t.Fatalf("Attach returned error: %v", err)
	}
	if images == nil || len(images) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", images)
	}
}

func TestAttachRejectsOversizedUpload(t *testing.T) {
	storage := newFakeStorage()
	a := newTestAssociator(newMemStore(), storage)
	big := bytes.Repeat([]byte{0x89}, 8192)

	_, err := a.Attach(context.Background(), &domain.Listing{ID: uuid.New()}, []ImageSource{
		{Upload: &ImageUpload{Reader: bytes.NewReader(big), Size: int64(len(big))}},
	})
	if !errors.Is(err, ErrListingValidation) {
		t.Fatalf("expected ErrListingValidation, got %v", err)
	}
	if storage.uploads != 0 {
		t.Fatal("oversized upload must not reach storage")
	}
}

func TestAttachRejectsUnderreportedSize(t *testing.T) {
	a := newTestAssociator(newMemStore(), newFakeStorage())
	data := pngBytes(t)
	padded := append(append([]byte{}, data...), make([]byte, 8192)...)

	_, err := a.Attach(context.Background(), &domain.Listing{ID: uuid.New()}, []ImageSource{
		{Upload: &ImageUpload{Reader: bytes.NewReader(padded), Size: 10}},
	})
	if !errors.Is(err, ErrListingValidation) {
		t.Fatalf("expected ErrListingValidation, got %v", err)
	}
}

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "https://img.example.com/a.jpg"},
		{raw: "  http://img.example.com/a.jpg  "},
		{raw: "ftp://img.example.com/a.jpg", wantErr: true},
		{raw: "/relative/path.jpg", wantErr: true},
		{raw: "https://", wantErr: true},
		{raw: "http://%zz", wantErr: true},
	}
	for _, tc := range tests {
		got, err := validateImageURL(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("validateImageURL(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("validateImageURL(%q) returned error: %v", tc.raw, err)
		}
		if got != strings.TrimSpace(tc.raw) {
			t.Fatalf("validateImageURL(%q) = %q", tc.raw, got)
		}
	}
}
