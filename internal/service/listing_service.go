package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
)

const (
	featuredLimit           = 3
	locationSuggestionLimit = 5
	locationQueryMinRunes   = 2
)

type ListingCreateInput struct {
	Title         string
	Description   string
	Price         float64
	Area          float64
	Location      string
	RoomCount     int
	BathCount     int
	Type          domain.ListingType
	Purpose       domain.ListingPurpose
	RentFrequency domain.RentFrequency
	Images        []ImageSource
}

type ListingService struct {
	listings   ports.ListingRepository
	images     ports.ListingImageRepository
	users      ports.UserRepository
	favorites  *FavoriteService
	associator *ImageAssociator
	uow        ports.UnitOfWork
	locations  ports.LocationCache
	logger     *slog.Logger
}

// NewListingService wires the listing core. locations may be nil, in which
// case suggestions always hit the store.
func NewListingService(
	listings ports.ListingRepository,
	images ports.ListingImageRepository,
	users ports.UserRepository,
	favorites *FavoriteService,
	associator *ImageAssociator,
	uow ports.UnitOfWork,
	locations ports.LocationCache,
	logger *slog.Logger,
) *ListingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingService{
		listings:   listings,
		images:     images,
		users:      users,
		favorites:  favorites,
		associator: associator,
		uow:        uow,
		locations:  locations,
		logger:     logger,
	}
}

// Search returns active listings matching every present filter field, oldest
// first. The location filter is a case-insensitive substring match.
func (s *ListingService) Search(ctx context.Context, caller *domain.Caller, filter domain.ListingFilter) ([]domain.ListingView, error) {
	if !filter.IsEmpty() {
		if err := validateFilter(filter); err != nil {
			return nil, err
		}
	}
	active := domain.ListingStatusActive
	return s.queryForCaller(ctx, caller, domain.ListingQuery{
		Filter: filter,
		Status: &active,
		Order:  domain.ListingOrderInserted,
	})
}

func (s *ListingService) Featured(ctx context.Context, caller *domain.Caller) ([]domain.ListingView, error) {
	active := domain.ListingStatusActive
	return s.queryForCaller(ctx, caller, domain.ListingQuery{
		Status: &active,
		Order:  domain.ListingOrderNewest,
		Limit:  featuredLimit,
	})
}

func (s *ListingService) Get(ctx context.Context, caller *domain.Caller, id uuid.UUID) (*domain.ListingView, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: load listing: %w", ErrStorageFailure, err)
	}
	favorites, err := s.favorites.IDsFavoritedBy(ctx, caller)
	if err != nil {
		return nil, err
	}
	views, err := s.project(ctx, []domain.Listing{*listing}, favorites)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListMine returns every listing the caller owns regardless of status.
func (s *ListingService) ListMine(ctx context.Context, caller *domain.Caller) ([]domain.ListingView, error) {
	if caller.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	ownerID := caller.UserID
	return s.queryForCaller(ctx, caller, domain.ListingQuery{OwnerID: &ownerID})
}

// ListPublicByOwner backs public profile pages. Favorite flags are not
// computed there, so every view has IsFavorite false.
func (s *ListingService) ListPublicByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ListingView, error) {
	listings, err := s.listings.Query(ctx, domain.ListingQuery{OwnerID: &ownerID})
	if err != nil {
		return nil, fmt.Errorf("%w: query listings: %w", ErrStorageFailure, err)
	}
	return s.project(ctx, listings, domain.FavoriteSet{})
}

// ListFavorites returns the caller's favorite listings, most recently
// favorited first.
func (s *ListingService) ListFavorites(ctx context.Context, caller *domain.Caller) ([]domain.ListingView, error) {
	if caller.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	ids, err := s.favorites.FavoriteIDs(ctx, caller)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.ListingView{}, nil
	}

	listings, err := s.listings.Query(ctx, domain.ListingQuery{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("%w: query listings: %w", ErrStorageFailure, err)
	}
	byID := make(map[uuid.UUID]domain.Listing, len(listings))
	for _, listing := range listings {
		byID[listing.ID] = listing
	}
	ordered := make([]domain.Listing, 0, len(listings))
	for _, id := range ids {
		if listing, ok := byID[id]; ok {
			ordered = append(ordered, listing)
		}
	}
	return s.project(ctx, ordered, domain.NewFavoriteSet(ids...))
}

// SuggestLocations returns up to five distinct stored locations containing
// query, ignoring case. Queries shorter than two characters return nothing.
func (s *ListingService) SuggestLocations(ctx context.Context, query string) ([]string, error) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < locationQueryMinRunes {
		return []string{}, nil
	}

	if s.locations != nil {
		cached, ok, err := s.locations.Get(ctx, trimmed)
		if err != nil {
			s.logger.Warn("location cache read failed", slog.String("query", trimmed), slog.String("error", err.Error()))
		} else if ok {
			return truncateLocations(cached), nil
		}
	}

	locations, err := s.listings.DistinctLocations(ctx, trimmed, locationSuggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: suggest locations: %w", ErrStorageFailure, err)
	}
	locations = truncateLocations(locations)

	if s.locations != nil {
		if err := s.locations.Set(ctx, trimmed, locations); err != nil {
			s.logger.Warn("location cache write failed", slog.String("query", trimmed), slog.String("error", err.Error()))
		}
	}
	return locations, nil
}

// Create stores a new active listing owned by the caller and attaches its
// images in the same transaction.
func (s *ListingService) Create(ctx context.Context, caller *domain.Caller, input ListingCreateInput) (*domain.ListingView, error) {
	if caller.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	listing, err := normalizeListingInput(input)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: load owner: %w", ErrStorageFailure, err)
	}
	listing.OwnerID = owner.ID

	var (
		stored *domain.Listing
		images []domain.ListingImage
	)
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.listings.Create(ctx, listing)
		if err != nil {
			return fmt.Errorf("%w: create listing: %w", ErrStorageFailure, err)
		}
		attached, err := s.associator.Attach(ctx, created, input.Images)
		if err != nil {
			return err
		}
		stored, images = created, attached
		return nil
	})
	if err != nil {
		if len(images) > 0 {
			s.associator.Discard(ctx, images)
		}
		return nil, err
	}

	s.logger.Info("listing created",
		slog.String("listing_id", stored.ID.String()),
		slog.String("owner_id", owner.ID.String()),
		slog.Int("images", len(images)))

	view := ProjectListing(*stored, owner, images, nil)
	return &view, nil
}

func (s *ListingService) queryForCaller(ctx context.Context, caller *domain.Caller, query domain.ListingQuery) ([]domain.ListingView, error) {
	listings, err := s.listings.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query listings: %w", ErrStorageFailure, err)
	}
	if len(listings) == 0 {
		return []domain.ListingView{}, nil
	}
	favorites, err := s.favorites.IDsFavoritedBy(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, listings, favorites)
}

func (s *ListingService) project(ctx context.Context, listings []domain.Listing, favorites domain.FavoriteSet) ([]domain.ListingView, error) {
	views := make([]domain.ListingView, 0, len(listings))
	if len(listings) == 0 {
		return views, nil
	}

	listingIDs := make([]uuid.UUID, 0, len(listings))
	ownerIDs := make([]uuid.UUID, 0, len(listings))
	seenOwners := make(map[uuid.UUID]struct{}, len(listings))
	for _, listing := range listings {
		listingIDs = append(listingIDs, listing.ID)
		if _, ok := seenOwners[listing.OwnerID]; !ok {
			seenOwners[listing.OwnerID] = struct{}{}
			ownerIDs = append(ownerIDs, listing.OwnerID)
		}
	}

	images, err := s.images.ListByListingIDs(ctx, listingIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load images: %w", ErrStorageFailure, err)
	}
	owners, err := s.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load owners: %w", ErrStorageFailure, err)
	}

	for _, listing := range listings {
		var owner *domain.User
		if u, ok := owners[listing.OwnerID]; ok {
			owner = &u
		}
		views = append(views, ProjectListing(listing, owner, images[listing.ID], favorites))
	}
	return views, nil
}

func normalizeListingInput(input ListingCreateInput) (domain.Listing, error) {
	title := strings.TrimSpace(input.Title)
	location := strings.TrimSpace(input.Location)

	switch {
	case title == "":
		return domain.Listing{}, fmt.Errorf("%w: title is required", ErrListingValidation)
	case location == "":
		return domain.Listing{}, fmt.Errorf("%w: location is required", ErrListingValidation)
	case !isFinite(input.Price):
		return domain.Listing{}, fmt.Errorf("%w: price must be a finite number", ErrListingValidation)
	case !isFinite(input.Area):
		return domain.Listing{}, fmt.Errorf("%w: area must be a finite number", ErrListingValidation)
	case input.Price < 0:
		return domain.Listing{}, fmt.Errorf("%w: price cannot be negative", ErrListingValidation)
	case input.Area < 1:
		return domain.Listing{}, fmt.Errorf("%w: area must be at least 1", ErrListingValidation)
	case input.RoomCount < 0:
		return domain.Listing{}, fmt.Errorf("%w: room count cannot be negative", ErrListingValidation)
	case input.BathCount < 0:
		return domain.Listing{}, fmt.Errorf("%w: bath count cannot be negative", ErrListingValidation)
	}

	listingType, ok := domain.ParseListingType(string(input.Type))
	if !ok {
		return domain.Listing{}, fmt.Errorf("%w: unknown property type %q", ErrListingValidation, input.Type)
	}
	purpose, ok := domain.ParseListingPurpose(string(input.Purpose))
	if !ok {
		return domain.Listing{}, fmt.Errorf("%w: unknown purpose %q", ErrListingValidation, input.Purpose)
	}

	frequency := domain.RentFrequencyNone
	if strings.TrimSpace(string(input.RentFrequency)) != "" {
		parsed, ok := domain.ParseRentFrequency(string(input.RentFrequency))
		if !ok {
			return domain.Listing{}, fmt.Errorf("%w: unknown rent frequency %q", ErrListingValidation, input.RentFrequency)
		}
		frequency = parsed
	}
	if purpose == domain.ListingPurposeBuy {
		frequency = domain.RentFrequencyNone
	}

	return domain.Listing{
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		Area:          input.Area,
		Location:      location,
		RoomCount:     input.RoomCount,
		BathCount:     input.BathCount,
		Type:          listingType,
		Purpose:       purpose,
		RentFrequency: frequency,
		Status:        domain.ListingStatusActive,
	}, nil
}

func validateFilter(filter domain.ListingFilter) error {
	checks := []struct {
		name  string
		value *float64
	}{
		{"min_price", filter.MinPrice},
		{"max_price", filter.MaxPrice},
		{"min_area", filter.MinArea},
		{"max_area", filter.MaxArea},
	}
	for _, check := range checks {
		if check.value == nil {
			continue
		}
		if !isFinite(*check.value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrListingValidation, check.name)
		}
		if *check.value < 0 {
			return fmt.Errorf("%w: %s cannot be negative", ErrListingValidation, check.name)
		}
	}
	if filter.MinBeds != nil && *filter.MinBeds < 0 {
		return fmt.Errorf("%w: beds cannot be negative", ErrListingValidation)
	}
	if filter.MinBaths != nil && *filter.MinBaths < 0 {
		return fmt.Errorf("%w: baths cannot be negative", ErrListingValidation)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func truncateLocations(locations []string) []string {
	if len(locations) > locationSuggestionLimit {
		return locations[:locationSuggestionLimit]
	}
	if locations == nil {
		return []string{}
	}
	return locations
}
