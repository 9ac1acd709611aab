package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/util"
)

// memStore backs every fake repository so a fake transaction can snapshot
// and restore all tables at once.
type memStore struct {
	mu        sync.Mutex
	clock     time.Time
	users     map[uuid.UUID]domain.User
	listings  []domain.Listing
	images    []domain.ListingImage
	favorites []domain.Favorite

	createManyErr     error
	locationCalls     int
	locationQueries   []string
	favoriteLockCalls int
	pairLocks         map[string]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		users:     make(map[uuid.UUID]domain.User),
		pairLocks: make(map[string]*sync.Mutex),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) addUser(t *testing.T, email, password string) domain.User {
	t.Helper()
	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		t.Fatalf("DerivePassword: %v", err)
	}
	phone := "+20 100 555 0101"
	user := domain.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    "Nour",
		LastName:     "Hassan",
		PhoneNumber:  &phone,
		Role:         domain.UserRoleUser,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	s.mu.Lock()
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	s.mu.Unlock()
	return user
}

func (s *memStore) addListing(l domain.Listing) domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = domain.ListingStatusActive
	}
	if l.RentFrequency == "" {
		l.RentFrequency = domain.RentFrequencyNone
	}
	l.CreatedAt = s.tick()
	s.listings = append(s.listings, l)
	return l
}

type snapshot struct {
	users     map[uuid.UUID]domain.User
	listings  []domain.Listing
	images    []domain.ListingImage
	favorites []domain.Favorite
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make(map[uuid.UUID]domain.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	return snapshot{
		users:     users,
		listings:  append([]domain.Listing(nil), s.listings...),
		images:    append([]domain.ListingImage(nil), s.images...),
		favorites: append([]domain.Favorite(nil), s.favorites...),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.listings = snap.listings
	s.images = snap.images
	s.favorites = snap.favorites
}

type fakeUnitOfWork struct {
	store     *memStore
	commitErr error

	mu    sync.Mutex
	calls int
}

type fakeTxKey struct{}

// fakeTx collects the locks taken inside a transaction so they are held until
// it ends, like pg_advisory_xact_lock.
type fakeTx struct {
	releases []func()
}

func (u *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	u.calls++
	u.mu.Unlock()

	tx := &fakeTx{}
	defer func() {
		for _, release := range tx.releases {
			release()
		}
	}()

	snap := u.store.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, tx)); err != nil {
		u.store.restore(snap)
		return err
	}
	if u.commitErr != nil {
		u.store.restore(snap)
		return fmt.Errorf("commit transaction: %w", u.commitErr)
	}
	return nil
}

func (u *fakeUnitOfWork) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

type fakeListingRepo struct{ s *memStore }

func (r fakeListingRepo) Create(ctx context.Context, listing domain.Listing) (*domain.Listing, error) {
	created := r.s.addListing(listing)
	return &created, nil
}

func (r fakeListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.listings {
		if l.ID == id {
			clone := l
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r fakeListingRepo) Query(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if q.IDs != nil && len(q.IDs) == 0 {
		return []domain.Listing{}, nil
	}
	out := make([]domain.Listing, 0)
	for _, l := range r.s.listings {
		if matchesQuery(l, q) {
			out = append(out, l)
		}
	}
	if q.Order == domain.ListingOrderNewest {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matchesQuery(l domain.Listing, q domain.ListingQuery) bool {
	f := q.Filter
	if f.Location != nil {
		needle := strings.ToLower(strings.TrimSpace(*f.Location))
		if needle != "" && !strings.Contains(strings.ToLower(l.Location), needle) {
			return false
		}
	}
	switch {
	case f.Purpose != nil && l.Purpose != *f.Purpose,
		f.Type != nil && l.Type != *f.Type,
		f.RentFrequency != nil && l.RentFrequency != *f.RentFrequency,
		f.MinPrice != nil && l.Price < *f.MinPrice,
		f.MaxPrice != nil && l.Price > *f.MaxPrice,
		f.MinArea != nil && l.Area < *f.MinArea,
		f.MaxArea != nil && l.Area > *f.MaxArea,
		f.MinBeds != nil && l.RoomCount < *f.MinBeds,
		f.MinBaths != nil && l.BathCount < *f.MinBaths,
		q.Status != nil && l.Status != *q.Status,
		q.OwnerID != nil && l.OwnerID != *q.OwnerID:
		return false
	}
	if len(q.IDs) > 0 {
		for _, id := range q.IDs {
			if id == l.ID {
				return true
			}
		}
		return false
	}
	return true
}

func (r fakeListingRepo) DistinctLocations(ctx context.Context, substring string, limit int) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.locationCalls++
	r.s.locationQueries = append(r.s.locationQueries, substring)

	seen := make(map[string]struct{})
	out := make([]string, 0)
	needle := strings.ToLower(substring)
	for _, l := range r.s.listings {
		if !strings.Contains(strings.ToLower(l.Location), needle) {
			continue
		}
		if _, ok := seen[l.Location]; ok {
			continue
		}
		seen[l.Location] = struct{}{}
		out = append(out, l.Location)
	}
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, l := range r.s.listings {
		if l.ID != id {
			continue
		}
		r.s.listings = append(r.s.listings[:i], r.s.listings[i+1:]...)
		images := r.s.images[:0]
		for _, img := range r.s.images {
			if img.ListingID != id {
				images = append(images, img)
			}
		}
		r.s.images = images
		favorites := r.s.favorites[:0]
		for _, fav := range r.s.favorites {
			if fav.ListingID != id {
				favorites = append(favorites, fav)
			}
		}
		r.s.favorites = favorites
		return nil
	}
	return sql.ErrNoRows
}

type fakeImageRepo struct{ s *memStore }

func (r fakeImageRepo) CreateMany(ctx context.Context, images []domain.ListingImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createManyErr != nil {
		return r.s.createManyErr
	}
	for _, img := range images {
		img.ID = uuid.New()
		img.CreatedAt = r.s.tick()
		r.s.images = append(r.s.images, img)
	}
	return nil
}

func (r fakeImageRepo) ListByListingIDs(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID][]domain.ListingImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[uuid.UUID][]domain.ListingImage)
	for _, img := range r.s.images {
		if _, ok := wanted[img.ListingID]; ok {
			out[img.ListingID] = append(out[img.ListingID], img)
		}
	}
	for id := range out {
		imgs := out[id]
		sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Position < imgs[j].Position })
	}
	return out, nil
}

type fakeUserRepo struct {
	s         *memStore
	createErr error
}

func (r *fakeUserRepo) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, &pgconn.PgError{Code: pgUniqueViolation}
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = user
	return &user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			clone := user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]domain.User, len(ids))
	for _, id := range ids {
		if user, ok := r.s.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	for id, existing := range r.s.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return nil, &pgconn.PgError{Code: pgUniqueViolation}
		}
	}
	user.UpdatedAt = r.s.tick()
	r.s.users[user.ID] = user
	return &user, nil
}

func (r *fakeUserRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	user.ProfilePictureURL = &url
	user.UpdatedAt = r.s.tick()
	r.s.users[id] = user
	return &user, nil
}

type fakeFavoriteRepo struct {
	s *memStore
	// beforeAdd runs at the start of Add, between the service's existence
	// check and its insert.
	beforeAdd func()
}

// Lock holds a per-pair mutex until the surrounding fake transaction ends.
// Outside a transaction it is released straight away.
func (r fakeFavoriteRepo) Lock(ctx context.Context, userID, listingID uuid.UUID) error {
	key := userID.String() + ":" + listingID.String()
	r.s.mu.Lock()
	r.s.favoriteLockCalls++
	pair, ok := r.s.pairLocks[key]
	if !ok {
		pair = &sync.Mutex{}
		r.s.pairLocks[key] = pair
	}
	r.s.mu.Unlock()

	pair.Lock()
	if tx, ok := ctx.Value(fakeTxKey{}).(*fakeTx); ok {
		tx.releases = append(tx.releases, pair.Unlock)
		return nil
	}
	pair.Unlock()
	return nil
}

func (r fakeFavoriteRepo) Add(ctx context.Context, userID, listingID uuid.UUID) (*domain.Favorite, error) {
	if r.beforeAdd != nil {
		r.beforeAdd()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return nil, &pgconn.PgError{Code: pgForeignKeyViolation}
	}
	found := false
	for _, l := range r.s.listings {
		if l.ID == listingID {
			found = true
			break
		}
	}
	if !found {
		return nil, &pgconn.PgError{Code: pgForeignKeyViolation}
	}
	for _, fav := range r.s.favorites {
		if fav.UserID == userID && fav.ListingID == listingID {
			return nil, sql.ErrNoRows
		}
	}
	fav := domain.Favorite{UserID: userID, ListingID: listingID, CreatedAt: r.s.tick()}
	r.s.favorites = append(r.s.favorites, fav)
	return &fav, nil
}

func (r fakeFavoriteRepo) Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, fav := range r.s.favorites {
		if fav.UserID == userID && fav.ListingID == listingID {
			r.s.favorites = append(r.s.favorites[:i], r.s.favorites[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r fakeFavoriteRepo) ListListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matches := make([]domain.Favorite, 0)
	for _, fav := range r.s.favorites {
		if fav.UserID == userID {
			matches = append(matches, fav)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	ids := make([]uuid.UUID, 0, len(matches))
	for _, fav := range matches {
		ids = append(ids, fav.ListingID)
	}
	return ids, nil
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploads   int
	failAfter int
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte), failAfter: -1}
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && f.uploads >= f.failAfter {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.uploads++
	f.objects[bucket+"/"+objectName] = data
	return "https://cdn.example.com/" + bucket + "/" + objectName, nil
}

func (f *fakeStorage) Delete(ctx context.Context, bucket, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+objectName)
	f.deleted = append(f.deleted, objectName)
	return nil
}

type fakeLocationCache struct {
	entries map[string][]string
	gets    int
	sets    int
}

func (c *fakeLocationCache) Get(ctx context.Context, query string) ([]string, bool, error) {
	c.gets++
	v, ok := c.entries[strings.ToLower(query)]
	return v, ok, nil
}

func (c *fakeLocationCache) Set(ctx context.Context, query string, locations []string) error {
	c.sets++
	if c.entries == nil {
		c.entries = make(map[string][]string)
	}
	c.entries[strings.ToLower(query)] = locations
	return nil
}

// listingFixture wires a ListingService over a fresh memStore.
type listingFixture struct {
	store      *memStore
	storage    *fakeStorage
	uow        *fakeUnitOfWork
	cache      *fakeLocationCache
	favorites  *FavoriteService
	associator *ImageAssociator
	svc        *ListingService
}

func newListingFixture() *listingFixture {
	store := newMemStore()
	storage := newFakeStorage()
	uow := &fakeUnitOfWork{store: store}
	cache := &fakeLocationCache{}
	users := &fakeUserRepo{s: store}
	listings := fakeListingRepo{s: store}
	images := fakeImageRepo{s: store}

	favorites := NewFavoriteService(fakeFavoriteRepo{s: store}, listings, users, uow)
	associator := NewImageAssociator(images, storage, ImageAssociatorConfig{Bucket: "listings", MaxImages: 4, MaxImageBytes: 64 * 1024})
	svc := NewListingService(listings, images, users, favorites, associator, uow, cache, nil)
	return &listingFixture{
		store:      store,
		storage:    storage,
		uow:        uow,
		cache:      cache,
		favorites:  favorites,
		associator: associator,
		svc:        svc,
	}
}

func callerFor(user domain.User) *domain.Caller {
	return &domain.Caller{UserID: user.ID, Email: user.Email}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pngUpload(t *testing.T) ImageSource {
	t.Helper()
	data := pngBytes(t)
	return ImageSource{Upload: &ImageUpload{Reader: bytes.NewReader(data), Size: int64(len(data)), FileName: "photo.png"}}
}

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func purposePtr(v domain.ListingPurpose) *domain.ListingPurpose { return &v }

func typePtr(v domain.ListingType) *domain.ListingType { return &v }

var errBoom = errors.New("boom")
