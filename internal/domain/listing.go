package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ListingType string

const (
	ListingTypeApartment ListingType = "apartment"
	ListingTypeVilla     ListingType = "villa"
	ListingTypeHouse     ListingType = "house"
	ListingTypeChalet    ListingType = "chalet"
	ListingTypeStudio    ListingType = "studio"
	ListingTypeShop      ListingType = "shop"
	ListingTypeOffice    ListingType = "office"
	ListingTypeWarehouse ListingType = "warehouse"
	ListingTypeFarm      ListingType = "farm"
	ListingTypeLand      ListingType = "land"
)

type ListingPurpose string

const (
	ListingPurposeRent ListingPurpose = "rent"
	ListingPurposeBuy  ListingPurpose = "buy"
)

type RentFrequency string

const (
	RentFrequencyDaily   RentFrequency = "daily"
	RentFrequencyWeekly  RentFrequency = "weekly"
	RentFrequencyMonthly RentFrequency = "monthly"
	RentFrequencyYearly  RentFrequency = "yearly"
	RentFrequencyNone    RentFrequency = "none"
)

type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
	ListingStatusSold   ListingStatus = "sold"
	ListingStatusRented ListingStatus = "rented"
)

var listingTypes = []ListingType{
	ListingTypeApartment, ListingTypeVilla, ListingTypeHouse, ListingTypeChalet, ListingTypeStudio,
	ListingTypeShop, ListingTypeOffice, ListingTypeWarehouse, ListingTypeFarm, ListingTypeLand,
}

var rentFrequencies = []RentFrequency{
	RentFrequencyDaily, RentFrequencyWeekly, RentFrequencyMonthly, RentFrequencyYearly, RentFrequencyNone,
}

// ParseListingType accepts the enum value in any letter case.
func ParseListingType(raw string) (ListingType, bool) {
	value := ListingType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range listingTypes {
		if t == value {
			return t, true
		}
	}
	return "", false
}

func ParseListingPurpose(raw string) (ListingPurpose, bool) {
	switch ListingPurpose(strings.ToLower(strings.TrimSpace(raw))) {
	case ListingPurposeRent:
		return ListingPurposeRent, true
	case ListingPurposeBuy:
		return ListingPurposeBuy, true
	default:
		return "", false
	}
}

func ParseRentFrequency(raw string) (RentFrequency, bool) {
	value := RentFrequency(strings.ToLower(strings.TrimSpace(raw)))
	for _, f := range rentFrequencies {
		if f == value {
			return f, true
		}
	}
	return "", false
}

type Listing struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	OwnerID       uuid.UUID      `db:"owner_id" json:"owner_id"`
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	Price         float64        `db:"price" json:"price"`
	Area          float64        `db:"area" json:"area"`
	Location      string         `db:"location" json:"location"`
	RoomCount     int            `db:"room_count" json:"room_count"`
	BathCount     int            `db:"bath_count" json:"bath_count"`
	Type          ListingType    `db:"type" json:"type"`
	Purpose       ListingPurpose `db:"purpose" json:"purpose"`
	RentFrequency RentFrequency  `db:"rent_frequency" json:"rent_frequency"`
	Status        ListingStatus  `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

func (l *Listing) IsActive() bool {
	return l != nil && l.Status == ListingStatusActive
}

// ListingImage references stored bytes for one listing. Position orders the
// gallery; the image at position 0 is the main image.
type ListingImage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	URL       string    `db:"url" json:"url"`
	ObjectKey string    `db:"object_key" json:"-"`
	IsMain    bool      `db:"is_main" json:"is_main"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ListingView is the externally visible projection of a listing. IsFavorite is
// relative to the caller the view was built for.
type ListingView struct {
	ID             uuid.UUID      `json:"property_id"`
	OwnerID        uuid.UUID      `json:"owner_id"`
	OwnerName      string         `json:"owner_name"`
	OwnerPhone     *string        `json:"owner_phone"`
	OwnerAvatarURL *string        `json:"owner_profile_picture_url"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Price          float64        `json:"price"`
	Area           float64        `json:"area"`
	Location       string         `json:"location"`
	RoomCount      int            `json:"room_count"`
	BathCount      int            `json:"bath_count"`
	Type           ListingType    `json:"type"`
	Purpose        ListingPurpose `json:"purpose"`
	RentFrequency  RentFrequency  `json:"rent_frequency"`
	Status         ListingStatus  `json:"status"`
	CreatedAt      time.Time      `json:"date_posted"`
	ImageURLs      []string       `json:"image_urls"`
	IsFavorite     bool           `json:"is_favorite"`
}
