package domain

import "github.com/google/uuid"

// ListingFilter holds the optional search constraints. A nil field places no
// constraint on its dimension; present fields are combined with AND.
type ListingFilter struct {
	Location      *string
	Purpose       *ListingPurpose
	Type          *ListingType
	RentFrequency *RentFrequency
	MinPrice      *float64
	MaxPrice      *float64
	MinArea       *float64
	MaxArea       *float64
	MinBeds       *int
	MinBaths      *int
}

func (f ListingFilter) IsEmpty() bool {
	return f.Location == nil && f.Purpose == nil && f.Type == nil && f.RentFrequency == nil &&
		f.MinPrice == nil && f.MaxPrice == nil && f.MinArea == nil && f.MaxArea == nil &&
		f.MinBeds == nil && f.MinBaths == nil
}

type ListingOrder string

const (
	// ListingOrderInserted is oldest first with id as tie breaker.
	ListingOrderInserted ListingOrder = "inserted"
	ListingOrderNewest   ListingOrder = "newest"
)

// ListingQuery is the predicate handed to the listing store. Filter carries the
// caller supplied constraints; the remaining fields are fixed predicates set by
// the service layer.
type ListingQuery struct {
	Filter  ListingFilter
	Status  *ListingStatus
	OwnerID *uuid.UUID
	IDs     []uuid.UUID
	Order   ListingOrder
	Limit   int
}
