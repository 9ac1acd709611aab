package service

import "github.com/njprem/Joestate_APP_BackEnd/internal/domain"

// ProjectListing builds the caller facing view of a listing. A nil owner
// leaves the owner display fields empty. Images are exposed in the order
// given, which is the persisted order with the main image first.
func ProjectListing(listing domain.Listing, owner *domain.User, images []domain.ListingImage, favorites domain.FavoriteSet) domain.ListingView {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		urls = append(urls, image.URL)
	}

	view := domain.ListingView{
		ID:            listing.ID,
		OwnerID:       listing.OwnerID,
		Title:         listing.Title,
		Description:   listing.Description,
		Price:         listing.Price,
		Area:          listing.Area,
		Location:      listing.Location,
		RoomCount:     listing.RoomCount,
		BathCount:     listing.BathCount,
		Type:          listing.Type,
		Purpose:       listing.Purpose,
		RentFrequency: listing.RentFrequency,
		Status:        listing.Status,
		CreatedAt:     listing.CreatedAt,
		ImageURLs:     urls,
		IsFavorite:    favorites.Has(listing.ID),
	}
	if owner != nil {
		view.OwnerName = owner.DisplayName()
		view.OwnerPhone = owner.PhoneNumber
		view.OwnerAvatarURL = owner.ProfilePictureURL
	}
	return view
}
