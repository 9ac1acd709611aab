package http

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/service"
	"github.com/njprem/Joestate_APP_BackEnd/internal/util"
)

type ListingHandler struct {
	listings *service.ListingService
}

type createListingRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	Area          *float64 `json:"area"`
	Location      string   `json:"location"`
	RoomCount     int      `json:"room_count"`
	BathCount     int      `json:"bath_count"`
	Type          string   `json:"type"`
	Purpose       string   `json:"purpose"`
	RentFrequency string   `json:"rent_frequency"`
	ImageURLs     []string `json:"image_urls"`
}

func RegisterListings(e *echo.Echo, identity IdentityProvider, listings *service.ListingService) {
	handler := &ListingHandler{listings: listings}

	group := e.Group("/api/properties")
	group.GET("/search", handler.search, OptionalAuth(identity))
	group.GET("/featured", handler.featured, OptionalAuth(identity))
	group.GET("/locations", handler.suggestLocations)
	group.GET("/:id", handler.get, OptionalAuth(identity))
	group.POST("", handler.create, RequireAuth(identity))
}

func (h *ListingHandler) search(c echo.Context) error {
	filter, err := parseListingFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	views, err := h.listings.Search(c.Request().Context(), CurrentCaller(c), filter)
	if err != nil {
		return respondError(c, err, "unable to search properties")
	}
	return c.JSON(http.StatusOK, listingsEnvelope(views))
}

func (h *ListingHandler) featured(c echo.Context) error {
	views, err := h.listings.Featured(c.Request().Context(), CurrentCaller(c))
	if err != nil {
		return respondError(c, err, "unable to load featured properties")
	}
	return c.JSON(http.StatusOK, listingsEnvelope(views))
}

func (h *ListingHandler) get(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	view, err := h.listings.Get(c.Request().Context(), CurrentCaller(c), id)
	if err != nil {
		return respondError(c, err, "unable to load property")
	}
	return c.JSON(http.StatusOK, util.Data("property", view))
}

func (h *ListingHandler) suggestLocations(c echo.Context) error {
	locations, err := h.listings.SuggestLocations(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err, "unable to suggest locations")
	}
	return c.JSON(http.StatusOK, util.Data("locations", locations))
}

func (h *ListingHandler) create(c echo.Context) error {
	caller := CurrentCaller(c)

	var (
		input   service.ListingCreateInput
		closers []io.Closer
		err     error
	)
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	contentType := strings.ToLower(c.Request().Header.Get(echo.HeaderContentType))
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		input, closers, err = parseMultipartListing(c)
	} else {
		input, err = parseJSONListing(c)
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	view, err := h.listings.Create(c.Request().Context(), caller, input)
	if err != nil {
		return respondError(c, err, "unable to create property")
	}
	return c.JSON(http.StatusCreated, util.Envelope{
		"property": view,
		"message":  "Property listed successfully",
	})
}

func parseJSONListing(c echo.Context) (service.ListingCreateInput, error) {
	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return service.ListingCreateInput{}, errors.New("invalid request body")
	}
	if req.Price == nil {
		return service.ListingCreateInput{}, errors.New("price is required")
	}
	if req.Area == nil {
		return service.ListingCreateInput{}, errors.New("area is required")
	}

	images := make([]service.ImageSource, 0, len(req.ImageURLs))
	for _, raw := range req.ImageURLs {
		images = append(images, service.ImageSource{URL: raw})
	}
	return service.ListingCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         *req.Price,
		Area:          *req.Area,
		Location:      req.Location,
		RoomCount:     req.RoomCount,
		BathCount:     req.BathCount,
		Type:          domain.ListingType(req.Type),
		Purpose:       domain.ListingPurpose(req.Purpose),
		RentFrequency: domain.RentFrequency(req.RentFrequency),
		Images:        images,
	}, nil
}

// parseMultipartListing reads the form fields and opens every file under
// "images". Uploaded files come first, followed by any "image_urls" values.
func parseMultipartListing(c echo.Context) (service.ListingCreateInput, []io.Closer, error) {
	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return service.ListingCreateInput{}, nil, errors.New("invalid multipart form")
	}
	form := c.Request().MultipartForm

	price, err := requiredFloat(c.FormValue("price"), "price")
	if err != nil {
		return service.ListingCreateInput{}, nil, err
	}
	area, err := requiredFloat(c.FormValue("area"), "area")
	if err != nil {
		return service.ListingCreateInput{}, nil, err
	}
	rooms, err := optionalInt(c.FormValue("room_count"), "room_count")
	if err != nil {
		return service.ListingCreateInput{}, nil, err
	}
	baths, err := optionalInt(c.FormValue("bath_count"), "bath_count")
	if err != nil {
		return service.ListingCreateInput{}, nil, err
	}

	var (
		images  []service.ImageSource
		closers []io.Closer
	)
	for _, fh := range form.File["images"] {
		file, err := fh.Open()
		if err != nil {
			for _, closer := range closers {
				_ = closer.Close()
			}
			return service.ListingCreateInput{}, nil, fmt.Errorf("unable to read image %q", fh.Filename)
		}
		closers = append(closers, file)
		images = append(images, service.ImageSource{Upload: uploadFromHeader(fh, file)})
	}
	for _, raw := range form.Value["image_urls"] {
		images = append(images, service.ImageSource{URL: raw})
	}

	return service.ListingCreateInput{
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		Price:         price,
		Area:          area,
		Location:      c.FormValue("location"),
		RoomCount:     rooms,
		BathCount:     baths,
		Type:          domain.ListingType(c.FormValue("type")),
		Purpose:       domain.ListingPurpose(c.FormValue("purpose")),
		RentFrequency: domain.RentFrequency(c.FormValue("rent_frequency")),
		Images:        images,
	}, closers, nil
}

func uploadFromHeader(fh *multipart.FileHeader, file multipart.File) *service.ImageUpload {
	return &service.ImageUpload{
		Reader:      file,
		Size:        fh.Size,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
	}
}

// parseListingFilter reads the search query string. Blank parameters are
// treated as absent. Both camelCase and snake_case names are accepted.
func parseListingFilter(c echo.Context) (domain.ListingFilter, error) {
	var filter domain.ListingFilter

	if v := queryValue(c, "location"); v != "" {
		filter.Location = &v
	}
	if v := queryValue(c, "purpose"); v != "" {
		purpose, ok := domain.ParseListingPurpose(v)
		if !ok {
			return filter, fmt.Errorf("unknown purpose %q", v)
		}
		filter.Purpose = &purpose
	}
	if v := queryValue(c, "type"); v != "" {
		listingType, ok := domain.ParseListingType(v)
		if !ok {
			return filter, fmt.Errorf("unknown property type %q", v)
		}
		filter.Type = &listingType
	}
	if v := queryValue(c, "rentFrequency", "rent_frequency"); v != "" {
		frequency, ok := domain.ParseRentFrequency(v)
		if !ok {
			return filter, fmt.Errorf("unknown rent frequency %q", v)
		}
		filter.RentFrequency = &frequency
	}

	floats := []struct {
		target **float64
		names  []string
	}{
		{&filter.MinPrice, []string{"minPrice", "min_price"}},
		{&filter.MaxPrice, []string{"maxPrice", "max_price"}},
		{&filter.MinArea, []string{"minArea", "min_area"}},
		{&filter.MaxArea, []string{"maxArea", "max_area"}},
	}
	for _, f := range floats {
		raw := queryValue(c, f.names...)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return filter, fmt.Errorf("%s must be a number", f.names[0])
		}
		*f.target = &value
	}

	ints := []struct {
		target **int
		name   string
	}{
		{&filter.MinBeds, "beds"},
		{&filter.MinBaths, "baths"},
	}
	for _, f := range ints {
		raw := queryValue(c, f.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("%s must be a whole number", f.name)
		}
		*f.target = &value
	}

	return filter, nil
}

func queryValue(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
			return v
		}
	}
	return ""
}

func requiredFloat(raw, name string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return value, nil
}

func optionalInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", name)
	}
	return value, nil
}

func listingsEnvelope(views []domain.ListingView) util.Envelope {
	if views == nil {
		views = []domain.ListingView{}
	}
	return util.Envelope{
		"properties": views,
		"count":      len(views),
	}
}
