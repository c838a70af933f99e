package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the fixed set of listing filters shown in the navbar.
type Category string

const (
	CategoryTrending     Category = "Trending"
	CategoryRooms        Category = "Rooms"
	CategoryIconicCities Category = "Iconic Cities"
	CategoryMountains    Category = "Mountains"
	CategoryCastles      Category = "Castles"
	CategoryAmazingPools Category = "Amazing Pools"
	CategoryCamping      Category = "Camping"
	CategoryFarms        Category = "Farms"
	CategoryArctic       Category = "Arctic"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTrending,
	CategoryRooms,
	CategoryIconicCities,
	CategoryMountains,
	CategoryCastles,
	CategoryAmazingPools,
	CategoryCamping,
	CategoryFarms,
	CategoryArctic,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Geometry is a WGS84 point. The zero value is the "not geocoded" sentinel.
type Geometry struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func (g Geometry) IsOrigin() bool {
	return g.Longitude == 0 && g.Latitude == 0
}

type Image struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Listing maps 1:1 to the listings table. ReviewIDs keeps the order reviews
// were added in.
type Listing struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Country     string          `json:"country"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       Image           `json:"image"`
	Geometry    Geometry        `json:"geometry"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	ReviewIDs   []uuid.UUID     `json:"review_ids"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsOwnedBy reports whether userID owns the listing.
func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && l.OwnerID == userID
}

// Person is a user reference resolved for display.
type Person struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// ReviewView is a review joined with its author.
type ReviewView struct {
	ID        uuid.UUID `json:"id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Person   `json:"author,omitempty"`
}

// Detail is a listing with its owner and reviews fully resolved.
type Detail struct {
	Listing
	Owner   *Person      `json:"owner,omitempty"`
	Reviews []ReviewView `json:"reviews"`
}

// EditView is what the edit form needs.
type EditView struct {
	Listing    *Listing
	PreviewURL string
}

// GeoRepairReport summarises one geo repair run.
type GeoRepairReport struct {
	Scanned    int
	Fixed      int
	Unresolved int
}
