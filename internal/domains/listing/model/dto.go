package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"wanderlust/internal/shared/validator"
)

// ListingForm is the create/edit form. Field names follow the nested
// listing[...] convention used by the views.
type ListingForm struct {
	Title       string `form:"listing[title]"`
	Description string `form:"listing[description]"`
	Price       string `form:"listing[price]"`
	Location    string `form:"listing[location]"`
	Country     string `form:"listing[country]"`
	Category    string `form:"listing[category]"`
}

func (f *ListingForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Price = strings.TrimSpace(f.Price)
	f.Location = strings.TrimSpace(f.Location)
	f.Country = strings.TrimSpace(f.Country)
	f.Category = strings.TrimSpace(f.Category)
}

func categoryValues() []any {
	out := make([]any, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}

// Validate checks every field and reports them together, in form order.
func (f ListingForm) Validate() error {
	return validator.Validate(f.fields()...).Err()
}

// ValidateWithImage also requires an uploaded image, reported alongside the
// field errors.
func (f ListingForm) ValidateWithImage(hasImage bool) error {
	fields := append(f.fields(), validator.F("image", hasImage, validation.Required))
	return validator.Validate(fields...).Err()
}

func (f ListingForm) fields() []validator.Field {
	return []validator.Field{
		validator.F("title", f.Title, validation.Required, validator.NotBlank),
		validator.F("description", f.Description, validation.Required, validator.NotBlank),
		validator.F("price", f.Price, validation.Required, validator.Decimal, validator.NonNegative),
		validator.F("location", f.Location, validation.Required, validator.NotBlank),
		validator.F("country", f.Country, validation.Required, validator.NotBlank),
		validator.F("category", f.Category, validation.Required, validation.In(categoryValues()...)),
	}
}

// PriceValue parses Price. Call only after Validate.
func (f ListingForm) PriceValue() decimal.Decimal {
	d, _ := decimal.NewFromString(f.Price)
	return d.Round(2)
}

// Apply copies the form onto l.
func (f ListingForm) Apply(l *Listing) {
	l.Title = f.Title
	l.Description = f.Description
	l.Price = f.PriceValue()
	l.Location = f.Location
	l.Country = f.Country
	l.Category = Category(f.Category)
}

// FormFrom prefills the edit form from a stored listing.
func FormFrom(l *Listing) ListingForm {
	return ListingForm{
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price.StringFixed(2),
		Location:    l.Location,
		Country:     l.Country,
		Category:    string(l.Category),
	}
}
