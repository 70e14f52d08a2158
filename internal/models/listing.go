package models

import (
	"errors"
	"strings"
	"time"
)

// MaxImages caps the number of image references attached to one listing.
const MaxImages = 3

var (
	ErrValidation    = errors.New("validation failed")
	ErrTooManyImages = errors.New("too many images")
)

// Listing is a single annex ad.
type Listing struct {
	ID           string
	Title        string
	Price        string
	Address      string
	Description  string
	Features     []string
	Images       []string
	Campus       string
	ContactName  string
	ContactPhone string
	ContactEmail string
	OwnerID      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListingDraft is the create/edit form payload.
type ListingDraft struct {
	Title          string   `json:"title" validate:"required"`
	Campus         string   `json:"campus" validate:"required"`
	Address        string   `json:"address" validate:"required"`
	Price          string   `json:"price" validate:"required,price"`
	Description    string   `json:"description" validate:"required"`
	FeaturesText   string   `json:"featuresText"`
	ExistingImages []string `json:"existingImages" validate:"dive,required"`
	NewImages      []string `json:"newImages" validate:"dive,required"`
	ContactName    string   `json:"contactName" validate:"required"`
	ContactPhone   string   `json:"contactPhone" validate:"required"`
	ContactEmail   string   `json:"contactEmail" validate:"omitempty,email"`
}

// Normalize trims every text field. Validation runs on the normalized draft so
// whitespace-only values count as empty.
func (d ListingDraft) Normalize() ListingDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Campus = strings.TrimSpace(d.Campus)
	d.Address = strings.TrimSpace(d.Address)
	d.Price = strings.TrimSpace(d.Price)
	d.Description = strings.TrimSpace(d.Description)
	d.ContactName = strings.TrimSpace(d.ContactName)
	d.ContactPhone = strings.TrimSpace(d.ContactPhone)
	d.ContactEmail = strings.TrimSpace(d.ContactEmail)
	return d
}

// Images returns the kept existing references followed by the new ones.
func (d ListingDraft) Images() []string {
	images := make([]string, 0, len(d.ExistingImages)+len(d.NewImages))
	images = append(images, d.ExistingImages...)
	return append(images, d.NewImages...)
}

// Features splits FeaturesText into one feature per non-blank line.
func (d ListingDraft) Features() []string {
	return ParseFeatures(d.FeaturesText)
}

func ParseFeatures(text string) []string {
	features := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if f := strings.TrimSpace(line); f != "" {
			features = append(features, f)
		}
	}
	return features
}

// DraftFrom populates a form from an existing listing.
func DraftFrom(l Listing) ListingDraft {
	existing := make([]string, len(l.Images))
	copy(existing, l.Images)
	return ListingDraft{
		Title:          l.Title,
		Campus:         l.Campus,
		Address:        l.Address,
		Price:          RawPrice(l.Price),
		Description:    l.Description,
		FeaturesText:   strings.Join(l.Features, "\n"),
		ExistingImages: existing,
		NewImages:      []string{},
		ContactName:    l.ContactName,
		ContactPhone:   l.ContactPhone,
		ContactEmail:   l.ContactEmail,
	}
}

// Apply copies the draft fields onto l. The draft must already be valid.
func (d ListingDraft) Apply(l Listing) Listing {
	l.Title = d.Title
	l.Campus = d.Campus
	l.Address = d.Address
	l.Price = MustFormatPrice(d.Price)
	l.Description = d.Description
	l.Features = d.Features()
	l.Images = d.Images()
	l.ContactName = d.ContactName
	l.ContactPhone = d.ContactPhone
	l.ContactEmail = d.ContactEmail
	return l
}

// AddImages appends added to current. When the result would exceed MaxImages
// the original slice is returned unchanged together with ErrTooManyImages.
func AddImages(current []string, added ...string) ([]string, error) {
	if len(current)+len(added) > MaxImages {
		return current, ErrTooManyImages
	}
	out := make([]string, 0, len(current)+len(added))
	out = append(out, current...)
	return append(out, added...), nil
}

// Clone returns a deep copy so callers never share slices with a store.
func (l Listing) Clone() Listing {
	c := l
	if l.Features != nil {
		c.Features = append(make([]string, 0, len(l.Features)), l.Features...)
	}
	if l.Images != nil {
		c.Images = append(make([]string, 0, len(l.Images)), l.Images...)
	}
	return c
}
