package models

import "time"

// Product represents a product in the store.
// The photo columns are never serialized; the payload is served raw by the photo endpoint.
type Product struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string    `json:"name" gorm:"type:varchar(200);not null"`
	Slug             string    `json:"slug" gorm:"type:varchar(220);index"`
	Description      string    `json:"description" gorm:"type:text"`
	Price            float64   `json:"price"`
	Quantity         int       `json:"quantity"`
	CategoryID       string    `json:"categoryId" gorm:"type:varchar(36);index"`
	Category         *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Shipping         bool      `json:"shipping"`
	PhotoData        []byte    `json:"-"`
	PhotoContentType string    `json:"-" gorm:"type:varchar(100)"`
	CreatedAt        time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProductInput is the field set accepted when a product is created or replaced.
type ProductInput struct {
	Name        string   `json:"name" form:"name" validate:"required,max=200"`
	Description string   `json:"description" form:"description" validate:"required"`
	Price       *float64 `json:"price" form:"price" validate:"required,gte=0"`
	CategoryID  string   `json:"category" form:"category" validate:"required"`
	Quantity    *int     `json:"quantity" form:"quantity" validate:"required,gte=0"`
	Shipping    bool     `json:"shipping" form:"shipping"`
}

// Photo is a binary image payload with its MIME type.
type Photo struct {
	Data        []byte
	ContentType string
}

// Photo returns the inline payload and whether one is present.
func (p *Product) Photo() (Photo, bool) {
	if len(p.PhotoData) == 0 {
		return Photo{}, false
	}
	return Photo{Data: p.PhotoData, ContentType: p.PhotoContentType}, true
}

// SetPhoto replaces the inline payload.
func (p *Product) SetPhoto(photo Photo) {
	p.PhotoData = photo.Data
	p.PhotoContentType = photo.ContentType
}

// StripPhoto drops the payload so the product can be returned in a listing.
func (p *Product) StripPhoto() {
	p.PhotoData = nil
	p.PhotoContentType = ""
}

// Apply copies a validated input onto the product and recomputes the slug.
func (p *Product) Apply(in ProductInput) {
	p.Name = in.Name
	p.Slug = Slugify(in.Name)
	p.Description = in.Description
	p.CategoryID = in.CategoryID
	p.Shipping = in.Shipping
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
}
