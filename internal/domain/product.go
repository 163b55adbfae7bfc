package domain

import "time"

// Product represents a product in the catalog. The backend owns the record;
// this service holds a read-through cache.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           int64     `json:"price"`
	Stock           int       `json:"stock"`
	CategoryID      *string   `json:"category_id,omitempty"`
	CategoryName    string    `json:"category_name,omitempty"`
	ImageURL        *string   `json:"image_url,omitempty"`
	Characteristics []string  `json:"characteristics,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateProductInput holds the parameters for creating a product.
// Image holds an optional binary attachment sent as a multipart part.
type CreateProductInput struct {
	Name            string   `json:"name" validate:"required,min=1,max=255"`
	Description     string   `json:"description" validate:"max=5000"`
	Price           int64    `json:"price" validate:"gte=0"`
	Stock           int      `json:"stock" validate:"gte=0"`
	CategoryID      *string  `json:"category_id" validate:"omitempty"`
	Characteristics []string `json:"characteristics"`
	Image           *Attachment
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name            *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	Price           *int64   `json:"price" validate:"omitempty,gte=0"`
	Stock           *int     `json:"stock" validate:"omitempty,gte=0"`
	CategoryID      *string  `json:"category_id" validate:"omitempty"`
	Characteristics []string `json:"characteristics"`
	Image           *Attachment
}

// Attachment is a binary payload (image, drawing file) carried alongside
// scalar fields in a multipart request to the backend.
type Attachment struct {
	FieldName string
	FileName  string
	Content   []byte
}
