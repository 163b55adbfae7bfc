package domain

import "time"

// Plano represents a downloadable technical drawing sold in the catalog.
type Plano struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	MachineType string    `json:"machine_type,omitempty"`
	FileRef     *string   `json:"file_ref,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	PageCount   int       `json:"page_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreatePlanoInput holds the parameters for creating a plano. Drawing holds
// the technical document itself; Image an optional cover image.
type CreatePlanoInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	Price       int64   `json:"price" validate:"gte=0"`
	MachineType string  `json:"machine_type" validate:"max=255"`
	PageCount   int     `json:"page_count" validate:"gt=0"`
	Drawing     *Attachment
	Image       *Attachment
}

// UpdatePlanoInput holds the parameters for updating a plano. Nil fields are
// left unchanged.
type UpdatePlanoInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	MachineType *string `json:"machine_type" validate:"omitempty,max=255"`
	PageCount   *int    `json:"page_count" validate:"omitempty,gt=0"`
	Drawing     *Attachment
	Image       *Attachment
}
