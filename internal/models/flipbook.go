package models

import (
	"time"
)

type Flipbook struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	Title           string    `json:"title" gorm:"not null"`
	Description     string    `json:"description"`
	PDFURL          string    `json:"pdf_url" gorm:"not null"`
	PDFKey          string    `json:"-" gorm:"not null"`
	IsPublic        bool      `json:"is_public" gorm:"default:false"`
	ViewCount       int64     `json:"view_count" gorm:"default:0"`
	PageCount       int       `json:"page_count" gorm:"default:0"`
	BackgroundColor string    `json:"background_color"`
	LogoURL         string    `json:"logo_url"`
	LogoKey         string    `json:"-"`
	ShowCover       bool      `json:"show_cover" gorm:"default:true"`
	CoverURL        string    `json:"cover_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// TempKey marks an optimistic cache entry that has not been confirmed
	// by the database yet. Never persisted.
	TempKey string `json:"temp_key,omitempty" gorm:"-"`
}

type CreateFlipbookRequest struct {
	Title           string `json:"title" form:"title" validate:"required,max=200"`
	Description     string `json:"description" form:"description" validate:"max=2000"`
	IsPublic        bool   `json:"is_public" form:"is_public"`
	BackgroundColor string `json:"background_color" form:"background_color" validate:"omitempty,hexcolor"`
	ShowCover       *bool  `json:"show_cover" form:"show_cover"`
}

type UpdateFlipbookRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic        *bool   `json:"is_public"`
	BackgroundColor *string `json:"background_color" validate:"omitempty,hexcolor"`
	ShowCover       *bool   `json:"show_cover"`
}
