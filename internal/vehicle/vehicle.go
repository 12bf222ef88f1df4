package vehicle

import (
	"fmt"
	"strings"
	"time"
)

// Vehicle availability. StatusSold is terminal and is only ever set by the
// sale operation.
const (
	StatusForSale = "for_sale"
	StatusSold    = "sold"
)

// Fuel types.
const (
	FuelGasoline = "gasoline"
	FuelEthanol  = "ethanol"
	FuelFlex     = "flex"
	FuelDiesel   = "diesel"
	FuelElectric = "electric"
	FuelHybrid   = "hybrid"
)

// Transmission types.
const (
	TransmissionManual    = "manual"
	TransmissionAutomatic = "automatic"
	TransmissionCVT       = "cvt"
)

const maxImages = 10

// Vehicle is the inventory table model. SellerID is immutable after
// creation; BuyerID and SoldAt are stamped exactly once by the sale.
type Vehicle struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Make         string     `gorm:"size:50;index:idx_make_model;not null" json:"make"`
	Model        string     `gorm:"size:100;index:idx_make_model;not null" json:"model"`
	Year         int        `gorm:"index;not null" json:"year"`
	Color        string     `gorm:"size:30;not null" json:"color"`
	Price        float64    `gorm:"index;not null" json:"price"`
	Mileage      int64      `gorm:"not null;default:0" json:"mileage"`
	Fuel         string     `gorm:"size:16;not null" json:"fuel"`
	Transmission string     `gorm:"size:16;not null" json:"transmission"`
	Description  string     `gorm:"size:1000" json:"description,omitempty"`
	ImageURLs    []string   `gorm:"serializer:json" json:"imageUrls,omitempty"`
	Status       string     `gorm:"size:16;index;not null" json:"status"`
	SellerID     string     `gorm:"index;size:36;not null" json:"sellerId"`
	BuyerID      string     `gorm:"size:36" json:"buyerId,omitempty"`
	SoldAt       *time.Time `json:"soldAt,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func validFuel(f string) bool {
	switch f {
	case FuelGasoline, FuelEthanol, FuelFlex, FuelDiesel, FuelElectric, FuelHybrid:
		return true
	}
	return false
}

func validTransmission(tr string) bool {
	switch tr {
	case TransmissionManual, TransmissionAutomatic, TransmissionCVT:
		return true
	}
	return false
}

// CreateInput carries the fields accepted when listing a vehicle.
type CreateInput struct {
	Make         string   `json:"make"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Color        string   `json:"color"`
	Price        float64  `json:"price"`
	Mileage      int64    `json:"mileage"`
	Fuel         string   `json:"fuel"`
	Transmission string   `json:"transmission"`
	Description  string   `json:"description"`
	ImageURLs    []string `json:"imageUrls"`
}

// Validate normalizes the input and returns field-level problems.
func (in *CreateInput) Validate(now time.Time) []string {
	var details []string

	in.Make = strings.TrimSpace(in.Make)
	in.Model = strings.TrimSpace(in.Model)
	in.Color = strings.TrimSpace(in.Color)
	in.Description = strings.TrimSpace(in.Description)
	if in.Fuel == "" {
		in.Fuel = FuelFlex
	}
	if in.Transmission == "" {
		in.Transmission = TransmissionManual
	}

	if len(in.Make) < 2 || len(in.Make) > 50 {
		details = append(details, "make must be between 2 and 50 characters")
	}
	if len(in.Model) < 2 || len(in.Model) > 100 {
		details = append(details, "model must be between 2 and 100 characters")
	}
	if in.Year < 1900 || in.Year > now.Year()+1 {
		details = append(details, fmt.Sprintf("year must be between 1900 and %d", now.Year()+1))
	}
	if len(in.Color) < 2 || len(in.Color) > 30 {
		details = append(details, "color must be between 2 and 30 characters")
	}
	if in.Price < 0 {
		details = append(details, "price must be greater than or equal to zero")
	}
	if in.Mileage < 0 {
		details = append(details, "mileage must be greater than or equal to zero")
	}
	if len(in.Description) > 1000 {
		details = append(details, "description cannot exceed 1000 characters")
	}
	if !validFuel(in.Fuel) {
		details = append(details, "fuel is not a known fuel type")
	}
	if !validTransmission(in.Transmission) {
		details = append(details, "transmission is not a known transmission type")
	}
	if len(in.ImageURLs) > maxImages {
		details = append(details, fmt.Sprintf("a vehicle can have at most %d images", maxImages))
	}

	return details
}

// UpdateInput carries the fields accepted on vehicle update. Status is
// present only so an attempt to change it gets an explicit rejection
// instead of being silently ignored; sold is reachable solely through the
// sale operation.
type UpdateInput struct {
	Make         *string   `json:"make"`
	Model        *string   `json:"model"`
	Year         *int      `json:"year"`
	Color        *string   `json:"color"`
	Price        *float64  `json:"price"`
	Mileage      *int64    `json:"mileage"`
	Fuel         *string   `json:"fuel"`
	Transmission *string   `json:"transmission"`
	Description  *string   `json:"description"`
	ImageURLs    *[]string `json:"imageUrls"`
	Status       *string   `json:"status"`
}

// Validate checks only the fields that are present.
func (in *UpdateInput) Validate(now time.Time) []string {
	var details []string

	if in.Make != nil {
		*in.Make = strings.TrimSpace(*in.Make)
		if len(*in.Make) < 2 || len(*in.Make) > 50 {
			details = append(details, "make must be between 2 and 50 characters")
		}
	}
	if in.Model != nil {
		*in.Model = strings.TrimSpace(*in.Model)
		if len(*in.Model) < 2 || len(*in.Model) > 100 {
			details = append(details, "model must be between 2 and 100 characters")
		}
	}
	if in.Year != nil && (*in.Year < 1900 || *in.Year > now.Year()+1) {
		details = append(details, fmt.Sprintf("year must be between 1900 and %d", now.Year()+1))
	}
	if in.Color != nil {
		*in.Color = strings.TrimSpace(*in.Color)
		if len(*in.Color) < 2 || len(*in.Color) > 30 {
			details = append(details, "color must be between 2 and 30 characters")
		}
	}
	if in.Price != nil && *in.Price < 0 {
		details = append(details, "price must be greater than or equal to zero")
	}
	if in.Mileage != nil && *in.Mileage < 0 {
		details = append(details, "mileage must be greater than or equal to zero")
	}
	if in.Description != nil && len(*in.Description) > 1000 {
		details = append(details, "description cannot exceed 1000 characters")
	}
	if in.Fuel != nil && !validFuel(*in.Fuel) {
		details = append(details, "fuel is not a known fuel type")
	}
	if in.Transmission != nil && !validTransmission(*in.Transmission) {
		details = append(details, "transmission is not a known transmission type")
	}
	if in.ImageURLs != nil && len(*in.ImageURLs) > maxImages {
		details = append(details, fmt.Sprintf("a vehicle can have at most %d images", maxImages))
	}

	return details
}
