package models

import (
	"time"

	"github.com/google/uuid"
)

// Order types distinguish shop purchases from custom 3D-print jobs.
const (
	OrderTypeShop  = "shop"
	OrderTypePrint = "print"
)

type Order struct {
	BaseModel
	UserID      uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User        *User       `json:"user,omitempty"`
	OrderNumber string      `gorm:"uniqueIndex" json:"order_number"`
	OrderType   string      `gorm:"index" json:"order_type"`
	Status      string      `json:"status"`
	PlacedAt    time.Time   `json:"placed_at"`
	TotalAmount float64     `json:"total_amount"`
	Currency    string      `json:"currency"`
	Notes       string      `json:"notes"`
	// Print-job fields, empty for shop orders.
	Material  string `json:"material,omitempty"`
	ColorName string `json:"color_name,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	LineTotal   float64    `json:"line_total"`
}
