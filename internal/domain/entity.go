package domain

import "time"

// Entity is one admin-manageable record type. The id is empty until the
// backend has persisted the record.
type Entity interface {
	EntityID() string
}

// Brand is a product brand.
type Brand struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required,max=100"`
	Origin      string `json:"origin" validate:"max=100"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"imageUrl"`
}

func (b Brand) EntityID() string { return b.ID }

// Blog is an editorial post shown on the storefront.
type Blog struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title" validate:"required,max=200"`
	Author   string `json:"author" validate:"max=100"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"imageUrl"`
}

func (b Blog) EntityID() string { return b.ID }

// Voucher is a discount code redeemable at checkout.
type Voucher struct {
	ID              string    `json:"id,omitempty"`
	Code            string    `json:"code" validate:"required,min=3,max=32"`
	Description     string    `json:"description" validate:"max=500"`
	DiscountPercent float64   `json:"discountPercent" validate:"min=0,max=100"`
	MaxDiscount     float64   `json:"maxDiscount" validate:"min=0"`
	MinOrderValue   float64   `json:"minOrderValue" validate:"min=0"`
	Quantity        int       `json:"quantity" validate:"min=0"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
}

func (v Voucher) EntityID() string { return v.ID }

// PaymentMethod is a checkout payment option.
type PaymentMethod struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	ImageURL    string `json:"imageUrl"`
	Enabled     bool   `json:"enabled"`
}

func (p PaymentMethod) EntityID() string { return p.ID }

// CancelReason is a selectable reason for cancelling an order, with the
// share of the order value refunded.
type CancelReason struct {
	ID         string  `json:"id,omitempty"`
	Reason     string  `json:"reason" validate:"required,max=255"`
	RefundRate float64 `json:"refundRate" validate:"min=0,max=100"`
}

func (c CancelReason) EntityID() string { return c.ID }

// SkinType is a skin classification used by the quiz and product tagging.
type SkinType struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"imageUrl"`
}

func (s SkinType) EntityID() string { return s.ID }

// Product status values.
const (
	ProductActive     = "Active"
	ProductInactive   = "Inactive"
	ProductOutOfStock = "OutOfStock"
)

// Product is a sellable catalog item.
type Product struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required,max=200"`
	BrandName string    `json:"brandName" validate:"max=100"`
	Category  string    `json:"category" validate:"max=100"`
	Price     float64   `json:"price" validate:"min=0"`
	Quantity  int       `json:"quantity" validate:"min=0"`
	Sold      int       `json:"sold" validate:"min=0"`
	Status    string    `json:"status" validate:"required,oneof=Active Inactive OutOfStock"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p Product) EntityID() string { return p.ID }

// Promotion is a time-boxed storefront campaign.
type Promotion struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name" validate:"required,max=200"`
	Description  string    `json:"description" validate:"max=2000"`
	DiscountRate float64   `json:"discountRate" validate:"min=0,max=100"`
	StartDate    time.Time `json:"startDate" validate:"required"`
	EndDate      time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	ImageURL     string    `json:"imageUrl"`
}

func (p Promotion) EntityID() string { return p.ID }

// QuizQuestion is one question of the skin-type survey.
type QuizQuestion struct {
	ID      string       `json:"id,omitempty"`
	Content string       `json:"content" validate:"required,max=500"`
	Answers []QuizAnswer `json:"answers" validate:"min=1,dive"`
}

func (q QuizQuestion) EntityID() string { return q.ID }

// QuizAnswer scores one answer towards a skin type.
type QuizAnswer struct {
	Content    string `json:"content" validate:"required,max=255"`
	SkinTypeID string `json:"skinTypeId" validate:"required"`
	Score      int    `json:"score" validate:"min=0,max=10"`
}
