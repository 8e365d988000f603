package domain

import (
	"errors"
	"time"
)

// OrderType classifies the kind of work a client is ordering.
type OrderType string

const (
	OrderStandard     OrderType = "standard"
	OrderExcel        OrderType = "excel"
	OrderCourse       OrderType = "course"
	OrderProgramming  OrderType = "programming"
	OrderPresentation OrderType = "presentation"
	OrderCustom       OrderType = "custom"
)

// PackageType is the service tier a client selects.
type PackageType string

const (
	PackageBronze PackageType = "bronze"
	PackageSilver PackageType = "silver"
	PackageGold   PackageType = "gold"
)

// Complexity grades excel and programming work.
type Complexity string

const (
	ComplexityBasic        Complexity = "basic"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// MemberTier is a client's membership level, earned by order volume.
type MemberTier string

const (
	TierNone   MemberTier = ""
	TierBronze MemberTier = "bronze"
	TierSilver MemberTier = "silver"
	TierGold   MemberTier = "gold"
)

// OrderStatus is the client-facing payment state of an order.
type OrderStatus string

const (
	OrderUnpaid OrderStatus = "unpaid"
	OrderPaid   OrderStatus = "paid"
)

var ErrOrderNotFound = errors.New("order not found")

// ClientOrder is a client-portal intake record with a quote snapshot.
// Its financials mirror the assignment ledger but are owned by the portal.
type ClientOrder struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	Reference   string      `json:"reference" bson:"reference"`
	ClientName  string      `json:"client_name" bson:"client_name"`
	ClientEmail string      `json:"client_email" bson:"client_email"`
	Type        OrderType   `json:"type" bson:"type"`
	PackageType PackageType `json:"package_type,omitempty" bson:"package_type,omitempty"`
	Complexity  Complexity  `json:"complexity,omitempty" bson:"complexity,omitempty"`
	Pages       int         `json:"pages,omitempty" bson:"pages,omitempty"`
	Slides      int         `json:"slides,omitempty" bson:"slides,omitempty"`
	Weeks       int         `json:"weeks,omitempty" bson:"weeks,omitempty"`
	Description string      `json:"description,omitempty" bson:"description,omitempty"`
	Deadline    time.Time   `json:"deadline" bson:"deadline"`

	MemberTier MemberTier `json:"member_tier,omitempty" bson:"member_tier,omitempty"`

	// Quote snapshot taken at intake time.
	BasePrice  float64 `json:"base_price" bson:"base_price"`
	FinalPrice float64 `json:"final_price" bson:"final_price"`
	Currency   string  `json:"currency" bson:"currency"`
	// QuoteSource records which estimator produced the base price: "rules" or "ai".
	QuoteSource string `json:"quote_source" bson:"quote_source"`

	Status    OrderStatus `json:"status" bson:"status"`
	PaidAt    *time.Time  `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
