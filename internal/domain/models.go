package domain

import "time"

// ExpiryClass is the categorical lifecycle state of a product's stock.
type ExpiryClass string

const (
	ExpiryExpired    ExpiryClass = "Expired"
	ExpiryNearExpiry ExpiryClass = "Near_Expiry"
	ExpiryNotExpired ExpiryClass = "Not_Expired"
)

// ExpiryClasses returns all expiry classes in their fixed encoding order.
func ExpiryClasses() []ExpiryClass {
	return []ExpiryClass{ExpiryExpired, ExpiryNearExpiry, ExpiryNotExpired}
}

// RiskLevel is the derived urgency classification for a product.
type RiskLevel string

const (
	RiskExpired RiskLevel = "Expired"
	RiskHigh    RiskLevel = "High"
	RiskLow     RiskLevel = "Low"
)

// Action is the recommended handling for a product.
type Action string

const (
	ActionDispose  Action = "Dispose"
	ActionDiscount Action = "Discount"
	ActionBundle   Action = "Bundle"
	ActionRelocate Action = "Relocate"
	ActionMonitor  Action = "Monitor"
)

// Actions returns all defined actions in their fixed encoding order.
func Actions() []Action {
	return []Action{ActionDispose, ActionDiscount, ActionBundle, ActionRelocate, ActionMonitor}
}

// InventoryItem is one product-at-a-warehouse-location snapshot row, with
// all derived features populated by the preprocessor. Pointer fields are
// nullable: a nil date failed lenient parsing, a nil derived feature could
// not be computed from the available inputs.
type InventoryItem struct {
	ProductID         string
	ProductName       string
	Category          string
	SupplierName      string
	WarehouseLocation string

	StockQuantity         float64
	ReorderLevel          float64
	ReorderQuantity       float64
	UnitPrice             float64
	SalesVolume           float64
	InventoryTurnoverRate float64

	DateReceived   *time.Time
	LastOrderDate  *time.Time
	ExpirationDate *time.Time

	// Derived features, pure functions of the row and the reference "today".
	DaysUntilExpiry         *int
	StockAge                *int
	StockValue              *float64
	ShelfLife               *int
	RemainingShelfLifeRatio *float64

	// Empty until provided by input or predicted by the expiry classifier.
	ExpiryClass ExpiryClass

	// Populated by the risk scorer. ForecastedDemand stays nil when the
	// product had too little history to forecast.
	ForecastedDemand *float64
	RiskLevel        RiskLevel
}

// ForecastPoint is a single (date, point-estimate) pair of a product's
// demand forecast curve.
type ForecastPoint struct {
	ProductName string
	Date        time.Time
	Yhat        float64
	YhatLower   float64
	YhatUpper   float64
}

// Recommendation is one row of the final output artifact.
type Recommendation struct {
	ProductID                string  `db:"product_id" json:"product_id"`
	ProductName              string  `db:"product_name" json:"product_name"`
	Category                 string  `db:"category" json:"category"`
	SupplierName             string  `db:"supplier_name" json:"supplier_name"`
	StockQuantity            float64 `db:"stock_quantity" json:"stock_quantity"`
	RiskLevel                string  `db:"risk_level" json:"risk_level"`
	PredictedAction          string  `db:"predicted_action" json:"predicted_action"`
	PredictedDiscountPercent float64 `db:"predicted_discount_percent" json:"predicted_discount_percent"`
}

// ActionSummary is the per-action row count served by the dashboard API.
type ActionSummary struct {
	Action string `db:"predicted_action" json:"action"`
	Count  int    `db:"count" json:"count"`
}

// RiskDistribution is the per-risk-level row count served by the dashboard API.
type RiskDistribution struct {
	RiskLevel string `db:"risk_level" json:"risk_level"`
	Count     int    `db:"count" json:"count"`
}

// RecommendationFilter narrows dashboard queries.
type RecommendationFilter struct {
	Category  string `json:"category"`
	RiskLevel string `json:"risk_level"`
	Action    string `json:"action"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}
