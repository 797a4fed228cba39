package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type WorkOrder struct {
	RequestID         string            `json:"requestId" bson:"requestId"`
	ProjectID         string            `json:"projectId" bson:"projectId"`
	MaterialsRequired []Material        `json:"materialsRequired" bson:"materialsRequired"`
	VendorQuotations  []VendorQuotation `json:"vendorQuotations" bson:"vendorQuotations"`
	SelectedVendor    string            `json:"selectedVendor" bson:"selectedVendor"`
	Status            string            `json:"status" bson:"status"`
	CreatedBy         string            `json:"createdBy" bson:"createdBy"`
	CreatedAt         time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// QuantityScale is the number of decimal places quantities are kept to.
const QuantityScale = 4

// RoundQuantity rounds q to QuantityScale places, half away from zero.
func RoundQuantity(q float64) float64 {
	return decimal.NewFromFloat(q).Round(QuantityScale).InexactFloat64()
}

// Material is one line of a work order's materials list. ExQuantity is the
// remaining quantity and only changes through work-done reconciliation.
type Material struct {
	MaterialName string  `json:"materialName" bson:"materialName"`
	Quantity     float64 `json:"quantity" bson:"quantity"`
	Unit         string  `json:"unit" bson:"unit"`
	ExQuantity   float64 `json:"ex_quantity" bson:"ex_quantity"`
}

type VendorQuotation struct {
	VendorName  string    `json:"vendorName" bson:"vendorName"`
	Amount      float64   `json:"amount" bson:"amount"`
	Remarks     string    `json:"remarks" bson:"remarks"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// MaterialDeduction is a staged decrement of one materialsRequired entry,
// addressed by its position in the list.
type MaterialDeduction struct {
	Position     int             `json:"position"`
	MaterialName string          `json:"materialName"`
	Quantity     decimal.Decimal `json:"quantity"`
}
