package storage

import "time"

type WorkDoneReport struct {
	WorkDoneID    string     `json:"workDoneId" bson:"workDoneId"`
	TenderID      string     `json:"tender_id" bson:"tender_id"`
	WorkOrderID   string     `json:"workOrder_id" bson:"workOrder_id"`
	ReportDate    time.Time  `json:"report_date" bson:"report_date"`
	Status        string     `json:"status" bson:"status"`
	CreatedBy     string     `json:"created_by" bson:"created_by"`
	DailyWorkDone []LineItem `json:"dailyWorkDone" bson:"dailyWorkDone"`
	TotalWorkDone int        `json:"totalWorkDone" bson:"totalWorkDone"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type LineItem struct {
	ItemDescription   string     `json:"item_description" bson:"item_description"`
	Dimensions        Dimensions `json:"dimensions" bson:"dimensions"`
	Quantity          float64    `json:"quantity" bson:"quantity"`
	Unit              string     `json:"unit" bson:"unit"`
	Remarks           string     `json:"remarks" bson:"remarks"`
	ContractorDetails string     `json:"contractor_details" bson:"contractor_details"`
}

type Dimensions struct {
	Length  float64 `json:"length" bson:"length"`
	Breadth float64 `json:"breadth" bson:"breadth"`
	Height  float64 `json:"height" bson:"height"`
}

// WorkDoneSummary is a report without its line items, as returned by list queries.
type WorkDoneSummary struct {
	WorkDoneID    string    `json:"workDoneId" bson:"workDoneId"`
	TenderID      string    `json:"tender_id" bson:"tender_id"`
	WorkOrderID   string    `json:"workOrder_id" bson:"workOrder_id"`
	ReportDate    time.Time `json:"report_date" bson:"report_date"`
	Status        string    `json:"status" bson:"status"`
	CreatedBy     string    `json:"created_by" bson:"created_by"`
	TotalWorkDone int       `json:"totalWorkDone" bson:"totalWorkDone"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}
