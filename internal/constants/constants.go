package constants

// ID code types and their prefixes.
const (
	IDTypeWorkDone       = "WorkDone"
	IDTypeWorkOrder      = "WorkOrder"
	IDTypeTender         = "Tender"
	IDTypeContractWorker = "ContractWorker"

	PrefixWorkDone       = "WD"
	PrefixWorkOrder      = "WO"
	PrefixTender         = "TND"
	PrefixContractWorker = "CW"
)

// Line item defaults applied when a work-done item leaves them empty.
const (
	DefaultUnit              = "Nos"
	DefaultContractorDetails = "NMR"
	DefaultCreatedBy         = "system"
)

const (
	ReportStatusDraft     = "Draft"
	ReportStatusSubmitted = "Submitted"
	ReportStatusApproved  = "Approved"
	ReportStatusRejected  = "Rejected"
)

const (
	WorkOrderRequestRaised     = "Request Raised"
	WorkOrderQuotationReceived = "Quotation Received"
	WorkOrderVendorSelected    = "Vendor Selected"
	WorkOrderApproved          = "Approved"
	WorkOrderRejected          = "Rejected"
	WorkOrderCompleted         = "Completed"
)

const (
	TenderOpen    = "Open"
	TenderAwarded = "Awarded"
	TenderClosed  = "Closed"
)

const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
	AttendanceHalfDay = "HalfDay"
)

var WorkOrderStatuses = map[string]bool{
	WorkOrderRequestRaised:     true,
	WorkOrderQuotationReceived: true,
	WorkOrderVendorSelected:    true,
	WorkOrderApproved:          true,
	WorkOrderRejected:          true,
	WorkOrderCompleted:         true,
}
