package storage

import "time"

type ContractWorker struct {
	WorkerID   string    `json:"worker_id" bson:"worker_id"`
	Name       string    `json:"name" bson:"name"`
	Phone      string    `json:"phone" bson:"phone"`
	Trade      string    `json:"trade" bson:"trade"`
	DailyWage  float64   `json:"daily_wage" bson:"daily_wage"`
	Contractor string    `json:"contractor" bson:"contractor"`
	TenderID   string    `json:"tender_id" bson:"tender_id"`
	Active     bool      `json:"active" bson:"active"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Attendance struct {
	TenderID    string    `json:"tender_id" bson:"tender_id"`
	WorkerID    string    `json:"worker_id" bson:"worker_id"`
	Date        time.Time `json:"date" bson:"date"`
	Status      string    `json:"status" bson:"status"`
	HoursWorked float64   `json:"hours_worked" bson:"hours_worked"`
	Remarks     string    `json:"remarks" bson:"remarks"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type AttendanceSummary struct {
	WorkerID string  `json:"worker_id"`
	Present  int     `json:"present"`
	Absent   int     `json:"absent"`
	HalfDay  int     `json:"half_day"`
	Hours    float64 `json:"hours"`
}
