package storage

import "time"

type Tender struct {
	TenderID       string           `json:"tender_id" bson:"tender_id"`
	Name           string           `json:"name" bson:"name"`
	ProjectID      string           `json:"projectId" bson:"projectId"`
	Client         string           `json:"client" bson:"client"`
	Location       string           `json:"location" bson:"location"`
	EstimatedValue float64          `json:"estimatedValue" bson:"estimatedValue"`
	Status         string           `json:"status" bson:"status"`
	Documents      []TenderDocument `json:"documents,omitempty" bson:"documents"`
	CreatedAt      time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt" bson:"updatedAt"`
}

type TenderDocument struct {
	DocumentID  string    `json:"document_id" bson:"document_id"`
	Name        string    `json:"name" bson:"name"`
	Bucket      string    `json:"bucket" bson:"bucket"`
	Key         string    `json:"key" bson:"key"`
	ContentType string    `json:"content_type" bson:"content_type"`
	Size        int64     `json:"size" bson:"size"`
	UploadedAt  time.Time `json:"uploaded_at" bson:"uploaded_at"`
	URL         string    `json:"url,omitempty" bson:"-"`
}

// Object is where the object store put an uploaded file.
type Object struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}
