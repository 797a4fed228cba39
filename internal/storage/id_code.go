package storage

import "context"

// IDCode is a registered entity type and the last sequence number handed out for it.
type IDCode struct {
	Name   string `json:"name" bson:"_id"`
	Prefix string `json:"prefix" bson:"prefix"`
	Seq    int64  `json:"seq" bson:"seq"`
}

// IDGenerator hands out sequential human-readable codes per entity type ("CW-00001").
// RegisterType must be idempotent; NextCode must be atomic.
type IDGenerator interface {
	RegisterType(ctx context.Context, name, prefix string) error
	NextCode(ctx context.Context, name string) (string, error)
}
