package mongodb

import (
	"context"
	"fmt"
	"time"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionAudit = "analysis_audit"

// AuditAdapter implements out.AuditSink using MongoDB.
type AuditAdapter struct {
	collection *mongo.Collection
}

// NewAuditAdapter creates a new MongoDB audit adapter.
func NewAuditAdapter(db *mongo.Database) *AuditAdapter {
	return &AuditAdapter{collection: db.Collection(collectionAudit)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *AuditAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "employee_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "request_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Record inserts one audit document.
func (a *AuditAdapter) Record(ctx context.Context, audit *domain.AnalysisAudit) error {
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	if _, err := a.collection.InsertOne(ctx, audit); err != nil {
		return fmt.Errorf("failed to insert audit: %w", err)
	}
	return nil
}

// ListByEmployee returns the latest audits for an employee, newest first.
func (a *AuditAdapter) ListByEmployee(ctx context.Context, employeeID int64, limit int64) ([]*domain.AnalysisAudit, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := a.collection.Find(ctx, bson.M{"employee_id": employeeID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audits: %w", err)
	}
	defer cursor.Close(ctx)

	var audits []*domain.AnalysisAudit
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, fmt.Errorf("failed to decode audits: %w", err)
	}
	return audits, nil
}

var _ out.AuditSink = (*AuditAdapter)(nil)
