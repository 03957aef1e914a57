package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// MongoDB holds the statement archive: a per-account projection of committed
// transfers, fed by the processor from the event queue. The authoritative
// ledger stays in Postgres; this collection only serves statement reads.
type MongoDB struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// creates a new MongoDB instance
func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	collection := client.Database(dbName).Collection("statements")

	// The unique index makes broker redelivery idempotent: re-archiving the
	// same transfer is a duplicate-key no-op.
	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{
				{Key: "transaction_id", Value: 1},
				{Key: "account_id", Value: 1},
				{Key: "direction", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &MongoDB{
		client:     client,
		collection: collection,
	}, nil
}

// closes the mongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ArchiveTransfer writes the debit and credit statement entries for one
// committed transfer. Safe to call again for the same event.
func (m *MongoDB) ArchiveTransfer(ctx context.Context, ev *models.TransferEvent) error {
	entries := []interface{}{
		models.StatementEntry{
			TransactionID:  ev.TransactionID,
			AccountID:      ev.SenderAccountID,
			CounterpartyID: ev.ReceiverAccountID,
			Direction:      models.DirectionDebit,
			Amount:         ev.Amount.String(),
			Reference:      ev.Reference,
			CreatedAt:      ev.CreatedAt,
		},
		models.StatementEntry{
			TransactionID:  ev.TransactionID,
			AccountID:      ev.ReceiverAccountID,
			CounterpartyID: ev.SenderAccountID,
			Direction:      models.DirectionCredit,
			Amount:         ev.Amount.String(),
			Reference:      ev.Reference,
			CreatedAt:      ev.CreatedAt,
		},
	}

	// unordered so one duplicate does not block the other entry
	opts := options.InsertMany().SetOrdered(false)
	if _, err := m.collection.InsertMany(ctx, entries, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to archive transfer: %w", err)
	}

	return nil
}

// StatementsByAccountID retrieves archived entries for an account, newest
// first.
func (m *MongoDB) StatementsByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]models.StatementEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := m.collection.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find statements: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]models.StatementEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode statements: %w", err)
	}

	return entries, nil
}
