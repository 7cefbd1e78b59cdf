package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/repository"
)

const defaultRecentLimit = 90

// UploadRecordRepository is the MongoDB implementation of
// repository.UploadRecordRepository.
type UploadRecordRepository struct {
	db   *DB
	coll *mongo.Collection
}

func NewUploadRecordRepository(db *DB) *UploadRecordRepository {
	return &UploadRecordRepository{
		db:   db,
		coll: db.Collection(uploadRecordsCollection),
	}
}

func (r *UploadRecordRepository) Create(ctx context.Context, record *domain.UploadRecord) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}
	return r.db.withSem(ctx, func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, record)
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("could not insert upload record: %w", err)
		}
		return nil
	})
}

func (r *UploadRecordRepository) GetByID(ctx context.Context, id string) (*domain.UploadRecord, error) {
	var record domain.UploadRecord
	err := r.db.withSem(ctx, func(ctx context.Context) error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not fetch upload record %s: %w", id, err)
	}
	return &record, nil
}

func (r *UploadRecordRepository) FindByKey(ctx context.Context, key domain.RecordKey) (*domain.UploadRecord, error) {
	var record domain.UploadRecord
	err := r.db.withSem(ctx, func(ctx context.Context) error {
		return r.coll.FindOne(ctx, keyFilter(key)).Decode(&record)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not fetch upload record by key: %w", err)
	}
	return &record, nil
}

func (r *UploadRecordRepository) List(ctx context.Context, filter domain.RecordFilter) ([]domain.UploadRecord, error) {
	query := bson.M{}
	if filter.Platform != "" {
		query["platform"] = filter.Platform
	}
	if filter.ReportType != "" {
		query["reportType"] = filter.ReportType
	}
	// date filters match by range overlap, not containment
	if !filter.From.IsZero() {
		query["endDate"] = bson.M{"$gte": filter.From}
	}
	if !filter.To.IsZero() {
		query["startDate"] = bson.M{"$lte": filter.To}
	}

	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return r.find(ctx, query, opts)
}

func (r *UploadRecordRepository) ListRecent(ctx context.Context, limit int, platform domain.Platform, reportType domain.ReportType) ([]domain.UploadRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	query := bson.M{}
	if platform != "" {
		query["platform"] = platform
	}
	if reportType != "" {
		query["reportType"] = reportType
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "startDate", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, query, opts)
}

// Upsert replaces the record holding the same natural key, keeping the
// stored _id and createdAt. Last write wins.
func (r *UploadRecordRepository) Upsert(ctx context.Context, record *domain.UploadRecord) error {
	existing, err := r.FindByKey(ctx, record.Key())
	switch {
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	case errors.Is(err, repository.ErrNotFound):
		if record.ID == "" {
			record.ID = primitive.NewObjectID().Hex()
		}
	default:
		return err
	}
	record.UpdatedAt = time.Now().UTC()

	return r.db.withSem(ctx, func(ctx context.Context) error {
		_, err := r.coll.ReplaceOne(ctx, keyFilter(record.Key()), record, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("could not upsert upload record: %w", err)
		}
		return nil
	})
}

func (r *UploadRecordRepository) Delete(ctx context.Context, id string) error {
	return r.db.withSem(ctx, func(ctx context.Context) error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("could not delete upload record %s: %w", id, err)
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *UploadRecordRepository) DeleteByKey(ctx context.Context, key domain.RecordKey) error {
	return r.db.withSem(ctx, func(ctx context.Context) error {
		res, err := r.coll.DeleteOne(ctx, keyFilter(key))
		if err != nil {
			return fmt.Errorf("could not delete upload record by key: %w", err)
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *UploadRecordRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]domain.UploadRecord, error) {
	var records []domain.UploadRecord
	err := r.db.withSem(ctx, func(ctx context.Context) error {
		cursor, err := r.coll.Find(ctx, query, opts)
		if err != nil {
			return fmt.Errorf("could not query upload records: %w", err)
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &records)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func keyFilter(key domain.RecordKey) bson.M {
	return bson.M{
		"platform":   key.Platform,
		"dateRange":  key.DateRange,
		"reportType": key.ReportType,
	}
}
