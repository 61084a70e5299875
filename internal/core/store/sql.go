package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// documentRecord one row of the documents table
type documentRecord struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	Collection string    `gorm:"size:255;not null;uniqueIndex:idx_documents_collection_doc"`
	DocID      string    `gorm:"column:doc_id;size:64;not null;uniqueIndex:idx_documents_collection_doc"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRecord) TableName() string {
	return "documents"
}

// SQLStore keeps documents as JSON rows in one table. Live queries only see
// writes made through this instance.
type SQLStore struct {
	db       *gorm.DB
	notifier *notifier
}

// OpenSQL opens a postgres or sqlite database and migrates the documents table
func OpenSQL(driver, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database dsn must not be empty")
	}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// sqlite takes one writer at a time
	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewSQLStore migrates the schema and wraps db
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	if err := db.AutoMigrate(&documentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	s := &SQLStore{db: db}
	s.notifier = newNotifier(s.List)
	return s, nil
}

// List returns documents in insertion order
func (s *SQLStore) List(ctx context.Context, collection string) ([]Document, error) {
	var rows []documentRecord
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, common.NewTransportError("sql list", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		data, err := decodeFields(row.Data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: row.DocID, Data: data})
	}
	return docs, nil
}

// Get returns one document
func (s *SQLStore) Get(ctx context.Context, collection, id string) (Document, error) {
	row, err := s.find(s.db.WithContext(ctx), collection, id)
	if err != nil {
		return Document{}, err
	}
	data, err := decodeFields(row.Data)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

func (s *SQLStore) find(db *gorm.DB, collection, id string) (documentRecord, error) {
	var row documentRecord
	err := db.Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, common.ErrNotFound
	}
	if err != nil {
		return row, common.NewTransportError("sql get", err)
	}
	return row, nil
}

// Create stores data under a generated id
func (s *SQLStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	raw, err := encodeFields(data)
	if err != nil {
		return "", err
	}
	row := documentRecord{
		Collection: collection,
		DocID:      common.GenerateUUID(),
		Data:       raw,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", common.NewTransportError("sql create", err)
	}

	s.notifier.notify(ctx, collection)
	return row.DocID, nil
}

// Update merges data into an existing document
func (s *SQLStore) Update(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := s.write(ctx, collection, id, data, false); err != nil {
		return err
	}
	s.notifier.notify(ctx, collection)
	return nil
}

// Merge upserts data under id
func (s *SQLStore) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := s.write(ctx, collection, id, data, true); err != nil {
		return err
	}
	s.notifier.notify(ctx, collection)
	return nil
}

func (s *SQLStore) write(ctx context.Context, collection, id string, data map[string]interface{}, upsert bool) error {
	patch, err := cloneFields(data)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.find(tx, collection, id)
		switch {
		case errors.Is(err, common.ErrNotFound) && upsert:
			raw, err := encodeFields(patch)
			if err != nil {
				return err
			}
			row = documentRecord{Collection: collection, DocID: id, Data: raw}
			if err := tx.Create(&row).Error; err != nil {
				return common.NewTransportError("sql merge", err)
			}
			return nil
		case err != nil:
			return err
		}

		current, err := decodeFields(row.Data)
		if err != nil {
			return err
		}
		raw, err := encodeFields(mergeFields(current, patch))
		if err != nil {
			return err
		}
		if err := tx.Model(&documentRecord{}).
			Where("seq = ?", row.Seq).
			Update("data", raw).Error; err != nil {
			return common.NewTransportError("sql update", err)
		}
		return nil
	})
}

// Delete removes a document
func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	result := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&documentRecord{})
	if result.Error != nil {
		return common.NewTransportError("sql delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}

	s.notifier.notify(ctx, collection)
	return nil
}

// Subscribe starts a live query over collection
func (s *SQLStore) Subscribe(ctx context.Context, collection string, fn Listener) (Unsubscribe, error) {
	return s.notifier.subscribe(ctx, collection, fn)
}

// Ping checks the connection
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return common.NewTransportError("sql ping", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *SQLStore) Close() error {
	s.notifier.clear()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
