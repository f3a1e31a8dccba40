package bolt

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const openTimeout = time.Second

// Bucket names shared by the embedded repositories.
var (
	BucketTasks      = []byte("tasks")
	BucketUsers      = []byte("users")
	BucketUserEmails = []byte("user_emails")
	BucketSessions   = []byte("sessions")
)

// Open initializes the BoltDB file and ensures every bucket exists.
func Open(path string, logger *zap.Logger) (*bbolt.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{BucketTasks, BucketUsers, BucketUserEmails, BucketSessions} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened bolt store", zap.String("path", path))
	return db, nil
}

// Ping runs an empty read transaction so health probes notice a closed file.
func Ping(_ context.Context, db *bbolt.DB) error {
	if db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(BucketTasks) == nil {
			return bbolt.ErrBucketNotFound
		}
		return nil
	})
}
