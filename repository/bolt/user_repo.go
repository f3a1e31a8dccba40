package bolt

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
)

// userRecord keeps the password hash, which domain.User hides from JSON.
type userRecord struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

type userRepository struct {
	db   *bbolt.DB
	opts options
}

// NewUserRepository returns a BoltDB-backed user repository. Emails are
// unique through the user_emails index bucket.
func NewUserRepository(db *bbolt.DB, opts ...Option) repository.UserRepository {
	return &userRepository{db: db, opts: buildOptions(opts)}
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = getUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(boltInfra.BucketUserEmails).Get([]byte(domain.NormalizeEmail(email)))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = getUser(tx, string(id))
		return err
	})
	return user, err
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	user.Email = domain.NormalizeEmail(user.Email)

	return r.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(boltInfra.BucketUserEmails)
		if emails.Get([]byte(user.Email)) != nil {
			return domain.ErrEmailTaken
		}
		now := r.opts.now().UTC()
		user.CreatedAt = now
		user.UpdatedAt = now
		if err := putUser(tx, user); err != nil {
			return err
		}
		return emails.Put([]byte(user.Email), []byte(user.ID))
	})
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		current, err := getUser(tx, user.ID)
		if err != nil {
			return err
		}
		current.Name = user.Name
		if user.Status != "" {
			current.Status = user.Status
		}
		current.UpdatedAt = r.opts.now().UTC()
		if err := putUser(tx, current); err != nil {
			return err
		}
		*user = *current
		return nil
	})
}

func getUser(tx *bbolt.Tx, id string) (*domain.User, error) {
	raw := tx.Bucket(boltInfra.BucketUsers).Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrUserNotFound
	}
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	rec.User.PasswordHash = rec.PasswordHash
	return &rec.User, nil
}

func putUser(tx *bbolt.Tx, user *domain.User) error {
	payload, err := json.Marshal(userRecord{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return err
	}
	return tx.Bucket(boltInfra.BucketUsers).Put([]byte(user.ID), payload)
}
