package secrets

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Secret is the storage model for an encrypted secret blob.
type Secret struct {
	Name           string `gorm:"primaryKey"`
	EncryptedValue string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName maps the model to the secrets table.
func (Secret) TableName() string { return "secrets" }

// DBStore keeps secrets in PostgreSQL, encrypted at rest.
type DBStore struct {
	db     *gorm.DB
	cipher *Cipher
}

// OpenDBStore connects to PostgreSQL and ensures the secrets table exists.
func OpenDBStore(dsn string, cipher *Cipher) (*DBStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	if err := db.AutoMigrate(&Secret{}); err != nil {
		return nil, errors.Wrap(err, "migrate secrets table")
	}
	return &DBStore{db: db, cipher: cipher}, nil
}

// Get looks up and decrypts the secret stored under name.
func (s *DBStore) Get(ctx context.Context, name string) ([]byte, error) {
	var sec Secret
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&sec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(ErrNotFound, name)
		}
		return nil, errors.Wrap(err, "query secret")
	}
	plain, err := s.cipher.Decrypt(sec.EncryptedValue)
	if err != nil {
		return nil, errors.Wrapf(err, "decrypt secret %s", name)
	}
	return plain, nil
}

// Put creates or replaces the secret stored under name.
func (s *DBStore) Put(ctx context.Context, name string, value []byte) error {
	enc, err := s.cipher.Encrypt(value)
	if err != nil {
		return errors.Wrap(err, "encrypt secret")
	}
	sec := Secret{Name: name, EncryptedValue: enc}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"encrypted_value", "updated_at"}),
	}).Create(&sec).Error
}

// HealthCheck verifies database connectivity.
func (s *DBStore) HealthCheck() error {
	var one int
	return s.db.Raw("SELECT 1").Scan(&one).Error
}
