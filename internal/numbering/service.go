// Package numbering allocates unique, monotonically increasing document
// numbers scoped per business owner.
package numbering

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrConflict     = errors.New("numbering_conflict")
)

// Counter is the persisted per-owner, per-kind sequence record. The sequence
// is advanced with an atomic upsert, never a count() over existing documents,
// so concurrent inserts cannot allocate the same value.
type Counter struct {
	OwnerID   snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Kind      Kind         `gorm:"primaryKey;type:text"`
	Seq       int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "document_counters" }

type Params struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func New(p Params) *Service {
	return &Service{
		log: p.Log.Named("numbering.service"),
	}
}

// Next allocates the next sequence for (owner, kind) and formats it. It must
// run inside the caller's transaction so the allocation commits or rolls back
// with the document it numbers. Two transactions contending on the same
// counter row serialize on the row lock taken by the UPDATE.
func (s *Service) Next(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, kind Kind, at time.Time) (string, error) {
	if ownerID == 0 {
		return "", ErrInvalidOwner
	}

	seq, err := s.nextSeq(ctx, tx, ownerID, kind)
	if err != nil {
		return "", err
	}

	return Format(kind, at, seq)
}

func (s *Service) nextSeq(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, kind Kind) (int64, error) {
	var seq int64
	err := tx.WithContext(ctx).Raw(
		`INSERT INTO document_counters (owner_id, kind, seq, updated_at)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT (owner_id, kind)
		 DO UPDATE SET seq = document_counters.seq + 1, updated_at = ?
		 RETURNING seq`,
		ownerID,
		kind,
		time.Now().UTC(),
		time.Now().UTC(),
	).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	if seq == 0 {
		return 0, ErrConflict
	}
	return seq, nil
}
