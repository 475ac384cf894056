package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tablebook/internal/domain"
	"tablebook/internal/pkg/jwt"
)

// SessionRepository stores one bearer token per profile.
type SessionRepository struct {
	db      *gorm.DB
	profile string
	now     func() time.Time
}

func NewSessionRepository(db *gorm.DB, profile string) *SessionRepository {
	return &SessionRepository{db: db, profile: profile, now: time.Now}
}

func (r *SessionRepository) Profile() string {
	return r.profile
}

// Save replaces the profile's token.
func (r *SessionRepository) Save(ctx context.Context, token, email string) error {
	s := &domain.Session{
		Profile: r.profile,
		Token:   token,
		Email:   email,
	}
	if exp, err := jwt.ExpiresAt(token); err == nil && exp != nil {
		utc := exp.UTC()
		s.ExpiresAt = &utc
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "email", "expires_at", "updated_at"}),
	}).Create(s).Error
}

// Get returns the stored session, or nil when there is none.
func (r *SessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	var s domain.Session
	err := r.db.WithContext(ctx).Where("profile = ?", r.profile).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Token returns the usable token, or "" when logged out or expired.
func (r *SessionRepository) Token(ctx context.Context) (string, error) {
	s, err := r.Get(ctx)
	if err != nil || s == nil {
		return "", err
	}
	if s.IsExpired(r.now()) {
		return "", nil
	}
	return s.Token, nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("profile = ?", r.profile).
		Delete(&domain.Session{}).Error
}

// DeleteExpired removes sessions of every profile whose token has expired.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", r.now().UTC()).
		Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
