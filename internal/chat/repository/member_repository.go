package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"social_chat_service/internal/chat/domain"
)

// MemberRepository definition read-mostly member directory, batched lookups
// feed the serialization boundary
type MemberRepository interface {
	AutoMigrate() error
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Member, error)
	FindActiveByIDs(ctx context.Context, ids []int64) ([]domain.Member, error)
	FindActiveByUsername(ctx context.Context, username string) (*domain.Member, error)
	// Create is used by tests and bootstrap tooling, member lifecycle is
	// owned by the external member system
	Create(ctx context.Context, member *domain.Member) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Member{})
}

func (r *memberRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Member, error) {
	if len(ids) == 0 {
		return map[int64]domain.Member{}, nil
	}

	var members []domain.Member
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	return byID, nil
}

func (r *memberRepository) FindActiveByIDs(ctx context.Context, ids []int64) ([]domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var members []domain.Member
	err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) FindActiveByUsername(ctx context.Context, username string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = ? AND is_active = ?", strings.ToLower(username), true).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}
