package implementation

import (
	"context"
	"errors"
	"time"

	"socioscope-be/internal/entity"
	"socioscope-be/internal/mapper"
	"socioscope-be/internal/model"
	"socioscope-be/internal/repository/contract"
	"socioscope-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalystRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalystMapper
}

func NewAnalystRepository(db *gorm.DB) contract.AnalystRepository {
	return &AnalystRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalystMapper(),
	}
}

func (r *AnalystRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnalystRepositoryImpl) Create(ctx context.Context, analyst *entity.Analyst) error {
	m := r.mapper.ToModel(analyst)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*analyst = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnalystRepositoryImpl) Update(ctx context.Context, analyst *entity.Analyst) error {
	m := r.mapper.ToModel(analyst)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*analyst = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnalystRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analyst, error) {
	var m model.Analyst
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *AnalystRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Analyst, error) {
	var models []*model.Analyst
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.Analyst, 0, len(models))
	for _, m := range models {
		entities = append(entities, r.mapper.ToEntity(m))
	}
	return entities, nil
}

func (r *AnalystRepositoryImpl) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Analyst{}).
		Where("id = ?", id).
		Update("last_login_at", now).Error
}

// Token Implementations

func (r *AnalystRepositoryImpl) CreateLoginToken(ctx context.Context, token *entity.LoginToken) error {
	m := r.mapper.TokenToModel(token)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.TokenToEntity(m)
	return nil
}

func (r *AnalystRepositoryImpl) FindLoginToken(ctx context.Context, specs ...specification.Specification) (*entity.LoginToken, error) {
	var m model.LoginToken
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TokenToEntity(&m), nil
}

func (r *AnalystRepositoryImpl) MarkTokenUsed(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.LoginToken{}).
		Where("id = ?", id).
		Update("used_at", now).Error
}

func (r *AnalystRepositoryImpl) DeleteExpiredTokens(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.LoginToken{}).Error
}
