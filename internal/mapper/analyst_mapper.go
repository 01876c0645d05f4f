package mapper

import (
	"socioscope-be/internal/entity"
	"socioscope-be/internal/model"
)

type AnalystMapper struct{}

func NewAnalystMapper() *AnalystMapper {
	return &AnalystMapper{}
}

func (m *AnalystMapper) ToEntity(a *model.Analyst) *entity.Analyst {
	if a == nil {
		return nil
	}
	return &entity.Analyst{
		Id:          a.Id,
		Email:       a.Email,
		FullName:    a.FullName,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}

func (m *AnalystMapper) ToModel(a *entity.Analyst) *model.Analyst {
	if a == nil {
		return nil
	}
	return &model.Analyst{
		Id:          a.Id,
		Email:       a.Email,
		FullName:    a.FullName,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}

func (m *AnalystMapper) TokenToEntity(t *model.LoginToken) *entity.LoginToken {
	if t == nil {
		return nil
	}
	return &entity.LoginToken{
		Id:        t.Id,
		AnalystId: t.AnalystId,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}

func (m *AnalystMapper) TokenToModel(t *entity.LoginToken) *model.LoginToken {
	if t == nil {
		return nil
	}
	return &model.LoginToken{
		Id:        t.Id,
		AnalystId: t.AnalystId,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}
