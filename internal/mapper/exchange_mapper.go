package mapper

import (
	"encoding/json"

	"socioscope-be/internal/entity"
	"socioscope-be/internal/model"

	"gorm.io/datatypes"
)

type ExchangeMapper struct{}

func NewExchangeMapper() *ExchangeMapper {
	return &ExchangeMapper{}
}

func (m *ExchangeMapper) ToEntity(e *model.RagExchange) (*entity.RagExchange, error) {
	if e == nil {
		return nil, nil
	}

	var contents []string
	if len(e.Contents) > 0 {
		if err := json.Unmarshal(e.Contents, &contents); err != nil {
			return nil, err
		}
	}

	var responses []entity.PartialResponse
	if len(e.Responses) > 0 {
		if err := json.Unmarshal(e.Responses, &responses); err != nil {
			return nil, err
		}
	}

	return &entity.RagExchange{
		Id:            e.Id,
		SessionId:     e.SessionId,
		AnalystId:     e.AnalystId,
		Ordinal:       e.Ordinal,
		Model:         e.Model,
		Question:      e.Question,
		Contents:      contents,
		Responses:     responses,
		FinalResponse: e.FinalResponse,
		State:         e.State,
		FailReason:    e.FailReason,
		CreatedAt:     e.CreatedAt,
	}, nil
}

func (m *ExchangeMapper) ToModel(e *entity.RagExchange) (*model.RagExchange, error) {
	if e == nil {
		return nil, nil
	}

	contents, err := json.Marshal(e.Contents)
	if err != nil {
		return nil, err
	}
	responses, err := json.Marshal(e.Responses)
	if err != nil {
		return nil, err
	}

	return &model.RagExchange{
		Id:            e.Id,
		SessionId:     e.SessionId,
		AnalystId:     e.AnalystId,
		Ordinal:       e.Ordinal,
		Model:         e.Model,
		Question:      e.Question,
		Contents:      datatypes.JSON(contents),
		Responses:     datatypes.JSON(responses),
		FinalResponse: e.FinalResponse,
		State:         e.State,
		FailReason:    e.FailReason,
		CreatedAt:     e.CreatedAt,
	}, nil
}
