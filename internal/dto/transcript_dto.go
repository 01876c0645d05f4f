package dto

import "socioscope-be/pkg/transcript"

type RecordResponse struct {
	Id       string `json:"id"`
	Country  string `json:"country"`
	Project  string `json:"project"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type ProjectGroupResponse struct {
	Label   string           `json:"label"`
	Records []RecordResponse `json:"records"`
}

type CountryGroupResponse struct {
	Country  string                 `json:"country"`
	Projects []ProjectGroupResponse `json:"projects"`
}

type NavigationResponse struct {
	Countries []CountryGroupResponse `json:"countries"`
}

type SelectRequest struct {
	RecordId string `json:"record_id" validate:"required"`
}

type SelectResponse struct {
	RecordId string   `json:"record_id"`
	Selected bool     `json:"selected"`
	Count    int      `json:"count"`
	All      []string `json:"all"`
}

type SelectionResponse struct {
	SessionId string   `json:"session_id"`
	Selected  []string `json:"selected"`
	Model     string   `json:"model"`
}

type ReadTranscriptResponse struct {
	Id         string                 `json:"id"`
	Metadata   map[string]string      `json:"metadata,omitempty"`
	Speakers   []string               `json:"speakers"`
	Utterances []transcript.Utterance `json:"utterances"`
	Offset     int                    `json:"offset"`
	Limit      int                    `json:"limit"`
	Total      int                    `json:"total"`
}
