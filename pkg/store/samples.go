package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// sampleDocument mirrors one collection document in the local samples file.
type sampleDocument struct {
	Country string `json:"COUNTRY"`
	Project string `json:"PROJECT"`
	Name    string `json:"NAME"`
	File    string `json:"FILE"`
	Content string `json:"page_content"`
}

// SampleStore is the fallback corpus loaded from a local JSON file, used
// when the primary store is unreachable or empty.
type SampleStore struct {
	docs []sampleDocument
}

var _ DocumentStore = &SampleStore{}

func NewSampleStore(path string) (*SampleStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}

	var docs []sampleDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse samples: %w", err)
	}

	return &SampleStore{docs: docs}, nil
}

func (s *SampleStore) ListMetadata(_ context.Context) ([]DocumentInfo, error) {
	infos := make([]DocumentInfo, len(s.docs))
	for i, doc := range s.docs {
		infos[i] = DocumentInfo{
			Country: doc.Country,
			Project: doc.Project,
			Name:    doc.Name,
			File:    doc.File,
		}
	}
	return infos, nil
}

func (s *SampleStore) GetContent(_ context.Context, ids []string) (map[string]string, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	contents := make(map[string]string, len(ids))
	for _, doc := range s.docs {
		info := DocumentInfo{File: doc.File}
		if wanted[info.RecordID()] {
			contents[info.RecordID()] = doc.Content
		}
	}
	return contents, nil
}
