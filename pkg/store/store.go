package store

import (
	"context"
	"path/filepath"
	"strings"
)

// DocumentInfo is the cheap, content-excluded projection of one transcript
// document. Field names follow the collection schema.
type DocumentInfo struct {
	Country string `bson:"COUNTRY" json:"country"`
	Project string `bson:"PROJECT" json:"project"`
	Name    string `bson:"NAME" json:"name"`
	File    string `bson:"FILE" json:"file"`
}

// RecordID is the stable identifier exposed to the UI: the source filename
// without its media extension.
func (d DocumentInfo) RecordID() string {
	return strings.TrimSuffix(d.File, filepath.Ext(d.File))
}

// DocumentStore is the external collaborator holding the transcript corpus.
// ListMetadata is cheap; GetContent is expensive and fetches only the
// requested identifiers.
type DocumentStore interface {
	// ListMetadata returns the metadata of every document, content excluded.
	ListMetadata(ctx context.Context) ([]DocumentInfo, error)

	// GetContent returns raw transcript text keyed by record identifier.
	// Identifiers with no matching document are simply absent from the map.
	GetContent(ctx context.Context, ids []string) (map[string]string, error)
}
