package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore serves transcripts from a MongoDB collection. Documents carry
// COUNTRY/PROJECT/NAME/FILE metadata fields plus the raw text under
// page_content.
type MongoStore struct {
	collection *mongo.Collection

	mu       sync.RWMutex
	fileByID map[string]string // record id -> FILE, refreshed on ListMetadata
}

var _ DocumentStore = &MongoStore{}

// NewMongoStore connects and pings the server; an unreachable primary fails
// fast here so the caller can fall back to the local samples.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(
		options.ServerAPI(options.ServerAPIVersion1)))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoStore{
		collection: client.Database(database).Collection(collection),
		fileByID:   make(map[string]string),
	}, nil
}

func (s *MongoStore) ListMetadata(ctx context.Context) ([]DocumentInfo, error) {
	projection := bson.M{"COUNTRY": 1, "PROJECT": 1, "NAME": 1, "FILE": 1, "_id": 0}
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("list metadata: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []DocumentInfo
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("collection %s is empty", s.collection.Name())
	}

	s.mu.Lock()
	for _, doc := range docs {
		s.fileByID[doc.RecordID()] = doc.File
	}
	s.mu.Unlock()

	return docs, nil
}

func (s *MongoStore) GetContent(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	s.mu.RLock()
	files := make([]string, 0, len(ids))
	for _, id := range ids {
		if file, ok := s.fileByID[id]; ok {
			files = append(files, file)
		}
	}
	s.mu.RUnlock()

	if len(files) == 0 {
		return map[string]string{}, nil
	}

	projection := bson.M{"FILE": 1, "page_content": 1, "_id": 0}
	cursor, err := s.collection.Find(ctx,
		bson.M{"FILE": bson.M{"$in": files}},
		options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}
	defer cursor.Close(ctx)

	type contentDoc struct {
		File    string `bson:"FILE"`
		Content string `bson:"page_content"`
	}

	contents := make(map[string]string, len(files))
	for cursor.Next(ctx) {
		var doc contentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
		info := DocumentInfo{File: doc.File}
		contents[info.RecordID()] = doc.Content
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("content cursor: %w", err)
	}

	return contents, nil
}
