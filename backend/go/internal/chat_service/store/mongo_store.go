package store

import (
	"context"
	"errors"
	"fmt"

	"moihub_chatbot/backend/go/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is an implementation of KnowledgeStore using MongoDB.
// Documents live in two collections: question/answer pairs and entity facts.
type MongoStore struct {
	db        *mongo.Database
	knowledge *mongo.Collection
	entities  *mongo.Collection
}

// NewMongoStore creates a new MongoStore.
func NewMongoStore(db *mongo.Database, knowledgeCollection, entityCollection string) *MongoStore {
	return &MongoStore{
		db:        db,
		knowledge: db.Collection(knowledgeCollection),
		entities:  db.Collection(entityCollection),
	}
}

// EnsureIndexes creates the lookup indexes. The entity index is unique so that
// there is at most one fact per entity; questions are indexed but not unique.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.knowledge.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "question", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create question index: %w", err)
	}
	if _, err := s.entities.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "entity", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create entity index: %w", err)
	}
	return nil
}

// EntryExists reports whether a document with exactly this question exists.
func (s *MongoStore) EntryExists(ctx context.Context, question string) (bool, error) {
	entry, err := s.GetEntryByQuestion(ctx, question)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// InsertEntry inserts a new question/answer document.
func (s *MongoStore) InsertEntry(ctx context.Context, entry models.QAEntry) error {
	if _, err := s.knowledge.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert knowledge entry: %w", err)
	}
	return nil
}

// AllQuestions returns every stored question in natural order.
func (s *MongoStore) AllQuestions(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0, "question": 1})
	entries, err := s.find(ctx, opts)
	if err != nil {
		return nil, err
	}
	questions := make([]string, 0, len(entries))
	for _, e := range entries {
		questions = append(questions, e.Question)
	}
	return questions, nil
}

// GetEntryByQuestion retrieves an entry by its exact question.
func (s *MongoStore) GetEntryByQuestion(ctx context.Context, question string) (*models.QAEntry, error) {
	var entry models.QAEntry
	err := s.knowledge.FindOne(ctx, bson.M{"question": question}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find knowledge entry: %w", err)
	}
	return &entry, nil
}

// AllEntries returns every stored entry without the _id field.
func (s *MongoStore) AllEntries(ctx context.Context) ([]models.QAEntry, error) {
	return s.find(ctx, options.Find().SetProjection(bson.M{"_id": 0}))
}

func (s *MongoStore) find(ctx context.Context, opts *options.FindOptions) ([]models.QAEntry, error) {
	cursor, err := s.knowledge.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan knowledge base: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.QAEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge base: %w", err)
	}
	return entries, nil
}

// GetFact retrieves the fact for a lowercased entity key.
func (s *MongoStore) GetFact(ctx context.Context, entity string) (*models.EntityFact, error) {
	var fact models.EntityFact
	err := s.entities.FindOne(ctx, bson.M{"entity": entity}).Decode(&fact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find entity fact: %w", err)
	}
	if fact.Location == "" {
		return nil, nil
	}
	return &fact, nil
}

// UpsertFact sets the location for an entity, creating the document if needed.
func (s *MongoStore) UpsertFact(ctx context.Context, fact models.EntityFact) error {
	filter := bson.M{"entity": fact.Entity}
	update := bson.M{"$set": bson.M{"location": fact.Location}}
	if _, err := s.entities.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert entity fact: %w", err)
	}
	return nil
}

// Ping checks the connection to the database server.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}
