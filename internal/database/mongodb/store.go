// Package mongodb хранит матчи и сообщения документами MongoDB со
// строковыми id.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matchmaker/internal/database"
	"github.com/thereayou/matchmaker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	matchesCollection  = "matches"
	messagesCollection = "chat_messages"
)

type Store struct {
	client   *mongo.Client
	matches  *mongo.Collection
	messages *mongo.Collection
}

// Connect подключается, проверяет соединение и создает индексы
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is not set")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := New(client, dbName)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:   client,
		matches:  db.Collection(matchesCollection),
		messages: db.Collection(messagesCollection),
	}
}

// EnsureIndexes создает индексы по участникам и по комнате/времени
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.matches.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userA", Value: 1}}},
		{Keys: bson.D{{Key: "userB", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create match indexes: %w", err)
	}

	_, err = s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chatRoomId", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create message index: %w", err)
	}
	return nil
}

func (s *Store) CreateMatch(ctx context.Context, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if _, err := s.matches.InsertOne(ctx, match); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (s *Store) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	err := s.matches.FindOne(ctx, bson.M{"_id": id}).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("find match: %w", err)
	}
	return &match, nil
}

func (s *Store) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error) {
	var match models.Match
	err := s.matches.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("update match status: %w", err)
	}
	return &match, nil
}

func (s *Store) ListUserMatches(ctx context.Context, userID string) ([]models.Match, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"userA": userID},
		bson.M{"userB": userID},
	}}
	cur, err := s.matches.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "matchedAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find matches: %w", err)
	}

	var matches []models.Match
	if err := cur.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return matches, nil
}

func (s *Store) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if _, err := s.messages.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *Store) GetRoomMessages(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	cur, err := s.messages.Find(ctx,
		bson.M{"chatRoomId": roomID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	var messages []models.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
