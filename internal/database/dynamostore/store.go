// Package dynamostore хранит матчи и сообщения в DynamoDB.
//
// Ключ таблицы матчей - "id". У таблицы сообщений partition key
// "chatRoomId", sort key "sk" (UTC время фиксированной ширины + "#" + id),
// поэтому выборка по комнате идет в порядке времени.
package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/thereayou/matchmaker/internal/database"
	"github.com/thereayou/matchmaker/internal/models"
)

const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

// API - часть клиента DynamoDB, которой пользуется Store
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type Store struct {
	client        API
	matchesTable  string
	messagesTable string
}

// messageItem - запись сообщения в таблице
type messageItem struct {
	ChatRoomID string    `dynamodbav:"chatRoomId"`
	SortKey    string    `dynamodbav:"sk"`
	ID         string    `dynamodbav:"id"`
	Sender     string    `dynamodbav:"sender"`
	Content    string    `dynamodbav:"content"`
	Timestamp  time.Time `dynamodbav:"timestamp"`
	ReadStatus bool      `dynamodbav:"readStatus"`
}

func sortKey(ts time.Time, id string) string {
	return ts.UTC().Format(sortKeyLayout) + "#" + id
}

// Connect загружает AWS конфиг для region. Непустой endpoint подменяет
// адрес сервиса (DynamoDB Local).
func Connect(ctx context.Context, region, endpoint, matchesTable, messagesTable string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return New(client, matchesTable, messagesTable), nil
}

func New(client API, matchesTable, messagesTable string) *Store {
	return &Store{
		client:        client,
		matchesTable:  matchesTable,
		messagesTable: messagesTable,
	}
}

func (s *Store) CreateMatch(ctx context.Context, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}

	item, err := attributevalue.MarshalMap(match)
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.matchesTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", s.matchesTable, err)
	}
	return nil
}

func (s *Store) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.matchesTable),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", s.matchesTable, err)
	}
	if out.Item == nil {
		return nil, database.ErrNotFound
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(out.Item, &match); err != nil {
		return nil, fmt.Errorf("unmarshal match: %w", err)
	}
	return &match, nil
}

func (s *Store) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.matchesTable),
		Key:                      map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:         aws.String("SET #status = :status"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update item in table '%s': %w", s.matchesTable, err)
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(out.Attributes, &match); err != nil {
		return nil, fmt.Errorf("unmarshal match: %w", err)
	}
	return &match, nil
}

// ListUserMatches сканирует таблицу: участник может быть с любой стороны,
// одним ключом это не выбрать
func (s *Store) ListUserMatches(ctx context.Context, userID string) ([]models.Match, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.matchesTable),
		FilterExpression: aws.String("userA = :user OR userB = :user"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user": &types.AttributeValueMemberS{Value: userID},
		},
	}

	var matches []models.Match
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", s.matchesTable, err)
		}

		var page []models.Match
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal matches: %w", err)
		}
		matches = append(matches, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchedAt.Before(matches[j].MatchedAt)
	})
	return matches, nil
}

func (s *Store) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	item, err := attributevalue.MarshalMap(messageItem{
		ChatRoomID: message.ChatRoomID,
		SortKey:    sortKey(message.Timestamp, message.ID),
		ID:         message.ID,
		Sender:     message.Sender,
		Content:    message.Content,
		Timestamp:  message.Timestamp,
		ReadStatus: message.ReadStatus,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.messagesTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", s.messagesTable, err)
	}
	return nil
}

func (s *Store) GetRoomMessages(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.messagesTable),
		KeyConditionExpression: aws.String("chatRoomId = :room"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":room": &types.AttributeValueMemberS{Value: roomID},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var messages []models.ChatMessage
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query table '%s': %w", s.messagesTable, err)
		}

		var page []messageItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal messages: %w", err)
		}
		for _, item := range page {
			messages = append(messages, models.ChatMessage{
				ID:         item.ID,
				ChatRoomID: item.ChatRoomID,
				Sender:     item.Sender,
				Content:    item.Content,
				Timestamp:  item.Timestamp,
				ReadStatus: item.ReadStatus,
			})
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return messages, nil
}

func (s *Store) Close() error { return nil }
