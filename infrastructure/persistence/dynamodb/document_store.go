// Package dynamodb stores saved documents in a single DynamoDB table.
//
// Each document has a LATEST item holding the newest revision and one REV#
// item per saved revision, all under the partition DOC#<name>. Only LATEST
// items carry GSI1PK/GSI1SK, so the entity index lists one item per document.
package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"grapheditor/application/ports"
	"grapheditor/domain/document"
	"grapheditor/domain/versioning"
	"grapheditor/infrastructure/resilience"
	pkgerrors "grapheditor/pkg/errors"
)

const (
	entityDocument = "DOCUMENT"
	skLatest       = "LATEST"
)

// API is the subset of the DynamoDB client the store uses
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// documentItem is the DynamoDB item structure for one revision
type documentItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	GSI1PK     string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK     string `dynamodbav:"GSI1SK,omitempty"`
	versioning.DocumentVersion
	Body string `dynamodbav:"Body"`
}

// DocumentStore implements ports.DocumentStore on DynamoDB
type DocumentStore struct {
	client    API
	tableName string
	indexName string
	breaker   *resilience.Breaker
	logger    *zap.Logger
}

// NewDocumentStore creates a new DocumentStore. indexName is the GSI keyed
// by GSI1PK/GSI1SK.
func NewDocumentStore(client API, tableName, indexName string, logger *zap.Logger) *DocumentStore {
	requestErrors := func(err error) bool {
		return pkgerrors.IsNotFound(err) || pkgerrors.IsConflict(err)
	}
	return &DocumentStore{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		breaker:   resilience.NewBreaker(resilience.DefaultBreakerConfig("dynamodb-documents"), requestErrors, logger),
		logger:    logger,
	}
}

func partitionKey(name string) string {
	return "DOC#" + name
}

func revisionKey(version int) string {
	return fmt.Sprintf("REV#%08d", version)
}

func (s *DocumentStore) marshalItem(doc ports.StoredDocument, sk string) (map[string]types.AttributeValue, error) {
	body, err := json.Marshal(doc.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document body: %w", err)
	}
	item := documentItem{
		PK:              partitionKey(doc.Meta.Name),
		SK:              sk,
		EntityType:      entityDocument,
		DocumentVersion: doc.Meta,
		Body:            string(body),
	}
	if sk == skLatest {
		item.GSI1PK = entityDocument
		item.GSI1SK = doc.Meta.Name
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return av, nil
}

// Save stores a new revision. The LATEST item is written only if it is still
// at expectedVersion.
func (s *DocumentStore) Save(ctx context.Context, doc ports.StoredDocument, expectedVersion int) error {
	latest, err := s.marshalItem(doc, skLatest)
	if err != nil {
		return err
	}
	revision, err := s.marshalItem(doc, revisionKey(doc.Meta.Version))
	if err != nil {
		return err
	}

	latestCond := notExistsCondition()
	if expectedVersion > 0 {
		latestCond = versionCondition(expectedVersion)
	}
	latestPut, err := s.conditionalPut(latest, latestCond)
	if err != nil {
		return err
	}
	revisionPut, err := s.conditionalPut(revision, notExistsCondition())
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: latestPut},
			{Put: revisionPut},
		},
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		_, err := s.client.TransactWriteItems(ctx, input)
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return nil, pkgerrors.NewConflictError(fmt.Sprintf(
				"document %q changed since version %d", doc.Meta.Name, expectedVersion,
			)).WithCode("VERSION_MISMATCH").WithCause(err)
		}
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("save document", err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Document saved to DynamoDB",
		zap.String("document", doc.Meta.Name),
		zap.Int("version", doc.Meta.Version),
	)
	return nil
}

func notExistsCondition() expression.ConditionBuilder {
	return expression.AttributeNotExists(expression.Name("PK"))
}

func versionCondition(version int) expression.ConditionBuilder {
	return expression.Name("version").Equal(expression.Value(version))
}

func (s *DocumentStore) conditionalPut(item map[string]types.AttributeValue, cond expression.ConditionBuilder) (*types.Put, error) {
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build condition: %w", err)
	}
	return &types.Put{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

// Get retrieves the latest revision of a document
func (s *DocumentStore) Get(ctx context.Context, name string) (ports.StoredDocument, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionKey(name)},
			"SK": &types.AttributeValueMemberS{Value: skLatest},
		},
	}

	out, err := resilience.Call(s.breaker, func() (*dynamodb.GetItemOutput, error) {
		out, err := s.client.GetItem(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("get document", err)
		}
		if out.Item == nil {
			return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("document %q", name))
		}
		return out, nil
	})
	if err != nil {
		return ports.StoredDocument{}, err
	}

	return unmarshalDocument(out.Item)
}

func unmarshalDocument(av map[string]types.AttributeValue) (ports.StoredDocument, error) {
	var item documentItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return ports.StoredDocument{}, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	var doc document.Document
	if err := json.Unmarshal([]byte(item.Body), &doc); err != nil {
		return ports.StoredDocument{}, fmt.Errorf("failed to decode document body: %w", err)
	}
	return ports.StoredDocument{Meta: item.DocumentVersion, Document: doc}, nil
}

// List returns metadata of every stored document, ordered by name
func (s *DocumentStore) List(ctx context.Context) ([]versioning.DocumentVersion, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("GSI1PK").Equal(expression.Value(entityDocument))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	var (
		result   []versioning.DocumentVersion
		startKey map[string]types.AttributeValue
	)

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(s.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		}

		out, err := resilience.Call(s.breaker, func() (*dynamodb.QueryOutput, error) {
			out, err := s.client.Query(ctx, input)
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("list documents", err)
			}
			return out, nil
		})
		if err != nil {
			return nil, err
		}

		for _, av := range out.Items {
			var meta versioning.DocumentVersion
			if err := attributevalue.UnmarshalMap(av, &meta); err != nil {
				s.logger.Warn("Skipping unreadable document item", zap.Error(err))
				continue
			}
			result = append(result, meta)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return result, nil
}

// Revisions returns the metadata of every saved revision, oldest first
func (s *DocumentStore) Revisions(ctx context.Context, name string) ([]versioning.DocumentVersion, error) {
	keys, metas, err := s.queryRevisions(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("document %q", name))
	}
	return metas, nil
}

func (s *DocumentStore) queryRevisions(ctx context.Context, name string) ([]string, []versioning.DocumentVersion, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("PK").Equal(expression.Value(partitionKey(name)))).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build revisions query: %w", err)
	}

	var (
		sortKeys []string
		metas    []versioning.DocumentVersion
		startKey map[string]types.AttributeValue
	)

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		}

		out, err := resilience.Call(s.breaker, func() (*dynamodb.QueryOutput, error) {
			out, err := s.client.Query(ctx, input)
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("query document revisions", err)
			}
			return out, nil
		})
		if err != nil {
			return nil, nil, err
		}

		for _, av := range out.Items {
			var item documentItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				return nil, nil, fmt.Errorf("failed to unmarshal document: %w", err)
			}
			sortKeys = append(sortKeys, item.SK)
			if item.SK != skLatest {
				metas = append(metas, item.DocumentVersion)
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return sortKeys, metas, nil
}

// Delete removes a document with all its revisions
func (s *DocumentStore) Delete(ctx context.Context, name string) error {
	sortKeys, _, err := s.queryRevisions(ctx, name)
	if err != nil {
		return err
	}
	if len(sortKeys) == 0 {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("document %q", name))
	}

	const batchSize = 25
	for start := 0; start < len(sortKeys); start += batchSize {
		end := min(start+batchSize, len(sortKeys))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, sk := range sortKeys[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: partitionKey(name)},
						"SK": &types.AttributeValueMemberS{Value: sk},
					},
				},
			})
		}

		if err := s.batchDelete(ctx, requests); err != nil {
			return err
		}
	}

	s.logger.Info("Document deleted from DynamoDB",
		zap.String("document", name),
		zap.Int("items", len(sortKeys)),
	)
	return nil
}

func (s *DocumentStore) batchDelete(ctx context.Context, requests []types.WriteRequest) error {
	const maxAttempts = 3

	pending := map[string][]types.WriteRequest{s.tableName: requests}
	for attempt := 0; attempt < maxAttempts && len(pending[s.tableName]) > 0; attempt++ {
		out, err := resilience.Call(s.breaker, func() (*dynamodb.BatchWriteItemOutput, error) {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("delete document", err)
			}
			return out, nil
		})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems
	}

	if left := len(pending[s.tableName]); left > 0 {
		return pkgerrors.NewDatabaseError("delete document", fmt.Errorf("%d items left unprocessed", left))
	}
	return nil
}
