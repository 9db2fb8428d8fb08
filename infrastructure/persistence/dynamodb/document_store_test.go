package dynamodb

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"grapheditor/application/ports"
	"grapheditor/domain/document"
	"grapheditor/domain/versioning"
	pkgerrors "grapheditor/pkg/errors"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *MockAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func (m *MockAPI) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.TransactWriteItemsOutput)
	return out, args.Error(1)
}

func (m *MockAPI) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.BatchWriteItemOutput)
	return out, args.Error(1)
}

func sampleDocument(version int) ports.StoredDocument {
	directed := true
	return ports.StoredDocument{
		Meta: versioning.DocumentVersion{
			Name:      "triangle",
			Version:   version,
			Checksum:  "abc",
			NodeCount: 3,
			EdgeCount: 1,
			Directed:  true,
			SavedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Document: document.Document{
			Settings: document.Settings{Directed: &directed},
			Nodes: map[string]map[string]interface{}{
				"1": {"label": "a", "weight": 2.5},
				"2": {"label": "b"},
				"3": {"label": "c"},
			},
			Edges: []map[string]interface{}{{"nodes": []interface{}{"1", "2"}}},
		},
	}
}

// attributeNames returns the attribute names an expression refers to
func attributeNames(names map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name)
	}
	return out
}

func TestDocumentStore_SaveConditions(t *testing.T) {
	tests := []struct {
		name      string
		expected  int
		operator  string
		attribute string
	}{
		{"first save", 0, "attribute_not_exists", "PK"},
		{"next revision", 1, "=", "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())

			api.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
				if len(in.TransactItems) != 2 {
					return false
				}
				latest, revision := in.TransactItems[0].Put, in.TransactItems[1].Put
				sk := revision.Item["SK"].(*types.AttributeValueMemberS).Value
				return strings.Contains(*latest.ConditionExpression, tt.operator) &&
					slices.Contains(attributeNames(latest.ExpressionAttributeNames), tt.attribute) &&
					strings.Contains(*revision.ConditionExpression, "attribute_not_exists") &&
					slices.Contains(attributeNames(revision.ExpressionAttributeNames), "PK") &&
					sk == revisionKey(tt.expected+1)
			})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

			require.NoError(t, store.Save(context.Background(), sampleDocument(tt.expected+1), tt.expected))
			api.AssertExpectations(t)
		})
	}
}

func TestDocumentStore_SaveExpectedVersionValue(t *testing.T) {
	api := new(MockAPI)
	store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())

	var latest *types.Put
	api.On("TransactWriteItems", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			latest = args.Get(1).(*dynamodb.TransactWriteItemsInput).TransactItems[0].Put
		}).
		Return(&dynamodb.TransactWriteItemsOutput{}, nil)

	require.NoError(t, store.Save(context.Background(), sampleDocument(8), 7))
	require.NotNil(t, latest)
	require.Len(t, latest.ExpressionAttributeValues, 1)
	for _, v := range latest.ExpressionAttributeValues {
		assert.Equal(t, &types.AttributeValueMemberN{Value: "7"}, v)
	}
}

func TestDocumentStore_OnlyLatestIsIndexed(t *testing.T) {
	store := NewDocumentStore(new(MockAPI), "documents", "EntityIndex", zap.NewNop())

	latest, err := store.marshalItem(sampleDocument(2), skLatest)
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberS{Value: entityDocument}, latest["GSI1PK"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "triangle"}, latest["GSI1SK"])

	revision, err := store.marshalItem(sampleDocument(2), revisionKey(2))
	require.NoError(t, err)
	assert.NotContains(t, revision, "GSI1PK")
	assert.NotContains(t, revision, "GSI1SK")
}

func TestDocumentStore_SaveVersionMismatch(t *testing.T) {
	api := new(MockAPI)
	store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())

	api.On("TransactWriteItems", mock.Anything, mock.Anything).
		Return(nil, &types.TransactionCanceledException{Message: new(string)})

	err := store.Save(context.Background(), sampleDocument(3), 2)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestDocumentStore_GetRoundTrip(t *testing.T) {
	api := new(MockAPI)
	store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())
	doc := sampleDocument(1)

	item, err := store.marshalItem(doc, skLatest)
	require.NoError(t, err)

	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	got, err := store.Get(context.Background(), "triangle")
	require.NoError(t, err)
	assert.Equal(t, doc.Meta, got.Meta)
	assert.Equal(t, 2.5, got.Document.Nodes["1"]["weight"])
	assert.Len(t, got.Document.Edges, 1)
}

func TestDocumentStore_GetMissing(t *testing.T) {
	api := new(MockAPI)
	store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())

	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := store.Get(context.Background(), "nope")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDocumentStore_ListPaginates(t *testing.T) {
	api := new(MockAPI)
	store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())

	first, err := store.marshalItem(sampleDocument(1), skLatest)
	require.NoError(t, err)
	second := sampleDocument(4)
	second.Meta.Name = "square"
	secondItem, err := store.marshalItem(second, skLatest)
	require.NoError(t, err)

	onIndex := func(in *dynamodb.QueryInput) bool {
		return in.IndexName != nil && *in.IndexName == "EntityIndex" &&
			slices.Contains(attributeNames(in.ExpressionAttributeNames), "GSI1PK")
	}
	cursor := map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "DOC#triangle"}}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return onIndex(in) && in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{first}, LastEvaluatedKey: cursor}, nil).Once()
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return onIndex(in) && in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{secondItem}}, nil).Once()

	docs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "triangle", docs[0].Name)
	assert.Equal(t, 4, docs[1].Version)
	api.AssertExpectations(t)
}

func TestDocumentStore_DeleteRemovesAllRevisions(t *testing.T) {
	api := new(MockAPI)
	store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())

	var items []map[string]types.AttributeValue
	for _, sk := range []string{skLatest, revisionKey(1), revisionKey(2)} {
		item, err := store.marshalItem(sampleDocument(2), sk)
		require.NoError(t, err)
		items = append(items, item)
	}

	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.IndexName == nil && slices.Contains(attributeNames(in.ExpressionAttributeNames), "PK")
	})).Return(&dynamodb.QueryOutput{Items: items}, nil)
	api.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
		return len(in.RequestItems["documents"]) == 3
	})).Return(&dynamodb.BatchWriteItemOutput{}, nil)

	require.NoError(t, store.Delete(context.Background(), "triangle"))
	api.AssertExpectations(t)
}

func TestDocumentStore_DeleteMissing(t *testing.T) {
	api := new(MockAPI)
	store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())

	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

	err := store.Delete(context.Background(), "nope")
	assert.True(t, pkgerrors.IsNotFound(err))
	api.AssertNotCalled(t, "BatchWriteItem", mock.Anything, mock.Anything)
}

func TestDocumentStore_DatabaseErrors(t *testing.T) {
	api := new(MockAPI)
	store := NewDocumentStore(api, "documents", "EntityIndex", zap.NewNop())

	api.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := store.Get(context.Background(), "triangle")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}
