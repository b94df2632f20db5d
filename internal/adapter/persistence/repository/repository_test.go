package repository

import (
	"context"
	"testing"
	"time"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps the last write per table key and serves queries page by page.
type fakeDynamo struct {
	items   map[string]map[string]types.AttributeValue
	putErr  error
	updErr  error
	puts    []*dynamodb.PutItemInput
	updates []*dynamodb.UpdateItemInput
	pages   []*dynamodb.QueryOutput
	queries []*dynamodb.QueryInput
	txErr   error
	txs     []*dynamodb.TransactWriteItemsInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	id := in.Item["id"].(*types.AttributeValueMemberS).Value
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updErr != nil {
		return nil, f.updErr
	}
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.UpdateItemOutput{Attributes: f.items[id]}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	cp := *in
	f.queries = append(f.queries, &cp)
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

// TransactWriteItems applies every Put or nothing.
func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.txs = append(f.txs, in)
	if f.txErr != nil {
		return nil, f.txErr
	}
	for _, it := range in.TransactItems {
		if it.Put != nil {
			id := it.Put.Item["id"].(*types.AttributeValueMemberS).Value
			f.items[id] = it.Put.Item
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func sampleContract() entities.Contract {
	adv := decimal.NewFromInt(500)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return entities.Contract{
		ID:               "c-1",
		BidID:            "bid-1",
		JobID:            "job-1",
		ClientID:         "client-1",
		FreelancerID:     "free-1",
		Status:           entities.ContractStatusPendingSignatures,
		FreelancerSigned: true,
		PaymentStatus:    entities.PaymentStatusAdvancePaid,
		Payment:          entities.PaymentTerms{Amount: decimal.RequireFromString("1000.50"), Method: "pix", AdvancePaid: true},
		AdvanceAmount:    &adv,
		ClientInfo:       entities.PartyInfo{FullName: "Ana", Email: "ana@example.com"},
		ProjectDetails: entities.ProjectDetails{
			Title: "Landing page", StartDate: now, EndDate: now.AddDate(0, 1, 0), Deliverables: []string{"design", "code"},
		},
		ChangeRequests: []entities.ChangeRequest{{By: entities.RoleFreelancer, Message: "scope", Timestamp: now}},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestContractDynamoRepository_CreateAndGet(t *testing.T) {
	ddb := newFakeDynamo()
	repo := NewContractDynamoRepository(ddb, "", "")

	created, err := repo.Create(context.Background(), sampleContract())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)
	require.Len(t, ddb.txs, 1)
	items := ddb.txs[0].TransactItems
	require.Len(t, items, 2)
	assert.Equal(t, "contracts", aws.ToString(items[0].Put.TableName))
	assert.Equal(t, "attribute_not_exists(#id)", aws.ToString(items[0].Put.ConditionExpression))
	assert.Equal(t, "bids", aws.ToString(items[1].Update.TableName))
	assert.Contains(t, aws.ToString(items[1].Update.ConditionExpression), "attribute_not_exists(#contract_id)")
	assert.Equal(t, "bid-1", items[1].Update.Key["id"].(*types.AttributeValueMemberS).Value)
	status := items[1].Update.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS)
	assert.Equal(t, string(entities.BidStatusContractCreated), status.Value)

	got, err := repo.GetByID(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, entities.ContractStatusPendingSignatures, got.Status)
	assert.True(t, got.Payment.Amount.Equal(decimal.RequireFromString("1000.50")))
	require.NotNil(t, got.AdvanceAmount)
	assert.True(t, got.AdvanceAmount.Equal(decimal.NewFromInt(500)))
	assert.Nil(t, got.FinalAmount)
	assert.Equal(t, []string{"design", "code"}, got.ProjectDetails.Deliverables)
	require.Len(t, got.ChangeRequests, 1)
	assert.Equal(t, entities.RoleFreelancer, got.ChangeRequests[0].By)
	assert.True(t, got.ProjectDetails.StartDate.Equal(sampleContract().ProjectDetails.StartDate))
}

func TestContractDynamoRepository_GetMissing(t *testing.T) {
	repo := NewContractDynamoRepository(newFakeDynamo(), "contracts-test", "")
	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got.ID)
}

func TestContractDynamoRepository_Update(t *testing.T) {
	t.Run("conditions on the read version", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewContractDynamoRepository(ddb, "", "")
		c := sampleContract()
		c.Version = 4

		saved, err := repo.Update(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, int64(5), saved.Version)
		expected := ddb.puts[0].ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN)
		assert.Equal(t, "4", expected.Value)
	})

	t.Run("conditional failure is a version conflict", func(t *testing.T) {
		ddb := newFakeDynamo()
		ddb.putErr = &types.ConditionalCheckFailedException{Message: aws.String("stale")}
		repo := NewContractDynamoRepository(ddb, "", "")

		_, err := repo.Update(context.Background(), sampleContract())
		assert.ErrorIs(t, err, interfaces.ErrVersionConflict)
	})
}

func TestBidDynamoRepository_ListPaginates(t *testing.T) {
	ddb := newFakeDynamo()
	repo := NewBidDynamoRepository(ddb, "")

	page1, err := itemsFor(toBidItem(entities.Bid{ID: "b-1", ClientID: "client-1", Amount: decimal.NewFromInt(10), Status: entities.BidStatusPending}))
	require.NoError(t, err)
	page2, err := itemsFor(toBidItem(entities.Bid{ID: "b-2", ClientID: "client-1", Amount: decimal.NewFromInt(20), Status: entities.BidStatusAccepted}))
	require.NoError(t, err)
	ddb.pages = []*dynamodb.QueryOutput{
		{Items: page1, LastEvaluatedKey: idKey("b-1")},
		{Items: page2},
	}

	bids, err := repo.ListByClientID(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, "b-2", bids[1].ID)
	assert.True(t, bids[1].Amount.Equal(decimal.NewFromInt(20)))
	require.Len(t, ddb.queries, 2)
	assert.Equal(t, bidsClientIDIndex, aws.ToString(ddb.queries[0].IndexName))
	assert.NotEmpty(t, ddb.queries[1].ExclusiveStartKey)
}

func TestContractDynamoRepository_CreateBoundBid(t *testing.T) {
	t.Run("bid already bound writes nothing", func(t *testing.T) {
		ddb := newFakeDynamo()
		ddb.txErr = &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("None")}, {Code: aws.String("ConditionalCheckFailed")}},
		}
		repo := NewContractDynamoRepository(ddb, "", "")

		_, err := repo.Create(context.Background(), sampleContract())
		assert.ErrorIs(t, err, interfaces.ErrBidAlreadyBound)
		got, err := repo.GetByID(context.Background(), "c-1")
		require.NoError(t, err)
		assert.Empty(t, got.ID)
	})

	t.Run("duplicate contract id is not a bind failure", func(t *testing.T) {
		ddb := newFakeDynamo()
		ddb.txErr = &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("ConditionalCheckFailed")}, {Code: aws.String("None")}},
		}
		repo := NewContractDynamoRepository(ddb, "", "")

		_, err := repo.Create(context.Background(), sampleContract())
		require.Error(t, err)
		assert.NotErrorIs(t, err, interfaces.ErrBidAlreadyBound)
	})
}

func TestPaymentDynamoRepository_UpdateStatus(t *testing.T) {
	ddb := newFakeDynamo()
	repo := NewPaymentDynamoRepository(ddb, "")
	_, err := repo.Create(context.Background(), entities.PaymentRecord{ID: "p-1", ContractID: "c-1", Amount: decimal.NewFromInt(500), Status: entities.PaymentRecordCreated})
	require.NoError(t, err)

	_, err = repo.UpdateStatus(context.Background(), "p-1", entities.PaymentRecordCaptured, "mp-9", []byte(`{"status":"approved"}`))
	require.NoError(t, err)

	in := ddb.updates[0]
	assert.Contains(t, aws.ToString(in.UpdateExpression), "#provider_payment_id = :provider_payment_id")
	assert.Contains(t, aws.ToString(in.UpdateExpression), "#provider_payload_raw = :provider_payload_raw")
	assert.Equal(t, "provider_payment_id", in.ExpressionAttributeNames["#provider_payment_id"])
}

func TestPaymentDynamoRepository_UpdateStatusWithoutProviderData(t *testing.T) {
	ddb := newFakeDynamo()
	repo := NewPaymentDynamoRepository(ddb, "")

	_, err := repo.UpdateStatus(context.Background(), "p-1", entities.PaymentRecordFailed, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "SET #status = :status, #updated_at = :updated_at", aws.ToString(ddb.updates[0].UpdateExpression))
}

func itemsFor(v any) ([]map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, err
	}
	return []map[string]types.AttributeValue{av}, nil
}
