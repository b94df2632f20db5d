package repository

import (
	"context"
	"errors"
	"time"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultBidsTableName = "bids"
	bidsClientIDIndex    = "client_id-index"
	bidsFreelancerIndex  = "freelancer_id-index"
)

type bidItem struct {
	ID           string `dynamodbav:"id"`
	JobID        string `dynamodbav:"job_id"`
	ClientID     string `dynamodbav:"client_id"`
	FreelancerID string `dynamodbav:"freelancer_id"`
	Amount       string `dynamodbav:"amount"`
	Message      string `dynamodbav:"message,omitempty"`
	Timeline     string `dynamodbav:"timeline,omitempty"`
	Status       string `dynamodbav:"status"`
	ContractID   string `dynamodbav:"contract_id,omitempty"`
	CreatedAt    string `dynamodbav:"created_at"`
	UpdatedAt    string `dynamodbav:"updated_at"`
}

// BidDynamoRepository persists Bid entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: client_id-index (PK: client_id)
//   - GSI: freelancer_id-index (PK: freelancer_id)
type BidDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IBidRepository = (*BidDynamoRepository)(nil)

func NewBidDynamoRepository(ddb DynamoAPI, tableName string) *BidDynamoRepository {
	return &BidDynamoRepository{
		ddb:       ddb,
		tableName: tableOrDefault(tableName, defaultBidsTableName),
	}
}

func (r *BidDynamoRepository) Create(ctx context.Context, b entities.Bid) (entities.Bid, error) {
	av, err := attributevalue.MarshalMap(toBidItem(b))
	if err != nil {
		return entities.Bid{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Bid{}, err
	}
	return b, nil
}

func (r *BidDynamoRepository) GetByID(ctx context.Context, id string) (entities.Bid, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Bid{}, err
	}
	if len(out.Item) == 0 {
		return entities.Bid{}, nil
	}
	it, err := unmarshalInto[bidItem](out.Item)
	if err != nil {
		return entities.Bid{}, err
	}
	return fromBidItem(it), nil
}

func (r *BidDynamoRepository) ListByClientID(ctx context.Context, clientID string) ([]entities.Bid, error) {
	return queryIndex(ctx, r.ddb, r.tableName, bidsClientIDIndex, "client_id", clientID, decodeBid)
}

func (r *BidDynamoRepository) ListByFreelancerID(ctx context.Context, freelancerID string) ([]entities.Bid, error) {
	return queryIndex(ctx, r.ddb, r.tableName, bidsFreelancerIndex, "freelancer_id", freelancerID, decodeBid)
}

func (r *BidDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.BidStatus) (entities.Bid, error) {
	return r.update(ctx, id, "attribute_exists(#id)", func(now string) (string, map[string]types.AttributeValue, map[string]string) {
		expr := "SET #status = :status, #updated_at = :updated_at"
		vals := map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		}
		names := map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
		}
		return expr, vals, names
	})
}

func (r *BidDynamoRepository) update(
	ctx context.Context,
	id string,
	condition string,
	build func(now string) (updateExpr string, values map[string]types.AttributeValue, names map[string]string),
) (entities.Bid, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	updateExpr, values, names := build(now)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(id),
		ConditionExpression:       aws.String(condition),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Bid{}, nil
		}
		return entities.Bid{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Bid{}, nil
	}
	it, err := unmarshalInto[bidItem](out.Attributes)
	if err != nil {
		return entities.Bid{}, err
	}
	return fromBidItem(it), nil
}

func decodeBid(raw map[string]types.AttributeValue) (entities.Bid, error) {
	it, err := unmarshalInto[bidItem](raw)
	if err != nil {
		return entities.Bid{}, err
	}
	return fromBidItem(it), nil
}

func toBidItem(b entities.Bid) bidItem {
	return bidItem{
		ID:           b.ID,
		JobID:        b.JobID,
		ClientID:     b.ClientID,
		FreelancerID: b.FreelancerID,
		Amount:       decimalString(b.Amount),
		Message:      b.Message,
		Timeline:     b.Timeline,
		Status:       string(b.Status),
		ContractID:   b.ContractID,
		CreatedAt:    formatTime(b.CreatedAt),
		UpdatedAt:    formatTime(b.UpdatedAt),
	}
}

func fromBidItem(it bidItem) entities.Bid {
	return entities.Bid{
		ID:           it.ID,
		JobID:        it.JobID,
		ClientID:     it.ClientID,
		FreelancerID: it.FreelancerID,
		Amount:       parseDecimal(it.Amount),
		Message:      it.Message,
		Timeline:     it.Timeline,
		Status:       entities.BidStatus(it.Status),
		ContractID:   it.ContractID,
		CreatedAt:    parseTime(it.CreatedAt),
		UpdatedAt:    parseTime(it.UpdatedAt),
	}
}
