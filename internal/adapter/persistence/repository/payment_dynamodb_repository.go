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
	defaultPaymentsTableName = "payments"
	paymentsContractIDIndex  = "contract_id-index"
)

type paymentItem struct {
	ID                string `dynamodbav:"id"`
	ContractID        string `dynamodbav:"contract_id"`
	Amount            string `dynamodbav:"amount"`
	Currency          string `dynamodbav:"currency"`
	PaymentType       string `dynamodbav:"payment_type"`
	Status            string `dynamodbav:"status"`
	ProviderOrderID   string `dynamodbav:"provider_order_id,omitempty"`
	ProviderPaymentID string `dynamodbav:"provider_payment_id,omitempty"`
	ProviderPayload   string `dynamodbav:"provider_payload_raw,omitempty"`
	CreatedAt         string `dynamodbav:"created_at"`
	UpdatedAt         string `dynamodbav:"updated_at"`
}

// PaymentDynamoRepository persists PaymentRecord entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: contract_id-index (PK: contract_id)
type PaymentDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb DynamoAPI, tableName string) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:       ddb,
		tableName: tableOrDefault(tableName, defaultPaymentsTableName),
	}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.PaymentRecord) (entities.PaymentRecord, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.PaymentRecord{}, err
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
		return entities.PaymentRecord{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.PaymentRecord, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if len(out.Item) == 0 {
		return entities.PaymentRecord{}, nil
	}
	it, err := unmarshalInto[paymentItem](out.Item)
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	return fromPaymentItem(it), nil
}

func (r *PaymentDynamoRepository) ListByContractID(ctx context.Context, contractID string) ([]entities.PaymentRecord, error) {
	return queryIndex(ctx, r.ddb, r.tableName, paymentsContractIDIndex, "contract_id", contractID,
		func(raw map[string]types.AttributeValue) (entities.PaymentRecord, error) {
			it, err := unmarshalInto[paymentItem](raw)
			if err != nil {
				return entities.PaymentRecord{}, err
			}
			return fromPaymentItem(it), nil
		})
}

func (r *PaymentDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.PaymentRecordStatus, providerPaymentID string, providerPayload []byte) (entities.PaymentRecord, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	expr := "SET #status = :status, #updated_at = :updated_at"
	vals := map[string]types.AttributeValue{
		":status":     &types.AttributeValueMemberS{Value: string(status)},
		":updated_at": &types.AttributeValueMemberS{Value: now},
	}
	names := map[string]string{
		"#id":         "id",
		"#status":     "status",
		"#updated_at": "updated_at",
	}
	if providerPaymentID != "" {
		expr += ", #provider_payment_id = :provider_payment_id"
		vals[":provider_payment_id"] = &types.AttributeValueMemberS{Value: providerPaymentID}
		names["#provider_payment_id"] = "provider_payment_id"
	}
	if len(providerPayload) > 0 {
		expr += ", #provider_payload_raw = :provider_payload_raw"
		vals[":provider_payload_raw"] = &types.AttributeValueMemberS{Value: string(providerPayload)}
		names["#provider_payload_raw"] = "provider_payload_raw"
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(id),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: vals,
		ExpressionAttributeNames:  names,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.PaymentRecord{}, nil
		}
		return entities.PaymentRecord{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.PaymentRecord{}, nil
	}
	it, err := unmarshalInto[paymentItem](out.Attributes)
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	return fromPaymentItem(it), nil
}

func toPaymentItem(p entities.PaymentRecord) paymentItem {
	return paymentItem{
		ID:                p.ID,
		ContractID:        p.ContractID,
		Amount:            decimalString(p.Amount),
		Currency:          p.Currency,
		PaymentType:       string(p.PaymentType),
		Status:            string(p.Status),
		ProviderOrderID:   p.ProviderOrderID,
		ProviderPaymentID: p.ProviderPaymentID,
		ProviderPayload:   string(p.ProviderPayloadRaw),
		CreatedAt:         formatTime(p.CreatedAt),
		UpdatedAt:         formatTime(p.UpdatedAt),
	}
}

func fromPaymentItem(it paymentItem) entities.PaymentRecord {
	p := entities.PaymentRecord{
		ID:                it.ID,
		ContractID:        it.ContractID,
		Amount:            parseDecimal(it.Amount),
		Currency:          it.Currency,
		PaymentType:       entities.PaymentType(it.PaymentType),
		Status:            entities.PaymentRecordStatus(it.Status),
		ProviderOrderID:   it.ProviderOrderID,
		ProviderPaymentID: it.ProviderPaymentID,
		CreatedAt:         parseTime(it.CreatedAt),
		UpdatedAt:         parseTime(it.UpdatedAt),
	}
	if it.ProviderPayload != "" {
		p.ProviderPayloadRaw = []byte(it.ProviderPayload)
	}
	return p
}
