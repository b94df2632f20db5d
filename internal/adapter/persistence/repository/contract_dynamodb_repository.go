package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultContractsTableName = "contracts"

type partyItem struct {
	FullName    string `dynamodbav:"full_name"`
	Email       string `dynamodbav:"email"`
	CompanyName string `dynamodbav:"company_name,omitempty"`
}

type projectItem struct {
	Title        string   `dynamodbav:"title"`
	Description  string   `dynamodbav:"description"`
	StartDate    string   `dynamodbav:"start_date"`
	EndDate      string   `dynamodbav:"end_date"`
	Deliverables []string `dynamodbav:"deliverables,omitempty"`
}

type changeRequestItem struct {
	By        string `dynamodbav:"by"`
	Message   string `dynamodbav:"message"`
	Timestamp string `dynamodbav:"timestamp"`
}

type contractItem struct {
	ID               string `dynamodbav:"id"`
	BidID            string `dynamodbav:"bid_id"`
	JobID            string `dynamodbav:"job_id"`
	ClientID         string `dynamodbav:"client_id"`
	FreelancerID     string `dynamodbav:"freelancer_id"`
	Status           string `dynamodbav:"status"`
	ClientSigned     bool   `dynamodbav:"client_signed"`
	FreelancerSigned bool   `dynamodbav:"freelancer_signed"`

	PaymentStatus string `dynamodbav:"payment_status"`
	Amount        string `dynamodbav:"amount"`
	PaymentMethod string `dynamodbav:"payment_method,omitempty"`
	PaymentTerms  string `dynamodbav:"payment_terms,omitempty"`
	AdvancePaid   bool   `dynamodbav:"advance_paid"`
	FullyPaid     bool   `dynamodbav:"fully_paid"`
	AdvanceAmount string `dynamodbav:"advance_amount,omitempty"`
	FinalAmount   string `dynamodbav:"final_amount,omitempty"`

	ClientInfo      partyItem           `dynamodbav:"client_info"`
	FreelancerInfo  partyItem           `dynamodbav:"freelancer_info"`
	ProjectDetails  projectItem         `dynamodbav:"project_details"`
	AdditionalTerms string              `dynamodbav:"additional_terms,omitempty"`
	ChangeRequests  []changeRequestItem `dynamodbav:"change_requests"`

	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// ContractDynamoRepository persists Contract entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// Every write bumps version; Update is conditioned on the version the caller read.
// Create also binds the contract to its bid in the bids table.
type ContractDynamoRepository struct {
	ddb           DynamoAPI
	tableName     string
	bidsTableName string
}

var _ interfaces.IContractRepository = (*ContractDynamoRepository)(nil)

func NewContractDynamoRepository(ddb DynamoAPI, tableName, bidsTableName string) *ContractDynamoRepository {
	return &ContractDynamoRepository{
		ddb:           ddb,
		tableName:     tableOrDefault(tableName, defaultContractsTableName),
		bidsTableName: tableOrDefault(bidsTableName, defaultBidsTableName),
	}
}

// Create writes the contract and binds c.BidID to it in one transaction. The
// bind only succeeds while the bid has no contract.
func (r *ContractDynamoRepository) Create(ctx context.Context, c entities.Contract) (entities.Contract, error) {
	c.Version = 1
	av, err := attributevalue.MarshalMap(toContractItem(c))
	if err != nil {
		return entities.Contract{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                av,
					ConditionExpression: aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{
						"#id": "id",
					},
				},
			},
			{
				Update: &types.Update{
					TableName:           aws.String(r.bidsTableName),
					Key:                 idKey(c.BidID),
					ConditionExpression: aws.String("attribute_exists(#id) AND (attribute_not_exists(#contract_id) OR #contract_id = :empty)"),
					UpdateExpression:    aws.String("SET #contract_id = :contract_id, #status = :status, #updated_at = :updated_at"),
					ExpressionAttributeNames: map[string]string{
						"#id":          "id",
						"#contract_id": "contract_id",
						"#status":      "status",
						"#updated_at":  "updated_at",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":contract_id": &types.AttributeValueMemberS{Value: c.ID},
						":status":      &types.AttributeValueMemberS{Value: string(entities.BidStatusContractCreated)},
						":updated_at":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
						":empty":       &types.AttributeValueMemberS{Value: ""},
					},
				},
			},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && bindRejected(tce) {
			return entities.Contract{}, interfaces.ErrBidAlreadyBound
		}
		return entities.Contract{}, err
	}
	return c, nil
}

// bindRejected reports whether the bid update (second item) failed its condition.
func bindRejected(tce *types.TransactionCanceledException) bool {
	if len(tce.CancellationReasons) < 2 {
		return false
	}
	return aws.ToString(tce.CancellationReasons[1].Code) == "ConditionalCheckFailed"
}

func (r *ContractDynamoRepository) GetByID(ctx context.Context, id string) (entities.Contract, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Contract{}, err
	}
	if len(out.Item) == 0 {
		return entities.Contract{}, nil
	}

	it, err := unmarshalInto[contractItem](out.Item)
	if err != nil {
		return entities.Contract{}, err
	}
	return fromContractItem(it), nil
}

func (r *ContractDynamoRepository) Update(ctx context.Context, c entities.Contract) (entities.Contract, error) {
	expected := c.Version
	c.Version = expected + 1
	av, err := attributevalue.MarshalMap(toContractItem(c))
	if err != nil {
		return entities.Contract{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#id":      "id",
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expected, 10)},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Contract{}, interfaces.ErrVersionConflict
		}
		return entities.Contract{}, err
	}
	return c, nil
}

func toContractItem(c entities.Contract) contractItem {
	crs := make([]changeRequestItem, 0, len(c.ChangeRequests))
	for _, cr := range c.ChangeRequests {
		crs = append(crs, changeRequestItem{By: string(cr.By), Message: cr.Message, Timestamp: formatTime(cr.Timestamp)})
	}
	return contractItem{
		ID:               c.ID,
		BidID:            c.BidID,
		JobID:            c.JobID,
		ClientID:         c.ClientID,
		FreelancerID:     c.FreelancerID,
		Status:           string(c.Status),
		ClientSigned:     c.ClientSigned,
		FreelancerSigned: c.FreelancerSigned,
		PaymentStatus:    string(c.ConfirmedPaymentStatus()),
		Amount:           decimalString(c.Payment.Amount),
		PaymentMethod:    c.Payment.Method,
		PaymentTerms:     c.Payment.Terms,
		AdvancePaid:      c.Payment.AdvancePaid,
		FullyPaid:        c.Payment.FullyPaid,
		AdvanceAmount:    optionalDecimalString(c.AdvanceAmount),
		FinalAmount:      optionalDecimalString(c.FinalAmount),
		ClientInfo:       partyItem(c.ClientInfo),
		FreelancerInfo:   partyItem(c.FreelancerInfo),
		ProjectDetails: projectItem{
			Title:        c.ProjectDetails.Title,
			Description:  c.ProjectDetails.Description,
			StartDate:    formatTime(c.ProjectDetails.StartDate),
			EndDate:      formatTime(c.ProjectDetails.EndDate),
			Deliverables: c.ProjectDetails.Deliverables,
		},
		AdditionalTerms: c.AdditionalTerms,
		ChangeRequests:  crs,
		Version:         c.Version,
		CreatedAt:       formatTime(c.CreatedAt),
		UpdatedAt:       formatTime(c.UpdatedAt),
	}
}

func fromContractItem(it contractItem) entities.Contract {
	crs := make([]entities.ChangeRequest, 0, len(it.ChangeRequests))
	for _, cr := range it.ChangeRequests {
		crs = append(crs, entities.ChangeRequest{By: entities.Role(cr.By), Message: cr.Message, Timestamp: parseTime(cr.Timestamp)})
	}
	return entities.Contract{
		ID:               it.ID,
		BidID:            it.BidID,
		JobID:            it.JobID,
		ClientID:         it.ClientID,
		FreelancerID:     it.FreelancerID,
		Status:           entities.ContractStatus(it.Status),
		ClientSigned:     it.ClientSigned,
		FreelancerSigned: it.FreelancerSigned,
		PaymentStatus:    entities.PaymentStatus(it.PaymentStatus),
		Payment: entities.PaymentTerms{
			Amount:      parseDecimal(it.Amount),
			Method:      it.PaymentMethod,
			Terms:       it.PaymentTerms,
			AdvancePaid: it.AdvancePaid,
			FullyPaid:   it.FullyPaid,
		},
		AdvanceAmount:  parseOptionalDecimal(it.AdvanceAmount),
		FinalAmount:    parseOptionalDecimal(it.FinalAmount),
		ClientInfo:     entities.PartyInfo(it.ClientInfo),
		FreelancerInfo: entities.PartyInfo(it.FreelancerInfo),
		ProjectDetails: entities.ProjectDetails{
			Title:        it.ProjectDetails.Title,
			Description:  it.ProjectDetails.Description,
			StartDate:    parseTime(it.ProjectDetails.StartDate),
			EndDate:      parseTime(it.ProjectDetails.EndDate),
			Deliverables: it.ProjectDetails.Deliverables,
		},
		AdditionalTerms: it.AdditionalTerms,
		ChangeRequests:  crs,
		Version:         it.Version,
		CreatedAt:       parseTime(it.CreatedAt),
		UpdatedAt:       parseTime(it.UpdatedAt),
	}
}
