package interfaces

import (
	"context"
	"linksphere/internal/domain/entities"
)

// IPaymentRepository abstracts DynamoDB persistence for PaymentRecord.

type IPaymentRepository interface {
	Create(ctx context.Context, p entities.PaymentRecord) (entities.PaymentRecord, error)
	GetByID(ctx context.Context, id string) (entities.PaymentRecord, error)
	ListByContractID(ctx context.Context, contractID string) ([]entities.PaymentRecord, error)
	UpdateStatus(ctx context.Context, id string, status entities.PaymentRecordStatus, providerPaymentID string, providerPayload []byte) (entities.PaymentRecord, error)
}
