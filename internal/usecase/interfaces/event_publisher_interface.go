package interfaces

import "linksphere/internal/domain/entities"

// IPaymentEventPublisher fans payment completion out to in-process listeners.
type IPaymentEventPublisher interface {
	PublishPaymentSuccess(ev entities.PaymentSuccess)
}
