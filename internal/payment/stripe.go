package payment

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

// StripePaymentProvider captures and refunds via Stripe payment intents. The
// confirmation token comes from the client; the capture is synchronous so the
// booking transaction knows the outcome before it commits.
type StripePaymentProvider struct{}

func NewStripePaymentProvider() *StripePaymentProvider {
	return &StripePaymentProvider{}
}

func (s *StripePaymentProvider) Capture(
	ctx context.Context,
	amount decimal.Decimal,
	currency string,
	method domain.PaymentMethod,
) (string, error) {
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(method.ProviderToken),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}

	return intent.ID, nil
}

func (s *StripePaymentProvider) Refund(ctx context.Context, providerRef string, amount decimal.Decimal) error {
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.RefundParams{
		Params: stripe.Params{
			Context: ctx,
		},
		PaymentIntent: stripe.String(providerRef),
		Amount:        stripe.Int64(amountCents),
	}

	_, err := refund.New(params)

	return err
}
