package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe はStripe APIを使ったIntentCreatorの実装。
// クライアントはプロセス起動時に一度だけ生成し、読み取り専用で共有する。
type Stripe struct {
	api *client.API
}

// NewStripe は新しいStripeゲートウェイを生成する。
// シークレットキーが空の場合はエラーを返す（起動時の設定不備）。
func NewStripe(secretKey string) (*Stripe, error) {
	if secretKey == "" {
		return nil, errors.New("Stripeシークレットキーが設定されていません")
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api}, nil
}

// CreateIntent はカード決済可能なUSD建てインテントを作成し、
// クライアントシークレットを返す。失敗時はErrProviderでラップする。
func (s *Stripe) CreateIntent(ctx context.Context, price float64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(MinorUnits(price)),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return intent.ClientSecret, nil
}
