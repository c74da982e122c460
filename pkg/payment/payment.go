// Package payment は外部決済プロバイダへの薄いゲートウェイを提供する。
//
// 金額から決済インテントを作成し、クライアント側で決済を完了するための
// クライアントシークレットを返す。プロバイダ側の失敗はErrProviderとして
// 呼び出し元へそのまま伝え、リトライは行わない。
package payment

import (
	"context"
	"errors"
)

// ErrProvider は決済プロバイダ側のリクエスト失敗を表す。
var ErrProvider = errors.New("決済プロバイダへのリクエストに失敗")

// IntentCreator は決済インテントを作成し、クライアントシークレットを返す。
type IntentCreator interface {
	// CreateIntent はドル建ての金額から決済インテントを作成する。
	CreateIntent(ctx context.Context, price float64) (string, error)
}

// MinorUnits はドル建ての金額をプロバイダが要求するセント単位の整数へ
// 変換する。100倍して小数点以下は切り捨てる。
func MinorUnits(price float64) int64 {
	return int64(price * 100)
}
