// ホステル食事管理APIサーバーのエントリポイント。
// トークン発行、ロールベースの認可ゲート、MongoDBコレクションへのCRUD、
// Stripe決済インテント作成を単一サービスとして提供する。
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/nao1215/hostelhub/internal/hostel"
	"github.com/nao1215/hostelhub/internal/hostel/store"
	"github.com/nao1215/hostelhub/pkg/payment"
	"github.com/nao1215/hostelhub/pkg/token"
)

func main() {
	tokens, err := token.New(os.Getenv("JWT_SECRET"))
	if err != nil {
		log.Fatalf("トークンサービスの初期化に失敗: %v", err)
	}

	intents, err := payment.NewStripe(os.Getenv("STRIPE_SECRET_KEY"))
	if err != nil {
		log.Fatalf("Stripeゲートウェイの初期化に失敗: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, disconnect, err := store.Connect(ctx,
		getEnvOr("MONGO_URI", "mongodb://localhost:27017"),
		getEnvOr("MONGO_DB", "hostelDB"),
	)
	if err != nil {
		log.Fatalf("MongoDBへの接続に失敗: %v", err)
	}
	defer func() {
		if err := disconnect(context.Background()); err != nil {
			log.Printf("MongoDBの切断エラー: %v", err)
		}
	}()

	port := getEnvOr("PORT", "5000")
	server := hostel.NewServer(hostel.Config{
		Port:           port,
		Store:          st,
		Tokens:         tokens,
		Intents:        intents,
		AllowedOrigins: []string{getEnvOr("FRONTEND_URL", "http://localhost:3000")},
	})

	log.Printf("ホステル管理サービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("サービスの起動に失敗: %v", err)
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
