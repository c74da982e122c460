package hostel

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/hostelhub/internal/hostel/store"
)

// createIntentRequest は決済インテント作成リクエストのJSON構造。
type createIntentRequest struct {
	// Price はドル建ての決済金額。
	Price float64 `json:"price" binding:"required,gt=0"`
}

// handleCreatePaymentIntent は決済プロバイダにインテントを作成し、
// クライアントシークレットを返すハンドラを返す。他の変更系操作と同じく
// 認証を要求する。プロバイダ側の失敗はリトライせずそのまま500で返す。
func (s *Server) handleCreatePaymentIntent() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "正の金額が必要です"})
			return
		}

		clientSecret, err := s.intents.CreateIntent(c.Request.Context(), req.Price)
		if err != nil {
			log.Printf("決済インテントの作成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "決済インテントの作成に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
	}
}

// handleListPayments は認証済みユーザー自身の決済履歴を返すハンドラを返す。
func (s *Server) handleListPayments() gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := s.store.Payments.ListByEmail(c.Request.Context(), c.Param("email"))
		if err != nil {
			log.Printf("決済履歴の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "決済履歴の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

// createPaymentRequest は決済レコード作成リクエストのJSON構造。
type createPaymentRequest struct {
	// Email は支払者のメールアドレス。
	Email string `json:"email" binding:"required,email"`
	// Amount はドル建ての決済金額。
	Amount float64 `json:"amount" binding:"required,gt=0"`
	// Currency は通貨コード。省略時はusd。
	Currency string `json:"currency"`
	// TransactionID はプロバイダ側の参照。省略時は生成する。
	TransactionID string `json:"transaction_id"`
}

// handleCreatePayment は決済完了後の確認ステップとして決済レコードを
// 追記するハンドラを返す。
func (s *Server) handleCreatePayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "支払者のメールアドレスと正の金額が必要です"})
			return
		}

		if req.Currency == "" {
			req.Currency = "usd"
		}
		if req.TransactionID == "" {
			req.TransactionID = uuid.New().String()
		}

		id, err := s.store.Payments.Insert(c.Request.Context(), store.Payment{
			TransactionID: req.TransactionID,
			Email:         req.Email,
			Amount:        req.Amount,
			Currency:      req.Currency,
			Status:        "succeeded",
			PaidAt:        time.Now(),
		})
		if err != nil {
			log.Printf("決済レコードの作成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "決済レコードの作成に失敗しました"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": id})
	}
}
