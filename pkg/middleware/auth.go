package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hostelhub/pkg/token"
)

// Ginコンテキストに保存する認証済みアイデンティティのキー。
const (
	contextKeyEmail = "auth_email"
	contextKeyName  = "auth_name"
)

// RequireAuth はベアラートークンを検証するGinミドルウェアを返す。
// Authorizationヘッダーからトークンを取り出し、検証に成功した場合のみ
// 認証済みメールアドレスと表示名をコンテキストに設定して後続へ進む。
// ヘッダー欠落・形式不正・検証失敗はすべて401で中断する。
func RequireAuth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		c.Set(contextKeyEmail, claims.Email)
		c.Set(contextKeyName, claims.Name)
		c.Next()
	}
}

// RequireSelf は指定されたパスパラメータが認証済みメールアドレスと
// 一致することを要求するGinミドルウェアを返す。本人の個人データ
// （決済履歴やパッケージ）以外へのアクセスを403で中断する。
// RequireAuthの後段で使用すること。
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param(param) != Email(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "アクセスが禁止されています",
			})
			return
		}
		c.Next()
	}
}

// AdminChecker は認証済みメールアドレスが管理者ロールを持つかを判定する。
// ユーザーストアが実装する。ロール変更をトークン再発行なしで即時反映
// させるため、判定は呼び出しのたびにストアを参照する。
type AdminChecker interface {
	// IsAdmin はemailに対応するユーザーが管理者の場合にtrueを返す。
	// レコードが存在しない場合はエラーではなくfalseを返す。
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// RequireAdmin は認証済みユーザーが管理者であることを要求するGin
// ミドルウェアを返す。非管理者および未登録ユーザーは403で中断する。
// RequireAuthの後段で使用すること。
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, err := checker.IsAdmin(c.Request.Context(), Email(c))
		if err != nil {
			log.Printf("管理者ロールの照会エラー: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "権限の確認に失敗しました",
			})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "アクセスが禁止されています",
			})
			return
		}
		c.Next()
	}
}

// Email はGinコンテキストから認証済みメールアドレスを取得する。
// RequireAuthミドルウェアが事前に適用されている必要がある。
func Email(c *gin.Context) string {
	v, _ := c.Get(contextKeyEmail)
	if email, ok := v.(string); ok {
		return email
	}
	return ""
}

// Name はGinコンテキストから認証済みユーザーの表示名を取得する。
func Name(c *gin.Context) string {
	v, _ := c.Get(contextKeyName)
	if name, ok := v.(string); ok {
		return name
	}
	return ""
}
