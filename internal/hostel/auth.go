package hostel

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// issueTokenRequest はトークン発行リクエストのJSON構造。
type issueTokenRequest struct {
	// Email は利用者の一意識別子。
	Email string `json:"email" binding:"required,email"`
	// Name は表示名。
	Name string `json:"name"`
}

// handleIssueToken はログイン後のクライアントにベアラートークンを発行する
// ハンドラを返す。トークンは1時間で失効し、失効前の取り消し手段はない。
func (s *Server) handleIssueToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req issueTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスが必要です"})
			return
		}

		tokenStr, err := s.tokens.Issue(req.Email, req.Name)
		if err != nil {
			log.Printf("トークン発行エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": tokenStr})
	}
}
