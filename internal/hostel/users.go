package hostel

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hostelhub/internal/hostel/store"
	"github.com/nao1215/hostelhub/pkg/middleware"
)

// handleListUsers は全ユーザーの一覧を返すハンドラを返す。管理者専用。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.store.Users.List(c.Request.Context())
		if err != nil {
			log.Printf("ユーザー一覧の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー一覧の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// createUserRequest はユーザー作成リクエストのJSON構造。
type createUserRequest struct {
	// Email は利用者の一意識別子。
	Email string `json:"email" binding:"required,email"`
	// Name は表示名。
	Name string `json:"name"`
}

// handleCreateUser はユーザーを作成するハンドラを返す。認証不要
// （新規登録のハンドシェイクで呼ばれるため）。同一メールアドレスが既に
// 存在する場合は変更を加えず、挿入IDなしの既存通知を200で返す。
func (s *Server) handleCreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスが必要です"})
			return
		}

		id, err := s.store.Users.Insert(c.Request.Context(), store.User{
			Email:     req.Email,
			Name:      req.Name,
			CreatedAt: time.Now(),
		})
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusOK, gin.H{"message": "User already exists", "insertedId": nil})
			return
		}
		if err != nil {
			log.Printf("ユーザー作成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの作成に失敗しました"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": id})
	}
}

// handleCheckAdmin は認証済みユーザー自身が管理者かどうかを返すハンドラを
// 返す。レコード全体ではなく真偽値だけを返す。
func (s *Server) handleCheckAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, err := s.store.Users.IsAdmin(c.Request.Context(), c.Param("email"))
		if err != nil {
			log.Printf("管理者判定エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "管理者判定に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin": isAdmin})
	}
}

// updatePackageRequest はパッケージ更新リクエストのJSON構造。
type updatePackageRequest struct {
	// Package は契約するパッケージティア。
	Package string `json:"package" binding:"required"`
}

// handleUpdatePackage は認証済みユーザー自身のパッケージティアを更新する
// ハンドラを返す。対象はトークンのアイデンティティで特定する。
func (s *Server) handleUpdatePackage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updatePackageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "パッケージが必要です"})
			return
		}

		err := s.store.Users.UpdatePackage(c.Request.Context(), middleware.Email(c), req.Package)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		if err != nil {
			log.Printf("パッケージ更新エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "User package updated successfully"})
	}
}

// handleGetPackage は認証済みユーザー自身のパッケージティアを返すハンドラを
// 返す。レコードまたは契約が無い場合はnullを返す。
func (s *Server) handleGetPackage() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := s.store.Users.FindByEmail(c.Request.Context(), c.Param("email"))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("パッケージ取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "パッケージの取得に失敗しました"})
			return
		}

		var pkg any
		if err == nil && u.Package != "" {
			pkg = u.Package
		}
		c.JSON(http.StatusOK, gin.H{"package": pkg})
	}
}

// handleDeleteUser はユーザーを削除するハンドラを返す。管理者専用。
func (s *Server) handleDeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.store.Users.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "IDの形式が不正です"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
		case err != nil:
			log.Printf("ユーザー削除エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの削除に失敗しました"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "ユーザーを削除しました"})
		}
	}
}

// handlePromoteAdmin はユーザーを管理者に昇格させるハンドラを返す。
// 管理者専用。このAPIに降格操作は存在しない。
func (s *Server) handlePromoteAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.store.Users.PromoteAdmin(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "IDの形式が不正です"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
		case err != nil:
			log.Printf("管理者昇格エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "管理者への昇格に失敗しました"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "管理者に昇格しました"})
		}
	}
}
