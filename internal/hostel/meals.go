package hostel

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hostelhub/internal/hostel/store"
	"github.com/nao1215/hostelhub/pkg/middleware"
)

// ページネーションのデフォルト値。
const (
	defaultPage     = 1
	defaultPageSize = 10
)

// handleListMeals は食事一覧をページ区切りで返すハンドラを返す。公開。
func (s *Server) handleListMeals() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := queryInt(c, "page", defaultPage)
		pageSize := queryInt(c, "pageSize", defaultPageSize)

		meals, total, err := s.store.Meals.List(c.Request.Context(), page, pageSize)
		if err != nil {
			log.Printf("食事一覧の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "食事一覧の取得に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": meals,
			"pagination": gin.H{
				"total":    total,
				"pageSize": pageSize,
				"current":  page,
			},
		})
	}
}

// handleCountMeals は食事の概算総件数を返すハンドラを返す。公開。
func (s *Server) handleCountMeals() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.store.Meals.Count(c.Request.Context())
		if err != nil {
			log.Printf("食事件数の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "食事件数の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// handleGetMeal はIDで食事の詳細を返すハンドラを返す。公開。
func (s *Server) handleGetMeal() gin.HandlerFunc {
	return func(c *gin.Context) {
		meal, err := s.store.Meals.FindByID(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "IDの形式が不正です"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "食事が見つかりません"})
		case err != nil:
			log.Printf("食事の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "食事の取得に失敗しました"})
		default:
			c.JSON(http.StatusOK, meal)
		}
	}
}

// mealRequestBody は食事の作成・更新リクエストのJSON構造。
// 更新ではこのフィールドセットが丸ごと置き換えられる。
type mealRequestBody struct {
	// Title は食事名。
	Title string `json:"meal_title" binding:"required"`
	// Type は食事区分（朝食・昼食・夕食など）。
	Type        string  `json:"meal_type"`
	Description string  `json:"description"`
	Ingredients string  `json:"ingredients"`
	Price       float64 `json:"price" binding:"required"`
	Image       string  `json:"image"`
	AdminName   string  `json:"admin_name"`
	AdminEmail  string  `json:"admin_email"`
	Rating      float64 `json:"rating"`
	Reviews     int64   `json:"reviews"`
	Likes       int64   `json:"likes"`
}

// toMeal はリクエストボディをストアのレコードへ変換する。
// 投稿者情報が省略された場合は認証済みアイデンティティで補完する。
func (b mealRequestBody) toMeal(c *gin.Context) store.Meal {
	adminName := b.AdminName
	if adminName == "" {
		adminName = middleware.Name(c)
	}
	adminEmail := b.AdminEmail
	if adminEmail == "" {
		adminEmail = middleware.Email(c)
	}
	return store.Meal{
		Title:       b.Title,
		Type:        b.Type,
		Description: b.Description,
		Ingredients: b.Ingredients,
		Price:       b.Price,
		Image:       b.Image,
		AdminName:   adminName,
		AdminEmail:  adminEmail,
		Rating:      b.Rating,
		Reviews:     b.Reviews,
		Likes:       b.Likes,
		PostedAt:    time.Now(),
	}
}

// handleCreateMeal は食事をカタログへ追加するハンドラを返す。管理者専用。
func (s *Server) handleCreateMeal() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mealRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "食事名と価格が必要です"})
			return
		}

		id, err := s.store.Meals.Insert(c.Request.Context(), req.toMeal(c))
		if err != nil {
			log.Printf("食事の作成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "食事の作成に失敗しました"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": id})
	}
}

// handleUpdateMeal は食事の固定フィールドセットを丸ごと置き換える
// ハンドラを返す。管理者専用。
func (s *Server) handleUpdateMeal() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mealRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "食事名と価格が必要です"})
			return
		}

		err := s.store.Meals.Update(c.Request.Context(), c.Param("id"), req.toMeal(c))
		switch {
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "IDの形式が不正です"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "食事が見つかりません"})
		case err != nil:
			log.Printf("食事の更新エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "食事の更新に失敗しました"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "食事を更新しました"})
		}
	}
}

// handleDeleteMeal は食事をカタログから削除するハンドラを返す。管理者専用。
func (s *Server) handleDeleteMeal() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.store.Meals.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "IDの形式が不正です"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "食事が見つかりません"})
		case err != nil:
			log.Printf("食事の削除エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "食事の削除に失敗しました"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "食事を削除しました"})
		}
	}
}

// handleLikeMeal はいいねカウンターをアトミックに1加算し、加算後の値を
// 返すハンドラを返す。公開エンドポイント。
func (s *Server) handleLikeMeal() gin.HandlerFunc {
	return func(c *gin.Context) {
		likes, err := s.store.Meals.IncrementLikes(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "IDの形式が不正です"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Meal not found"})
		case err != nil:
			log.Printf("いいねの加算エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "likes": likes})
		}
	}
}

// createMealRequestBody は食事リクエスト作成のJSON構造。
type createMealRequestBody struct {
	// MealID はリクエスト対象の食事ID。
	MealID string `json:"meal_id" binding:"required"`
	// Title はリクエスト対象の食事名。
	Title string `json:"meal_title" binding:"required"`
}

// handleCreateMealRequest は食事リクエストを登録するハンドラを返す。
// 認証のみ必要で、ロール確認は行わない。申請者はトークンの
// アイデンティティから記録する。
func (s *Server) handleCreateMealRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMealRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "食事IDと食事名が必要です"})
			return
		}

		id, err := s.store.MealRequests.Insert(c.Request.Context(), store.MealRequest{
			MealID:      req.MealID,
			Title:       req.Title,
			UserEmail:   middleware.Email(c),
			UserName:    middleware.Name(c),
			Status:      "pending",
			RequestedAt: time.Now(),
		})
		if err != nil {
			log.Printf("食事リクエストの作成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "食事リクエストの作成に失敗しました"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": id})
	}
}

// handleListMealRequests は食事リクエストの一覧を返すハンドラを返す。
// 管理者専用。
func (s *Server) handleListMealRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqs, err := s.store.MealRequests.List(c.Request.Context())
		if err != nil {
			log.Printf("食事リクエスト一覧の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "食事リクエスト一覧の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, reqs)
	}
}

// handleListUpcomingMeals は提供予定の食事一覧を返すハンドラを返す。公開。
func (s *Server) handleListUpcomingMeals() gin.HandlerFunc {
	return func(c *gin.Context) {
		meals, err := s.store.UpcomingMeals.List(c.Request.Context())
		if err != nil {
			log.Printf("提供予定食事一覧の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "提供予定食事一覧の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, meals)
	}
}

// handleCreateUpcomingMeal は提供予定の食事を登録するハンドラを返す。
// 管理者専用。
func (s *Server) handleCreateUpcomingMeal() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mealRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "食事名と価格が必要です"})
			return
		}

		id, err := s.store.UpcomingMeals.Insert(c.Request.Context(), req.toMeal(c))
		if err != nil {
			log.Printf("提供予定食事の作成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "提供予定食事の作成に失敗しました"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"insertedId": id})
	}
}

// queryInt はクエリパラメータを正の整数として読み取る。
// 未指定・不正・0以下の場合はデフォルト値を返す。
func queryInt(c *gin.Context, key string, def int64) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || v < 1 {
		return def
	}
	return v
}
