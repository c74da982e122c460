package hostel

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hostelhub/internal/hostel/store"
	"github.com/nao1215/hostelhub/pkg/middleware"
	"github.com/nao1215/hostelhub/pkg/payment"
	"github.com/nao1215/hostelhub/pkg/token"
)

// Server はホステル食事管理APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store はドキュメントストアへのアクセス束。
	store *store.Store
	// tokens はベアラートークンの発行・検証サービス。
	tokens *token.Service
	// intents は決済プロバイダへのゲートウェイ。
	intents payment.IntentCreator
}

// Config はServerの構築に必要な依存と設定。
// ストレージ接続とプロバイダクライアントは起動時に一度だけ初期化された
// プロセススコープのシングルトンを渡す。
type Config struct {
	// Port はリッスンポート。
	Port string
	// Store はドキュメントストア。
	Store *store.Store
	// Tokens はトークンサービス。
	Tokens *token.Service
	// Intents は決済インテントゲートウェイ。
	Intents payment.IntentCreator
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
}

// NewServer は新しいホステル管理サーバーを生成する。
func NewServer(cfg Config) *Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:  router,
		port:    cfg.Port,
		store:   cfg.Store,
		tokens:  cfg.Tokens,
		intents: cfg.Intents,
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// 各エンドポイントは必要なゲートだけを宣言する。合成順は常に
// RequireAuth → RequireSelf / RequireAdmin → ハンドラー。
func (s *Server) setupRoutes() {
	auth := middleware.RequireAuth(s.tokens)
	admin := middleware.RequireAdmin(s.store.Users)

	// トークン発行（認証不要）
	s.router.POST("/jwt", s.handleIssueToken())

	// ユーザー管理
	s.router.GET("/users", auth, admin, s.handleListUsers())
	s.router.POST("/users", s.handleCreateUser())
	s.router.DELETE("/users/:id", auth, admin, s.handleDeleteUser())
	s.router.PATCH("/users/admin/:id", auth, admin, s.handlePromoteAdmin())
	s.router.GET("/user/admin/:email", auth, middleware.RequireSelf("email"), s.handleCheckAdmin())
	s.router.PATCH("/user/package", auth, s.handleUpdatePackage())
	s.router.GET("/user/package/:email", auth, middleware.RequireSelf("email"), s.handleGetPackage())

	// 食事カタログ
	s.router.GET("/meals", s.handleListMeals())
	s.router.GET("/mealsCount", s.handleCountMeals())
	s.router.GET("/meals/:id", s.handleGetMeal())
	s.router.POST("/meals", auth, admin, s.handleCreateMeal())
	s.router.PATCH("/meals/:id", auth, admin, s.handleUpdateMeal())
	s.router.DELETE("/meals/:id", auth, admin, s.handleDeleteMeal())
	// いいねカウンターはログイン前でも押せる公開エンドポイント
	s.router.POST("/meal/like/:id", s.handleLikeMeal())

	// 食事リクエスト（登録は認証のみ、一覧は管理者専用）
	s.router.POST("/reqMeal", auth, s.handleCreateMealRequest())
	s.router.GET("/reqMeals", auth, admin, s.handleListMealRequests())

	// 提供予定の食事（一覧は公開、登録は管理者専用）
	s.router.GET("/upcomingMeals", s.handleListUpcomingMeals())
	s.router.POST("/upcomingMeals", auth, admin, s.handleCreateUpcomingMeal())

	// 決済
	s.router.POST("/create-payment-intent", auth, s.handleCreatePaymentIntent())
	s.router.GET("/payments/:email", auth, middleware.RequireSelf("email"), s.handleListPayments())
	s.router.POST("/payments", s.handleCreatePayment())

	// 稼働確認
	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hostel management server is running")
	})
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "hostelhub"})
	})
}
