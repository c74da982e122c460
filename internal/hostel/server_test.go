package hostel

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hostelhub/internal/hostel/store"
	"github.com/nao1215/hostelhub/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のトークン署名鍵。
const testSecret = "test-secret-key-for-unit-tests"

// fakeIntentCreator は固定のクライアントシークレットを返すIntentCreator。
type fakeIntentCreator struct {
	mu        sync.Mutex
	lastPrice float64
	err       error
}

func (f *fakeIntentCreator) CreateIntent(_ context.Context, price float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrice = price
	if f.err != nil {
		return "", f.err
	}
	return "pi_test_client_secret", nil
}

// setupTestServer はインメモリストアとフェイクの決済ゲートウェイで
// テスト用サーバーを構築する。ルーティングとゲートは本番と同じものを使う。
func setupTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()

	tokens, err := token.New(testSecret)
	if err != nil {
		t.Fatalf("トークンサービスの生成に失敗: %v", err)
	}

	router := gin.New()
	s := &Server{
		router:  router,
		port:    "0",
		store:   store.NewMemory(),
		tokens:  tokens,
		intents: &fakeIntentCreator{},
	}
	s.setupRoutes()

	return s, router
}

// issueToken はテスト用のベアラートークンを発行するヘルパー関数。
func issueToken(t *testing.T, s *Server, email, name string) string {
	t.Helper()
	tokenStr, err := s.tokens.Issue(email, name)
	if err != nil {
		t.Fatalf("トークンの発行に失敗: %v", err)
	}
	return tokenStr
}

// createTestUser はテスト用にユーザーをストアへ直接挿入するヘルパー関数。
func createTestUser(t *testing.T, s *Server, email, name, role string) string {
	t.Helper()
	id, err := s.store.Users.Insert(t.Context(), store.User{Email: email, Name: name, Role: role})
	if err != nil {
		t.Fatalf("テスト用ユーザーの作成に失敗: %v", err)
	}
	return id
}

// createTestMeal はテスト用に食事をストアへ直接挿入するヘルパー関数。
func createTestMeal(t *testing.T, s *Server, title string, price float64) string {
	t.Helper()
	id, err := s.store.Meals.Insert(t.Context(), store.Meal{Title: title, Price: price})
	if err != nil {
		t.Fatalf("テスト用食事の作成に失敗: %v", err)
	}
	return id
}

// doRequest はテスト用のHTTPリクエストを実行し、レスポンスを返すヘルパー関数。
// tokenStrが空でない場合はAuthorizationヘッダーに設定する。
func doRequest(router *gin.Engine, method, path, tokenStr string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if tokenStr != "" {
		req.Header.Set("Authorization", "Bearer "+tokenStr)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseJSON はレスポンスボディをmapにデコードするヘルパー関数。
func parseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// parseJSONArray はレスポンスボディをスライスにデコードするヘルパー関数。
func parseJSONArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var result []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON配列のデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// TestHealthCheck はヘルスチェックエンドポイントの正常動作を検証する。
func TestHealthCheck(t *testing.T) {
	t.Parallel()

	_, router := setupTestServer(t)

	w := doRequest(router, http.MethodGet, "/health", "", nil)

	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	result := parseJSON(t, w)
	if result["status"] != "ok" {
		t.Errorf("status: got %v, want ok", result["status"])
	}
	if result["service"] != "hostelhub" {
		t.Errorf("service: got %v, want hostelhub", result["service"])
	}
}

// TestHandleIssueToken はトークン発行ハンドラのテスト。
func TestHandleIssueToken(t *testing.T) {
	t.Parallel()

	t.Run("発行されたトークンが検証を通ること", func(t *testing.T) {
		t.Parallel()
		s, router := setupTestServer(t)

		body := map[string]string{"email": "login@example.com", "name": "ログイン太郎"}
		w := doRequest(router, http.MethodPost, "/jwt", "", body)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		result := parseJSON(t, w)
		tokenStr, ok := result["token"].(string)
		if !ok || tokenStr == "" {
			t.Fatalf("tokenが空です: %v", result)
		}

		claims, err := s.tokens.Verify(tokenStr)
		if err != nil {
			t.Fatalf("発行されたトークンの検証に失敗: %v", err)
		}
		if claims.Email != "login@example.com" {
			t.Errorf("Email = %q, want %q", claims.Email, "login@example.com")
		}
	})

	t.Run("メールアドレスが未指定の場合はBadRequest", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		body := map[string]string{"name": "名前のみ"}
		w := doRequest(router, http.MethodPost, "/jwt", "", body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestMealLifecycle は管理者による食事作成から公開いいねまでの
// 一連のシナリオを検証する。
func TestMealLifecycle(t *testing.T) {
	t.Parallel()

	s, router := setupTestServer(t)

	// 管理者がトークンを取得して食事を作成する
	createTestUser(t, s, "admin@example.com", "管理者", store.RoleAdmin)
	adminToken := issueToken(t, s, "admin@example.com", "管理者")

	body := map[string]any{"meal_title": "Rice Bowl", "price": 5.0}
	w := doRequest(router, http.MethodPost, "/meals", adminToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("食事作成のステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
	mealID, ok := parseJSON(t, w)["insertedId"].(string)
	if !ok || mealID == "" {
		t.Fatal("insertedIdが空です")
	}

	// 匿名の呼び出し元が3回いいねする
	for i := 1; i <= 3; i++ {
		w := doRequest(router, http.MethodPost, "/meal/like/"+mealID, "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%d回目のいいねのステータスコード: got %d, want %d", i, w.Code, http.StatusOK)
		}
		result := parseJSON(t, w)
		if result["likes"] != float64(i) {
			t.Errorf("%d回目のlikes = %v, want %d", i, result["likes"], i)
		}
	}

	// 詳細取得でいいねが3件になっている
	w = doRequest(router, http.MethodGet, "/meals/"+mealID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("食事取得のステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}
	if got := parseJSON(t, w)["likes"]; got != float64(3) {
		t.Errorf("likes = %v, want 3", got)
	}

	// 非管理者が更新を試みるとForbidden
	createTestUser(t, s, "user@example.com", "一般ユーザー", "")
	userToken := issueToken(t, s, "user@example.com", "一般ユーザー")

	update := map[string]any{"meal_title": "乗っ取り", "price": 1.0}
	w = doRequest(router, http.MethodPatch, "/meals/"+mealID, userToken, update)
	if w.Code != http.StatusForbidden {
		t.Errorf("非管理者の更新のステータスコード: got %d, want %d", w.Code, http.StatusForbidden)
	}

	// 内容が変わっていないことを確認する
	m, err := s.store.Meals.FindByID(t.Context(), mealID)
	if err != nil {
		t.Fatalf("食事の取得に失敗: %v", err)
	}
	if m.Title != "Rice Bowl" {
		t.Errorf("Title = %q, want %q", m.Title, "Rice Bowl")
	}
}
