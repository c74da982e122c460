// Package store はホステル食事管理APIのドキュメントストア層を提供する。
//
// users / meals / reqMeals / upcomingMeals / payments の5コレクションへの
// 操作をインターフェースとして定義し、MongoDB実装とテスト用のインメモリ
// 実装を含む。カウンターの加算やユーザー作成の一意性といった整合性は、
// 2往復の読み取り・書き込みではなく単一ドキュメントのアトミック操作に
// 委譲する。
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAdmin は管理者ロールを表すロールフィールドの値。
// 未設定のユーザーは一般ユーザーとして扱われる。
const RoleAdmin = "admin"

var (
	// ErrNotFound は指定されたIDまたはメールアドレスに対応する
	// レコードが存在しない場合に返される。
	ErrNotFound = errors.New("レコードが見つかりません")
	// ErrInvalidID はIDが正規の識別子形式でない場合に返される。
	ErrInvalidID = errors.New("IDの形式が不正です")
	// ErrDuplicate は一意制約に違反する挿入を行った場合に返される。
	ErrDuplicate = errors.New("レコードが既に存在します")
)

// User はusersコレクションに永続化されるユーザーレコード。
// メールアドレスをキーとし、同一メールアドレスのレコードは高々1件。
type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// Email は一意識別子。
	Email string `bson:"email" json:"email"`
	// Name は表示名。
	Name string `bson:"name" json:"name"`
	// Role は"admin"または未設定。未設定は一般ユーザーを意味する。
	Role string `bson:"role,omitempty" json:"role,omitempty"`
	// Package は契約中のパッケージティア。未契約の場合は空。
	Package string `bson:"package,omitempty" json:"package,omitempty"`
	// CreatedAt はレコード作成日時。
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Meal はmealsコレクションに永続化される食事レコード。
// フィールド名はフロントエンドとの既存のワイヤ契約に合わせている。
type Meal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"meal_title" json:"meal_title"`
	Type        string             `bson:"meal_type" json:"meal_type"`
	Description string             `bson:"description" json:"description"`
	Ingredients string             `bson:"ingredients" json:"ingredients"`
	Price       float64            `bson:"price" json:"price"`
	Image       string             `bson:"image" json:"image"`
	// AdminName / AdminEmail は投稿した管理者の情報。
	AdminName  string  `bson:"admin_name" json:"admin_name"`
	AdminEmail string  `bson:"admin_email" json:"admin_email"`
	Rating     float64 `bson:"rating" json:"rating"`
	Reviews    int64   `bson:"reviews" json:"reviews"`
	// Likes は単調非減少のいいねカウンター。加算はアトミックに行う。
	Likes    int64     `bson:"likes" json:"likes"`
	PostedAt time.Time `bson:"time_date" json:"time_date"`
}

// MealRequest はreqMealsコレクションに永続化される食事リクエスト。
// API上は追記専用で、更新・削除は公開されない。
type MealRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MealID      string             `bson:"meal_id" json:"meal_id"`
	Title       string             `bson:"meal_title" json:"meal_title"`
	UserEmail   string             `bson:"user_email" json:"user_email"`
	UserName    string             `bson:"user_name" json:"user_name"`
	Status      string             `bson:"status" json:"status"`
	RequestedAt time.Time          `bson:"requested_at" json:"requested_at"`
}

// Payment はpaymentsコレクションに永続化される決済レコード。
// 追記専用で、所有者本人のみが読み取れる。
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransactionID string             `bson:"transaction_id" json:"transaction_id"`
	Email         string             `bson:"email" json:"email"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	Status        string             `bson:"status" json:"status"`
	PaidAt        time.Time          `bson:"paid_at" json:"paid_at"`
}

// Users はusersコレクションへの操作。
type Users interface {
	// List は全ユーザーを返す。
	List(ctx context.Context) ([]User, error)
	// FindByEmail はメールアドレスでユーザーを検索する。
	// 存在しない場合はErrNotFoundを返す。
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Insert はユーザーを挿入し、生成されたIDを返す。
	// 同一メールアドレスが既に存在する場合はErrDuplicateを返す。
	// 存在確認と挿入は2往復ではなくアトミックに行われる。
	Insert(ctx context.Context, user User) (string, error)
	// UpdatePackage はメールアドレスで特定したユーザーのパッケージ
	// ティアを更新する。該当レコードが無い場合はErrNotFoundを返す。
	UpdatePackage(ctx context.Context, email, pkg string) error
	// PromoteAdmin は指定されたIDのユーザーを管理者に昇格させる。
	// 降格操作は存在しない。
	PromoteAdmin(ctx context.Context, id string) error
	// Delete は指定されたIDのユーザーを削除する。
	Delete(ctx context.Context, id string) error
	// IsAdmin はメールアドレスに対応するユーザーが管理者の場合に
	// trueを返す。レコードが無い場合はエラーではなくfalseを返す。
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Meals はmealsコレクションへの操作。
type Meals interface {
	// List はページ番号とページサイズで区切った食事一覧と、
	// コレクション全体の概算件数を返す。
	List(ctx context.Context, page, pageSize int64) ([]Meal, int64, error)
	// Count はコレクション全体の概算件数を返す。
	Count(ctx context.Context) (int64, error)
	// FindByID はIDで食事を検索する。
	FindByID(ctx context.Context, id string) (*Meal, error)
	// Insert は食事を挿入し、生成されたIDを返す。
	Insert(ctx context.Context, meal Meal) (string, error)
	// Update は固定フィールドセットを丸ごと置き換える。
	Update(ctx context.Context, id string, meal Meal) error
	// Delete は指定されたIDの食事を削除する。
	Delete(ctx context.Context, id string) error
	// IncrementLikes はいいねカウンターをアトミックに1加算し、
	// 加算後の値を返す。IDが未登録の場合はErrNotFoundを返す。
	IncrementLikes(ctx context.Context, id string) (int64, error)
}

// MealRequests はreqMealsコレクションへの操作。
type MealRequests interface {
	// Insert は食事リクエストを挿入し、生成されたIDを返す。
	Insert(ctx context.Context, req MealRequest) (string, error)
	// List は全食事リクエストを返す。
	List(ctx context.Context) ([]MealRequest, error)
}

// UpcomingMeals はupcomingMealsコレクションへの操作。
type UpcomingMeals interface {
	// Insert は提供予定の食事を挿入し、生成されたIDを返す。
	Insert(ctx context.Context, meal Meal) (string, error)
	// List は提供予定の食事を全件返す。
	List(ctx context.Context) ([]Meal, error)
}

// Payments はpaymentsコレクションへの操作。
type Payments interface {
	// Insert は決済レコードを挿入し、生成されたIDを返す。
	Insert(ctx context.Context, payment Payment) (string, error)
	// ListByEmail は指定されたメールアドレスの決済履歴を返す。
	ListByEmail(ctx context.Context, email string) ([]Payment, error)
}

// Store は全コレクションへのアクセスをまとめた束。
// プロセス起動時に一度構築し、読み取り専用ハンドルとして各コンポーネント
// に渡す。
type Store struct {
	Users         Users
	Meals         Meals
	MealRequests  MealRequests
	UpcomingMeals UpcomingMeals
	Payments      Payments
}

// parseID は識別子の文字列表現を正規のObjectIDへ変換する。
// 形式が不正な場合はErrInvalidIDを返す。
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
