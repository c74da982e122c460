package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 各コレクション名。既存のhostelDBスキーマに合わせる。
const (
	collUsers         = "users"
	collMeals         = "meals"
	collMealRequests  = "reqMeals"
	collUpcomingMeals = "upcomingMeals"
	collPayments      = "payments"
)

// Connect はMongoDBに接続し、必要なインデックスを作成してStoreを返す。
// 2番目の戻り値は切断用のクローズ関数。接続はプロセスで一度だけ確立し、
// 全コンポーネントで共有する。
func Connect(ctx context.Context, uri, dbName string) (*Store, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("MongoDBへの接続に失敗: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("MongoDBへの疎通確認に失敗: %w", err)
	}

	db := client.Database(dbName)

	// メールアドレスの一意性はユニークインデックスで保証する。
	// アプリケーション側の存在確認に頼ると並行挿入で重複が生まれる。
	_, err = db.Collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("usersコレクションのインデックス作成に失敗: %w", err)
	}

	s := &Store{
		Users:         &mongoUsers{coll: db.Collection(collUsers)},
		Meals:         &mongoMeals{coll: db.Collection(collMeals)},
		MealRequests:  &mongoMealRequests{coll: db.Collection(collMealRequests)},
		UpcomingMeals: &mongoUpcomingMeals{coll: db.Collection(collUpcomingMeals)},
		Payments:      &mongoPayments{coll: db.Collection(collPayments)},
	}
	return s, client.Disconnect, nil
}

// mongoUsers はUsersのMongoDB実装。
type mongoUsers struct {
	coll *mongo.Collection
}

func (s *mongoUsers) List(ctx context.Context) ([]User, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗: %w", err)
	}
	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("ユーザー一覧のデコードに失敗: %w", err)
	}
	return users, nil
}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗: %w", err)
	}
	return &u, nil
}

func (s *mongoUsers) Insert(ctx context.Context, user User) (string, error) {
	res, err := s.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", fmt.Errorf("ユーザーの挿入に失敗: %w", err)
	}
	return objectIDHex(res.InsertedID), nil
}

func (s *mongoUsers) UpdatePackage(ctx context.Context, email, pkg string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"package": pkg}},
	)
	if err != nil {
		return fmt.Errorf("パッケージの更新に失敗: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUsers) PromoteAdmin(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"role": RoleAdmin}},
	)
	if err != nil {
		return fmt.Errorf("管理者への昇格に失敗: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUsers) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUsers) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == RoleAdmin, nil
}

// mongoMeals はMealsのMongoDB実装。
type mongoMeals struct {
	coll *mongo.Collection
}

func (s *mongoMeals) List(ctx context.Context, page, pageSize int64) ([]Meal, int64, error) {
	skip := (page - 1) * pageSize
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("食事一覧の取得に失敗: %w", err)
	}
	var meals []Meal
	if err := cur.All(ctx, &meals); err != nil {
		return nil, 0, fmt.Errorf("食事一覧のデコードに失敗: %w", err)
	}

	total, err := s.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("食事件数の取得に失敗: %w", err)
	}
	return meals, total, nil
}

func (s *mongoMeals) Count(ctx context.Context) (int64, error) {
	total, err := s.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("食事件数の取得に失敗: %w", err)
	}
	return total, nil
}

func (s *mongoMeals) FindByID(ctx context.Context, id string) (*Meal, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var m Meal
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("食事の検索に失敗: %w", err)
	}
	return &m, nil
}

func (s *mongoMeals) Insert(ctx context.Context, meal Meal) (string, error) {
	res, err := s.coll.InsertOne(ctx, meal)
	if err != nil {
		return "", fmt.Errorf("食事の挿入に失敗: %w", err)
	}
	return objectIDHex(res.InsertedID), nil
}

func (s *mongoMeals) Update(ctx context.Context, id string, meal Meal) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	// 固定フィールドセットの一括置換。部分適用は存在しない。
	update := bson.M{"$set": bson.M{
		"meal_title":  meal.Title,
		"meal_type":   meal.Type,
		"description": meal.Description,
		"ingredients": meal.Ingredients,
		"price":       meal.Price,
		"image":       meal.Image,
		"admin_name":  meal.AdminName,
		"admin_email": meal.AdminEmail,
		"rating":      meal.Rating,
		"reviews":     meal.Reviews,
		"likes":       meal.Likes,
		"time_date":   meal.PostedAt,
	}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("食事の更新に失敗: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoMeals) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("食事の削除に失敗: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoMeals) IncrementLikes(ctx context.Context, id string) (int64, error) {
	oid, err := parseID(id)
	if err != nil {
		return 0, err
	}
	// $incと更新後ドキュメントの取得を単一のアトミック操作で行う。
	// 読み取り後に加算する2往復方式は並行呼び出しで更新を失う。
	var m Meal
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("いいねの加算に失敗: %w", err)
	}
	return m.Likes, nil
}

// mongoMealRequests はMealRequestsのMongoDB実装。
type mongoMealRequests struct {
	coll *mongo.Collection
}

func (s *mongoMealRequests) Insert(ctx context.Context, req MealRequest) (string, error) {
	res, err := s.coll.InsertOne(ctx, req)
	if err != nil {
		return "", fmt.Errorf("食事リクエストの挿入に失敗: %w", err)
	}
	return objectIDHex(res.InsertedID), nil
}

func (s *mongoMealRequests) List(ctx context.Context) ([]MealRequest, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("食事リクエスト一覧の取得に失敗: %w", err)
	}
	var reqs []MealRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("食事リクエスト一覧のデコードに失敗: %w", err)
	}
	return reqs, nil
}

// mongoUpcomingMeals はUpcomingMealsのMongoDB実装。
type mongoUpcomingMeals struct {
	coll *mongo.Collection
}

func (s *mongoUpcomingMeals) Insert(ctx context.Context, meal Meal) (string, error) {
	res, err := s.coll.InsertOne(ctx, meal)
	if err != nil {
		return "", fmt.Errorf("提供予定食事の挿入に失敗: %w", err)
	}
	return objectIDHex(res.InsertedID), nil
}

func (s *mongoUpcomingMeals) List(ctx context.Context) ([]Meal, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("提供予定食事一覧の取得に失敗: %w", err)
	}
	var meals []Meal
	if err := cur.All(ctx, &meals); err != nil {
		return nil, fmt.Errorf("提供予定食事一覧のデコードに失敗: %w", err)
	}
	return meals, nil
}

// mongoPayments はPaymentsのMongoDB実装。
type mongoPayments struct {
	coll *mongo.Collection
}

func (s *mongoPayments) Insert(ctx context.Context, payment Payment) (string, error) {
	res, err := s.coll.InsertOne(ctx, payment)
	if err != nil {
		return "", fmt.Errorf("決済レコードの挿入に失敗: %w", err)
	}
	return objectIDHex(res.InsertedID), nil
}

func (s *mongoPayments) ListByEmail(ctx context.Context, email string) ([]Payment, error) {
	cur, err := s.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("決済履歴の取得に失敗: %w", err)
	}
	var payments []Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("決済履歴のデコードに失敗: %w", err)
	}
	return payments, nil
}

// objectIDHex は挿入結果のIDを16進文字列へ変換する。
func objectIDHex(id any) string {
	if oid, ok := id.(interface{ Hex() string }); ok {
		return oid.Hex()
	}
	return fmt.Sprintf("%v", id)
}
