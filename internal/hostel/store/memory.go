package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memory は全コレクションをプロセス内のスライスとして保持するストア。
// MongoDBと同じエラー・アトミック性のセマンティクスを単一ミューテックス
// で再現する。ユニットテストと、MongoDBなしでのローカル起動に使用する。
type memory struct {
	mu       sync.Mutex
	users    []User
	meals    []Meal
	reqMeals []MealRequest
	upcoming []Meal
	payments []Payment
}

// NewMemory はインメモリ実装で構成されたStoreを返す。
func NewMemory() *Store {
	m := &memory{}
	return &Store{
		Users:         &memUsers{m},
		Meals:         &memMeals{m},
		MealRequests:  &memMealRequests{m},
		UpcomingMeals: &memUpcomingMeals{m},
		Payments:      &memPayments{m},
	}
}

// memUsers はUsersのインメモリ実装。
type memUsers struct{ *memory }

func (s *memUsers) List(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]User, len(s.users))
	copy(users, s.users)
	return users, nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUsers) Insert(_ context.Context, user User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// 存在確認と挿入を同一クリティカルセクションで行い、
	// ユニークインデックスと同じ一意性を保証する。
	for i := range s.users {
		if s.users[i].Email == user.Email {
			return "", ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	s.users = append(s.users, user)
	return user.ID.Hex(), nil
}

func (s *memUsers) UpdatePackage(_ context.Context, email, pkg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			s.users[i].Package = pkg
			return nil
		}
	}
	return ErrNotFound
}

func (s *memUsers) PromoteAdmin(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == oid {
			s.users[i].Role = RoleAdmin
			return nil
		}
	}
	return ErrNotFound
}

func (s *memUsers) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == oid {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *memUsers) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		// レコードが無いユーザーは一般ユーザーとして扱う
		return false, nil
	}
	return u.Role == RoleAdmin, nil
}

// memMeals はMealsのインメモリ実装。
type memMeals struct{ *memory }

func (s *memMeals) List(_ context.Context, page, pageSize int64) ([]Meal, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := int64(len(s.meals))
	skip := (page - 1) * pageSize
	if skip >= total {
		return []Meal{}, total, nil
	}
	end := skip + pageSize
	if end > total {
		end = total
	}
	meals := make([]Meal, end-skip)
	copy(meals, s.meals[skip:end])
	return meals, total, nil
}

func (s *memMeals) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.meals)), nil
}

func (s *memMeals) FindByID(_ context.Context, id string) (*Meal, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.meals {
		if s.meals[i].ID == oid {
			m := s.meals[i]
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memMeals) Insert(_ context.Context, meal Meal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meal.ID = primitive.NewObjectID()
	s.meals = append(s.meals, meal)
	return meal.ID.Hex(), nil
}

func (s *memMeals) Update(_ context.Context, id string, meal Meal) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.meals {
		if s.meals[i].ID == oid {
			meal.ID = oid
			s.meals[i] = meal
			return nil
		}
	}
	return ErrNotFound
}

func (s *memMeals) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.meals {
		if s.meals[i].ID == oid {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *memMeals) IncrementLikes(_ context.Context, id string) (int64, error) {
	oid, err := parseID(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// 検索と加算を同一クリティカルセクションで行い、FindOneAndUpdateと
	// 同じアトミック性を保証する。
	for i := range s.meals {
		if s.meals[i].ID == oid {
			s.meals[i].Likes++
			return s.meals[i].Likes, nil
		}
	}
	return 0, ErrNotFound
}

// memMealRequests はMealRequestsのインメモリ実装。
type memMealRequests struct{ *memory }

func (s *memMealRequests) Insert(_ context.Context, req MealRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = primitive.NewObjectID()
	s.reqMeals = append(s.reqMeals, req)
	return req.ID.Hex(), nil
}

func (s *memMealRequests) List(_ context.Context) ([]MealRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := make([]MealRequest, len(s.reqMeals))
	copy(reqs, s.reqMeals)
	return reqs, nil
}

// memUpcomingMeals はUpcomingMealsのインメモリ実装。
type memUpcomingMeals struct{ *memory }

func (s *memUpcomingMeals) Insert(_ context.Context, meal Meal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meal.ID = primitive.NewObjectID()
	s.upcoming = append(s.upcoming, meal)
	return meal.ID.Hex(), nil
}

func (s *memUpcomingMeals) List(_ context.Context) ([]Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meals := make([]Meal, len(s.upcoming))
	copy(meals, s.upcoming)
	return meals, nil
}

// memPayments はPaymentsのインメモリ実装。
type memPayments struct{ *memory }

func (s *memPayments) Insert(_ context.Context, payment Payment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment.ID = primitive.NewObjectID()
	s.payments = append(s.payments, payment)
	return payment.ID.Hex(), nil
}

func (s *memPayments) ListByEmail(_ context.Context, email string) ([]Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payments := []Payment{}
	for i := range s.payments {
		if s.payments[i].Email == email {
			payments = append(payments, s.payments[i])
		}
	}
	return payments, nil
}
