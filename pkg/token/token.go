// Package token は署名付きベアラートークンの発行と検証を提供する。
//
// トークンは自己完結型で、サーバー側にセッション状態を持たない。
// 失効リストは存在せず、無効化は有効期限切れのみで行われる。
// そのため、漏洩したトークンは残りTTL（最大1時間）の間は有効なままになる。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL はトークンの有効期間。発行時刻からこの時間が経過すると検証に失敗する。
const TTL = time.Hour

// issuer はトークンのiss（発行者）クレームに設定する値。
const issuer = "hostelhub"

// ErrInvalidToken は署名不正・形式不正・期限切れのトークンに対して返される。
var ErrInvalidToken = errors.New("トークンが無効または期限切れ")

// Claims はトークンに埋め込むアイデンティティクレーム。
// 一度発行されたトークンの内容は有効期間中変化しない。
type Claims struct {
	jwt.RegisteredClaims
	// Email は利用者の一意識別子。
	Email string `json:"email"`
	// Name は表示名。ログイン時にプロフィールから渡される任意項目。
	Name string `json:"name,omitempty"`
}

// Service はHS256で署名されたベアラートークンを発行・検証する。
// 署名鍵はプロセス起動時に一度だけ渡され、以後は読み取り専用で共有される。
type Service struct {
	// secret はHMAC署名用の秘密鍵。
	secret []byte
}

// New は新しいトークンサービスを生成する。
// 署名鍵が空の場合はエラーを返す。これは設定不備であり、起動時に致命的
// エラーとして扱うべきで、リクエスト単位で発生する状況ではない。
func New(secret string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("トークン署名鍵が設定されていません")
	}
	return &Service{secret: []byte(secret)}, nil
}

// Issue はアイデンティティクレームから署名付きトークンを発行する。
// 有効期限は発行時刻の1時間後に固定される。
func (s *Service) Issue(email, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
		Email: email,
		Name:  name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたクレームを返す。
// 署名不正・形式不正・期限切れはすべてErrInvalidTokenとして扱う。
// 有効期限は検証側のローカル時計に対して判定され、クロックスキューの
// 補正は行わない。
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
