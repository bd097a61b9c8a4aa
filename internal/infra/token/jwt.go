package token

import (
	"errors"
	"strconv"
	"time"

	"bookmarket/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// HS256 のアクセストークン発行
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// 署名済みトークンと有効秒数を返す
func (i *JWTIssuer) Issue(user model.User) (string, int, error) {
	if len(i.secret) == 0 {
		return "", 0, errors.New("jwt secret is empty")
	}
	now := i.now()
	exp := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int(i.ttl.Seconds()), nil
}

var ErrInvalidToken = errors.New("invalid token")

// 検証済みトークンから取り出した利用者
type Subject struct {
	UserID int64
	Role   model.Role
}

// HS256以外・期限切れ・sub/role欠落はすべて ErrInvalidToken
func Parse(secret, raw string) (Subject, error) {
	p := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := jwt.MapClaims{}
	tok, err := p.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Subject{}, ErrInvalidToken
	}

	var sub Subject
	switch v := claims["sub"].(type) {
	case float64:
		sub.UserID = int64(v)
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Subject{}, ErrInvalidToken
		}
		sub.UserID = id
	}
	if sub.UserID <= 0 {
		return Subject{}, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	sub.Role = model.Role(role)
	if sub.Role != model.RoleAdmin && sub.Role != model.RoleCustomer {
		return Subject{}, ErrInvalidToken
	}
	return sub, nil
}
