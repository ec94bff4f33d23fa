package util

import (
	"errors"
	"time"

	"gradebook_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 令牌中携带用户与其绑定的学校账号会话
type Claims struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
	Session   string `json:"session"`
	jwt.RegisteredClaims
}

func GenerateJWT(account model.Account, secret string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration)

	claims := &Claims{
		UserID:    account.UserID,
		AccountID: account.AccountID,
		Session:   account.Session,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.UserID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// Account 由令牌得到用于拉取成绩的账号
func (c *Claims) Account() model.Account {
	return model.Account{
		UserID:    c.UserID,
		AccountID: c.AccountID,
		Session:   c.Session,
	}
}
