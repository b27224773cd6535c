package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Result tokens make a walkthrough's result page shareable without
// exposing raw database ids: a tamper-evident, reversible encoding of the
// walkthrough identity. Tokens do not expire — result links stay valid.

type resultClaims struct {
	WalkthroughID uint `json:"wid"`
	jwt.RegisteredClaims
}

func Generate(secret string, walkthroughID uint) (string, error) {
	claims := resultClaims{
		WalkthroughID: walkthroughID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Parse(secret, tokenStr string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &resultClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	if claims, ok := token.Claims.(*resultClaims); ok && token.Valid {
		return claims.WalkthroughID, nil
	}
	return 0, errors.New("invalid token")
}
