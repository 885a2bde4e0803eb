package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
)

type ctxKey int

const claimsKey ctxKey = 0

// Claims are what we trust out of the host platform's identity token.
type Claims struct {
	ChannelID string
	Role      string
}

// requireJWT verifies the bearer token the host platform hands to
// extension frontends. The token is HMAC-signed with the extension secret;
// everything else about the auth scheme is the platform's problem.
func (a *API) requireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := a.parseToken(tokenString)
		if err != nil {
			a.log.Warn("rejected token", zap.Error(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) parseToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, errors.New("token expired")
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("unreadable claims")
	}
	channelID, _ := mapClaims["channel_id"].(string)
	role, _ := mapClaims["role"].(string)
	if channelID == "" {
		return Claims{}, errors.New("token missing channel_id")
	}
	return Claims{ChannelID: channelID, Role: role}, nil
}

func claimsFrom(ctx context.Context) Claims {
	claims, _ := ctx.Value(claimsKey).(Claims)
	return claims
}
