package store

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const jwtIssuer = "zenspend"

// Revoker records tokens invalidated before their natural expiry; without
// one, DeleteSession on a stateless JWT store is a no-op.
type Revoker interface {
	Revoke(token string, until time.Time) error
	IsRevoked(token string) (bool, error)
}

// JWTSessionStore issues and validates HS256 JWTs. Stateless unless a
// Revoker is attached.
type JWTSessionStore struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
}

func NewJWTSessionStore(secret string, ttl time.Duration, revoker Revoker) *JWTSessionStore {
	return &JWTSessionStore{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
	}
}

func (s *JWTSessionStore) NewSession(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    jwtIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTSessionStore) GetUserIDByToken(token string) (string, bool, error) {
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(token)
		if err != nil {
			return "", false, err
		}
		if revoked {
			return "", false, nil
		}
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", false, nil
	}
	if claims.Subject == "" {
		return "", false, errors.New("token subject missing")
	}
	return claims.Subject, true, nil
}

// DeleteSession blacklists the token until its expiry when a revoker is
// configured; otherwise the token simply ages out.
func (s *JWTSessionStore) DeleteSession(token string) error {
	if s.revoker == nil {
		return nil
	}
	claims := jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		// An invalid token cannot authenticate anyway.
		return nil
	}
	until := time.Now().UTC().Add(s.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(token, until)
}

const revokedKeyPrefix = "zenspend:revoked:"

// RedisRevoker stores revoked tokens in Redis, expiring each entry when the
// token itself would have expired.
type RedisRevoker struct {
	client *redis.Client
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func (r *RedisRevoker) Revoke(token string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.client.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(token string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := r.client.Get(ctx, revokedKeyPrefix+token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
