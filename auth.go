package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenValidity = 24 * time.Hour

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type SessionClaims struct {
	UserId int `json:"user_id"`
	jwt.RegisteredClaims
}

func GenerateToken(secret []byte, userId int) (string, error) {
	claims := SessionClaims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenValidity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "expense-tracker",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateToken(secret []byte, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %v: %w", err, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type contextKey string

const userIdKey contextKey = "user_id"

// UserIdFromContext returns the authenticated caller's id, as attached by
// the Authenticate middleware.
func UserIdFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIdKey).(int)
	return id, ok
}

// Authenticate gates protected routes: it extracts the bearer token, verifies
// it and puts the embedded user id into the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, r, ErrMissingToken)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if tokenString == "" {
			writeError(w, r, ErrMissingToken)
			return
		}

		claims, err := ValidateToken(h.jwtSecret, tokenString)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIdKey, claims.UserId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, ValidationErrors{"body": "invalid request payload"})
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		writeError(w, r, fmt.Errorf("hash password: %w", err))
		return
	}

	user, err := h.store.CreateUser(r.Context(), in.Name, in.Email, hash)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := GenerateToken(h.jwtSecret, user.Id)
	if err != nil {
		writeError(w, r, fmt.Errorf("sign token: %w", err))
		return
	}

	slog.InfoContext(r.Context(), "user registered", "user_id", user.Id)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, ValidationErrors{"body": "invalid request payload"})
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.TrimSpace(in.Email))
	if err != nil {
		// Per product decision a missing user is a 400, not a 404.
		if errors.Is(err, ErrNotFound) {
			err = ErrUserNotFound
		}
		writeError(w, r, err)
		return
	}

	if !CheckPasswordHash(in.Password, user.PasswordHash) {
		writeError(w, r, ErrInvalidPassword)
		return
	}

	token, err := GenerateToken(h.jwtSecret, user.Id)
	if err != nil {
		writeError(w, r, fmt.Errorf("sign token: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token, "name": user.Name})
}
