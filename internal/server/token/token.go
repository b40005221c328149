// Package token выпускает и проверяет JWT токены агентов.
// Токены долгоживущие: агент получает токен при регистрации точки
// и использует его для всех вызовов синхронизации.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AgentClaims представляет JWT claims агента синхронизации
type AgentClaims struct {
	AgentID string `json:"agent_id"`
	jwt.RegisteredClaims
}

// Config содержит конфигурацию для выпуска токенов
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Generate создает новый JWT токен для агента
func Generate(cfg Config, agentID string) (string, error) {
	if agentID == "" {
		return "", fmt.Errorf("agent id is required")
	}

	now := time.Now()
	claims := AgentClaims{
		AgentID: agentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "marketsync",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate валидирует и парсит JWT токен агента
func Validate(cfg Config, tokenString string) (*AgentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AgentClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*AgentClaims)
	if !ok || !token.Valid || claims.AgentID == "" {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
