package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"morris/internal/domain"

	"github.com/form3tech-oss/jwt-go"
)

const resumeTokenIssuer = "morris"

var ErrInvalidToken = errors.New("invalid resume token")

// TokenService signs board snapshots into HS256 resume tokens so a client
// can hand a game back later without server-side state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs snap for userID.
func (s *TokenService) Issue(userID string, snap domain.Snapshot) (string, error) {
	if s == nil {
		return "", fmt.Errorf("token service is nil")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("token secret is not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	board, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":   resumeTokenIssuer,
		"sub":   userID,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
		"board": string(board),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry and returns the owner and the
// snapshot. The snapshot is not validated against board invariants.
func (s *TokenService) Verify(tokenString string) (string, domain.Snapshot, error) {
	if s == nil || len(s.secret) == 0 {
		return "", domain.Snapshot{}, fmt.Errorf("token secret is not configured")
	}
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.Snapshot{}, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return "", domain.Snapshot{}, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	if !claims.VerifyIssuer(resumeTokenIssuer, true) {
		return "", domain.Snapshot{}, fmt.Errorf("%w: wrong issuer", ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	raw, _ := claims["board"].(string)
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return "", domain.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return sub, snap, nil
}
