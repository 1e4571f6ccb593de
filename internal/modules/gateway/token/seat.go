// Package token issues and verifies the JWTs that bind a websocket to a seat.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	gwdomain "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/domain"
	wgp "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

// ErrInvalidSeat is returned for tokens that fail verification
var ErrInvalidSeat = errors.New("invalid seat token")

const issuer = "wolf-goat-pig"

// SeatClaims are the claims carried by a seat token
type SeatClaims struct {
	GameID   string       `json:"game_id"`
	PlayerID wgp.PlayerID `json:"player_id"`
	jwt.RegisteredClaims
}

// SeatIssuer signs and parses HS256 seat tokens
type SeatIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSeatIssuer creates an issuer. Tokens live for ttl; a round of golf fits in a day.
func NewSeatIssuer(secret string, ttl time.Duration) *SeatIssuer {
	return &SeatIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueSeat signs a token for playerID in gameID
func (s *SeatIssuer) IssueSeat(gameID string, playerID wgp.PlayerID) (string, error) {
	now := s.now()
	claims := SeatClaims{
		GameID:   gameID,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   string(playerID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign seat token: %w", err)
	}
	return signed, nil
}

// ParseSeat verifies a token and returns the seat it names
func (s *SeatIssuer) ParseSeat(tokenString string) (gwdomain.Seat, error) {
	claims := &SeatClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return gwdomain.Seat{}, fmt.Errorf("%w: %v", ErrInvalidSeat, err)
	}
	if claims.GameID == "" || claims.PlayerID == "" {
		return gwdomain.Seat{}, fmt.Errorf("%w: missing game or player", ErrInvalidSeat)
	}
	return gwdomain.Seat{GameID: claims.GameID, PlayerID: claims.PlayerID}, nil
}
