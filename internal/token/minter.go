// Package token mints access tokens for the realtime media transport.
// Tokens are HS256 JWTs carrying room grants, compatible with SFU-style
// media servers that authenticate joins via a video grant claim.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultTTL bounds how long a minted token stays valid.
const DefaultTTL = 6 * time.Hour

// Config identifies the media project and the room clients should join.
type Config struct {
	APIKey    string
	APISecret string
	URL       string // websocket URL handed to clients alongside the token
	Room      string
	TTL       time.Duration
}

// Credentials is what a client needs to connect to the transport.
type Credentials struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type videoGrant struct {
	RoomJoin             bool   `json:"roomJoin"`
	Room                 string `json:"room"`
	CanPublish           bool   `json:"canPublish"`
	CanSubscribe         bool   `json:"canSubscribe"`
	CanPublishData       bool   `json:"canPublishData"`
	CanUpdateOwnMetadata bool   `json:"canUpdateOwnMetadata"`
}

type claims struct {
	jwt.RegisteredClaims
	Name     string     `json:"name,omitempty"`
	Metadata string     `json:"metadata,omitempty"`
	Video    videoGrant `json:"video"`
}

// Minter issues transport credentials.
type Minter struct {
	cfg Config
}

func NewMinter(cfg Config) (*Minter, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("transport api key and secret are required")
	}
	if cfg.Room == "" {
		return nil, fmt.Errorf("transport room is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Minter{cfg: cfg}, nil
}

// Mint issues credentials for identity with full publish/subscribe grants
// and the given metadata (the active persona key rides along here).
func (m *Minter) Mint(identity, name, metadata string) (Credentials, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.APIKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		},
		Name:     name,
		Metadata: metadata,
		Video: videoGrant{
			RoomJoin:             true,
			Room:                 m.cfg.Room,
			CanPublish:           true,
			CanSubscribe:         true,
			CanPublishData:       true,
			CanUpdateOwnMetadata: true,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(m.cfg.APISecret))
	if err != nil {
		return Credentials{}, fmt.Errorf("sign token: %w", err)
	}

	return Credentials{Token: signed, URL: m.cfg.URL}, nil
}
