package world

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dogloot/server/internal/core/arena"
)

type PlayerID uint32

// Token authenticates a player. 32 lower-case hex digits.
type Token string

// NewToken returns a fresh random token.
func NewToken() Token {
	u := uuid.New()
	return Token(strings.ReplaceAll(u.String(), "-", ""))
}

// ParseToken normalizes a client-supplied token for lookup.
func ParseToken(s string) Token {
	return Token(strings.ToLower(strings.TrimSpace(s)))
}

// Player owns its dog. Handle is the player's arena slot and stays valid
// until the cleanup phase of the tick that retired it.
type Player struct {
	Handle arena.Handle
	ID     PlayerID
	Name   string
	MapID  MapID
	Token  Token

	Dog   Dog
	Bag   Bag
	Score int64

	// IdleTime accumulates while the dog stands still. Age is the session
	// play time reported on retirement.
	IdleTime time.Duration
	Age      time.Duration
	Retired  bool
}

// Looter reports whether the player can still pick loot up.
func (p *Player) Looter() bool {
	return !p.Retired && !p.Bag.Full()
}
