package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Player is an anonymous player bound to a device.
type Player struct {
	ID        string
	DeviceID  string
	CreatedAt time.Time
}

// PlayerClaims Subject - анонимный id игрока, SessionID - игровая сессия
type PlayerClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
