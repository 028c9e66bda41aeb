package model

import "time"

// PlaySession is an anonymous play session handed to the client.
type PlaySession struct {
	PlayerID    string
	SessionID   string
	DeviceID    string
	AccessToken string
	ExpiresAt   time.Time
}
