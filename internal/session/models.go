package session

import (
	"time"

	"github.com/sessionlite/sessionlite/pkg/id"
)

// SessionRecord is a row of the sessions table. The host request pipeline
// creates one per device at login and bumps last_activity on every
// authenticated request; nothing else writes to it besides DeleteAllExcept.
type SessionRecord struct {
	ID           id.SessionID
	UserID       int64
	IPAddress    string // empty when the row holds NULL
	UserAgent    string // empty when the row holds NULL
	LastActivity int64  // unix seconds
}

// SessionView is the presentation shape of a record. It is derived per
// request and never persisted.
type SessionView struct {
	ID           id.SessionID `json:"id"`
	IPAddress    string       `json:"ip_address"`
	UserAgent    string       `json:"user_agent"`
	LastActiveAt time.Time    `json:"last_active_at"`
	IsCurrent    bool         `json:"is_current"`
	DeviceHint   string       `json:"device_hint"`
}
