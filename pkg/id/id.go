package id

// PublicID is the externally visible identifier of a person. Internal
// numeric ids never leave the database layer.
type PublicID string

// SessionID is the opaque identifier of a browser session. It is both the
// primary key of the sessions table and the `sid` claim of issued tokens.
type SessionID string
