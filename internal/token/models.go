package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/sessionlite/sessionlite/internal/person"
	"github.com/sessionlite/sessionlite/pkg/id"
)

type Claims struct {
	Sub  id.PublicID  `json:"sub"`
	SID  id.SessionID `json:"sid"`
	Role person.Role  `json:"role"`
	jwt.RegisteredClaims
}
