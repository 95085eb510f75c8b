package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sessionlite/sessionlite/internal/config"
	"github.com/sessionlite/sessionlite/internal/person"
	"github.com/sessionlite/sessionlite/internal/session"
	"github.com/sessionlite/sessionlite/internal/token"
	"github.com/sessionlite/sessionlite/pkg/id"
	"go.uber.org/zap"
)

type fakePersonRepo struct {
	byPublicID map[id.PublicID]*person.Person
}

func (f *fakePersonRepo) Create(ctx context.Context, dto *person.PersonDTO) (id.PublicID, error) {
	return "", nil
}

func (f *fakePersonRepo) GetByEmail(ctx context.Context, email string) (*person.Person, error) {
	return nil, person.ErrNotFound
}

func (f *fakePersonRepo) GetByPublicID(ctx context.Context, publicID id.PublicID) (*person.Person, error) {
	p, ok := f.byPublicID[publicID]
	if !ok {
		return nil, person.ErrNotFound
	}
	return p, nil
}

func (f *fakePersonRepo) UpdatePassword(ctx context.Context, personID int64, hash string) error {
	return nil
}

type fakeTouchRepo struct {
	session.SessionRepo
	touched []id.SessionID
}

func (f *fakeTouchRepo) Touch(ctx context.Context, sessionID id.SessionID, ip string, lastActivity int64) error {
	f.touched = append(f.touched, sessionID)
	return nil
}

type fakeRefreshRepo struct{}

func (fakeRefreshRepo) Create(ctx context.Context, dto token.RefreshTokenDTO) (string, error) {
	return "rt-1", nil
}

func (fakeRefreshRepo) RevokeBySession(ctx context.Context, sessionID id.SessionID) error {
	return nil
}

func (fakeRefreshRepo) RevokeAllExceptSession(ctx context.Context, personID int64, keepID id.SessionID) (int64, error) {
	return 0, nil
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessTTL:   time.Minute,
		RefreshTTL:  time.Hour,
		JWTIssuer:   "sessionlite-test",
		JWTAudience: "sessionlite",
		JWTSecret:   "test-secret",
		JWTKID:      "k1",
	}
}

func TestRequireAuthBindsPrincipalAndSession(t *testing.T) {
	logger := zap.NewNop()
	tokens := token.NewTokenService(logger, fakeRefreshRepo{}, testJWTConfig())

	p := &person.Person{ID: 42, PublicID: "pub-42", Role: person.RoleUser, IsActive: true}
	persons := &fakePersonRepo{byPublicID: map[id.PublicID]*person.Person{"pub-42": p}}
	sessions := &fakeTouchRepo{}

	issued, err := tokens.Issue(context.Background(), p, "sess-1", token.IssueMeta{})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	var gotPrincipal *person.Person
	var gotSessionID id.SessionID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal = PrincipalFromContext(r.Context())
		gotSessionID = session.IDFromContext(r.Context())
	})

	handler := RequireAuth(tokens, persons, sessions, logger)(next)

	req := httptest.NewRequest(http.MethodGet, "/user/browser-sessions", nil)
	req.Header.Set("Authorization", "Bearer "+issued.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotPrincipal == nil || gotPrincipal.ID != 42 {
		t.Errorf("principal not bound, got %+v", gotPrincipal)
	}
	if gotSessionID != "sess-1" {
		t.Errorf("session id not bound, got %q", gotSessionID)
	}
	if len(sessions.touched) != 1 || sessions.touched[0] != "sess-1" {
		t.Errorf("expected the session to be touched once, got %v", sessions.touched)
	}
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	logger := zap.NewNop()
	tokens := token.NewTokenService(logger, fakeRefreshRepo{}, testJWTConfig())
	persons := &fakePersonRepo{byPublicID: map[id.PublicID]*person.Person{}}
	sessions := &fakeTouchRepo{}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for rejected requests")
	})
	handler := RequireAuth(tokens, persons, sessions, logger)(next)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user/browser-sessions", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireAuthRejectsDisabledAccount(t *testing.T) {
	logger := zap.NewNop()
	tokens := token.NewTokenService(logger, fakeRefreshRepo{}, testJWTConfig())

	p := &person.Person{ID: 9, PublicID: "pub-9", IsActive: false}
	persons := &fakePersonRepo{byPublicID: map[id.PublicID]*person.Person{"pub-9": p}}
	sessions := &fakeTouchRepo{}

	issued, err := tokens.Issue(context.Background(), p, "sess-9", token.IssueMeta{})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a disabled account")
	})
	handler := RequireAuth(tokens, persons, sessions, logger)(next)

	req := httptest.NewRequest(http.MethodGet, "/user/browser-sessions", nil)
	req.Header.Set("Authorization", "Bearer "+issued.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
