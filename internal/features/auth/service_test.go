package auth

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/harborkids/portal-server/internal/apperror"
)

// --- Mock Family Repository ---

type mockFamilyRepo struct {
	findByLookupHashFn func(ctx context.Context, lookupHash string) ([]Family, error)
	updateLastLoginFn  func(ctx context.Context, id int64) error
}

func (m *mockFamilyRepo) FindByLookupHash(ctx context.Context, lookupHash string) ([]Family, error) {
	if m.findByLookupHashFn != nil {
		return m.findByLookupHashFn(ctx, lookupHash)
	}
	return nil, nil
}

func (m *mockFamilyRepo) UpdateLastLogin(ctx context.Context, id int64) error {
	if m.updateLastLoginFn != nil {
		return m.updateLastLoginFn(ctx, id)
	}
	return nil
}

// --- Mock School Directory ---

type mockSchoolDirectory struct {
	findByDirectorEmailFn func(ctx context.Context, email string) (*DirectorSchool, error)
}

func (m *mockSchoolDirectory) FindByDirectorEmail(ctx context.Context, email string) (*DirectorSchool, error) {
	if m.findByDirectorEmailFn != nil {
		return m.findByDirectorEmailFn(ctx, email)
	}
	return nil, apperror.NewNotFound("school not found")
}

// --- Mock Token Verifier ---

type mockVerifier struct {
	verifyFn func(ctx context.Context, rawIDToken string) (*IdentityClaims, error)
}

func (m *mockVerifier) Verify(ctx context.Context, rawIDToken string) (*IdentityClaims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, rawIDToken)
	}
	return nil, errors.New("verification not configured")
}

// --- Test Helpers ---

// newTestService wires a service against miniredis so the full session
// store path (write, read-back, expiry, delete) is exercised for real.
func newTestService(t *testing.T, families FamilyRepository, schools SchoolDirectory, verifier TokenVerifier) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := NewService(families, schools, verifier, rdb,
		24*time.Hour, 12*time.Hour,
		[]string{"admin@example.com"},
	)
	return svc, mr
}

// testFamily returns a family whose PIN is "482913".
func testFamily(t *testing.T, id int64) Family {
	t.Helper()
	verifyHash, err := HashPIN("482913")
	if err != nil {
		t.Fatalf("hashing test PIN: %v", err)
	}
	return Family{
		ID:            id,
		Name:          "The Andersons",
		PINLookupHash: LookupHash("482913"),
		PINVerifyHash: verifyHash,
	}
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- PIN Login Tests ---

func TestLoginWithPIN_Success(t *testing.T) {
	family := testFamily(t, 42)
	families := &mockFamilyRepo{
		findByLookupHashFn: func(ctx context.Context, lookupHash string) ([]Family, error) {
			if lookupHash != family.PINLookupHash {
				t.Errorf("expected lookup by %s, got %s", family.PINLookupHash, lookupHash)
			}
			return []Family{family}, nil
		},
	}

	svc, _ := newTestService(t, families, &mockSchoolDirectory{}, nil)

	token, session, err := svc.LoginWithPIN(context.Background(), "482913")
	if err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64-char hex token, got %d chars", len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("token is not valid hex: %v", err)
	}
	if session.Kind != KindFamily {
		t.Errorf("expected family session, got %s", session.Kind)
	}
	if session.EntityID != 42 {
		t.Errorf("expected entity 42, got %d", session.EntityID)
	}

	// The token must resolve back to the same session.
	resolved, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validating freshly issued token: %v", err)
	}
	if resolved.EntityID != 42 || resolved.Kind != KindFamily {
		t.Errorf("resolved session mismatch: %+v", resolved)
	}
}

func TestLoginWithPIN_WrongPIN(t *testing.T) {
	// The lookup hash matched a row but the slow hash doesn't verify.
	// The caller must not be able to tell those cases apart.
	family := testFamily(t, 42)
	families := &mockFamilyRepo{
		findByLookupHashFn: func(ctx context.Context, lookupHash string) ([]Family, error) {
			return []Family{family}, nil
		},
	}

	svc, _ := newTestService(t, families, &mockSchoolDirectory{}, nil)

	_, _, err := svc.LoginWithPIN(context.Background(), "999999")
	assertAppError(t, err, 401)
}

func TestLoginWithPIN_NoCandidates(t *testing.T) {
	svc, _ := newTestService(t, &mockFamilyRepo{}, &mockSchoolDirectory{}, nil)

	_, _, err := svc.LoginWithPIN(context.Background(), "482913")
	assertAppError(t, err, 401)
}

func TestLoginWithPIN_EmptyPIN(t *testing.T) {
	svc, _ := newTestService(t, &mockFamilyRepo{}, &mockSchoolDirectory{}, nil)

	_, _, err := svc.LoginWithPIN(context.Background(), "   ")
	assertAppError(t, err, 400)
}

func TestLoginWithPIN_LastLoginFailureDoesNotBlockLogin(t *testing.T) {
	family := testFamily(t, 42)
	families := &mockFamilyRepo{
		findByLookupHashFn: func(ctx context.Context, lookupHash string) ([]Family, error) {
			return []Family{family}, nil
		},
		updateLastLoginFn: func(ctx context.Context, id int64) error {
			return errors.New("db went away")
		},
	}

	svc, _ := newTestService(t, families, &mockSchoolDirectory{}, nil)

	if _, _, err := svc.LoginWithPIN(context.Background(), "482913"); err != nil {
		t.Fatalf("last-login stamp failure must not fail the login, got %v", err)
	}
}

// --- Google Login Tests ---

func TestLoginWithGoogle_Success(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, rawIDToken string) (*IdentityClaims, error) {
			return &IdentityClaims{Email: "Director@Example.com", EmailVerified: true}, nil
		},
	}
	schools := &mockSchoolDirectory{
		findByDirectorEmailFn: func(ctx context.Context, email string) (*DirectorSchool, error) {
			if email != "director@example.com" {
				t.Errorf("expected lowercased email, got %s", email)
			}
			return &DirectorSchool{ID: 7, Slug: "lakeside", Title: "Lakeside Center"}, nil
		},
	}

	svc, _ := newTestService(t, &mockFamilyRepo{}, schools, verifier)

	token, session, err := svc.LoginWithGoogle(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}
	if session.Kind != KindDirector {
		t.Errorf("expected director session, got %s", session.Kind)
	}
	if session.EntityID != 7 || session.Slug != "lakeside" {
		t.Errorf("unexpected session: %+v", session)
	}
	if session.IsAdmin {
		t.Error("director@example.com is not on the admin list")
	}

	resolved, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validating director token: %v", err)
	}
	if resolved.Email != "director@example.com" {
		t.Errorf("expected stored email, got %s", resolved.Email)
	}
}

func TestLoginWithGoogle_AdminEmail(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, rawIDToken string) (*IdentityClaims, error) {
			return &IdentityClaims{Email: "admin@example.com", EmailVerified: true}, nil
		},
	}
	schools := &mockSchoolDirectory{
		findByDirectorEmailFn: func(ctx context.Context, email string) (*DirectorSchool, error) {
			return &DirectorSchool{ID: 1, Slug: "hq", Title: "HQ"}, nil
		},
	}

	svc, _ := newTestService(t, &mockFamilyRepo{}, schools, verifier)

	_, session, err := svc.LoginWithGoogle(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("expected successful login, got %v", err)
	}
	if !session.IsAdmin {
		t.Error("expected admin claim for listed email")
	}
}

func TestLoginWithGoogle_UnverifiedEmail(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, rawIDToken string) (*IdentityClaims, error) {
			return &IdentityClaims{Email: "director@example.com", EmailVerified: false}, nil
		},
	}

	svc, _ := newTestService(t, &mockFamilyRepo{}, &mockSchoolDirectory{}, verifier)

	_, _, err := svc.LoginWithGoogle(context.Background(), "id-token")
	assertAppError(t, err, 401)
}

func TestLoginWithGoogle_NoSchoolForEmail(t *testing.T) {
	// An unknown director email must look exactly like a bad token.
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, rawIDToken string) (*IdentityClaims, error) {
			return &IdentityClaims{Email: "stranger@example.com", EmailVerified: true}, nil
		},
	}

	svc, _ := newTestService(t, &mockFamilyRepo{}, &mockSchoolDirectory{}, verifier)

	_, _, err := svc.LoginWithGoogle(context.Background(), "id-token")
	assertAppError(t, err, 401)
}

func TestLoginWithGoogle_VerifierNotConfigured(t *testing.T) {
	svc, _ := newTestService(t, &mockFamilyRepo{}, &mockSchoolDirectory{}, nil)

	_, _, err := svc.LoginWithGoogle(context.Background(), "id-token")
	assertAppError(t, err, 500)
}

// --- Token Validation Tests ---

func TestValidateToken_NeverIssued(t *testing.T) {
	svc, _ := newTestService(t, &mockFamilyRepo{}, &mockSchoolDirectory{}, nil)

	_, err := svc.ValidateToken(context.Background(), "deadbeef")
	assertAppError(t, err, 401)
}

func TestValidateToken_Empty(t *testing.T) {
	svc, _ := newTestService(t, &mockFamilyRepo{}, &mockSchoolDirectory{}, nil)

	_, err := svc.ValidateToken(context.Background(), "")
	assertAppError(t, err, 401)
}

func TestValidateToken_ExpiredIsLazilyDeleted(t *testing.T) {
	family := testFamily(t, 42)
	families := &mockFamilyRepo{
		findByLookupHashFn: func(ctx context.Context, lookupHash string) ([]Family, error) {
			return []Family{family}, nil
		},
	}

	svc, mr := newTestService(t, families, &mockSchoolDirectory{}, nil)

	token, _, err := svc.LoginWithPIN(context.Background(), "482913")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Age the stored record past its absolute expiry. Validity is checked
	// against the stored ExpiresAt, not just the Redis TTL.
	stored, err := mr.Get(sessionKeyPrefix + token)
	if err != nil {
		t.Fatalf("reading stored session: %v", err)
	}
	var session Session
	if err := json.Unmarshal([]byte(stored), &session); err != nil {
		t.Fatalf("unmarshaling stored session: %v", err)
	}
	session.ExpiresAt = time.Now().Add(-time.Minute)
	aged, err := json.Marshal(&session)
	if err != nil {
		t.Fatalf("marshaling aged session: %v", err)
	}
	if err := mr.Set(sessionKeyPrefix+token, string(aged)); err != nil {
		t.Fatalf("replacing stored session: %v", err)
	}

	_, err = svc.ValidateToken(context.Background(), token)
	assertAppError(t, err, 401)

	if mr.Exists(sessionKeyPrefix + token) {
		t.Error("expired session should have been deleted")
	}

	// A second validation of the same dead token behaves identically.
	_, err = svc.ValidateToken(context.Background(), token)
	assertAppError(t, err, 401)
}

func TestLoginWithPIN_SessionStoreFailureIsTerminal(t *testing.T) {
	// A failed session write ends the login attempt with an internal
	// error. No token is issued and nothing is left behind in the store.
	family := testFamily(t, 42)
	lookups := 0
	families := &mockFamilyRepo{
		findByLookupHashFn: func(ctx context.Context, lookupHash string) ([]Family, error) {
			lookups++
			return []Family{family}, nil
		},
	}

	svc, mr := newTestService(t, families, &mockSchoolDirectory{}, nil)
	mr.SetError("redis went away")

	token, session, err := svc.LoginWithPIN(context.Background(), "482913")
	assertAppError(t, err, 500)
	if token != "" {
		t.Errorf("expected no token on persist failure, got %q", token)
	}
	if session != nil {
		t.Errorf("expected no session on persist failure, got %+v", session)
	}
	if lookups != 1 {
		t.Errorf("expected a single login attempt, credential lookup ran %d times", lookups)
	}

	mr.SetError("")
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("expected empty session store after failed login, got %v", keys)
	}
}

func TestRevokeToken(t *testing.T) {
	family := testFamily(t, 42)
	families := &mockFamilyRepo{
		findByLookupHashFn: func(ctx context.Context, lookupHash string) ([]Family, error) {
			return []Family{family}, nil
		},
	}

	svc, _ := newTestService(t, families, &mockSchoolDirectory{}, nil)

	token, _, err := svc.LoginWithPIN(context.Background(), "482913")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.RevokeToken(context.Background(), token); err != nil {
		t.Fatalf("revoking token: %v", err)
	}

	_, err = svc.ValidateToken(context.Background(), token)
	assertAppError(t, err, 401)

	// Revoking again, or revoking nothing, is fine.
	if err := svc.RevokeToken(context.Background(), token); err != nil {
		t.Errorf("double revoke should be a no-op, got %v", err)
	}
	if err := svc.RevokeToken(context.Background(), ""); err != nil {
		t.Errorf("revoking empty token should be a no-op, got %v", err)
	}
}
