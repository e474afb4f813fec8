package auth

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborkids/portal-server/internal/apperror"
)

// sessionKeyPrefix is the Redis key prefix for session data.
const sessionKeyPrefix = "session:"

// sessionTokenBytes is the number of random bytes in a session token.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const sessionTokenBytes = 32

// errPersistVerify marks the read-back check after a session write failing.
// Fatal for the login attempt -- never retried.
var errPersistVerify = errors.New("session write could not be verified")

// Service defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repositories directly.
type Service interface {
	// LoginWithPIN authenticates a family by PIN and issues a session.
	LoginWithPIN(ctx context.Context, pin string) (token string, session *Session, err error)

	// LoginWithGoogle verifies a Google ID token, resolves the director's
	// school, and issues a session.
	LoginWithGoogle(ctx context.Context, rawIDToken string) (token string, session *Session, err error)

	// ValidateToken resolves a bearer token to its session. Expired
	// sessions are lazily deleted and reported as invalid. Safe to call
	// concurrently for the same token.
	ValidateToken(ctx context.Context, token string) (*Session, error)

	// RevokeToken deletes a session, logging the caller out server-side.
	// Idempotent: revoking an unknown token is not an error.
	RevokeToken(ctx context.Context, token string) error
}

// DirectorSchool is the school summary the login flow binds a director
// session to.
type DirectorSchool struct {
	ID    int64
	Slug  string
	Title string
}

// SchoolDirectory resolves a verified director email to their school.
// Implemented by the school feature; kept as a local interface so the
// dependency points from wiring into auth, not from auth into school.
type SchoolDirectory interface {
	FindByDirectorEmail(ctx context.Context, email string) (*DirectorSchool, error)
}

// service implements Service with Redis-backed sessions.
type service struct {
	families    FamilyRepository
	schools     SchoolDirectory
	verifier    TokenVerifier
	redis       *redis.Client
	familyTTL   time.Duration
	directorTTL time.Duration
	adminEmails map[string]bool
}

// NewService creates a new auth service with the given dependencies.
// adminEmails lists director emails that also receive content-admin rights.
func NewService(
	families FamilyRepository,
	schools SchoolDirectory,
	verifier TokenVerifier,
	rdb *redis.Client,
	familyTTL, directorTTL time.Duration,
	adminEmails []string,
) Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &service{
		families:    families,
		schools:     schools,
		verifier:    verifier,
		redis:       rdb,
		familyTTL:   familyTTL,
		directorTTL: directorTTL,
		adminEmails: admins,
	}
}

// LoginWithPIN finds candidate families by the fast lookup hash, verifies
// the PIN against each candidate's slow hash, and issues a 24h session.
func (s *service) LoginWithPIN(ctx context.Context, pin string) (string, *Session, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return "", nil, apperror.NewBadRequest("PIN is required")
	}

	candidates, err := s.families.FindByLookupHash(ctx, LookupHash(pin))
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("finding family by PIN: %w", err))
	}

	var matched *Family
	for i := range candidates {
		if VerifyPIN(pin, candidates[i].PINVerifyHash) {
			matched = &candidates[i]
			break
		}
	}
	if matched == nil {
		// Log failed attempts for monitoring, but never tell the caller
		// whether the lookup or the verification rejected them.
		slog.Warn("family login failed: no credential matched")
		return "", nil, apperror.NewUnauthorized("invalid PIN")
	}

	now := time.Now().UTC()
	session := &Session{
		Kind:      KindFamily,
		EntityID:  matched.ID,
		Name:      matched.Name,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.familyTTL),
	}

	token, err := s.persistSession(ctx, session, s.familyTTL)
	if err != nil {
		return "", nil, err
	}

	// Stamp last login (fire-and-forget, non-critical).
	if err := s.families.UpdateLastLogin(ctx, matched.ID); err != nil {
		slog.Warn("failed to update family last login",
			slog.Int64("family_id", matched.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("family logged in", slog.Int64("family_id", matched.ID))

	return token, session, nil
}

// LoginWithGoogle verifies the ID token with the identity provider and
// resolves the director's school by verified email. Provider failures
// surface as a generic credential error per the API contract.
func (s *service) LoginWithGoogle(ctx context.Context, rawIDToken string) (string, *Session, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return "", nil, apperror.NewBadRequest("ID token is required")
	}
	if s.verifier == nil {
		return "", nil, apperror.NewInternal(errors.New("director login is not configured"))
	}

	claims, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		slog.Warn("director login failed: token verification", slog.Any("error", err))
		return "", nil, apperror.NewUnauthorized("invalid credentials")
	}
	if claims.Email == "" || !claims.EmailVerified {
		slog.Warn("director login failed: email not verified")
		return "", nil, apperror.NewUnauthorized("invalid credentials")
	}

	email := strings.ToLower(claims.Email)
	sch, err := s.schools.FindByDirectorEmail(ctx, email)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			slog.Warn("director login failed: no school for email")
			return "", nil, apperror.NewUnauthorized("invalid credentials")
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding school by director email: %w", err))
	}

	now := time.Now().UTC()
	session := &Session{
		Kind:      KindDirector,
		EntityID:  sch.ID,
		Name:      sch.Title,
		Slug:      sch.Slug,
		Email:     email,
		IsAdmin:   s.adminEmails[email],
		IssuedAt:  now,
		ExpiresAt: now.Add(s.directorTTL),
	}

	token, err := s.persistSession(ctx, session, s.directorTTL)
	if err != nil {
		return "", nil, err
	}

	slog.Info("director logged in",
		slog.Int64("school_id", sch.ID),
		slog.String("email", email),
	)

	return token, session, nil
}

// ValidateToken looks up a session by token. Validity is exactly: the
// record exists and its expiry is in the future. Expired records are
// deleted lazily; the delete is idempotent so concurrent callers hitting
// the same expired token are all safely told "invalid".
func (s *service) ValidateToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperror.NewUnauthorized("session expired or invalid")
	}

	key := sessionKeyPrefix + token

	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewUnauthorized("session expired or invalid")
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading session: %w", err))
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("unmarshaling session: %w", err))
	}

	if !session.ExpiresAt.After(time.Now()) {
		// Lazy cleanup. DEL on a missing key is a no-op, so a racing
		// validator deleting first doesn't hurt.
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			slog.Warn("failed to delete expired session", slog.Any("error", err))
		}
		return nil, apperror.NewUnauthorized("session expired or invalid")
	}

	return &session, nil
}

// RevokeToken deletes the session record. Missing tokens are not an error.
func (s *service) RevokeToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.redis.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting session: %w", err))
	}
	return nil
}

// persistSession generates a token, writes the session with the given TTL,
// and reads it back to verify the write actually landed. A failed
// verification is terminal for the login attempt -- no retry.
func (s *service) persistSession(ctx context.Context, session *Session, ttl time.Duration) (string, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("generating session token: %w", err))
	}

	data, err := json.Marshal(session)
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("marshaling session: %w", err))
	}

	key := sessionKeyPrefix + token

	// SET is an upsert: update-if-exists, else insert.
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return "", apperror.NewInternal(fmt.Errorf("storing session: %w", err))
	}

	// Read-back verification.
	stored, err := s.redis.Get(ctx, key).Bytes()
	if err != nil || !bytes.Equal(stored, data) {
		slog.Error("session persist verification failed", slog.Any("error", err))
		return "", apperror.NewInternal(errPersistVerify)
	}

	return token, nil
}

// generateSessionToken creates a cryptographically random hex-encoded token.
func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
