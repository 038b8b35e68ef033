package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/planora-client/account"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Storage keys shared with every other client of the account service.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// lookupOrder is the order scopes are searched when loading. Save keeps at
// most one scope populated so the order only matters for stale data.
var lookupOrder = []storage.Scope{storage.Ephemeral, storage.Persistent}

// Session is the credential pair currently held by the store.
type Session struct {
	AccessToken  string
	RefreshToken string
	Scope        storage.Scope
}

// Token returns the session as an OAuth2 bearer token. Expiry is taken from
// the access token's exp claim when it can be decoded.
func (s *Session) Token() *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
	if claims, err := ParseClaims(s.AccessToken); err == nil && claims.ExpiresAt != nil {
		t.Expiry = claims.ExpiresAt.Time
	}
	return t
}

// Claims are the access token claims issued by the account service. They are
// decoded without signature verification and are for display only.
type Claims struct {
	jwt.RegisteredClaims
	UserID    any    `json:"user_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
}

// User returns the user id claim as text.
func (c *Claims) User() string {
	if c.UserID == nil {
		return c.Subject
	}
	return fmt.Sprint(c.UserID)
}

// ParseClaims decodes an access token without verifying it.
func ParseClaims(accessToken string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, errors.Wrap(err, "[session.ParseClaims]")
	}
	return claims, nil
}

// Store owns the session credentials. Only the login and logout paths write
// to it; the request gateway reads from it.
type Store struct {
	kv      storage.KeyValue
	logger  zerolog.Logger
	nowTime func() time.Time
}

// StoreOption modifies a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for storage events.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// NewStore creates a Store on top of a scope-aware key-value store.
func NewStore(kv storage.KeyValue, options ...StoreOption) (*Store, error) {
	if kv == nil {
		return nil, errors.New("[NewStore] key-value storage is required")
	}
	s := &Store{
		kv:      kv,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Save replaces any existing session with creds under scope. The other scope
// is emptied first so exactly one pair exists afterwards.
func (s *Store) Save(ctx context.Context, creds account.Credentials, scope storage.Scope) error {
	if !creds.Complete() {
		return errors.Wrap(clienterrors.ErrNoSession, "[Store.Save] incomplete credentials")
	}
	if scope != storage.Ephemeral && scope != storage.Persistent {
		return errors.Wrapf(clienterrors.ErrUnknownScope, "[Store.Save] scope %q", scope)
	}
	if err := s.Clear(ctx); err != nil {
		return errors.Wrap(err, "[Store.Save] clear")
	}
	if err := s.kv.Set(ctx, AccessTokenKey, creds.AccessToken, scope); err != nil {
		return errors.Wrap(err, "[Store.Save] access token")
	}
	if err := s.kv.Set(ctx, RefreshTokenKey, creds.RefreshToken, scope); err != nil {
		_ = s.kv.Remove(ctx, AccessTokenKey, scope)
		return errors.Wrap(err, "[Store.Save] refresh token")
	}
	s.logger.Info().Str("scope", string(scope)).Msg("session stored")
	return nil
}

// Load returns the current session or errors.ErrNoSession. A scope whose
// backend can no longer be read counts as empty.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	for _, scope := range lookupOrder {
		access, err := s.kv.Get(ctx, AccessTokenKey, scope)
		if clienterrors.Is(err, clienterrors.ErrKeyNotFound) {
			continue
		}
		if clienterrors.Is(err, clienterrors.ErrSealedStoreOpen) || clienterrors.Is(err, clienterrors.ErrStoreCorrupt) {
			s.logger.Warn().Err(err).Str("scope", string(scope)).Msg("ignoring unreadable session")
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "[Store.Load] %s access token", scope)
		}
		refresh, err := s.kv.Get(ctx, RefreshTokenKey, scope)
		if err != nil && !clienterrors.Is(err, clienterrors.ErrKeyNotFound) {
			return nil, errors.Wrapf(err, "[Store.Load] %s refresh token", scope)
		}
		return &Session{AccessToken: access, RefreshToken: refresh, Scope: scope}, nil
	}
	return nil, clienterrors.ErrNoSession
}

// AccessToken returns the stored access token, or "" when there is none.
// Storage failures are logged and treated as no token so the call proceeds
// unauthenticated.
func (s *Store) AccessToken(ctx context.Context) string {
	sess, err := s.Load(ctx)
	if err != nil {
		if !clienterrors.Is(err, clienterrors.ErrNoSession) {
			s.logger.Warn().Err(err).Msg("session lookup failed")
		}
		return ""
	}
	return sess.AccessToken
}

// Clear removes both keys from both scopes.
func (s *Store) Clear(ctx context.Context) error {
	for _, scope := range lookupOrder {
		for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
			if err := s.kv.Remove(ctx, key, scope); err != nil {
				return errors.Wrapf(err, "[Store.Clear] %s %s", scope, key)
			}
		}
	}
	return nil
}

// Expired reports whether the session's access token carries an exp claim
// in the past. Tokens without a decodable expiry are never reported expired.
func (s *Store) Expired(sess *Session) bool {
	tok := sess.Token()
	return !tok.Expiry.IsZero() && !tok.Expiry.After(s.nowTime())
}
