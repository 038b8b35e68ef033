// Package filestore is the durable backend used for the persistent scope
// when no Redis server is configured. Values are kept in a single JSON
// document; with a secret configured the document is sealed with
// nacl/secretbox under a key derived by HKDF.
package filestore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keyLength   = 32
	nonceLength = 24
	hkdfInfo    = "planora session store v1"
	fileMode    = 0o600
	dirMode     = 0o700
)

var _ storage.Backend = (*Store)(nil)

// Store keeps key/value pairs in a file.
type Store struct {
	path   string
	key    *[keyLength]byte // nil when the file is stored in the clear
	lock   sync.Mutex
	random io.Reader
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSecret seals the file with a key derived from secret. An empty secret
// leaves the file unsealed.
func WithSecret(secret string) Option {
	return func(s *Store) {
		if secret == "" {
			return
		}
		s.key = deriveKey(secret)
	}
}

// WithRandom replaces the nonce source (primarily for testing).
func WithRandom(r io.Reader) Option {
	return func(s *Store) {
		s.random = r
	}
}

// WithLogger sets the logger used to report files that had to be reset.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns a Store backed by the file at path. The file is created on the
// first write.
func New(path string, options ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("[filestore.New] path is required")
	}
	s := &Store{
		path:   path,
		random: rand.Reader,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func deriveKey(secret string) *[keyLength]byte {
	var key [keyLength]byte
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		// hkdf only fails once more than 255*HashLen bytes are read
		panic(err)
	}
	return &key
}

// Get fails with ErrSealedStoreOpen or ErrStoreCorrupt when the file cannot
// be read back, e.g. after the secret changed.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", clienterrors.ErrKeyNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, _, err := s.loadForWrite()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, reset, err := s.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok && !reset {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

// loadForWrite is load for callers about to rewrite the file. A file that
// can no longer be opened or decoded is discarded and reported as reset.
func (s *Store) loadForWrite() (map[string]string, bool, error) {
	values, err := s.load()
	if errors.Is(err, clienterrors.ErrSealedStoreOpen) || errors.Is(err, clienterrors.ErrStoreCorrupt) {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("discarding unreadable session file")
		return make(map[string]string), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return values, false, nil
}

func (s *Store) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[filestore.load] read")
	}
	if len(raw) == 0 {
		return make(map[string]string), nil
	}

	if s.key != nil {
		raw, err = s.open(raw)
		if err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrapf(clienterrors.ErrStoreCorrupt, "[filestore.load] decode: %v", err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "[filestore.save] encode")
	}
	if s.key != nil {
		raw, err = s.seal(raw)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return errors.Wrap(err, "[filestore.save] mkdir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".planora-*")
	if err != nil {
		return errors.Wrap(err, "[filestore.save] create temp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore.save] write")
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore.save] chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[filestore.save] close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "[filestore.save] rename")
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	var nonce [nonceLength]byte
	if _, err := io.ReadFull(s.random, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "[filestore.seal] nonce")
	}
	return secretbox.Seal(nonce[:], plain, &nonce, s.key), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceLength+secretbox.Overhead {
		return nil, clienterrors.ErrSealedStoreOpen
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	plain, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, s.key)
	if !ok {
		return nil, clienterrors.ErrSealedStoreOpen
	}
	return plain, nil
}
