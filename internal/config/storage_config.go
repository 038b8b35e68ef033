package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	keyStorageKind    = "storage.backend"
	keyStorageFile    = "storage.file_path"
	keyStorageSecret  = "storage.secret"
	keyStorageProfile = "storage.profile"
	keyRedisAddr      = "redis.addr"
	keyRedisPassword  = "redis.password"
	keyRedisDB        = "redis.db"
)

// Durable session backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetSessionFile() string
	GetStorageSecret() string
	GetStorageProfile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Storage struct {
	v *viper.Viper
}

var _ StorageConfig = Storage{}

// GetStorageBackend returns file, redis or memory. Unknown values are
// returned as given so the caller can report them.
func (s Storage) GetStorageBackend() string {
	return strings.ToLower(strings.TrimSpace(s.v.GetString(keyStorageKind)))
}

// GetSessionFile expands a leading "~" to the home directory.
func (s Storage) GetSessionFile() string {
	return expandHome(s.v.GetString(keyStorageFile))
}

// GetStorageSecret is the passphrase sealing the session file, "" for none.
func (s Storage) GetStorageSecret() string {
	return s.v.GetString(keyStorageSecret)
}

// GetStorageProfile separates sessions of different accounts sharing a backend.
func (s Storage) GetStorageProfile() string {
	return s.v.GetString(keyStorageProfile)
}

func (s Storage) GetRedisAddr() string {
	return s.v.GetString(keyRedisAddr)
}

func (s Storage) GetRedisPassword() string {
	return s.v.GetString(keyRedisPassword)
}

func (s Storage) GetRedisDB() int {
	return s.v.GetInt(keyRedisDB)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".planora", "session.json")
	}
	return filepath.Join(home, ".planora", "session.json")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
