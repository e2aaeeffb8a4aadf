package credentials

import (
	"os"
	"path/filepath"
	"sync"

	"testforge/pkg/apperr"
	"testforge/pkg/logg"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	storeName = "CredentialStore"

	configDirName   = "testforge"
	credentialsFile = "credentials.env"
)

// Store keeps secrets in a dotenv file under the user config directory.
// Configuration resolution consults it for values absent from the
// environment; the generation pipeline never reads it directly.
type Store struct {
	logger *zap.Logger
	path   string

	mu     sync.Mutex
	values map[string]string
}

// DefaultPath returns the dotenv file location under the user config dir.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(base, configDirName, credentialsFile), nil
}

// NewStore opens the store at the default path. It is constructed before the
// logging stack because configuration resolution consults it, so it starts
// with a no-op logger.
func NewStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, apperr.WrapWithReason("NewStore", apperr.CodeConfig, err, "no_user_config_dir")
	}

	return NewStoreAt(zap.NewNop(), path)
}

// NewStoreAt opens the store backed by the given dotenv file. A missing file
// is an empty store; it is created on the first Set.
func NewStoreAt(logger *zap.Logger, path string) (*Store, error) {
	const op = "NewStoreAt"

	s := &Store{
		logger: logger.With(zap.String(logg.Layer, storeName)),
		path:   path,
		values: make(map[string]string),
	}

	loaded, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, apperr.Wrap(op, apperr.CodeConfig, err, map[string]any{
				apperr.MetaReason: "credentials_file_unreadable",
			})
		}

		return s, nil
	}

	s.values = loaded
	s.logger.Debug("Credentials loaded", zap.String("path", path), zap.Int("keys", len(loaded)))

	return s, nil
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok || value == "" {
		return "", false
	}

	return value, true
}

// Set stores the value and rewrites the backing file.
func (s *Store) Set(key, value string) error {
	const op = "Set"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return apperr.WrapWithReason(op, apperr.CodeConfig, err, "credentials_dir_unwritable")
	}

	if err := godotenv.Write(s.values, s.path); err != nil {
		return apperr.WrapWithReason(op, apperr.CodeConfig, err, "credentials_file_unwritable")
	}

	s.logger.Info("Credential stored", zap.String("key", key))

	return nil
}
