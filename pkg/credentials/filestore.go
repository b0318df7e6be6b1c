package credentials

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	basicScheme = "basic"
	tokenScheme = "token"

	sessionFileMode = 0o600
)

// sessionRecord is the on-disk shape of the single well-known session slot.
type sessionRecord struct {
	Scheme       string `json:"scheme"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
	Email        string `json:"email,omitempty"`
}

// FileStore is a Store that survives process restarts by persisting the
// credential to a single session file. Writes go through a temp file and a
// rename so a crash never leaves a torn record behind.
type FileStore struct {
	lock       sync.RWMutex
	path       string
	credential Credential
}

// DefaultSessionPath returns ~/.weaver/session.json.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".weaver", "session.json")
}

// NewFileStore loads any persisted session from path. A file that cannot be
// parsed is discarded rather than trusted.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path}

	credential, err := readSessionFile(path)
	if err != nil {
		log.Warnf("could not load saved session: %s", err)

		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			log.Error(removeErr)
		}

		return s
	}

	s.credential = credential

	return s
}

func (s *FileStore) Current() Credential {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.credential
}

func (s *FileStore) Set(credential Credential) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := writeSessionFile(s.path, credential)
	if err != nil {
		return err
	}

	s.credential = credential

	return nil
}

func (s *FileStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "clearing session file")
	}

	s.credential = nil

	return nil
}

func readSessionFile(path string) (Credential, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "reading session file")
	}

	var record sessionRecord

	err = json.Unmarshal(fileBytes, &record)
	if err != nil {
		return nil, errors.Wrap(err, "parsing session file")
	}

	switch record.Scheme {
	case basicScheme:
		return NewBasic(record.Username, record.Password), nil
	case tokenScheme:
		var expiresAt time.Time
		if record.ExpiresAt != 0 {
			expiresAt = time.Unix(record.ExpiresAt, 0)
		}

		return NewToken(record.AccessToken, record.RefreshToken, record.Email, expiresAt), nil
	default:
		return nil, errors.Errorf("unknown credential scheme %q", record.Scheme)
	}
}

func writeSessionFile(path string, credential Credential) error {
	var record sessionRecord

	switch c := credential.(type) {
	case *Basic:
		record = sessionRecord{
			Scheme:   basicScheme,
			Username: c.Username,
			Password: c.Password,
		}
	case *Token:
		record = sessionRecord{
			Scheme:       tokenScheme,
			AccessToken:  c.AccessToken,
			RefreshToken: c.RefreshToken,
			Email:        c.Email,
		}
		if !c.ExpiresAt.IsZero() {
			record.ExpiresAt = c.ExpiresAt.Unix()
		}
	default:
		return errors.Errorf("unsupported credential type %T", credential)
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encoding session record")
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return errors.Wrap(err, "creating session dir")
	}

	tmpPath := path + ".tmp"

	err = os.WriteFile(tmpPath, recordBytes, sessionFileMode)
	if err != nil {
		return errors.Wrap(err, "writing session file")
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		return errors.Wrap(err, "committing session file")
	}

	return nil
}
