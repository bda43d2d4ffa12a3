package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"
)

// Defaults used when neither the connection file nor the environment provide
// a value.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5433
	DefaultDatabase = "todo_widget"
	DefaultUser     = "todo_widget"
	DefaultPassword = "todo_widget"
	DefaultSSLMode  = "disable"
)

// MaskedPassword stands in for the password in settings shown to the widget.
// Applying it back means "keep the stored password".
const MaskedPassword = "********"

var sslModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Connection holds the settings of the PostgreSQL server the widget talks to
type Connection struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslmode,omitempty"`
}

// ConnectionPatch is a partial Connection; nil fields keep their value.
type ConnectionPatch struct {
	Host     *string `json:"host,omitempty"`
	Port     *int    `json:"port,omitempty"`
	Database *string `json:"database,omitempty"`
	User     *string `json:"user,omitempty"`
	Password *string `json:"password,omitempty"`
	SSLMode  *string `json:"sslmode,omitempty"`
}

// DefaultConnection builds a Connection from DB_* environment variables,
// falling back to the built-in defaults.
func DefaultConnection() Connection {
	port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		port = DefaultPort
	}
	return Connection{
		Host:     getEnvOrDefault("DB_HOST", DefaultHost),
		Port:     port,
		Database: getEnvOrDefault("DB_NAME", DefaultDatabase),
		User:     getEnvOrDefault("DB_USER", DefaultUser),
		Password: getEnvOrDefault("DB_PASSWORD", DefaultPassword),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", DefaultSSLMode),
	}
}

// Validate reports every problem with the settings at once.
func (c Connection) Validate() error {
	var errs *multierror.Error
	if c.Host == "" {
		errs = multierror.Append(errs, fmt.Errorf("host is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}
	if c.Database == "" {
		errs = multierror.Append(errs, fmt.Errorf("database is required"))
	}
	if c.User == "" {
		errs = multierror.Append(errs, fmt.Errorf("user is required"))
	}
	if c.SSLMode != "" && !sslModes[c.SSLMode] {
		errs = multierror.Append(errs, fmt.Errorf("unknown sslmode %q", c.SSLMode))
	}
	return errs.ErrorOrNil()
}

// DSN returns a lib/pq connection URL. A zero connectTimeout waits forever.
func (c Connection) DSN(connectTimeout time.Duration) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	if connectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(connectTimeout/time.Second)))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Masked returns a copy safe to show or log.
func (c Connection) Masked() Connection {
	if c.Password != "" {
		c.Password = MaskedPassword
	}
	return c
}

// String identifies the server without the password.
func (c Connection) String() string {
	return fmt.Sprintf("%s@%s/%s", c.User, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database)
}

// Apply returns c with the fields set in p replaced. A masked password is
// ignored so a form loaded from Masked can be submitted unchanged.
func (c Connection) Apply(p ConnectionPatch) Connection {
	if p.Host != nil {
		c.Host = *p.Host
	}
	if p.Port != nil {
		c.Port = *p.Port
	}
	if p.Database != nil {
		c.Database = *p.Database
	}
	if p.User != nil {
		c.User = *p.User
	}
	if p.Password != nil && *p.Password != MaskedPassword {
		c.Password = *p.Password
	}
	if p.SSLMode != nil {
		c.SSLMode = *p.SSLMode
	}
	return c
}

// ConnectionStore owns the current connection settings and their file. It
// is safe for concurrent use.
type ConnectionStore struct {
	path    string
	logger  *logrus.Logger
	mu      sync.Mutex
	current *Connection
}

// NewConnectionStore creates a store persisting to path.
func NewConnectionStore(path string, logger *logrus.Logger) *ConnectionStore {
	return &ConnectionStore{path: path, logger: logger}
}

// Path returns the location of the connection file.
func (s *ConnectionStore) Path() string {
	return s.path
}

// Current returns the cached settings, loading them from the file or the
// environment on first use. A broken file is logged and ignored.
func (s *ConnectionStore) Current() Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *ConnectionStore) currentLocked() Connection {
	if s.current != nil {
		return *s.current
	}

	conn, err := s.load()
	if err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("Ignoring unreadable connection file, using defaults")
	}
	if conn == nil {
		d := DefaultConnection()
		conn = &d
	}
	s.current = conn
	return *conn
}

// Save writes c to the connection file and makes it current. The cached
// settings only change when the write succeeds.
func (s *ConnectionStore) Save(c Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(c)
}

// SetCurrent makes c current without writing the file.
func (s *ConnectionStore) SetCurrent(c Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &c
}

// Merge applies p to the current settings and saves the result.
func (s *ConnectionStore) Merge(p ConnectionPatch) (Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.currentLocked().Apply(p)
	if err := s.save(merged); err != nil {
		return Connection{}, err
	}
	return merged, nil
}

// load returns nil, nil when the file does not exist.
func (s *ConnectionStore) load() (*Connection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read connection file: %w", err)
	}

	var conn Connection
	if err := json.Unmarshal(data, &conn); err != nil {
		return nil, fmt.Errorf("failed to parse connection file: %w", err)
	}
	return &conn, nil
}

func (s *ConnectionStore) save(c Connection) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode connection settings: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write connection file: %w", err)
	}

	s.current = &c
	s.logger.WithField("path", s.path).Debug("Saved connection settings")
	return nil
}
