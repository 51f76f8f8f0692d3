package mysqlconn

import (
	"time"

	"go.uber.org/zap"
)

// Config is the construction-time configuration for a Session (spec §6
// "Configuration" / §3 "Lifecycle"). Connection pooling and multi-host
// loading are explicit non-goals of the core; Config describes exactly
// one connection.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Encoding, if non-empty, is sent as "SET NAMES '<encoding>'" right
	// after the initial "USE <database>".
	Encoding string

	// DialTimeout bounds the initial TCP connect. Zero means the
	// teacher-style default of 10s.
	DialTimeout time.Duration

	// Logger receives structured trace events for every send/receive
	// point the teacher's Debug-gated log.Printf calls annotate. Nil
	// defaults to a no-op logger.
	Logger *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 3306
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
