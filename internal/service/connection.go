package service

import (
	"context"

	"github.com/Kerhoff/TodoWidget/internal/config"
	"github.com/Kerhoff/TodoWidget/internal/database"
	"github.com/Kerhoff/TodoWidget/internal/events"
)

// TestConnection probes cfg without touching the live pool.
func (s *Service) TestConnection(ctx context.Context, cfg config.Connection) database.Result {
	result := s.conn.TestConnection(ctx, cfg)
	s.logger.WithField("target", cfg.String()).Infof("Connection test: %s", result.Message)
	return result
}

// ApplyConnectionConfig persists cfg and swaps the live pool to it. On
// success every subscriber is told to reload.
func (s *Service) ApplyConnectionConfig(ctx context.Context, cfg config.Connection) database.Result {
	result := s.conn.Reconnect(ctx, cfg)
	s.metrics.Reconnected(result.Success)
	s.metrics.SetConnected(result.Success)

	if !result.Success {
		s.logger.WithField("target", cfg.String()).Warnf("Reconnect failed: %s", result.Message)
		return result
	}

	s.logger.WithField("target", cfg.String()).Info("Reconnected to database")
	if s.publisher != nil {
		s.publisher.Publish(events.DBReconnected)
	}
	return result
}

// CurrentConnectionConfig returns the settings in effect.
func (s *Service) CurrentConnectionConfig() config.Connection {
	return s.conn.CurrentConfig()
}

// UpdateConnectionSettings merges p into the stored settings without
// reconnecting.
func (s *Service) UpdateConnectionSettings(p config.ConnectionPatch) error {
	return s.conn.Configure(p)
}

// CheckConnection reports whether the live pool answers a probe.
func (s *Service) CheckConnection(ctx context.Context) bool {
	connected := s.conn.IsConnected(ctx)
	s.metrics.SetConnected(connected)
	return connected
}
