package service

import (
	"context"

	"ipreverse/internal/database"
	"ipreverse/internal/reverse"
	"ipreverse/internal/types"

	"go.uber.org/zap"
)

// Service reverses client addresses and records each one in ip_logs
type Service struct {
	connector database.Connector
	logger    *zap.Logger
}

// NewService creates new service instance
func NewService(connector database.Connector, logger *zap.Logger) *Service {
	return &Service{
		connector: connector,
		logger:    logger,
	}
}

// Reverse computes the reversed form of clientIP, logs the pair through a
// freshly checked-out connection and returns the reversed form. Any error
// is a *Error. The connection, when one was obtained, is always released.
func (s *Service) Reverse(ctx context.Context, clientIP string) (string, error) {
	reversed := reverse.IP(clientIP)

	conn, err := s.connector.Connect(ctx)
	if err != nil {
		return "", &Error{Kind: ConnectionUnavailable, Detail: err}
	}
	if conn == nil {
		return "", &Error{Kind: ConnectionUnavailable}
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			s.logger.Warn("Failed to release database connection",
				zap.String("client_ip", clientIP),
				zap.Error(closeErr))
		}
	}()

	rec := types.IPLog{
		ClientIP:   clientIP,
		ReversedIP: reversed,
	}
	if err := conn.InsertIPLog(ctx, rec); err != nil {
		return "", &Error{Kind: OperationFailure, Detail: err}
	}

	s.logger.Debug("IP logged",
		zap.String("client_ip", clientIP),
		zap.String("reversed_ip", reversed))

	return reversed, nil
}

// Close releases the connector
func (s *Service) Close() error {
	return s.connector.Close()
}
