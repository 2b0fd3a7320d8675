package dbus

import "fmt"

// EmitNotificationClosed tells the sender of id why its notification went away.
func (s *Server) EmitNotificationClosed(id uint32, reason CloseReason) error {
	conn := s.connection()
	if conn == nil {
		return ErrNotConnected
	}

	if err := conn.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason)); err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked tells the sender of id that the toast's action was used.
func (s *Server) EmitActionInvoked(id uint32, actionKey string) error {
	conn := s.connection()
	if conn == nil {
		return ErrNotConnected
	}

	if err := conn.Emit(DBusPath, DBusInterface+".ActionInvoked", id, actionKey); err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}
