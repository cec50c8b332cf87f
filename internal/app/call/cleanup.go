package call

import "github.com/rs/zerolog"

// cleanup is the only way a session is released. It may be called more
// than once and from any state; every step runs even if an earlier one
// panics.
func (m *Manager) cleanup(s *Session) {
	if s == nil || s.released {
		return
	}
	s.released = true
	logger := m.logger.With().Str("sid", s.ID).Logger()

	safely(logger, "cancel timeout", s.cancelTimeout)
	safely(logger, "stop candidate buffer", s.candidates.Stop)
	safely(logger, "stop local tracks", func() {
		if s.localStream != nil {
			s.localStream.StopAll()
		}
	})
	safely(logger, "stop remote tracks", func() {
		if s.remoteStream != nil {
			s.remoteStream.StopAll()
		}
	})
	safely(logger, "close peer", func() {
		if s.peer == nil || s.peer.IsClosed() {
			return
		}
		if err := s.peer.Close(); err != nil {
			logger.Warn().Err(err).Msg("close peer")
		}
	})

	if m.sess == s {
		m.sess = nil
	}
	safely(logger, "notify idle", func() { m.publish(nil) })
	logger.Info().Str("state", s.State.String()).Msg("call session released")
}

func safely(logger zerolog.Logger, step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("step", step).Msg("cleanup step panicked")
		}
	}()
	fn()
}
