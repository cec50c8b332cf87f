package rtc

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/dkeye/voicecall/internal/config"
	"github.com/dkeye/voicecall/internal/core"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// WebRTCConfig converts configured ICE servers. An empty list falls back to
// DefaultWebRTCConfig.
func WebRTCConfig(servers []config.ICEServer) webrtc.Configuration {
	if len(servers) == 0 {
		return DefaultWebRTCConfig()
	}
	out := webrtc.Configuration{ICEServers: make([]webrtc.ICEServer, 0, len(servers))}
	for _, s := range servers {
		out.ICEServers = append(out.ICEServers, webrtc.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return out
}

// Factory creates Peers sharing one configuration.
type Factory struct {
	cfg    webrtc.Configuration
	logger zerolog.Logger
}

var _ core.PeerFactory = (*Factory)(nil)

func NewFactory(cfg webrtc.Configuration, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

func (f *Factory) NewPeer(sid string, h core.PeerHandlers) (core.PeerConnection, error) {
	p, err := NewPeer(f.cfg, sid, h, f.logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}
