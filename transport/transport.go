// Package transport chooses the SaltyRTC tasks offered to the phone and
// builds the WebRTC configuration for the peer connection.
package transport

import (
	"github.com/pion/webrtc/v4"
	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
)

// SaltyRTC task protocol names, in order of preference.
const (
	TaskWebRTC      = "v1.webrtc.tasks.saltyrtc.org"
	TaskRelayedData = "v0.relayed-data.tasks.saltyrtc.org"
)

// Capabilities is the part of the browser service task selection needs.
type Capabilities interface {
	SupportsWebrtcTask() bool
}

// SelectTasks returns the tasks to offer. Browsers without a usable WebRTC
// stack only get the relayed data task.
func SelectTasks(caps Capabilities) []string {
	if caps != nil && caps.SupportsWebrtcTask() {
		return []string{TaskWebRTC, TaskRelayedData}
	}
	return []string{TaskRelayedData}
}

// ICEConfiguration converts the configured ICE servers into a peer
// connection configuration. relayOnly restricts candidates to TURN.
func ICEConfiguration(cfg model.Config, relayOnly bool, log logrus.FieldLogger) webrtc.Configuration {
	if log == nil {
		log = logrus.StandardLogger()
	}
	iceServers := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, server := range cfg.ICEServers {
		iceServer := webrtc.ICEServer{
			URLs:       append([]string(nil), server.URLs...),
			Username:   server.Username,
			Credential: server.Credential,
		}
		if server.Credential != "" {
			iceServer.CredentialType = webrtc.ICECredentialTypePassword
		}
		if cfg.ICEDebugging {
			log.WithFields(logrus.Fields{
				"urls":     server.URLs,
				"username": server.Username,
			}).Debug("Using ICE server")
		}
		iceServers = append(iceServers, iceServer)
	}

	policy := webrtc.ICETransportPolicyAll
	if relayOnly {
		policy = webrtc.ICETransportPolicyRelay
	}
	if cfg.ICEDebugging {
		log.WithField("policy", policy.String()).Debug("ICE transport policy")
	}

	return webrtc.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
		BundlePolicy:       webrtc.BundlePolicyMaxBundle,
		RTCPMuxPolicy:      webrtc.RTCPMuxPolicyRequire,
	}
}
