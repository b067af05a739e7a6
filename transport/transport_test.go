package transport

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/sardine-ai/go-webclient/browser"
	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type caps bool

func (c caps) SupportsWebrtcTask() bool { return bool(c) }

func TestSelectTasks(t *testing.T) {
	assert.Equal(t, []string{TaskWebRTC, TaskRelayedData}, SelectTasks(caps(true)))
	assert.Equal(t, []string{TaskRelayedData}, SelectTasks(caps(false)))
	assert.Equal(t, []string{TaskRelayedData}, SelectTasks(nil))
}

func TestSelectTasksWithBrowserService(t *testing.T) {
	const safari = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"
	log, _ := test.NewNullLogger()
	svc := browser.NewService(browser.NewStaticEnvironment(safari), log)
	defer svc.Close()
	assert.Equal(t, []string{TaskRelayedData}, SelectTasks(svc))
}

func TestICEConfiguration(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	cfg := model.DefaultConfig()
	got := ICEConfiguration(cfg, false, log)
	assert.Equal(t, webrtc.ICETransportPolicyAll, got.ICETransportPolicy)
	if assert.Len(t, got.ICEServers, 1) {
		assert.Len(t, got.ICEServers[0].URLs, 3)
		assert.Equal(t, "threema-angular", got.ICEServers[0].Username)
		assert.Equal(t, webrtc.ICECredentialTypePassword, got.ICEServers[0].CredentialType)
	}
	assert.Empty(t, hook.AllEntries(), "nothing logged without ICE_DEBUGGING")

	cfg.ICEDebugging = true
	got = ICEConfiguration(cfg, true, log)
	assert.Equal(t, webrtc.ICETransportPolicyRelay, got.ICETransportPolicy)
	assert.Len(t, hook.AllEntries(), 2)
}

func TestICEConfigurationDoesNotShareURLs(t *testing.T) {
	cfg := model.DefaultConfig()
	got := ICEConfiguration(cfg, false, nil)
	got.ICEServers[0].URLs[0] = "stun:evil.example.org"
	assert.Equal(t, "turn:ds-turn.threema.ch:443?transport=udp", cfg.ICEServers[0].URLs[0])
}
