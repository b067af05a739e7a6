package model

// ICEServer describes a STUN/TURN endpoint handed to the WebRTC stack.
type ICEServer struct {
	URLs       []string `yaml:"urls" json:"urls"`                                 // STUN/TURN URLs of the server
	Username   string   `yaml:"username,omitempty" json:"username,omitempty"`     // TURN username
	Credential string   `yaml:"credential,omitempty" json:"credential,omitempty"` // TURN credential
}

// Config is the static web client configuration. It is a flat mapping of
// setting names to literal values and is never mutated once loaded.
type Config struct {
	// General
	SelfHosted              bool   `yaml:"SELF_HOSTED" json:"SELF_HOSTED"`
	VersionMountain         string `yaml:"VERSION_MOUNTAIN" json:"VERSION_MOUNTAIN"`
	VersionMountainURL      string `yaml:"VERSION_MOUNTAIN_URL" json:"VERSION_MOUNTAIN_URL"`
	VersionMountainImageURL string `yaml:"VERSION_MOUNTAIN_IMAGE_URL" json:"VERSION_MOUNTAIN_IMAGE_URL"`
	VersionMountainHeight   int    `yaml:"VERSION_MOUNTAIN_HEIGHT" json:"VERSION_MOUNTAIN_HEIGHT"`
	PrevProtocolLastVersion string `yaml:"PREV_PROTOCOL_LAST_VERSION" json:"PREV_PROTOCOL_LAST_VERSION"`
	GitBranch               string `yaml:"GIT_BRANCH" json:"GIT_BRANCH"`

	// SaltyRTC
	SaltyRTCHost       string `yaml:"SALTYRTC_HOST" json:"SALTYRTC_HOST,omitempty"` // Empty means derive from prefix and suffix
	SaltyRTCHostPrefix string `yaml:"SALTYRTC_HOST_PREFIX" json:"SALTYRTC_HOST_PREFIX"`
	SaltyRTCHostSuffix string `yaml:"SALTYRTC_HOST_SUFFIX" json:"SALTYRTC_HOST_SUFFIX"`
	SaltyRTCPort       int    `yaml:"SALTYRTC_PORT" json:"SALTYRTC_PORT"`
	SaltyRTCServerKey  string `yaml:"SALTYRTC_SERVER_KEY" json:"SALTYRTC_SERVER_KEY"` // Hex encoded permanent key of the relay

	// ICE
	ICEServers []ICEServer `yaml:"ICE_SERVERS" json:"ICE_SERVERS"`

	// Push
	PushURL string `yaml:"PUSH_URL" json:"PUSH_URL"`

	// Features
	ProfileEditing bool `yaml:"PROFILE_EDITING" json:"PROFILE_EDITING"`

	// Debugging options
	Debug            bool `yaml:"DEBUG" json:"DEBUG"`
	MsgDebugging     bool `yaml:"MSG_DEBUGGING" json:"MSG_DEBUGGING"`         // Log all incoming and outgoing messages
	MsgpackDebugging bool `yaml:"MSGPACK_DEBUGGING" json:"MSGPACK_DEBUGGING"` // Log URLs to the msgpack visualizer
	ICEDebugging     bool `yaml:"ICE_DEBUGGING" json:"ICE_DEBUGGING"`
}

// DefaultConfig returns the settings of the hosted web client.
func DefaultConfig() Config {
	return Config{
		SelfHosted:              false,
		VersionMountain:         "Grosser Mythen",
		VersionMountainURL:      "https://de.wikipedia.org/wiki/Mythen",
		VersionMountainImageURL: "https://commons.wikimedia.org/wiki/File:Die_Mythen.jpg",
		VersionMountainHeight:   1898,
		PrevProtocolLastVersion: "1.8.2",
		GitBranch:               "master",

		SaltyRTCHost:       "",
		SaltyRTCHostPrefix: "saltyrtc-",
		SaltyRTCHostSuffix: ".threema.ch",
		SaltyRTCPort:       443,
		SaltyRTCServerKey:  "b1337fc8402f7db8ea639e05ed05d65463e24809792f91eca29e88101b4a2171",

		ICEServers: []ICEServer{{
			URLs: []string{
				"turn:ds-turn.threema.ch:443?transport=udp",
				"turn:ds-turn.threema.ch:443?transport=tcp",
				"turns:ds-turn.threema.ch:443",
			},
			Username:   "threema-angular",
			Credential: "Uv0LcCq3kyx6EiRwQW5jVigkhzbp70CjN2CJqzmRxG3UGIdJHSJV6tpo7Gj7YnGB",
		}},

		PushURL: "https://push-web.threema.ch/push",
	}
}

// Clone returns a deep copy of the configuration so callers never share
// the backing arrays of the ICE server list.
func (c Config) Clone() Config {
	out := c
	if c.ICEServers != nil {
		out.ICEServers = make([]ICEServer, len(c.ICEServers))
		for i, server := range c.ICEServers {
			server.URLs = append([]string(nil), server.URLs...)
			out.ICEServers[i] = server
		}
	}
	return out
}
