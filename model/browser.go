package model

// BrowserName identifies a detected browser family.
type BrowserName string

const (
	BrowserChrome           BrowserName = "chrome"
	BrowserFirefox          BrowserName = "firefox"
	BrowserInternetExplorer BrowserName = "ie"
	BrowserEdge             BrowserName = "edge"
	BrowserOpera            BrowserName = "opera"
	BrowserSafari           BrowserName = "safari"
)

// DisplayName returns the human readable browser name.
func (n BrowserName) DisplayName() string {
	switch n {
	case BrowserChrome:
		return "Chrome"
	case BrowserFirefox:
		return "Firefox"
	case BrowserInternetExplorer:
		return "Internet Explorer"
	case BrowserEdge:
		return "Edge"
	case BrowserOpera:
		return "Opera"
	case BrowserSafari:
		return "Safari"
	default:
		return ""
	}
}

// BrowserInfo is the result of user agent detection. At most one of the
// flags is set. Version is nil when it could not be parsed.
type BrowserInfo struct {
	Chrome   bool        `json:"chrome"`
	Firefox  bool        `json:"firefox"`
	IE       bool        `json:"ie"`
	Edge     bool        `json:"edge"`
	Opera    bool        `json:"opera"`
	Safari   bool        `json:"safari"`
	Name     BrowserName `json:"name,omitempty"`
	TextInfo string      `json:"textInfo,omitempty"`
	Version  *int        `json:"version,omitempty"`
}
