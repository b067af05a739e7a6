package browser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sardine-ai/go-webclient/model"
)

// versionToken is the user agent token carrying the version of a browser.
var versionToken = map[model.BrowserName]string{
	model.BrowserChrome:           "chrome",
	model.BrowserFirefox:          "firefox",
	model.BrowserInternetExplorer: "msie",
	model.BrowserEdge:             "edge",
	model.BrowserOpera:            "opr",
	model.BrowserSafari:           "version",
}

var (
	versionPatterns = func() map[model.BrowserName]*regexp.Regexp {
		patterns := make(map[model.BrowserName]*regexp.Regexp, len(versionToken))
		for name, token := range versionToken {
			patterns[name] = regexp.MustCompile("(" + token + ")( |/)([0-9]+)")
		}
		return patterns
	}()
	// IE 11 and compatibility views only announce "rv:<major>".
	rvPattern = regexp.MustCompile(`rv:([0-9]+)`)
)

// Detect identifies the browser from a user agent string. Unknown agents
// yield a BrowserInfo with no flag set.
func Detect(userAgent string) model.BrowserInfo {
	ua := strings.ToLower(userAgent)
	has := func(token string) bool { return strings.Contains(ua, token) }

	info := model.BrowserInfo{
		Chrome:  has("webkit") && has("chrome") && !has("edge"),
		Firefox: has("mozilla") && has("firefox"),
		IE:      (has("msie") || has("trident")) && !has("edge"),
		Edge:    has("edge"),
		Safari:  has("safari") && has("applewebkit") && !has("chrome"),
		Opera:   has("mozilla") && has("applewebkit") && has("chrome") && has("safari") && has("opr"),
	}
	if info.Opera && info.Chrome {
		info.Chrome = false
	}

	name := resolveName(info)
	if name == "" {
		return info
	}

	detected := model.BrowserInfo{Name: name, Version: parseVersion(ua, name)}
	switch name {
	case model.BrowserChrome:
		detected.Chrome = true
	case model.BrowserFirefox:
		detected.Firefox = true
	case model.BrowserInternetExplorer:
		detected.IE = true
	case model.BrowserEdge:
		detected.Edge = true
	case model.BrowserSafari:
		detected.Safari = true
	case model.BrowserOpera:
		detected.Opera = true
	}
	detected.TextInfo = name.DisplayName()
	if detected.Version != nil {
		detected.TextInfo += " " + strconv.Itoa(*detected.Version)
	}
	return detected
}

// resolveName picks the browser name; later matches take precedence.
func resolveName(info model.BrowserInfo) model.BrowserName {
	var name model.BrowserName
	if info.Chrome {
		name = model.BrowserChrome
	}
	if info.Firefox {
		name = model.BrowserFirefox
	}
	if info.IE {
		name = model.BrowserInternetExplorer
	}
	if info.Edge {
		name = model.BrowserEdge
	}
	if info.Safari {
		name = model.BrowserSafari
	}
	if info.Opera {
		name = model.BrowserOpera
	}
	return name
}

func parseVersion(ua string, name model.BrowserName) *int {
	raw := ""
	if match := versionPatterns[name].FindStringSubmatch(ua); match != nil {
		raw = match[3]
	} else if match := rvPattern.FindStringSubmatch(ua); match != nil {
		raw = match[1]
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &version
}
