package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaEdgeWindows   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.2478.51"
	uaChromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0"
	uaSafariMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
	uaChromeAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"
	uaSafariIPad    = "Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
	uaSafariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
)

func TestClassifyBrowserPriority(t *testing.T) {
	// Edge agents also contain Chrome/ and Safari/; Chrome agents also
	// contain Safari/. The more specific token must win.
	assert.Equal(t, "Edge", Classify(uaEdgeWindows).Browser)
	assert.Equal(t, "Chrome", Classify(uaChromeWindows).Browser)
	assert.Equal(t, "Firefox", Classify(uaFirefoxLinux).Browser)
	assert.Equal(t, "Safari", Classify(uaSafariMac).Browser)
}

func TestClassifyOS(t *testing.T) {
	assert.Equal(t, "Windows 10/11", Classify(uaEdgeWindows).OS)
	assert.Equal(t, "Windows", Classify("Mozilla/5.0 (Windows NT 6.1; Win64; x64) Firefox/115.0").OS)
	assert.Equal(t, "Linux", Classify(uaFirefoxLinux).OS)
	assert.Equal(t, "macOS", Classify(uaSafariMac).OS)
	assert.Equal(t, "Android", Classify(uaChromeAndroid).OS)
	assert.Equal(t, "iOS", Classify(uaSafariIPhone).OS)
}

func TestClassifyDeviceClass(t *testing.T) {
	assert.Equal(t, "desktop", Classify(uaChromeWindows).DeviceClass)
	assert.Equal(t, "mobile", Classify(uaChromeAndroid).DeviceClass)
	assert.Equal(t, "tablet", Classify(uaSafariIPad).DeviceClass)
	// iPhone agents carry "Mobile"; mobile outranks tablet.
	assert.Equal(t, "mobile", Classify(uaSafariIPhone).DeviceClass)
}

func TestClassifyIsTotal(t *testing.T) {
	info := Classify("")
	assert.Equal(t, Unknown, info.Browser)
	assert.Equal(t, Unknown, info.OS)
	assert.Equal(t, "desktop", info.DeviceClass)

	info = Classify("curl/8.5.0")
	assert.Equal(t, Unknown, info.Browser)
	assert.Equal(t, "desktop", info.DeviceClass)
}
