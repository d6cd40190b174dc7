// Package useragent maps raw user-agent strings to a coarse
// browser / operating system / device classification.
package useragent

import (
	"strings"

	"lumenlearn/api/models"
)

// Unknown is returned when no browser or OS pattern matches.
const Unknown = "Unknown"

// Substring order matters: Chromium-family agents also contain "Chrome/"
// and "Safari/", so the more specific tokens must be checked first.
var browserPatterns = []struct {
	token string
	name  string
}{
	{"Edg/", "Edge"},
	{"OPR/", "Opera"},
	{"SamsungBrowser/", "Samsung Internet"},
	{"Chrome/", "Chrome"},
	{"Firefox/", "Firefox"},
	{"Safari/", "Safari"},
}

var osPatterns = []struct {
	token string
	name  string
}{
	{"Windows NT 10.0", "Windows 10/11"},
	{"Windows", "Windows"},
	{"Android", "Android"},
	{"iPhone", "iOS"},
	{"iPad", "iPadOS"},
	{"Mac OS X", "macOS"},
	{"CrOS", "ChromeOS"},
	{"Linux", "Linux"},
}

// Classify derives browser, OS and device class from a user-agent string.
// It is total: any input (including empty) yields a usable classification,
// because this is also the fallback identity when network resolution fails.
func Classify(ua string) models.UAInfo {
	info := models.UAInfo{
		Browser:     Unknown,
		OS:          Unknown,
		DeviceClass: "desktop",
	}

	for _, p := range browserPatterns {
		if strings.Contains(ua, p.token) {
			info.Browser = p.name
			break
		}
	}

	for _, p := range osPatterns {
		if strings.Contains(ua, p.token) {
			info.OS = p.name
			break
		}
	}

	// Mobile wins over tablet: iPads and Android tablets often carry both
	// markers, and "Mobile" is the stronger signal.
	switch {
	case strings.Contains(ua, "Mobi") || strings.Contains(ua, "iPhone"):
		info.DeviceClass = "mobile"
	case strings.Contains(ua, "Tablet") || strings.Contains(ua, "iPad"):
		info.DeviceClass = "tablet"
	}

	return info
}
