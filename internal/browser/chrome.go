package browser

import (
	"os/exec"
	"strings"

	"github.com/jmylchreest/promoscrape/internal/logger"
)

// Common Chrome/Chromium binary names and install locations.
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// FindChromePath returns the first Chrome binary found on PATH or in a
// well-known location, or "" to let chromedp use its own lookup.
func FindChromePath() string {
	for _, name := range chromeBinaryNames {
		path, err := lookPath(name)
		if err != nil {
			continue
		}
		if strings.ContainsAny(name, `/\`) {
			logger.Debug("found Chrome binary", "path", path)
		} else {
			logger.Debug("found Chrome binary", "name", name, "path", path)
		}
		return path
	}
	logger.Warn("no Chrome binary found, relying on chromedp default lookup")
	return ""
}
