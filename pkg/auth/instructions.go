package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCookieExtractionGuide explains how to copy the session cookie from
// a logged-in browser
func ShowCookieExtractionGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	lines := []string{
		rule,
		"DOUYIN COOKIE EXTRACTION GUIDE",
		rule,
		"",
		"The listing API only answers requests that carry a logged-in web session.",
		"",
		"STEP 1: Open https://www.douyin.com in a desktop browser and log in.",
		"",
		"STEP 2: Open Developer Tools (F12, or Cmd+Option+I on macOS).",
		"",
		"STEP 3: Go to the Network tab and reload the page.",
		"",
		"STEP 4: Click any request to www.douyin.com, open Headers, and find",
		"        'Cookie:' under Request Headers.",
		"",
		"STEP 5: Copy the whole value. It should contain sessionid, ttwid and",
		"        msToken among others.",
		"",
		"TIPS:",
		"   - Paste the value as one line; a leading 'Cookie:' is stripped.",
		"   - Sessions expire. Run 'dyscraper auth login' again when listing",
		"     requests start failing.",
		"   - The cookie grants full access to the account. Keep it private.",
		rule,
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// ShowQuickExtractGuide prints a one-line reminder
func ShowQuickExtractGuide(w io.Writer) {
	fmt.Fprintln(w, "F12 -> Network -> reload -> any www.douyin.com request -> Headers -> Cookie")
}
