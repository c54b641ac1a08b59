package fetcher

import (
	"bytes"
	"net/http"
)

// BlockType names the kind of anti-bot or login page detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockLoginWall  BlockType = "login_wall"
	BlockJSShell    BlockType = "js_shell"
)

var loginWallMarkers = [][]byte{
	[]byte("authwall"),
	[]byte("sign in to view"),
	[]byte("join linkedin"),
	[]byte("login?session_redirect"),
}

// DetectBlock reports whether a response looks like a challenge, captcha,
// login wall or script-only shell rather than content. Pages behind a login
// wall are out of reach; callers log and move on.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	lower := bytes.ToLower(body)

	if bytes.Contains(lower, []byte("checking your browser")) ||
		bytes.Contains(lower, []byte("cf-browser-verification")) {
		return true, BlockCloudflare
	}

	if bytes.Contains(lower, []byte("captcha")) ||
		bytes.Contains(lower, []byte("unusual traffic from your computer")) {
		return true, BlockCaptcha
	}

	for _, m := range loginWallMarkers {
		if bytes.Contains(lower, m) {
			return true, BlockLoginWall
		}
	}

	if len(body) < 2000 {
		if bytes.Contains(lower, []byte("<noscript")) && bytes.Contains(lower, []byte("javascript")) {
			return true, BlockJSShell
		}
		if bytes.Contains(lower, []byte(`meta http-equiv="refresh"`)) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
