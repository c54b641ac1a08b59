package model

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters that never identify a posting.
var trackingParams = map[string]bool{
	"trk":        true,
	"trkinfo":    true,
	"refid":      true,
	"trackingid": true,
	"gclid":      true,
	"fbclid":     true,
	"msclkid":    true,
	"src":        true,
}

// CanonicalURL normalizes a record URL so the same posting or profile
// yields the same natural key across runs: https scheme, lower-case host,
// no fragment, no trailing slash. LinkedIn country subdomains are folded to
// www and LinkedIn queries are dropped, since LinkedIn ids live in the path.
// On other hosts only tracking parameters are dropped and the rest are kept
// in sorted order. Values that do not parse as absolute URLs are returned
// trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	linkedIn := u.Host == "linkedin.com" || strings.HasSuffix(u.Host, ".linkedin.com")
	if linkedIn {
		u.Host = "www.linkedin.com"
	}
	u.User = nil
	if linkedIn {
		u.RawQuery = ""
	} else {
		u.RawQuery = stripTracking(u.Query()).Encode()
	}
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String()
}

func stripTracking(q url.Values) url.Values {
	for k := range q {
		lk := strings.ToLower(k)
		if trackingParams[lk] || strings.HasPrefix(lk, "utm_") {
			q.Del(k)
		}
	}
	return q
}
