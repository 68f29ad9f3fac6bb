package engine

import (
	"encoding/base64"
	"strings"
)

// basicDecode implements httpBasicParse: decode the base64 payload of an
// "Authorization: Basic <...>" header into a username and password split
// at the first colon.
func basicDecode(credentials string) (user, pass string, err error) {
	raw, decErr := base64.StdEncoding.DecodeString(credentials)
	if decErr != nil {
		return "", "", newAuthError(400, "bad basic credentials encoding")
	}
	colon := strings.IndexByte(string(raw), ':')
	if colon < 0 {
		return "", "", newAuthError(400, "missing colon in basic credentials")
	}
	return string(raw[:colon]), string(raw[colon+1:]), nil
}

// basicEncode implements httpBasicSetHeaders' Authorization value:
// "basic " + base64(user:pass). The lowercase scheme token matches the
// original source's format string exactly.
func basicEncode(user, pass string) string {
	raw := user + ":" + pass
	return "basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// basicChallenge implements httpBasicLogin: the WWW-Authenticate value
// sent alongside a 401 when no (or invalid) Basic credentials were
// presented.
func basicChallenge(realm string) string {
	return `Basic realm="` + realm + `"`
}
