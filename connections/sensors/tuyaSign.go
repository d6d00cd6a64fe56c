package sensors

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

const SIGN_METHOD = "HMAC-SHA256"

// Canonical request used in the signature:
// METHOD \n hex(sha256(body)) \n signed headers (none) \n path?sorted query
func StringToSign(method string, path string, query map[string]string, body []byte) string {
	bodyHash := sha256.Sum256(body)
	return strings.Join([]string{
		method,
		hex.EncodeToString(bodyHash[:]),
		"",
		signedURL(path, query),
	}, "\n")
}

// Upper-case hex HMAC-SHA256 of message.
func Sign(secret string, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// Query values are signed unencoded, keys in ascending order.
func signedURL(path string, query map[string]string) string {
	if len(query) == 0 {
		return path
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+query[k])
	}
	return path + "?" + strings.Join(pairs, "&")
}
