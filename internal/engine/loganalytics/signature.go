package loganalytics

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Signature computes the base64-encoded HMAC-SHA256 signature over the
// canonical string-to-sign for a request of contentLength bytes sent at
// xmsDate. workspaceKey is the base64-encoded shared key. The receiver
// recomputes the same value to authenticate the request, so the sink uses
// this function too.
func Signature(workspaceKey, xmsDate string, contentLength int) (string, error) {
	key, err := base64.StdEncoding.DecodeString(workspaceKey)
	if err != nil {
		return "", fmt.Errorf("decode workspace key: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(canonicalString(xmsDate, contentLength)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// SharedKeyHeader builds the Authorization header value.
func SharedKeyHeader(workspaceID, signature string) string {
	return fmt.Sprintf("SharedKey %s:%s", workspaceID, signature)
}

// canonicalString joins the five signed fields in wire order. Field order,
// the single \n separators, and the absence of a trailing newline are part
// of the contract; contentLength is the UTF-8 byte count of the body.
func canonicalString(xmsDate string, contentLength int) string {
	return fmt.Sprintf("POST\n%d\n%s\n%s:%s\n%s",
		contentLength, contentType, HeaderXMSDate, xmsDate, resource)
}
