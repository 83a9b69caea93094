package loganalytics

import (
	"strings"
	"testing"
)

func TestSignature(t *testing.T) {
	// Calculated independently with python3 hmac/hashlib over
	// "POST\n2\napplication/json\nx-ms-date:Fri, 20 Jul 2018 16:28:59 GMT\n/api/logs"
	got, err := Signature("AAAAAAAAAAAAAAAAAAAAAA==", "Fri, 20 Jul 2018 16:28:59 GMT", 2)
	if err != nil {
		t.Fatalf("Signature() error: %v", err)
	}

	expected := "ll1jRM1B5zTF6qRi79vKymq2iYAguwIijFjt26xnTJE="
	if got != expected {
		t.Errorf("Signature() = %v, want %v", got, expected)
	}
}

func TestSignatureWithTextKey(t *testing.T) {
	// base64("super-secret-workspace-key"), body length 30
	got, err := Signature("c3VwZXItc2VjcmV0LXdvcmtzcGFjZS1rZXk=", "Mon, 02 Jan 2006 15:04:05 GMT", 30)
	if err != nil {
		t.Fatalf("Signature() error: %v", err)
	}

	expected := "rXfi9hkXRm0KsLU3KGGyG3ADyrs23DpbNyRQgurDFfs="
	if got != expected {
		t.Errorf("Signature() = %v, want %v", got, expected)
	}
}

func TestSignatureBadKey(t *testing.T) {
	_, err := Signature("not base64!!", "Fri, 20 Jul 2018 16:28:59 GMT", 2)
	if err == nil {
		t.Error("Expected error for malformed key, got nil")
	}
}

func TestCanonicalString(t *testing.T) {
	got := canonicalString("Fri, 20 Jul 2018 16:28:59 GMT", 42)
	want := "POST\n42\napplication/json\nx-ms-date:Fri, 20 Jul 2018 16:28:59 GMT\n/api/logs"
	if got != want {
		t.Errorf("canonicalString() = %q, want %q", got, want)
	}

	if strings.HasSuffix(got, "\n") {
		t.Error("canonical string must not end with a newline")
	}
}

func TestCanonicalStringZeroLength(t *testing.T) {
	// A zero-byte body still produces a literal 0 in the length field.
	got := canonicalString("Fri, 20 Jul 2018 16:28:59 GMT", 0)
	if !strings.HasPrefix(got, "POST\n0\n") {
		t.Errorf("Expected literal 0 length field, got %q", got)
	}
}

func TestSharedKeyHeader(t *testing.T) {
	got := SharedKeyHeader("ws-1", "c2ln")
	if got != "SharedKey ws-1:c2ln" {
		t.Errorf("SharedKeyHeader() = %q", got)
	}
}
