package credentials

import (
	"encoding/base64"
	"testing"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestDecodeBasicHeaderRoundTrip(t *testing.T) {
	pairs := []struct {
		id     string
		secret string
	}{
		{"alice@example.com", "secret1"},
		{"bob", "p"},
		{"ünïcødé@example.com", "päss wörd"},
	}

	for _, p := range pairs {
		creds, ok := DecodeBasicHeader(EncodeBasicHeader(p.id, p.secret))
		if !ok {
			t.Fatalf("expected %q to decode", p.id)
		}
		if creds.Identifier != p.id || creds.Secret != p.secret {
			t.Fatalf("round trip mismatch: got %+v, want %s/%s", creds, p.id, p.secret)
		}
	}
}

func TestDecodeBasicHeaderSecretKeepsExtraColons(t *testing.T) {
	creds, ok := DecodeBasicHeader("Basic " + b64("alice@example.com:pa:ss:word"))
	if !ok {
		t.Fatal("expected header to decode")
	}
	if creds.Identifier != "alice@example.com" {
		t.Fatalf("unexpected identifier %q", creds.Identifier)
	}
	if creds.Secret != "pa:ss:word" {
		t.Fatalf("unexpected secret %q", creds.Secret)
	}
}

func TestDecodeBasicHeaderRejects(t *testing.T) {
	cases := map[string]string{
		"empty":               "",
		"scheme only":         "Basic ",
		"bearer scheme":       "Bearer " + b64("a:b"),
		"lowercase scheme":    "basic " + b64("a:b"),
		"no space":            "Basic" + b64("a:b"),
		"two spaces":          "Basic  " + b64("a:b"),
		"leading space":       " Basic " + b64("a:b"),
		"trailing content":    "Basic " + b64("a:b") + " extra",
		"trailing newline":    "Basic " + b64("a:b") + "\n",
		"embedded newline":    "Basic " + b64("abc:def")[:4] + "\n" + b64("abc:def")[4:],
		"non alphabet":        "Basic " + "YWxp*2U6c2VjcmV0",
		"missing padding":     "Basic " + "YTpiYw",
		"bad padding":         "Basic " + "YTpi=",
		"url alphabet":        "Basic " + base64.URLEncoding.EncodeToString([]byte("??>:~~~")),
		"invalid utf8":        "Basic " + base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, ':', 'x'}),
		"no colon":            "Basic " + b64("alicesecret"),
		"empty identifier":    "Basic " + b64(":secret"),
		"empty secret":        "Basic " + b64("alice:"),
		"empty decoded value": "Basic " + b64(""),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			if creds, ok := DecodeBasicHeader(header); ok {
				t.Fatalf("expected %q to be rejected, got %+v", header, creds)
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	token, ok := ExtractToken("Basic Zm9vOmJhcg==")
	if !ok || token != "Zm9vOmJhcg==" {
		t.Fatalf("unexpected token %q ok=%v", token, ok)
	}
	if _, ok := ExtractToken("Basic\tZm9vOmJhcg=="); ok {
		t.Fatal("expected tab separator to be rejected")
	}
}

func TestDecodeTokenStrictPadding(t *testing.T) {
	if got, ok := DecodeToken("Zm9vOmJhcg=="); !ok || got != "foo:bar" {
		t.Fatalf("unexpected decode %q ok=%v", got, ok)
	}
	// Non-zero trailing bits are rejected by strict decoding.
	if _, ok := DecodeToken("Zm9vOmJhcl=="); ok {
		t.Fatal("expected non-canonical encoding to be rejected")
	}
}

func TestSplitCredentialsWithoutColon(t *testing.T) {
	if creds, ok := SplitCredentials("no-colon-here"); ok {
		t.Fatalf("expected failure, got %+v", creds)
	}
}
