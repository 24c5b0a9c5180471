package pagination

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestEncodeDecodeCursor_RoundTrip(t *testing.T) {
	c := Cursor{
		V:   1,
		Did: "ds-123",
		Rep: "deep_dive",
		Rs:  "Call Later/Timing",
		Fr:  "2024-03-01",
		Off: 50,
		Ps:  50,
	}
	tok, err := EncodeCursor(c)
	if err != nil {
		t.Fatalf("EncodeCursor error: %v", err)
	}
	if strings.ContainsAny(tok, "+/=") {
		t.Fatalf("token contains non-url-safe chars: %q", tok)
	}
	out, err := DecodeCursor(tok)
	if err != nil {
		t.Fatalf("DecodeCursor error: %v", err)
	}
	if out.Did != c.Did || out.Rep != c.Rep || out.Rs != c.Rs || out.Fr != c.Fr || out.To != "" || out.Off != c.Off || out.Ps != c.Ps {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", out, c)
	}
	if out.Iat == 0 {
		t.Fatalf("expected issued-at to be defaulted")
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cases := []string{
		"",
		"!!!",
		base64.RawURLEncoding.EncodeToString([]byte("not-json")),
		mustB64(`{"v":1}`),
		mustB64(`{"v":1,"did":"","rep":"gender","off":0,"ps":10}`),
		mustB64(`{"v":1,"did":"x","rep":"","off":0,"ps":10}`),
		mustB64(`{"v":1,"did":"x","rep":"gender","off":-1,"ps":10}`),
		mustB64(`{"v":1,"did":"x","rep":"gender","off":0,"ps":0}`),
	}
	for i, tok := range cases {
		if _, err := DecodeCursor(tok); err == nil {
			t.Fatalf("case %d: expected error for token %q", i, tok)
		}
	}
}

func TestNextOffset(t *testing.T) {
	if got := NextOffset(-5, 10); got != 10 {
		t.Fatalf("NextOffset(-5,10) = %d", got)
	}
	if got := NextOffset(20, 0); got != 20 {
		t.Fatalf("NextOffset(20,0) = %d", got)
	}
}

func FuzzDecodeCursor(f *testing.F) {
	seeds := []string{
		"", "abc", mustB64(`{"v":1}`), mustB64(`{"did":"x"}`),
		mustB64(`{"v":1,"did":"ds","rep":"call_funnel","off":0,"ps":1}`),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, token string) {
		_, _ = DecodeCursor(token)
	})
}

func mustB64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
