package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEncryptedIsMemoized(t *testing.T) {
	app := newTestApp(t, "")

	first := app.routes.Encrypted()
	second := app.routes.Encrypted()

	if len(first) != len(routeSegments) {
		t.Fatalf("token map has %d keys, want %d", len(first), len(routeSegments))
	}
	for key := range routeSegments {
		if first[key] == "" {
			t.Fatalf("no token for key %q", key)
		}
		if first[key] != second[key] {
			t.Fatalf("key %q: token changed between calls", key)
		}
	}

	// Two independent encodes of one plaintext differ, so identical maps
	// prove the memoization rather than cipher determinism.
	one, err := app.cipher.Encode("zones")
	if err != nil {
		t.Fatal(err)
	}
	two, err := app.cipher.Encode("zones")
	if err != nil {
		t.Fatal(err)
	}
	if one == two {
		t.Fatal("independent encodes produced identical tokens")
	}
}

func TestEncryptedTokensDecodeToSegments(t *testing.T) {
	app := newTestApp(t, "")

	for key, token := range app.routes.Encrypted() {
		plaintext, ok := app.cipher.Decode(token)
		if !ok {
			t.Fatalf("key %q: token does not decode", key)
		}
		if plaintext != routeSegments[key] {
			t.Fatalf("key %q: decoded %q, want %q", key, plaintext, routeSegments[key])
		}
	}
}

func TestEncryptedWithOverrides(t *testing.T) {
	app := newTestApp(t, "")

	tokens := app.routes.EncryptedWith(map[string]string{
		"userType": "custom-plain",
		"unknown":  "ignored",
	})

	if len(tokens) != len(routeSegments) {
		t.Fatalf("token map has %d keys, want %d", len(tokens), len(routeSegments))
	}
	if _, present := tokens["unknown"]; present {
		t.Fatal("unknown override key leaked into the token map")
	}

	plaintext, ok := app.cipher.Decode(tokens["userType"])
	if !ok || plaintext != "custom-plain" {
		t.Fatalf("override token decoded to %q, want %q", plaintext, "custom-plain")
	}
	plaintext, ok = app.cipher.Decode(tokens["zones"])
	if !ok || plaintext != "zones" {
		t.Fatalf("non-overridden token decoded to %q, want %q", plaintext, "zones")
	}

	// The shared default map is untouched by override calls.
	plaintext, ok = app.cipher.Decode(app.routes.Encrypted()["userType"])
	if !ok || plaintext != "user-type" {
		t.Fatalf("default token decoded to %q, want %q", plaintext, "user-type")
	}
}

func TestSegmentKeyReverseLookup(t *testing.T) {
	key, ok := segmentKey("sub-properties")
	if !ok || key != "subProperties" {
		t.Fatalf("segmentKey(sub-properties) = %q, %v", key, ok)
	}
	if _, ok := segmentKey("nope"); ok {
		t.Fatal("unknown plaintext resolved to a key")
	}
}

func TestOpaqueRouteDispatch(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/zones/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"North Zone","code":"NZ","is_active":true}]`))
	}))
	defer backend.Close()

	app := newTestApp(t, backend.URL)
	r := newTestRouter(t, app)
	token := signedTestToken(t, "admin", time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, app.modulePath("masters", "zones"), nil)
	addSessionCookies(req, token, "admin")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Zones") || !strings.Contains(body, "North Zone") {
		t.Fatalf("list page missing module title or record name:\n%s", body)
	}
}

func TestOpaqueRouteCorruptedSegment(t *testing.T) {
	app := newTestApp(t, "")
	r := newTestRouter(t, app)
	token := signedTestToken(t, "admin", time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/not-a-real-token/also-not-real", nil)
	addSessionCookies(req, token, "admin")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestOpaqueRouteUnregisteredPair(t *testing.T) {
	app := newTestApp(t, "")
	r := newTestRouter(t, app)
	token := signedTestToken(t, "admin", time.Now().Add(time.Hour))
	tokens := app.routes.Encrypted()

	// Both segments decode, but fuels is not routable under masters.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/"+tokens["masters"]+"/"+tokens["fuels"], nil)
	addSessionCookies(req, token, "admin")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
