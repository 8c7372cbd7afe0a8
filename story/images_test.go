package story

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPImageClientGenerateImages(t *testing.T) {
	ctx := context.Background()
	payload := bytes.Repeat([]byte{0xAB}, 512)

	t.Run("success", func(t *testing.T) {
		var gotPath, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			w.Write(payload)
		}))
		defer srv.Close()

		client := NewHTTPImageClient(srv.URL)
		images, err := client.GenerateImages(ctx, "a misty forest", AspectWide)
		if err != nil {
			t.Fatalf("GenerateImages: %v", err)
		}
		if len(images) != 1 || !bytes.Equal(images[0], payload) {
			t.Fatal("payload not returned")
		}
		if gotPath != "/a%20misty%20forest" && gotPath != "/a misty forest" {
			t.Errorf("prompt not in path: %q", gotPath)
		}
		if gotQuery != "width=1920&height=1080&nologo=true" {
			t.Errorf("unexpected query %q", gotQuery)
		}
	})

	t.Run("429 wraps ErrRateLimited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewHTTPImageClient(srv.URL).GenerateImages(ctx, "prompt", AspectSquare)
		if !errors.Is(err, ErrRateLimited) {
			t.Fatalf("got %v, want ErrRateLimited", err)
		}
	})

	t.Run("RESOURCE_EXHAUSTED body wraps ErrRateLimited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"status":"RESOURCE_EXHAUSTED"}}`))
		}))
		defer srv.Close()

		_, err := NewHTTPImageClient(srv.URL).GenerateImages(ctx, "prompt", AspectSquare)
		if !errors.Is(err, ErrRateLimited) {
			t.Fatalf("got %v, want ErrRateLimited", err)
		}
	})

	t.Run("other failures are permanent and carry the prompt", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := NewHTTPImageClient(srv.URL).GenerateImages(ctx, "the failing prompt", AspectSquare)
		if err == nil {
			t.Fatal("expected error")
		}
		if errors.Is(err, ErrRateLimited) {
			t.Fatal("400 classified as rate limited")
		}
		if want := "the failing prompt"; !bytes.Contains([]byte(err.Error()), []byte(want)) {
			t.Errorf("error %q does not carry the prompt", err)
		}
	})

	t.Run("tiny body rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("err"))
		}))
		defer srv.Close()

		if _, err := NewHTTPImageClient(srv.URL).GenerateImages(ctx, "prompt", AspectSquare); err == nil {
			t.Fatal("error page accepted as image")
		}
	})

	t.Run("invalid ratio rejected", func(t *testing.T) {
		if _, err := NewHTTPImageClient("http://unused").GenerateImages(ctx, "prompt", AspectRatio("2:1")); err == nil {
			t.Fatal("invalid ratio accepted")
		}
	})
}

func TestAspectRatioDimensions(t *testing.T) {
	tests := []struct {
		ratio AspectRatio
		w, h  int
	}{
		{AspectSquare, 1024, 1024},
		{AspectWide, 1920, 1080},
		{AspectPortrait, 1080, 1920},
		{AspectClassic, 1440, 1080},
		{AspectClassicUpright, 1080, 1440},
	}
	for _, tt := range tests {
		if !tt.ratio.Valid() {
			t.Errorf("%s: not valid", tt.ratio)
		}
		w, h := tt.ratio.Dimensions()
		if w != tt.w || h != tt.h {
			t.Errorf("%s: got %dx%d, want %dx%d", tt.ratio, w, h, tt.w, tt.h)
		}
	}
	if AspectRatio("21:9").Valid() {
		t.Error("21:9 reported valid")
	}
}

func TestBase64RoundTrip(t *testing.T) {
	images := [][]byte{[]byte("one"), []byte("two")}
	decoded, err := DecodeBase64Images(EncodeBase64Images(images))
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || !bytes.Equal(decoded[0], images[0]) || !bytes.Equal(decoded[1], images[1]) {
		t.Fatal("round trip mismatch")
	}
	if _, err := DecodeBase64Images([]string{"not base64!!"}); err == nil {
		t.Fatal("invalid base64 accepted")
	}
}
