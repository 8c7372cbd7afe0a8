package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storyreel/render"
	"storyreel/retry"
	"storyreel/story"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChat struct {
	reply string
	err   error
}

func (s *stubChat) Generate(context.Context, string) (string, error) {
	return s.reply, s.err
}

type stubImageClient struct {
	err error
}

func (s *stubImageClient) GenerateImages(_ context.Context, prompt string, _ story.AspectRatio) ([][]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return [][]byte{[]byte("image-for-" + prompt)}, nil
}

func newTestServer(chat story.ChatClient, client story.ImageClient) *Server {
	gen := story.NewBatchGenerator(client)
	gen.Policy = retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, Classify: story.ClassifyImageError}
	gen.Cooldown = 0
	return NewServer(chat, gen)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := NewRouter(newTestServer(&stubChat{}, &stubImageClient{}))
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
}

func TestGenerateAssetsEndpoint(t *testing.T) {
	assets := make([]story.StoryAsset, 10)
	for i := range assets {
		assets[i] = story.StoryAsset{ImagePrompt: "p", NativeCaption: "n", TranslatedCaption: "t"}
	}
	reply, _ := json.Marshal(assets)

	t.Run("success", func(t *testing.T) {
		r := NewRouter(newTestServer(&stubChat{reply: string(reply)}, &stubImageClient{}))
		w := doJSON(t, r, http.MethodPost, "/api/story/assets", gin.H{"story": "a story"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body)
		}
		var resp struct {
			Assets []story.StoryAsset `json:"assets"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if len(resp.Assets) != 10 {
			t.Fatalf("got %d assets", len(resp.Assets))
		}
	})

	t.Run("missing story", func(t *testing.T) {
		r := NewRouter(newTestServer(&stubChat{reply: string(reply)}, &stubImageClient{}))
		if w := doJSON(t, r, http.MethodPost, "/api/story/assets", gin.H{}); w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		r := NewRouter(newTestServer(&stubChat{err: errors.New("down")}, &stubImageClient{}))
		if w := doJSON(t, r, http.MethodPost, "/api/story/assets", gin.H{"story": "s"}); w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestThumbnailPromptEndpoint(t *testing.T) {
	r := NewRouter(newTestServer(&stubChat{reply: "a cinematic prompt"}, &stubImageClient{}))
	w := doJSON(t, r, http.MethodPost, "/api/story/thumbnail-prompt", gin.H{"story": "a story"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var resp struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Prompt != "a cinematic prompt" {
		t.Fatalf("prompt = %q", resp.Prompt)
	}
}

func TestImageJobLifecycle(t *testing.T) {
	r := NewRouter(newTestServer(&stubChat{}, &stubImageClient{}))

	assets := []story.StoryAsset{
		{ImagePrompt: "p0", NativeCaption: "n", TranslatedCaption: "t"},
		{ImagePrompt: "p1", NativeCaption: "n", TranslatedCaption: "t"},
	}
	w := doJSON(t, r, http.MethodPost, "/api/story/images", gin.H{"assets": assets, "aspect_ratio": "9:16"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var started struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		w = doJSON(t, r, http.MethodGet, "/api/story/images/"+started.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var status struct {
			State  string `json:"state"`
			Done   int    `json:"done"`
			Total  int    `json:"total"`
			Slides []struct {
				Prompt string   `json:"prompt"`
				Images []string `json:"images"`
			} `json:"slides"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			t.Fatal(err)
		}
		if status.State == "failed" {
			t.Fatalf("job failed: %s", w.Body)
		}
		if status.State == "complete" {
			if status.Done != 2 || status.Total != 2 {
				t.Errorf("progress %d/%d, want 2/2", status.Done, status.Total)
			}
			if len(status.Slides) != 2 || status.Slides[0].Prompt != "p0" {
				t.Fatalf("bad slides: %s", w.Body)
			}
			decoded, err := base64.StdEncoding.DecodeString(status.Slides[1].Images[0])
			if err != nil || string(decoded) != "image-for-p1" {
				t.Fatalf("slide payload mismatch: %q %v", decoded, err)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("image job did not finish")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestImageJobFailure(t *testing.T) {
	r := NewRouter(newTestServer(&stubChat{}, &stubImageClient{err: errors.New("blocked")}))

	assets := []story.StoryAsset{{ImagePrompt: "p0", NativeCaption: "n", TranslatedCaption: "t"}}
	w := doJSON(t, r, http.MethodPost, "/api/story/images", gin.H{"assets": assets})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	var started struct {
		ID string `json:"id"`
	}
	json.Unmarshal(w.Body.Bytes(), &started)

	deadline := time.After(5 * time.Second)
	for {
		w = doJSON(t, r, http.MethodGet, "/api/story/images/"+started.ID, nil)
		var status struct {
			State string `json:"state"`
			Error string `json:"error"`
		}
		json.Unmarshal(w.Body.Bytes(), &status)
		if status.State == "failed" {
			if status.Error == "" {
				t.Error("failed job has no error message")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("job never failed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestImageJobUnknownID(t *testing.T) {
	r := NewRouter(newTestServer(&stubChat{}, &stubImageClient{}))
	if w := doJSON(t, r, http.MethodGet, "/api/story/images/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(0, 0, color.RGBA{0xFF, 0, 0, 0xFF})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestStartRenderValidation(t *testing.T) {
	r := NewRouter(newTestServer(&stubChat{}, &stubImageClient{}))
	slide := gin.H{"image": pngBase64(t, 8, 8), "native_caption": "n", "translated_caption": "t"}

	t.Run("no slides", func(t *testing.T) {
		if w := doJSON(t, r, http.MethodPost, "/api/render", gin.H{}); w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("no audio", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/render", gin.H{"slides": []gin.H{slide}})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body %s", w.Code, w.Body)
		}
	})

	t.Run("bad image payload", func(t *testing.T) {
		bad := gin.H{"image": "bm90IGFuIGltYWdl"}
		w := doJSON(t, r, http.MethodPost, "/api/render", gin.H{
			"slides":           []gin.H{bad},
			"background_audio": base64.StdEncoding.EncodeToString([]byte("audio")),
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("bad resolution", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/render", gin.H{
			"slides":           []gin.H{slide},
			"background_audio": base64.StdEncoding.EncodeToString([]byte("audio")),
			"resolution":       "4k",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body %s", w.Code, w.Body)
		}
	})

	t.Run("bad style", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/render", gin.H{
			"slides":           []gin.H{slide},
			"background_audio": base64.StdEncoding.EncodeToString([]byte("audio")),
			"native_style":     gin.H{"font_family": "Comic Sans"},
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body %s", w.Code, w.Body)
		}
	})
}

func TestDeleteRenderReclaimsJob(t *testing.T) {
	s := newTestServer(&stubChat{}, &stubImageClient{})
	r := NewRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/render", gin.H{
		"slides":           []gin.H{{"image": pngBase64(t, 8, 8)}},
		"background_audio": base64.StdEncoding.EncodeToString([]byte("audio")),
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("start render = %d, body %s", w.Code, w.Body)
	}
	var started struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}

	job, err := s.jobs.getRender(started.ID)
	if err != nil {
		t.Fatalf("job not registered: %v", err)
	}
	dir := job.Dir

	// The fake audio bytes cannot be probed, so the render settles into a
	// terminal state quickly.
	deadline := time.Now().Add(10 * time.Second)
	for {
		if st := job.Session.Snapshot(); st.State == render.StateFailed || st.State == render.StateComplete {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("render never reached a terminal state")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if w := doJSON(t, r, http.MethodDelete, "/api/render/"+started.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("delete = %d, body %s", w.Code, w.Body)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/render/"+started.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("status after delete = %d; want 404", w.Code)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("scratch dir %s still present after delete", dir)
	}
}

func TestRenderJobUnknownID(t *testing.T) {
	r := NewRouter(newTestServer(&stubChat{}, &stubImageClient{}))
	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/render/nope"},
		{http.MethodGet, "/api/render/nope/file"},
		{http.MethodDelete, "/api/render/nope"},
	} {
		if w := doJSON(t, r, tc.method, tc.path, nil); w.Code != http.StatusNotFound {
			t.Fatalf("%s %s: status = %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestParseStyleOverrides(t *testing.T) {
	style, err := parseStyle(&stylePayload{Color: "#FF0000", FontSizePx: 40, FontFamily: "Georgia"}, render.DefaultNativeStyle())
	if err != nil {
		t.Fatal(err)
	}
	if style.FontSizePx != 40 || style.Color.R != 0xFF || style.Color.G != 0 {
		t.Fatalf("style = %+v", style)
	}
	if style.Family != render.FontGeorgia {
		t.Fatalf("family = %q", style.Family)
	}
	if !style.Bold {
		t.Fatal("override without a weight dropped the default bold")
	}
	off := false
	style, err = parseStyle(&stylePayload{Bold: &off}, render.DefaultNativeStyle())
	if err != nil {
		t.Fatal(err)
	}
	if style.Bold {
		t.Fatal("explicit bold=false was not applied")
	}
	if _, err := parseStyle(&stylePayload{Color: "red"}, render.DefaultNativeStyle()); err == nil {
		t.Fatal("bad color accepted")
	}
}
