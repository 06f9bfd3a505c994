package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"board-assets/internal/protocol"
	"board-assets/internal/startup"
)

func testConfig(t *testing.T, catalog bool) *startup.Config {
	t.Helper()
	cacheDir := t.TempDir()
	cfg := &startup.Config{
		CacheDir:       cacheDir,
		Scheme:         "thumb",
		StampSource:    true,
		Workers:        2,
		CatalogEnabled: catalog,
		TempDir:        filepath.Join(cacheDir, startup.TempDirName),
		ThumbDir:       filepath.Join(cacheDir, startup.ThumbDirName),
		DatabasePath:   filepath.Join(cacheDir, startup.CatalogDBName),
	}
	for _, dir := range []string{cfg.TempDir, cfg.ThumbDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func newTestApp(t *testing.T, catalog bool) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(t, catalog))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func pngPayload(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestPasteServeCommit(t *testing.T) {
	a := newTestApp(t, true)
	ctx := context.Background()

	vp, err := a.SaveTempImage(ctx, pngPayload(t, 80, 40))
	if err != nil {
		t.Fatalf("SaveTempImage() error = %v", err)
	}
	if !strings.HasPrefix(vp, "_temp/") {
		t.Fatalf("SaveTempImage() = %q, want _temp/ prefix", vp)
	}

	resp := a.Serve(ctx, "thumb://localhost/"+url.PathEscape(vp)+"?w=20")
	if resp.Status != http.StatusOK {
		t.Fatalf("Serve temp status = %d, body %q", resp.Status, resp.Body)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(resp.Body))
	if err != nil {
		t.Fatalf("thumbnail is not a PNG: %v", err)
	}
	if cfg.Width != 20 || cfg.Height != 10 {
		t.Errorf("thumbnail = %dx%d, want 20x10", cfg.Width, cfg.Height)
	}

	project := t.TempDir()
	committed, err := a.CommitAssets(ctx, project, []string{vp})
	if err != nil {
		t.Fatalf("CommitAssets() error = %v", err)
	}
	if len(committed) != 1 || !strings.HasPrefix(committed[0], "assets/") {
		t.Fatalf("CommitAssets() = %v", committed)
	}

	uri := "thumb://localhost/" + url.PathEscape(committed[0]) + "?w=20&root=" + url.PathEscape(project)
	if resp := a.Serve(ctx, uri); resp.Status != http.StatusOK {
		t.Fatalf("Serve committed status = %d, body %q", resp.Status, resp.Body)
	}

	stats, err := a.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.PermanentAssets != 1 {
		t.Errorf("PermanentAssets = %d, want 1", stats.PermanentAssets)
	}
	if stats.Thumbnails != 2 {
		t.Errorf("Thumbnails = %d, want 2", stats.Thumbnails)
	}

	entries, err := a.ThumbnailsFor(ctx, filepath.Join(project, filepath.FromSlash(committed[0])))
	if err != nil {
		t.Fatalf("ThumbnailsFor() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ThumbnailsFor() = %v, want one entry", entries)
	}
}

func TestCommitMovesCatalogRow(t *testing.T) {
	a := newTestApp(t, true)
	ctx := context.Background()

	vp, err := a.SaveTempImage(ctx, pngPayload(t, 16, 16))
	if err != nil {
		t.Fatal(err)
	}

	before, err := a.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if before.TempAssets != 1 || before.PermanentAssets != 0 {
		t.Fatalf("before commit: %+v", before)
	}

	if _, err := a.CommitAssets(ctx, t.TempDir(), []string{vp}); err != nil {
		t.Fatal(err)
	}

	after, err := a.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if after.TempAssets != 0 {
		t.Errorf("TempAssets after commit = %d, want 0", after.TempAssets)
	}
	if after.PermanentAssets != 1 {
		t.Errorf("PermanentAssets after commit = %d, want 1", after.PermanentAssets)
	}
}

func TestDispatchRespondsOnce(t *testing.T) {
	a := newTestApp(t, false)

	vp, err := a.SaveTempImage(context.Background(), pngPayload(t, 8, 8))
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan int, 2)
	a.Dispatch("thumb://localhost/"+url.PathEscape(vp), func(resp *protocol.Response) {
		done <- resp.Status
	})
	if status := <-done; status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
}

func TestCatalogDisabled(t *testing.T) {
	a := newTestApp(t, false)

	if _, err := a.Stats(context.Background()); err == nil {
		t.Error("Stats() should fail without a catalog")
	}
	if _, err := a.ThumbnailsFor(context.Background(), "/x.png"); err == nil {
		t.Error("ThumbnailsFor() should fail without a catalog")
	}

	req := httptest.NewRequest(http.MethodGet, "/_stats", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/_stats status = %d, want 503", rec.Code)
	}
}

func TestHandlerHealth(t *testing.T) {
	a := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/_health", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("/_health status = %d, want 200", rec.Code)
	}
}

func TestCloseRejectsNewWork(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, true))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	done := make(chan int, 1)
	a.Dispatch("thumb://localhost/_temp%2Fa.png", func(resp *protocol.Response) {
		done <- resp.Status
	})
	if status := <-done; status != http.StatusServiceUnavailable {
		t.Errorf("status after Close = %d, want 503", status)
	}
}
