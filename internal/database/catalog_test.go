package database

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"board-assets/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return c
}

func TestOpenCreatesSchema(t *testing.T) {
	c := openTestCatalog(t)

	var version int
	if err := c.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != schemaVersion {
		t.Errorf("user_version = %d, want %d", version, schemaVersion)
	}

	for _, table := range []string{"assets", "thumbnails"} {
		var n int
		err := c.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
		if err != nil || n != 1 {
			t.Errorf("table %s missing (n=%d, err=%v)", table, n, err)
		}
	}
}

func TestOpenIsReentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.RecordAsset(ctx, "a.png", "temp", "", 10); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()

	stats, err := second.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TempAssets != 1 {
		t.Errorf("TempAssets after reopen = %d, want 1", stats.TempAssets)
	}
}

func TestOpenMissingDirectory(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "catalog.db"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestGetStats(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	steps := []func() error{
		func() error { return c.RecordAsset(ctx, "a.png", "temp", "", 100) },
		func() error { return c.RecordAsset(ctx, "a.png", "temp", "", 100) },
		func() error { return c.RecordAsset(ctx, "b.png", "temp", "", 50) },
		func() error { return c.RecordAsset(ctx, "a.png", "permanent", "/proj1", 100) },
		func() error { return c.RecordAsset(ctx, "a.png", "permanent", "/proj2", 100) },
		func() error { return c.RecordThumbnail(ctx, "k1_100.png", "/src/a.png", 100, 1000) },
		func() error { return c.RecordThumbnail(ctx, "k2_200.png", "/src/a.png", 200, 3000) },
		func() error { return c.RecordThumbnail(ctx, "k1_100.png", "/src/a.png", 100, 1200) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	got, err := c.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	want := metrics.Stats{TempAssets: 2, PermanentAssets: 2, Thumbnails: 2, ThumbnailBytes: 4200}
	if got != want {
		t.Errorf("GetStats() = %+v, want %+v", got, want)
	}
}

func TestForgetAsset(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if err := c.RecordAsset(ctx, "a.png", "temp", "", 100); err != nil {
		t.Fatal(err)
	}
	if err := c.RecordAsset(ctx, "a.png", "permanent", "/proj", 100); err != nil {
		t.Fatal(err)
	}
	if err := c.ForgetAsset(ctx, "a.png", "temp", ""); err != nil {
		t.Fatalf("ForgetAsset() error = %v", err)
	}
	if err := c.ForgetAsset(ctx, "missing.png", "temp", ""); err != nil {
		t.Errorf("ForgetAsset() on missing row error = %v", err)
	}

	got, err := c.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := metrics.Stats{TempAssets: 0, PermanentAssets: 1}
	if got != want {
		t.Errorf("GetStats() = %+v, want %+v", got, want)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	c := openTestCatalog(t)
	got, err := c.GetStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != (metrics.Stats{}) {
		t.Errorf("GetStats() on empty catalog = %+v", got)
	}
}

func TestThumbnailsFor(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	for _, e := range []struct {
		file  string
		src   string
		width int
	}{
		{"b_400.png", "/src/a.png", 400},
		{"a_100.png", "/src/a.png", 100},
		{"c_100.png", "/src/other.png", 100},
	} {
		if err := c.RecordThumbnail(ctx, e.file, e.src, e.width, 1); err != nil {
			t.Fatal(err)
		}
	}

	got, err := c.ThumbnailsFor(ctx, "/src/a.png")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a_100.png", "b_400.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ThumbnailsFor() = %v, want %v", got, want)
	}

	none, err := c.ThumbnailsFor(ctx, "/nope")
	if err != nil || len(none) != 0 {
		t.Errorf("ThumbnailsFor(unknown) = %v, %v", none, err)
	}
}

func TestRecordQueryMetrics(t *testing.T) {
	before := testutil.ToFloat64(metrics.CatalogQueryTotal.WithLabelValues("record_asset_test", "error"))
	recordQuery("record_asset_test", time.Now(), errors.New("boom"))
	after := testutil.ToFloat64(metrics.CatalogQueryTotal.WithLabelValues("record_asset_test", "error"))
	if after != before+1 {
		t.Errorf("error counter = %v, want %v", after, before+1)
	}
}

func TestClosedCatalogErrors(t *testing.T) {
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.RecordAsset(context.Background(), "a", "temp", "", 1); err == nil {
		t.Error("expected error writing to closed catalog")
	}
}
