package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"board-assets/internal/logging"
	"board-assets/internal/protocol"
	"board-assets/internal/workers"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Directory names under the cache root.
const (
	TempDirName    = "temp_images"
	ThumbDirName   = "thumbs"
	CatalogDBName  = "catalog.db"
	defaultAppName = "board-assets"
)

// Config holds all subsystem configuration
type Config struct {
	CacheDir       string
	Scheme         string
	DefaultWidth   int
	StampSource    bool
	Workers        int
	UseVips        bool
	CatalogEnabled bool
	MetricsEnabled bool

	// Derived paths
	TempDir      string
	ThumbDir     string
	DatabasePath string
}

// LoadConfig loads configuration from environment variables, prepares the
// cache directories and logs the result.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	cfg := &Config{
		CacheDir:       getEnv("CACHE_DIR", defaultCacheDir()),
		Scheme:         getEnv("THUMB_SCHEME", protocol.DefaultScheme),
		DefaultWidth:   getEnvInt("THUMB_DEFAULT_WIDTH", 0),
		StampSource:    getEnvBool("THUMB_STAMP_SOURCE", true),
		Workers:        workers.ForCPU(0),
		UseVips:        getEnvBool("USE_VIPS", false),
		CatalogEnabled: getEnvBool("CATALOG_ENABLED", true),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	if cfg.DefaultWidth < 0 {
		logging.Warn("  Negative THUMB_DEFAULT_WIDTH, serving originals by default")
		cfg.DefaultWidth = 0
	}

	logging.Info("  CACHE_DIR:           %s", cfg.CacheDir)
	logging.Info("  THUMB_SCHEME:        %s", cfg.Scheme)
	logging.Info("  THUMB_DEFAULT_WIDTH: %d", cfg.DefaultWidth)
	logging.Info("  THUMB_STAMP_SOURCE:  %v", cfg.StampSource)
	logging.Info("  THUMB_WORKERS:       %d", cfg.Workers)
	logging.Info("  USE_VIPS:            %v", cfg.UseVips)
	logging.Info("  CATALOG_ENABLED:     %v", cfg.CatalogEnabled)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	cacheDir, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	cfg.CacheDir = cacheDir
	cfg.TempDir = filepath.Join(cacheDir, TempDirName)
	cfg.ThumbDir = filepath.Join(cacheDir, ThumbDirName)
	cfg.DatabasePath = filepath.Join(cacheDir, CatalogDBName)
	logging.Info("  Cache directory (absolute): %s", cacheDir)

	for _, dir := range []struct{ path, name string }{
		{cacheDir, "cache"},
		{cfg.TempDir, "temp"},
		{cfg.ThumbDir, "thumbnail"},
	} {
		if err := ensureDirectory(dir.path, dir.name); err != nil {
			return nil, fmt.Errorf("%s directory error: %w", dir.name, err)
		}
	}

	if err := testWriteAccess(cacheDir); err != nil {
		return nil, fmt.Errorf("cache directory is not writable: %w", err)
	}
	logging.Info("  [OK] Cache directory is writable")

	return cfg, nil
}

// defaultCacheDir is the per-user cache location, or the system temp dir
// when the platform has none.
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, defaultAppName)
	}
	return filepath.Join(os.TempDir(), defaultAppName)
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// ComponentStatus is one line of the initialization summary.
type ComponentStatus struct {
	Name    string
	Enabled bool
	Detail  string
}

// LogComponents logs the initialization summary.
func LogComponents(duration time.Duration, components ...ComponentStatus) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	for _, c := range components {
		if c.Detail != "" {
			logging.Info("    %-12s %s (%s)", c.Name+":", enabledString(c.Enabled), c.Detail)
		} else {
			logging.Info("    %-12s %s", c.Name+":", enabledString(c.Enabled))
		}
	}
	logging.Info("  [OK] Ready in %v", duration)
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogRoutes logs the router's routes at debug level, sorted by path.
func LogRoutes(router *mux.Router) {
	if !logging.IsDebugEnabled() {
		return
	}

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	logging.Debug("  Registered routes (%d total):", len(routes))
	for _, route := range routes {
		logging.Debug("    %-6s %s", route.Method, route.Path)
	}
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(reason string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (%s)", reason)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// Helper functions

func printBanner() {
	logging.Info("------------------------------------------------------------")
	logging.Info("  board-assets %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
	}
	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
