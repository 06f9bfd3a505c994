package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"board-assets/internal/app"
	"board-assets/internal/filesystem"
	"board-assets/internal/memory"
	"board-assets/internal/protocol"
	"board-assets/internal/startup"

	"golang.org/x/term"
)

// Default timeout for a single command
const defaultTimeout = 2 * time.Minute

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	if command == "version" {
		printVersion()
		return
	}
	if !isKnownCommand(command) {
		sanitized := sanitizeCommand(command)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitized) //nolint:gosec // G705 - input is sanitized via allowlist in sanitizeCommand
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Configuration error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(ctx, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to start: %v\n", err)
		os.Exit(1)
	}

	ok := run(ctx, a, command, args, os.Stdin, os.Stdout)

	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: shutdown error: %v\n", err)
	}
	if !ok {
		os.Exit(1)
	}
}

func isKnownCommand(command string) bool {
	switch command {
	case "save-temp", "commit", "thumb", "stats":
		return true
	}
	return false
}

func run(ctx context.Context, a *app.App, command string, args []string, stdin io.Reader, stdout *os.File) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	switch command {
	case "save-temp":
		return saveTemp(ctx, a, args, stdin, stdout)
	case "commit":
		return commit(ctx, a, args, stdout)
	case "thumb":
		return thumb(ctx, a, args, stdout)
	case "stats":
		return showStats(ctx, a, args, stdout)
	}
	return false
}

// sanitizeCommand returns a safe representation of a command string for display.
// Any character that is not alphanumeric, a hyphen, or an underscore becomes '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("Board Asset Store")
	fmt.Println("")
	fmt.Println("Usage: board-assets <command> [arguments]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  save-temp <file|->             - Store an image in the temp area, print its virtual path")
	fmt.Println("  commit <root> <path>...        - Move temp or external images into <root>/assets")
	fmt.Println("  thumb <uri> [out]              - Resolve a thumbnail request, write the body to out or stdout")
	fmt.Println("  stats [source]                 - Show catalog totals, or the cache entries for a source file")
	fmt.Println("  version                        - Show build information")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Println("  CACHE_DIR, THUMB_SCHEME, THUMB_DEFAULT_WIDTH, THUMB_STAMP_SOURCE,")
	fmt.Println("  THUMB_WORKERS, USE_VIPS, CATALOG_ENABLED, METRICS_ENABLED, LOG_LEVEL, MEMORY_RATIO")
}

func printVersion() {
	info := startup.GetBuildInfo()
	fmt.Printf("board-assets %s\n", info.Version)
	fmt.Printf("  Commit:     %s\n", info.Commit)
	fmt.Printf("  Build Time: %s\n", info.BuildTime)
	fmt.Printf("  Go:         %s (%s/%s)\n", info.GoVersion, info.OS, info.Arch)
}

func saveTemp(ctx context.Context, a *app.App, args []string, stdin io.Reader, stdout io.Writer) bool {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: save-temp takes exactly one file argument (use - for stdin)")
		return false
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = filesystem.ReadFileWithRetry(args[0], filesystem.DefaultRetryConfig())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return false
	}

	vp, err := a.SaveTemp(ctx, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to save image: %v\n", err)
		return false
	}
	fmt.Fprintln(stdout, vp)
	return true
}

func commit(ctx context.Context, a *app.App, args []string, stdout io.Writer) bool {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Error: commit needs a project root and at least one path")
		return false
	}

	paths, err := a.CommitAssets(ctx, args[0], args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to commit assets: %v\n", err)
		return false
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(paths); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return false
	}
	return true
}

func thumb(ctx context.Context, a *app.App, args []string, stdout *os.File) bool {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "Error: thumb takes a request URI and an optional output file")
		return false
	}
	if len(args) == 1 && term.IsTerminal(int(stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: refusing to write image data to a terminal; pass an output file or redirect stdout")
		return false
	}

	done := make(chan *protocol.Response, 1)
	a.Dispatch(args[0], func(resp *protocol.Response) {
		done <- resp
	})

	var resp *protocol.Response
	select {
	case resp = <-done:
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "Error: %v\n", ctx.Err())
		return false
	}

	fmt.Fprintf(os.Stderr, "%d %s (%s bytes)\n", resp.Status, resp.Header.Get("Content-Type"), resp.Header.Get("Content-Length"))
	if resp.Status != 200 {
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Body)
		return false
	}

	if len(args) == 2 {
		if err := filesystem.WriteFileAtomic(args[1], resp.Body, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", args[1], err)
			return false
		}
		return true
	}
	if _, err := stdout.Write(resp.Body); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return false
	}
	return true
}

func showStats(ctx context.Context, a *app.App, args []string, stdout io.Writer) bool {
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Error: stats takes at most one source path")
		return false
	}

	if len(args) == 1 {
		files, err := a.ThumbnailsFor(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		if len(files) == 0 {
			fmt.Fprintln(stdout, "No cached thumbnails")
			return true
		}
		for _, f := range files {
			fmt.Fprintln(stdout, f)
		}
		return true
	}

	stats, err := a.Stats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	fmt.Fprintf(stdout, "Temp assets:      %d\n", stats.TempAssets)
	fmt.Fprintf(stdout, "Permanent assets: %d\n", stats.PermanentAssets)
	fmt.Fprintf(stdout, "Thumbnails:       %d\n", stats.Thumbnails)
	fmt.Fprintf(stdout, "Thumbnail bytes:  %d\n", stats.ThumbnailBytes)
	return true
}
