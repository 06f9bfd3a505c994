/*
Package filesystem provides the file operations shared by the asset store and
the thumbnail cache.

# Retry Wrappers

StatWithRetry, OpenWithRetry and ReadFileWithRetry wrap the os functions with
exponential backoff for NFS stale file handle errors (ESTALE). Project folders
and external images frequently live on network shares; every other error
fails immediately.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Defaults: 3 retries, 50ms initial backoff, 500ms cap.

# Writes

  - WriteFileAtomic writes to a temporary sibling and renames it into place,
    so a reader never observes a partially written file.
  - WriteFileIfAbsent is the content-addressed write: it does nothing when the
    destination exists. Concurrent writers of the same name race benignly
    because they write identical bytes.
  - MoveFile renames, falling back to copy-then-remove when the rename fails
    (for example across devices).

# Metrics

Operations are reported to the Observer installed with SetObserver. The
metrics package provides the Prometheus implementation; with no observer the
calls are skipped, which keeps tests free of global state.
*/
package filesystem
