package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"200", "404", "500", "503"} {
		ProtocolRequestsTotal.WithLabelValues(status)
	}

	for _, outcome := range []string{"passthrough", "hit", "generated", "error"} {
		ThumbnailRequestsTotal.WithLabelValues(outcome)
	}
	for _, backend := range []string{"imaging", "vips"} {
		ThumbnailGenerationDuration.WithLabelValues(backend)
	}
	for _, phase := range []string{"decode", "resize", "encode", "write"} {
		ThumbnailPhaseDuration.WithLabelValues(phase)
	}

	for _, location := range []string{"temp", "permanent"} {
		AssetsTotal.WithLabelValues(location)
		for _, result := range []string{"written", "deduplicated", "error"} {
			AssetWritesTotal.WithLabelValues(location, result)
		}
	}
	for _, outcome := range []string{"moved", "deduplicated", "imported", "passthrough", "fallback"} {
		AssetCommitItemsTotal.WithLabelValues(outcome)
	}

	volumes := []string{"temp", "thumbs", "assets", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"read", "write", "stat", "rename"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
		for _, op := range []string{"stat", "open"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, op := range []string{"record_asset", "forget_asset", "record_thumbnail", "stats", "thumbnails_for"} {
		CatalogQueryTotal.WithLabelValues(op, "success")
		CatalogQueryTotal.WithLabelValues(op, "error")
		CatalogQueryDuration.WithLabelValues(op)
	}
}
