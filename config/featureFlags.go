package config

import (
	"os"
	"strings"
)

func boolFromEnv(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// ExportPrunePhotos clears local photo references after they are embedded
// into an exported workbook, so a photo lives either in the working set or
// in the latest export but not both.
//
// Set via env:
// - EXPORT_PRUNE_PHOTOS=true (default true)
func ExportPrunePhotos() bool {
	return boolFromEnv("EXPORT_PRUNE_PHOTOS", true)
}

// MediaWidenedFallback enables the second, loosened image-to-row search pass
// (±1 row, broad column band) used to recover from anchor drift introduced
// by spreadsheet tools.
//
// Set via env:
// - MEDIA_WIDENED_FALLBACK=true (default true)
func MediaWidenedFallback() bool {
	return boolFromEnv("MEDIA_WIDENED_FALLBACK", true)
}

// PhotoObjectDelete removes the stored photo object itself when a pruned
// record drops its reference. With the flag off the object stays in the
// bucket for manual cleanup.
//
// Set via env:
// - PHOTO_OBJECT_DELETE=true (default true)
func PhotoObjectDelete() bool {
	return boolFromEnv("PHOTO_OBJECT_DELETE", true)
}

// AuditEventsEnabled turns on publishing of import/export audit events to
// Pub/Sub. Requires PUBSUB_PROJECT_ID and AUDIT_TOPIC.
//
// Set via env:
// - AUDIT_EVENTS=true
func AuditEventsEnabled() bool {
	return boolFromEnv("AUDIT_EVENTS", false)
}
