package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotConfigured is returned when the deployment has no backing bucket.
	ErrNotConfigured = errors.New("media storage is not configured")

	// ErrForbidden is returned when the caller does not own the target key.
	ErrForbidden = errors.New("caller does not own this media")

	// ErrMissingField is returned when a required request field is absent.
	ErrMissingField = errors.New("required field is missing")

	// ErrInvalidTimeRange is returned when a segment time range is not 0 <= start < end.
	ErrInvalidTimeRange = errors.New("invalid segment time range")
)

// Storage key namespaces. The second path segment of a key is the id of
// the identity allowed to mutate or delete the object.
const (
	NamespaceUploads = "uploads"
	NamespaceAvatars = "avatars"
)

// ProcessedSuffix is inserted before the extension of a key produced by
// segment processing, e.g. "a.mp4" -> "a_processed.mp4".
const ProcessedSuffix = "_processed"

// ExtensionFor maps a requested content type to a storage extension.
// Video types map to mp4, anything mentioning png maps to png, and
// everything else (including absent or malformed types) maps to jpg.
func ExtensionFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" || !strings.Contains(ct, "/") {
		ct = "image/jpeg"
	}
	switch {
	case strings.HasPrefix(ct, "video/"):
		return "mp4"
	case strings.Contains(ct, "png"):
		return "png"
	default:
		return "jpg"
	}
}

// imageExtensionFor is ExtensionFor without the video branch, used for
// avatar keys which only ever hold images.
func imageExtensionFor(contentType string) string {
	if ext := ExtensionFor(contentType); ext == "png" {
		return "png"
	}
	return "jpg"
}

// NewUploadKey builds a key for a general media upload:
// uploads/{callerID}/{epochMillis}_{8-char-random}.{ext}
// The random suffix keeps keys issued within the same millisecond distinct.
func NewUploadKey(callerID, contentType string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%s/%d_%s.%s",
		NamespaceUploads, callerID, time.Now().UnixMilli(), suffix, ExtensionFor(contentType))
}

// NewAvatarKey builds a key for an avatar upload:
// avatars/{callerID}/{epochMillis}.{ext}
// No random suffix: avatar writes are rare per user, so last write for a
// given millisecond winning is acceptable.
func NewAvatarKey(callerID, contentType string) string {
	return fmt.Sprintf("%s/%s/%d.%s",
		NamespaceAvatars, callerID, time.Now().UnixMilli(), imageExtensionFor(contentType))
}

// DeriveProcessedKey inserts ProcessedSuffix immediately before the final
// extension of key. Keys without an extension get the suffix appended.
// The derivation is 1:1 and must be applied at most once per source key.
func DeriveProcessedKey(key string) string {
	dot := strings.LastIndex(key, ".")
	if dot < 0 || dot < strings.LastIndex(key, "/") {
		return key + ProcessedSuffix
	}
	return key[:dot] + ProcessedSuffix + key[dot:]
}

// Owns reports whether callerID is allowed to mutate or delete key.
//
// The check is substring containment over the whole key, which matches
// the current production policy. A key that happens to contain another
// caller's id inside a longer segment is incorrectly allowed; see the
// tests pinning that behavior before tightening this to an exact
// owner-segment match.
func Owns(callerID, key string) bool {
	if callerID == "" {
		return false
	}
	return strings.Contains(key, callerID)
}
