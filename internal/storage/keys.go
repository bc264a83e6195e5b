package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/xid"
)

// backupTimeLayout sorts lexicographically in chronological order, so a key
// listing of a user's backups is also a time-ordered listing.
const backupTimeLayout = "2006-01-02_15-04-05"

// JSONKey addresses the current JSON document for a user.
func JSONKey(username string) string {
	return username + "/data.json"
}

// BackupPrefix is the common prefix of all backup keys for a user.
func BackupPrefix(username string) string {
	return JSONKey(username) + ".backup."
}

// BackupKey addresses a point-in-time backup of the JSON document.
func BackupKey(username string, t time.Time) string {
	return BackupPrefix(username) + t.UTC().Format(backupTimeLayout)
}

// ParseBackupTime recovers the timestamp embedded in a backup key.
func ParseBackupTime(key string) (time.Time, error) {
	idx := strings.LastIndex(key, ".backup.")
	if idx < 0 {
		return time.Time{}, fmt.Errorf("not a backup key: %q", key)
	}
	stamp := key[idx+len(".backup."):]
	t, err := time.Parse(backupTimeLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad backup timestamp in %q: %w", key, err)
	}
	return t, nil
}

// ImageKey addresses an image under the user's img/ prefix. The filename is
// reduced to its base element so a crafted name cannot escape the prefix.
func ImageKey(username, filename string) string {
	return username + "/img/" + SanitizeFilename(filename)
}

// SanitizeFilename strips any path components from a client-supplied name.
func SanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
}

// InferContentType maps a file extension or data-URL type tag to a MIME
// type, defaulting to image/png for anything unrecognized.
func InferContentType(tag string) string {
	tag = strings.ToLower(strings.TrimPrefix(tag, "."))
	if ct, ok := contentTypes[tag]; ok {
		return ct
	}
	return "image/png"
}

// ExtForTag normalizes a type tag to the extension used for generated
// filenames (jpeg becomes jpg).
func ExtForTag(tag string) string {
	tag = strings.ToLower(strings.TrimPrefix(tag, "."))
	if _, ok := contentTypes[tag]; !ok {
		return "png"
	}
	if tag == "jpeg" {
		return "jpg"
	}
	return tag
}

// GenerateFilename produces a random collision-resistant filename for an
// image whose type tag was taken from its data URL.
func GenerateFilename(tag string) string {
	return xid.New().String() + "." + ExtForTag(tag)
}
