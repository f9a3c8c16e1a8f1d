package videos

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
)

// ObjectName combines the submission time in unix milliseconds with a sanitised
// copy of the original filename, e.g. "1700000000000_intro_lesson.mp4".
func ObjectName(now time.Time, filename string) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), sanitizeFilename(filename))
}

// ObjectPath places name under prefix.
func ObjectPath(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "upload"
	}
	return name
}

// ObjectPathFromLocator derives the storage-relative path of a media object from
// the last two path segments of its public locator. This holds only while the
// key prefix is a single segment and the locator ends with <prefix>/<name>.
func ObjectPathFromLocator(locator string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(locator))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLocatorUnparseable, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-2] == "" || segments[len(segments)-1] == "" {
		return "", ErrLocatorUnparseable
	}

	return strings.Join(segments[len(segments)-2:], "/"), nil
}
