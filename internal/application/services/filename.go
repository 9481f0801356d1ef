package services

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fileshare-api/internal/domain/shared_file"
)

const (
	maxFileNameBytes = 255
	maxSlugLen       = 64
	fallbackName     = "file"
)

var windowsReserved = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// cleanFileName returns the name shown to the recipient. It keeps the
// client's spelling (NFC normalized) but drops any directory part, control
// characters and leading dots.
func cleanFileName(original string) string {
	s := strings.ReplaceAll(original, "\\", "/")
	s = path.Base(strings.TrimSpace(s))
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(strings.TrimLeft(s, "."))
	if s == "" || s == "/" {
		return fallbackName
	}

	ext := path.Ext(s)
	base := strings.TrimSuffix(s, ext)
	if _, bad := windowsReserved[strings.ToLower(base)]; bad {
		base = "_" + base
	}
	if base == "" {
		base = fallbackName
	}
	if len(ext) > maxFileNameBytes/2 {
		ext = ""
	}

	return truncateRunes(base, maxFileNameBytes-len(ext)) + ext
}

func truncateRunes(s string, maxBytes int) string {
	for len(s) > maxBytes {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

// asciiFold strips combining marks: "résumé" becomes "resume".
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slug lowercases to [a-z0-9-]; every other run of characters becomes one '-'.
func slug(s string) string {
	s, _, _ = transform.String(asciiFold, s)

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	return out
}

// storageKey: "shared/YYYY/MM/DD/<file-id>/<slug>.<ext>.enc". Only ASCII ends
// up in object keys whatever the display name holds.
func storageKey(fileID shared_file.ID, fileName, contentType string, now time.Time) string {
	ext := slug(strings.TrimPrefix(path.Ext(fileName), "."))
	if ext == "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
				ext = slug(strings.TrimPrefix(exts[0], "."))
			}
		}
	}
	if ext == "" {
		ext = "bin"
	}

	base := slug(strings.TrimSuffix(fileName, path.Ext(fileName)))
	if base == "" {
		base = fallbackName
	}

	now = now.UTC()
	return fmt.Sprintf(
		"shared/%04d/%02d/%02d/%s/%s.%s.enc",
		now.Year(), int(now.Month()), now.Day(),
		strings.ReplaceAll(fileID.String(), "-", ""),
		base, ext,
	)
}
