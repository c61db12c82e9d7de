package urlutil

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Query parameters are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Canonicalize is pure and idempotent.
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// Scheme returns the lowercased scheme of ref, or "" when ref has none.
// A single letter followed by a colon is a Windows drive, not a scheme.
func Scheme(ref string) string {
	colon := strings.IndexByte(ref, ':')
	if colon < 2 {
		return ""
	}
	for i := 0; i < colon; i++ {
		c := ref[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return ""
		}
	}
	return lowerASCII(ref[:colon])
}

func HasScheme(ref string) bool {
	return Scheme(ref) != ""
}

// ReplaceScheme swaps the scheme of ref, keeping everything after the colon.
func ReplaceScheme(ref string, scheme string) string {
	current := Scheme(ref)
	if current == "" {
		return ref
	}
	return scheme + ref[len(current):]
}

// IsWindowsDrivePath reports paths such as `C:\Music\song.mp3` or `C:/Music`.
func IsWindowsDrivePath(ref string) bool {
	if len(ref) < 3 {
		return false
	}
	c := ref[0]
	isLetter := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
	return isLetter && ref[1] == ':' && (ref[2] == '\\' || ref[2] == '/')
}

// IsUNCPath reports `\\server\share` style network paths.
func IsUNCPath(ref string) bool {
	return strings.HasPrefix(ref, `\\`)
}

// FilePathToURI turns an absolute local path into a file URI.
func FilePathToURI(p string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String()
}

// URIToFilePath returns the local path behind a file URI or a bare absolute path.
func URIToFilePath(ref string) (string, bool) {
	switch Scheme(ref) {
	case "":
		if strings.HasPrefix(ref, "/") {
			return ref, true
		}
		return "", false
	case "file":
		u, err := url.Parse(ref)
		if err != nil || (u.Host != "" && u.Host != "localhost") {
			return "", false
		}
		return filepath.FromSlash(u.Path), true
	default:
		return "", false
	}
}

// Hostname returns the lowercased host of ref without port, or "" when ref
// does not parse or carries no host.
func Hostname(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return lowerASCII(u.Hostname())
}

// ResolveReference resolves a reference found inside a playlist against the
// playlist's base. Absolute references are returned unchanged. Windows drive
// paths keep only the drive-relative part and are anchored at the base's
// root; UNC paths become smb URIs; backslashes in relative references are
// treated as path separators.
func ResolveReference(base string, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	switch {
	case IsUNCPath(ref):
		rest := strings.ReplaceAll(strings.TrimLeft(ref, `\`), `\`, "/")
		u := url.URL{Scheme: "smb", Path: "/" + rest}
		if host, p, found := strings.Cut(rest, "/"); found {
			u.Host = host
			u.Path = "/" + p
		} else {
			u.Host = rest
			u.Path = ""
		}
		return u.String(), nil
	case IsWindowsDrivePath(ref):
		drivePath := strings.ReplaceAll(ref[2:], `\`, "/")
		if base == "" {
			return FilePathToURI("/" + ref[:2] + drivePath), nil
		}
		baseURL, err := parseBase(base)
		if err != nil {
			return "", err
		}
		anchored := url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host, User: baseURL.User, Path: path.Clean(drivePath)}
		return anchored.String(), nil
	case HasScheme(ref):
		return ref, nil
	}

	ref = strings.ReplaceAll(ref, `\`, "/")
	if base == "" {
		if strings.HasPrefix(ref, "/") {
			return FilePathToURI(ref), nil
		}
		return ref, nil
	}

	baseURL, err := parseBase(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(escapeStrayPercent(ref))
	if err != nil {
		return "", fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// escapeStrayPercent rewrites a '%' that does not start a valid escape as
// "%25", so hand-written names like "50% off.mp3" stay resolvable.
func escapeStrayPercent(ref string) string {
	if !strings.Contains(ref, "%") {
		return ref
	}
	var b strings.Builder
	b.Grow(len(ref) + 4)
	for i := 0; i < len(ref); i++ {
		if ref[i] == '%' && !(i+2 < len(ref) && isHex(ref[i+1]) && isHex(ref[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(ref[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// parseBase accepts either a URI or an absolute local path.
func parseBase(base string) (*url.URL, error) {
	if !HasScheme(base) && strings.HasPrefix(base, "/") {
		base = FilePathToURI(base)
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base %q: %w", base, err)
	}
	return u, nil
}

// lowerASCII converts ASCII characters to lowercase without allocating
// when the input is already lowercase.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}

	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
