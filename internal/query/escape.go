package query

import "net/url"

// escape percent-encodes a parameter name or value for the query string.
// Commas and underscores stay literal so aggregated parameters (the hide
// list) remain readable in shared URLs.
func escape(s string) string {
	if !needsEscape(s) {
		return s
	}
	out := make([]byte, 0, len(s)*3)
	const hex = "0123456789ABCDEF"
	for i := 0; i < len(s); i++ {
		c := s[i]
		if plain(c) {
			out = append(out, c)
			continue
		}
		out = append(out, '%', hex[c>>4], hex[c&0xf])
	}
	return string(out)
}

func unescape(s string) string {
	out, err := url.QueryUnescape(s)
	if err != nil {
		// Malformed escapes are kept verbatim; the store has no error
		// conditions of its own.
		return s
	}
	return out
}

func needsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if !plain(s[i]) {
			return true
		}
	}
	return false
}

func plain(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', ',':
		return true
	}
	return false
}
