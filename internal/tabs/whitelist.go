package tabs

import (
	"log/slog"
	"regexp"
	"strings"
)

// whitelistRule is one compiled whitelist entry. Entries wrapped in slashes
// are regular expressions; anything else matches as a substring.
type whitelistRule struct {
	entry  string
	substr string
	re     *regexp.Regexp
}

// whitelist is the compiled form of Options.Whitelist, rebuilt whenever the
// options change so status computation never compiles patterns.
type whitelist []whitelistRule

func compileWhitelist(entries []string, logger *slog.Logger) whitelist {
	wl := make(whitelist, 0, len(entries))
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > 2 && strings.HasPrefix(trimmed, "/") && strings.HasSuffix(trimmed, "/") {
			re, err := regexp.Compile(trimmed[1 : len(trimmed)-1])
			if err != nil {
				logger.Warn("ignoring invalid whitelist pattern", "entry", entry, "error", err)
				continue
			}
			wl = append(wl, whitelistRule{entry: entry, re: re})
			continue
		}
		wl = append(wl, whitelistRule{entry: entry, substr: trimmed})
	}
	return wl
}

func (r whitelistRule) match(raw string) bool {
	if r.re != nil {
		return r.re.MatchString(raw)
	}
	return strings.Contains(raw, r.substr)
}

// match reports whether raw matches any entry.
func (w whitelist) match(raw string) bool {
	for _, rule := range w {
		if rule.match(raw) {
			return true
		}
	}
	return false
}

// matching returns the entries that match raw.
func (w whitelist) matching(raw string) []string {
	var out []string
	for _, rule := range w {
		if rule.match(raw) {
			out = append(out, rule.entry)
		}
	}
	return out
}
