package events

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize/english"
)

const (
	maxURLLength      = 60
	maxMessageLength  = 100
	truncateIndicator = "..."
)

// Format renders an event as one human-readable line. Unknown or nil
// events render as "".
func Format(event Event) string {
	switch e := event.(type) {
	case *DaemonStartEvent:
		return fmt.Sprintf("daemon started: %s, %s", SafeString(e.Socket), english.Plural(e.Tabs, "tab", ""))
	case *DaemonStopEvent:
		if r := SafeString(e.Reason); r != "" {
			return fmt.Sprintf("daemon stopped: %s", r)
		}
		return "daemon stopped"
	case *TabsLoadedEvent:
		return fmt.Sprintf("loaded %s from %s", english.Plural(e.Count, "tab", ""), SafeString(e.Path))
	case *TabInfoEvent:
		return formatTabInfo(e)
	case *HighlightedEvent:
		return fmt.Sprintf("selection query: %s", english.Plural(e.Count, "tab", ""))
	case *CommandEvent:
		return formatCommand(e)
	case *OptionChangedEvent:
		return fmt.Sprintf("option %s = %v", SafeString(e.Name), e.Value)
	case *ErrorEvent:
		severity := SafeString(e.Severity)
		if severity == "" {
			severity = SeverityError
		}
		return fmt.Sprintf("%s: %s", strings.ToUpper(severity), Truncate(e.Message, maxMessageLength))
	default:
		return ""
	}
}

// FormatWithTimestamp prefixes Format's output with the event's clock time.
func FormatWithTimestamp(event Event) string {
	if event == nil {
		return ""
	}
	ts := event.Timestamp().Format("15:04:05")
	detail := Format(event)
	if detail == "" {
		return fmt.Sprintf("[%s] %s", ts, event.Type())
	}
	return fmt.Sprintf("[%s] %s", ts, detail)
}

func formatTabInfo(e *TabInfoEvent) string {
	fresh := ""
	if e.ForceFresh {
		fresh = " (fresh)"
	}
	if e.TabID == 0 {
		return fmt.Sprintf("status query%s: %s", fresh, SafeString(e.Status))
	}
	return fmt.Sprintf("status query%s: tab %d is %s", fresh, e.TabID, SafeString(e.Status))
}

func formatCommand(e *CommandEvent) string {
	name := SafeString(e.Name)
	if e.Status != "" {
		name = fmt.Sprintf("%s(%s)", name, SafeString(e.Status))
	}
	if e.Error != "" {
		return fmt.Sprintf("[x] %s: %s", name, Truncate(e.Error, maxMessageLength))
	}
	if len(e.Affected) == 0 {
		return fmt.Sprintf("[+] %s", name)
	}
	return fmt.Sprintf("[+] %s: %s", name, english.Plural(len(e.Affected), "tab", ""))
}

// Truncate shortens s to maxLen runes, ending with "..." when cut.
func Truncate(s string, maxLen int) string {
	s = SafeString(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(truncateIndicator) {
		return truncateIndicator
	}
	return string(runes[:maxLen-len(truncateIndicator)]) + truncateIndicator
}

// TruncateURL shortens a URL for single-line display.
func TruncateURL(u string) string {
	return Truncate(u, maxURLLength)
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// SafeString strips escape sequences and control characters and collapses
// whitespace so untrusted page titles cannot break terminal output.
func SafeString(s string) string {
	s = StripANSI(s)
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == ' ' || !unicode.IsControl(r) {
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
