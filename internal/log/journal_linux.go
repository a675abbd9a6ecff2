//go:build linux

package log

import (
	"log/slog"
	"os"
	"path"
	"strings"

	slogjournal "github.com/systemd/slog-journal"
)

// journalHandler returns a systemd journal handler when the process runs
// inside a .service cgroup, nil otherwise.
func journalHandler(level slog.Leveler) slog.Handler {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return nil
	}
	parts := strings.Split(strings.TrimSpace(string(content)), ":")
	if len(parts) < 3 || !strings.HasSuffix(path.Dir(parts[2]), ".service") {
		return nil
	}
	h, err := slogjournal.NewHandler(&slogjournal.Options{
		Level: level,
		ReplaceGroup: func(key string) string {
			return toJournalKey(key)
		},
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
	if err != nil {
		return nil
	}
	return h
}

func toJournalKey(str string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(str))
}
