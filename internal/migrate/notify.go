package migrate

import (
	"context"
	"log/slog"
	"sort"
)

// LogNotifier writes each conversion of a change report to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// NotifyConversions logs one line per substituted instance type.
func (n LogNotifier) NotifyConversions(ctx context.Context, conversions map[string]string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	from := make([]string, 0, len(conversions))
	for k := range conversions {
		from = append(from, k)
	}
	sort.Strings(from)
	for _, k := range from {
		logger.InfoContext(ctx, "node conversion", "from", k, "to", conversions[k])
	}
	return nil
}
