package opensearch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchtransport"

	"github.com/dmitrymomot/searchkit/pkg/logger"
)

// transportLogger writes opensearch round trips to slog: failures at warn,
// everything else at debug. Bodies are never logged.
type transportLogger struct {
	log *slog.Logger
}

var _ opensearchtransport.Logger = transportLogger{}

func (l transportLogger) LogRoundTrip(req *http.Request, res *http.Response, err error, start time.Time, dur time.Duration) error {
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		logger.Node(req.URL.Host),
		slog.String("url", req.URL.Redacted()),
		logger.Duration(dur),
	}
	if res != nil {
		attrs = append(attrs, slog.Int("status", res.StatusCode))
	}

	if err != nil {
		attrs = append(attrs, logger.Error(err))
		l.log.LogAttrs(req.Context(), slog.LevelWarn, "opensearch request failed", attrs...)
		return nil
	}
	l.log.LogAttrs(req.Context(), slog.LevelDebug, "opensearch request", attrs...)
	return nil
}

func (transportLogger) RequestBodyEnabled() bool  { return false }
func (transportLogger) ResponseBodyEnabled() bool { return false }
