package controllers

import (
	"errors"
	"net/http"

	"github.com/ivan23kor/logpiper/internal/runtime"
	"github.com/ivan23kor/logpiper/internal/session"
	logpkg "github.com/ivan23kor/logpiper/pkg/log"
)

// LogsController handles record retrieval endpoints.
//
// It exposes forward and reverse paginated reads, substring search, and raw
// line counts. Forward reads consume by default: delivered records are
// destructively removed and the session cursor advanced, so repeated polling
// yields each record exactly once.
type LogsController struct {
	rt *runtime.Runtime
}

// NewLogsController creates a new logs controller.
func NewLogsController(rt *runtime.Runtime) *LogsController {
	return &LogsController{rt: rt}
}

// RegisterRoutes registers log retrieval routes with the given mux.
func (c *LogsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/logs", c.handleRead)
	mux.HandleFunc("/v1/logs/search", c.handleSearch)
	mux.HandleFunc("/v1/logs/count", c.handleCount)
}

// handleRead serves one page of records.
//
// Query parameters:
//   - session (required)
//   - cursor: sequence number already seen; 0 or absent reads from the start
//   - limit: page size, defaults to the configured limit; an explicit 0 is a
//     probe returning no records but accurate totals
//   - reverse: most-recent-first page ending just before cursor
//   - consume: forward reads only; defaults to true
func (c *LogsController) handleRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("session")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	cfg := c.rt.Config().Retrieval
	cursor := parseCursor(q.Get("cursor"))
	limit := parseLimit(q.Get("limit"), cfg.DefaultLimit)
	reverse := parseBool(q.Get("reverse"), false)
	consume := parseBool(q.Get("consume"), true)

	var resp logsResp
	if reverse {
		page, err := c.rt.Records().ReadReverse(sessionID, cursor, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read records")
			return
		}
		resp = logsResp{
			Total:       page.Total,
			NextCursor:  page.NextCursor,
			PrevCursor:  page.PrevCursor,
			HasMore:     page.HasMore,
			HasPrevious: page.HasPrevious,
		}
		resp.Data = make([]recordJSON, 0, len(page.Records))
		for _, rec := range page.Records {
			resp.Data = append(resp.Data, toRecordJSON(rec))
		}
		// a reverse page's floor is not a delivery watermark; consuming
		// through it would drop records the client never saw
	} else {
		page, err := c.rt.Records().ReadForward(sessionID, cursor, limit, cfg.ReadMaxBytes)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read records")
			return
		}
		resp = logsResp{
			Total:       page.Total,
			NextCursor:  page.NextCursor,
			PrevCursor:  page.PrevCursor,
			HasMore:     page.HasMore,
			HasPrevious: page.HasPrevious,
		}
		resp.Data = make([]recordJSON, 0, len(page.Records))
		for _, rec := range page.Records {
			resp.Data = append(resp.Data, toRecordJSON(rec))
		}
		if consume && len(page.Records) > 0 {
			through := page.Records[len(page.Records)-1].SequenceNumber
			dropped, err := c.rt.Records().Consume(sessionID, through)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to consume records")
				return
			}
			resp.Consumed = dropped
			if err := c.rt.Sessions().AdvanceCursor(sessionID, through); err != nil && !errors.Is(err, session.ErrNotFound) {
				c.rt.Logger().Warn("advance session cursor",
					logpkg.Err(err), logpkg.Str("session", sessionID))
			}
		}
	}

	truncateLogsResp(&resp, cfg.ResponseMaxBytes)
	writeJSON(w, resp)
}

// handleSearch serves substring matches over a session's records.
//
// Cursors here are match ordinals, not sequence numbers: a cursor of N skips
// the first N matches. The query is matched case-insensitively against
// record content and the session's command string.
func (c *LogsController) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("session")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing q")
		return
	}
	cfg := c.rt.Config().Retrieval
	cursor := parseCursor(q.Get("cursor"))
	limit := parseLimit(q.Get("limit"), cfg.DefaultLimit)

	command := ""
	if sess, err := c.rt.Sessions().Load(sessionID); err == nil {
		command = sess.Metadata.Signature
	}

	page, err := c.rt.Records().Search(sessionID, query, command, cursor, limit, cfg.ReadMaxBytes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	resp := logsResp{
		Total:       page.Total,
		NextCursor:  page.NextCursor,
		PrevCursor:  page.PrevCursor,
		HasMore:     page.HasMore,
		HasPrevious: page.HasPrevious,
	}
	resp.Data = make([]recordJSON, 0, len(page.Records))
	for _, rec := range page.Records {
		resp.Data = append(resp.Data, toRecordJSON(rec))
	}
	truncateLogsResp(&resp, cfg.ResponseMaxBytes)
	writeJSON(w, resp)
}

// handleCount returns the raw stored line count for a session. Missing
// sessions count zero rather than erroring, matching the reader's
// graceful-degradation rule.
func (c *LogsController) handleCount(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	total, err := c.rt.Records().Count(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "count failed")
		return
	}
	writeJSON(w, countResp{SessionID: sessionID, Total: total})
}
