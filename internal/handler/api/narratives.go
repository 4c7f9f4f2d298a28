package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/jobs"
	"NarrativeRadar/internal/seeds"
	"NarrativeRadar/internal/usecase"
	xhttp "NarrativeRadar/pkg/http"
	xlogger "NarrativeRadar/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NarrativesHandler serves the discovery API: seeded narratives, their
// scored parents and the refresh job endpoints.
type NarrativesHandler struct {
	logger     *xlogger.Logger
	seeds      *seeds.Store
	refresher  *usecase.Refresher
	heatmap    *usecase.Heatmap
	tracker    *jobs.Tracker
	dispatcher jobs.Dispatcher
}

func NewNarrativesHandler(
	logger *xlogger.Logger,
	seedStore *seeds.Store,
	refresher *usecase.Refresher,
	heatmap *usecase.Heatmap,
	tracker *jobs.Tracker,
	dispatcher jobs.Dispatcher,
) *NarrativesHandler {
	return &NarrativesHandler{
		logger:     logger,
		seeds:      seedStore,
		refresher:  refresher,
		heatmap:    heatmap,
		tracker:    tracker,
		dispatcher: dispatcher,
	}
}

func (h *NarrativesHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/narratives", h.Narratives)
	g.GET("/narratives/heatmap", h.Heatmap)
	g.GET("/parents/:narrative", h.Parents)
	g.POST("/refresh", h.Refresh)
	g.POST("/refresh/async", h.RefreshAsync)
	g.GET("/refresh/status/:jobId", h.RefreshStatus)
}

type narrativeItem struct {
	Narrative string `json:"narrative"`
	Count     *int   `json:"count"`
}

type narrativesResponse struct {
	Window        string          `json:"window"`
	LastRefreshTs int64           `json:"lastRefreshTs"`
	Items         []narrativeItem `json:"items"`
}

func (h *NarrativesHandler) Narratives(c echo.Context) error {
	req := &models.NarrativesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	last, err := h.refresher.LastRefresh(c.Request().Context())
	if err != nil {
		h.logger.Error("last refresh lookup", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	names := h.seeds.Names()
	items := make([]narrativeItem, 0, len(names))
	for _, n := range names {
		items = append(items, narrativeItem{Narrative: n})
	}
	var ts int64
	if !last.IsZero() {
		ts = last.UnixMilli()
	}
	return xhttp.SuccessResponse(c, narrativesResponse{
		Window:        req.Window,
		LastRefreshTs: ts,
		Items:         items,
	})
}

type parentsResponse struct {
	Narrative  string                   `json:"narrative"`
	Window     string                   `json:"window"`
	Items      []models.ParentCandidate `json:"items"`
	NextCursor *string                  `json:"nextCursor"`
}

func (h *NarrativesHandler) Parents(c echo.Context) error {
	seed, ok := h.seeds.Get(c.Param("narrative"))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown narrative %q", c.Param("narrative")))
	}
	// snapshots are stored under the seed-file casing
	narrative := seed.Name

	req := &models.ParentsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, ok, err := h.refresher.Snapshot(c.Request().Context(), narrative)
	if err != nil {
		h.logger.Error("snapshot lookup",
			xlogger.String("narrative", narrative), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	var items []models.ParentCandidate
	if ok {
		items = snap.Candidates
	}

	start := 0
	if req.Cursor != "" {
		start, err = decodeCursor(req.Cursor)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid cursor"))
		}
	}
	if start > len(items) {
		start = len(items)
	}
	end := start + req.Limit
	if end > len(items) {
		end = len(items)
	}

	resp := parentsResponse{
		Narrative: narrative,
		Window:    req.Window,
		Items:     items[start:end],
	}
	if end < len(items) {
		cur := encodeCursor(end)
		resp.NextCursor = &cur
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *NarrativesHandler) Heatmap(c echo.Context) error {
	out, err := h.heatmap.Compute(c.Request().Context())
	if err != nil {
		h.logger.Error("heatmap compute", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"items": out})
}

func (h *NarrativesHandler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	if err := h.refresher.RefreshAll(ctx); err != nil {
		h.logger.Error("synchronous refresh", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	last, err := h.refresher.LastRefresh(ctx)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"ok":     true,
		"window": req.Window,
		"ts":     last.UnixMilli(),
	})
}

func (h *NarrativesHandler) RefreshAsync(c echo.Context) error {
	id := h.tracker.Start()
	if err := h.dispatcher.Dispatch(c.Request().Context(), id); err != nil {
		h.tracker.MarkError(id, err.Error())
		h.logger.Error("dispatch refresh job", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not schedule refresh"))
	}
	h.tracker.Sweep() // opportunistic cleanup
	return xhttp.SuccessResponse(c, map[string]string{"jobId": id})
}

func (h *NarrativesHandler) RefreshStatus(c echo.Context) error {
	id := c.Param("jobId")
	job, ok := h.tracker.Get(id)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown job %q", id))
	}
	return xhttp.SuccessResponse(c, job)
}

type cursorPayload struct {
	Offset int `json:"o"`
}

func encodeCursor(offset int) string {
	b, _ := json.Marshal(cursorPayload{Offset: offset})
	return base64.URLEncoding.EncodeToString(b)
}

func decodeCursor(cursor string) (int, error) {
	b, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("decode cursor: %w", err)
	}
	var p cursorPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return 0, fmt.Errorf("parse cursor: %w", err)
	}
	if p.Offset < 0 {
		return 0, fmt.Errorf("negative cursor offset")
	}
	return p.Offset, nil
}
