package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"StockRoaster/internal/model"
	"StockRoaster/internal/pipeline"
	"StockRoaster/internal/present"
)

// Roaster runs one roast request to completion.
type Roaster interface {
	Run(ctx context.Context, req pipeline.Request) *pipeline.Result
	Defaults() pipeline.Defaults
}

type RoastHandler struct {
	roaster   Roaster
	presenter present.HTMLPresenter
}

func NewRoastHandler(r Roaster) *RoastHandler {
	return &RoastHandler{roaster: r}
}

type htmlView struct {
	Chart, Stats, Roast, Error template.HTML
}

type pageData struct {
	Query  string
	Symbol string
	Period model.Period
	Tone   model.Tone
	Lines  int
	// Intensity is 0 when unset; the input is left blank.
	Intensity int
	Periods   []model.Period
	Tones     []model.Tone
	View      *htmlView
}

func (h *RoastHandler) page(req pipeline.Request) pageData {
	return pageData{
		Query:     req.Query,
		Period:    req.Period,
		Tone:      req.Tone,
		Lines:     req.Lines,
		Intensity: req.Intensity,
		Periods:   model.Periods,
		Tones:     model.Tones,
	}
}

// Index renders the empty form.
func (h *RoastHandler) Index(c *gin.Context) {
	d := h.roaster.Defaults()
	c.HTML(http.StatusOK, "index.html", h.page(pipeline.Request{Period: d.Period, Tone: d.Tone, Lines: d.Lines}))
}

// Roast handles the form submission and renders either the full result or
// a single error message.
func (h *RoastHandler) Roast(c *gin.Context) {
	d := h.roaster.Defaults()
	req, err := pipeline.ParseRequest(c.PostForm("q"), c.PostForm("period"), c.PostForm("tone"), c.PostForm("lines"), c.PostForm("intensity"), d)
	data := h.page(req)
	if data.Period == "" {
		data.Period = d.Period
	}
	if data.Tone == "" {
		data.Tone = d.Tone
	}
	if data.Lines == 0 {
		data.Lines = d.Lines
	}
	if err != nil {
		data.View = &htmlView{Error: template.HTML(h.presenter.RenderError(asModelError(err)))}
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}

	res := h.roaster.Run(c.Request.Context(), req)
	v := present.Compose(h.presenter, res)
	data.Symbol = res.Symbol
	data.View = &htmlView{
		Chart: template.HTML(v.Chart),
		Stats: template.HTML(v.Stats),
		Roast: template.HTML(v.Roast),
		Error: template.HTML(v.Error),
	}
	status := http.StatusOK
	if !res.OK() {
		status = StatusFor(res.Err.Kind)
	}
	c.HTML(status, "index.html", data)
}

type errorBody struct {
	Kind     model.ErrorKind `json:"kind"`
	Message  string          `json:"message"`
	Upstream int             `json:"upstream_status,omitempty"`
}

type roastResponse struct {
	RequestID  string                `json:"request_id,omitempty"`
	Symbol     string                `json:"symbol,omitempty"`
	Snapshot   *model.MarketSnapshot `json:"snapshot,omitempty"`
	Closes     []float64             `json:"closes,omitempty"`
	Roast      string                `json:"roast,omitempty"`
	RoastLines []string              `json:"roast_lines,omitempty"`
	Error      *errorBody            `json:"error,omitempty"`
	Trace      []pipeline.State      `json:"trace,omitempty"`
	ElapsedMS  int64                 `json:"elapsed_ms"`
}

// RoastJSON is GET /api/roast?q=&period=&tone=&lines=&intensity=.
func (h *RoastHandler) RoastJSON(c *gin.Context) {
	req, err := pipeline.ParseRequest(c.Query("q"), c.Query("period"), c.Query("tone"), c.Query("lines"), c.Query("intensity"), h.roaster.Defaults())
	if err != nil {
		e := asModelError(err)
		c.JSON(StatusFor(e.Kind), roastResponse{Error: &errorBody{Kind: e.Kind, Message: e.UserMessage()}})
		return
	}

	res := h.roaster.Run(c.Request.Context(), req)
	out := roastResponse{
		RequestID: res.RequestID,
		Symbol:    res.Symbol,
		Trace:     res.Trace,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}
	if !res.OK() {
		out.Error = &errorBody{Kind: res.Err.Kind, Message: res.Err.UserMessage(), Upstream: res.Err.Status}
		c.JSON(StatusFor(res.Err.Kind), out)
		return
	}
	out.Snapshot = res.Snapshot
	out.Closes = res.Series.Closes()
	out.Roast = res.Roast
	out.RoastLines = present.RoastLines(present.PlainText(res.Roast))
	c.JSON(http.StatusOK, out)
}

// Health reports liveness.
func (h *RoastHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// StatusFor maps an error kind onto the HTTP status returned to callers.
func StatusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindInputInvalid:
		return http.StatusBadRequest
	case model.KindSymbolNotFound, model.KindDataUnavailable:
		return http.StatusNotFound
	case model.KindRateLimit:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func asModelError(err error) *model.Error {
	var e *model.Error
	if errors.As(err, &e) {
		return e
	}
	slog.Warn("untyped request error", "error", err)
	return model.NewError(model.KindInputInvalid, err.Error(), nil)
}
