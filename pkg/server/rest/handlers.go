package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/server"
	"lintang/routeplanner/pkg/server/rest/service"
	"lintang/routeplanner/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type NavigationService interface {
	ShortestPath(ctx context.Context, startX, startY, endX, endY float64) (service.ShortestPathResult, error)
	ShortestPathBatch(ctx context.Context, queries []service.RouteQuery) []service.BatchResult
}

type NavigationHandler struct {
	svc          NavigationService
	promeMetrics *metrics
	validate     *validator.Validate
	trans        ut.Translator
	maxBatchSize int
}

func NavigatorRouter(r *chi.Mux, svc NavigationService, m *metrics, maxBatchSize int) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &NavigationHandler{
		svc:          svc,
		promeMetrics: m,
		validate:     validate,
		trans:        trans,
		maxBatchSize: maxBatchSize,
	}

	r.Group(func(r chi.Router) {
		r.Route("/api/navigations", func(r chi.Router) {
			r.Post("/shortest-path", handler.shortestPath)
			r.Post("/shortest-path-batch", handler.shortestPathBatch)
			r.Get("/hello", handler.Hello)
		})
	})
}

// ShortestPathRequest koordinat start & end dalam skala 0-100 dari map extent.
type ShortestPathRequest struct {
	StartX *float64 `json:"start_x" validate:"required,gte=0,lte=100"`
	StartY *float64 `json:"start_y" validate:"required,gte=0,lte=100"`
	EndX   *float64 `json:"end_x" validate:"required,gte=0,lte=100"`
	EndY   *float64 `json:"end_y" validate:"required,gte=0,lte=100"`
}

func (s *ShortestPathRequest) Bind(r *http.Request) error {
	return nil
}

func (s *ShortestPathRequest) toQuery() service.RouteQuery {
	return service.RouteQuery{StartX: *s.StartX, StartY: *s.StartY, EndX: *s.EndX, EndY: *s.EndY}
}

type ShortestPathBatchRequest struct {
	Queries []ShortestPathRequest `json:"queries" validate:"required,min=1,dive"`
}

func (s *ShortestPathBatchRequest) Bind(r *http.Request) error {
	return nil
}

type ShortestPathResponse struct {
	Path             string                     `json:"path"`
	Dist             float64                    `json:"distance"`
	StraightLineDist float64                    `json:"straight_line_distance"`
	Found            bool                       `json:"found"`
	Route            []datastructure.Coordinate `json:"route"`
	Nodes            []datastructure.PathNode   `json:"nodes"`
	ExpandedNodes    int                        `json:"expanded_nodes"`
	Alg              string                     `json:"algorithm"`
}

func NewShortestPathResponse(res service.ShortestPathResult) *ShortestPathResponse {
	return &ShortestPathResponse{
		Path:             res.Polyline,
		Dist:             util.RoundFloat(res.Route.Distance, 2),
		StraightLineDist: util.RoundFloat(res.StraightLine, 3),
		Found:            res.Route.Found,
		Route:            res.Coordinates,
		Nodes:            res.Route.Path,
		ExpandedNodes:    res.Route.ExpandedNodes,
		Alg:              "A* Algorithm",
	}
}

type BatchItemResponse struct {
	Index  int                   `json:"index"`
	Result *ShortestPathResponse `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

type ShortestPathBatchResponse struct {
	Results []BatchItemResponse `json:"results"`
}

func (h *NavigationHandler) validateRequest(w http.ResponseWriter, r *http.Request, data interface{}) bool {
	if err := h.validate.Struct(data); err != nil {
		vv := translateError(err, h.trans)
		render.Render(w, r, ErrValidation(err, vv))
		return false
	}
	return true
}

// queryResultLabel label "result" untuk metric shortest path query.
func queryResultLabel(err error) string {
	switch server.CodeOf(err) {
	case server.ErrNotFound:
		return "not_found"
	case server.ErrBadParamInput:
		return "bad_request"
	default:
		return "error"
	}
}

func (h *NavigationHandler) observe(res service.ShortestPathResult, err error) {
	if err != nil {
		h.promeMetrics.SPQueryCount.WithLabelValues(queryResultLabel(err)).Inc()
		return
	}
	h.promeMetrics.SPQueryCount.WithLabelValues("found").Inc()
	h.promeMetrics.ExpandedNodes.Observe(float64(res.Route.ExpandedNodes))
}

func (h *NavigationHandler) shortestPath(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	q := data.toQuery()
	res, err := h.svc.ShortestPath(r.Context(), q.StartX, q.StartY, q.EndX, q.EndY)
	h.observe(res, err)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewShortestPathResponse(res))
}

func (h *NavigationHandler) shortestPathBatch(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathBatchRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}
	if len(data.Queries) > h.maxBatchSize {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("at most %d queries per batch", h.maxBatchSize)))
		return
	}

	queries := make([]service.RouteQuery, len(data.Queries))
	for i := range data.Queries {
		queries[i] = data.Queries[i].toQuery()
	}

	results := h.svc.ShortestPathBatch(r.Context(), queries)
	resp := &ShortestPathBatchResponse{Results: make([]BatchItemResponse, 0, len(results))}
	for _, res := range results {
		h.observe(res.Result, res.Err)
		item := BatchItemResponse{Index: res.Index}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			item.Result = NewShortestPathResponse(res.Result)
		}
		resp.Results = append(resp.Results, item)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *NavigationHandler) Hello(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, "Hello, World!")
}

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// errorStatus http status & status text untuk code dari server.Error.
func errorStatus(err error) (int, string) {
	switch server.CodeOf(err) {
	case server.ErrNotFound:
		return http.StatusNotFound, "Route not found."
	case server.ErrBadParamInput:
		return http.StatusBadRequest, "Invalid route query."
	default:
		return http.StatusInternalServerError, "Internal server error."
	}
}

func ErrChi(err error) render.Renderer {
	status, statusText := errorStatus(err)
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
