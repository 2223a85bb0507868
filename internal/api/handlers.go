package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ganttsync/pkg/buildinfo"
	"github.com/matzehuels/ganttsync/pkg/errors"
	gsio "github.com/matzehuels/ganttsync/pkg/io"
	"github.com/matzehuels/ganttsync/pkg/mutate"
	"github.com/matzehuels/ganttsync/pkg/pipeline"
	"github.com/matzehuels/ganttsync/pkg/views"
)

type sourceRequest struct {
	Source string `json:"source"`
}

type riskRequest struct {
	LongDurationFactor float64 `json:"longDurationFactor,omitempty"`
	MinSectionSize     int     `json:"minSectionSize,omitempty"`
	BehindThreshold    int     `json:"behindThreshold,omitempty"`
}

type analyzeRequest struct {
	Source    string      `json:"source"`
	Today     string      `json:"today,omitempty"`
	Assignees []string    `json:"assignees,omitempty"`
	Risk      riskRequest `json:"risk,omitzero"`
}

type analyzeResponse struct {
	*pipeline.Result
	Rows []views.Row `json:"rows"`
}

// editRequest carries the source next to the edit fields. The raw update
// and newTask objects shadow the typed ones so they can be schema-checked.
type editRequest struct {
	Source string `json:"source"`
	pipeline.Edit

	Update  json.RawMessage `json:"update,omitempty"`
	NewTask json.RawMessage `json:"newTask,omitempty"`
}

type editResponse struct {
	mutate.Result
	Message string `json:"message,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]pipeline.Op{"ops": pipeline.Ops})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := errors.ValidateSource(req.Source); err != nil {
		writeErr(w, r, err)
		return
	}
	parsed, err := s.runner.Parse(r.Context(), req.Source)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := errors.ValidateSource(req.Source); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := errors.ValidateDate("today", req.Today); err != nil {
		writeErr(w, r, err)
		return
	}
	result, err := s.runner.Analyze(r.Context(), req.Source, pipeline.Options{
		Risk: views.RiskOptions{
			Today:              req.Today,
			LongDurationFactor: req.Risk.LongDurationFactor,
			MinSectionSize:     req.Risk.MinSectionSize,
			BehindThreshold:    req.Risk.BehindThreshold,
		},
		Assignees: req.Assignees,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Result: result, Rows: result.Rows})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := errors.ValidateSource(req.Source); err != nil {
		writeErr(w, r, err)
		return
	}

	e := req.Edit
	e.Op = pipeline.Op(chi.URLParam(r, "op"))
	if len(req.Update) > 0 {
		u, err := gsio.DecodeUpdate(bytes.NewReader(req.Update))
		if err != nil {
			writeErr(w, r, err)
			return
		}
		e.Update = u
	}
	if len(req.NewTask) > 0 {
		nt, err := gsio.DecodeNewTask(bytes.NewReader(req.NewTask))
		if err != nil {
			writeErr(w, r, err)
			return
		}
		e.NewTask = nt
	}

	res, err := s.runner.Apply(r.Context(), req.Source, e)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editResponse{Result: res, Message: res.Notice.Message()})
}

// decode reads a JSON body of at most MaxBodyBytes into v, writing the
// error response itself when that fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			writeError(w, r, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput), "request body too large")
			return false
		}
		writeErr(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}
