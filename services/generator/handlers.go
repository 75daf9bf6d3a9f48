package main

import (
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kacperborowieckb/gen-csv/shared/synth"
	"github.com/kacperborowieckb/gen-csv/utils/errors"
	"github.com/kacperborowieckb/gen-csv/utils/json"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type generatorServer struct {
	synth          *synth.Service
	maxUploadBytes int64
	maxDescription int
	validate       *validator.Validate
}

func newGeneratorServer(svc *synth.Service, cfg config) *generatorServer {
	return &generatorServer{
		synth:          svc,
		maxUploadBytes: cfg.MaxUploadBytes,
		maxDescription: cfg.MaxDescriptionChars,
		validate:       validator.New(),
	}
}

type indexPage struct {
	Rows           int
	MaxDescription int
	Description    string
	Output         string
	Model          string
	PromptVersion  string
	Warnings       []string
}

// generateResponse is the JSON form of a result: the Result fields when OK,
// kind and error otherwise.
type generateResponse struct {
	OK bool `json:"ok"`
	*synth.Result
	Kind  synth.ErrorKind `json:"kind,omitempty"`
	Error string          `json:"error,omitempty"`
}

type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }

func (s *generatorServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, indexPage{})
}

func (s *generatorServer) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	req, reqErr := s.readRequest(w, r)
	if reqErr != nil {
		log.Printf("form submit rejected: %v", reqErr)
		s.renderIndex(w, r, indexPage{Description: req.Description, Output: synth.ErrorMarker + reqErr.Error()})
		return
	}

	res, err := s.synth.Generate(r.Context(), req)

	page := indexPage{Description: req.Description, Output: synth.Render(res, err)}
	if res != nil {
		page.Model = res.Model
		page.PromptVersion = res.PromptVersion
		page.Warnings = res.Report.Warnings
	}

	s.renderIndex(w, r, page)
}

func (s *generatorServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, reqErr := s.readRequest(w, r)
	if reqErr != nil {
		if reqErr.status == http.StatusRequestEntityTooLarge {
			errors.PayloadTooLargeResponse(w, r, reqErr.err)
		} else {
			errors.BadRequestResponse(w, r, reqErr.err)
		}
		return
	}

	res, err := s.synth.Generate(r.Context(), req)
	status := statusFor(err)

	if wantsJSON(r) {
		payload := generateResponse{OK: err == nil, Result: res}
		if err != nil {
			payload.Kind = synth.KindOf(err)
			payload.Error = strings.TrimPrefix(synth.Render(nil, err), synth.ErrorMarker)
		}
		if err := json.WriteJSON(w, status, payload); err != nil {
			log.Printf("Error writing generate response: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, synth.Render(res, err))
}

// readRequest extracts the description and optional file from a multipart
// or urlencoded form.
func (s *generatorServer) readRequest(w http.ResponseWriter, r *http.Request) (synth.Request, *requestError) {
	var req synth.Request

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return req, &requestError{http.StatusRequestEntityTooLarge, fmt.Errorf("request exceeds %d bytes", s.maxUploadBytes)}
		case stderrors.Is(err, http.ErrNotMultipart):
			if err := r.ParseForm(); err != nil {
				return req, &requestError{http.StatusBadRequest, fmt.Errorf("error parsing form: %w", err)}
			}
		default:
			return req, &requestError{http.StatusBadRequest, fmt.Errorf("error parsing multipart form: %w", err)}
		}
	}

	req.Description = r.FormValue("description")
	if err := s.validate.Var(req.Description, fmt.Sprintf("max=%d", s.maxDescription)); err != nil {
		return req, &requestError{http.StatusBadRequest, fmt.Errorf("description must be at most %d characters", s.maxDescription)}
	}

	if r.MultipartForm == nil {
		return req, nil
	}

	file, fileHeader, err := r.FormFile("file")
	if stderrors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return req, &requestError{http.StatusBadRequest, fmt.Errorf("error retrieving 'file': %w", err)}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		return req, &requestError{http.StatusBadRequest, fmt.Errorf("error reading file content: %w", err)}
	}
	if int64(len(data)) > s.maxUploadBytes {
		return req, &requestError{http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds %d bytes", s.maxUploadBytes)}
	}

	log.Printf("Received file %s (%d bytes)", fileHeader.Filename, len(data))
	req.File = &synth.Upload{Filename: fileHeader.Filename, Data: data}

	return req, nil
}

func (s *generatorServer) renderIndex(w http.ResponseWriter, r *http.Request, page indexPage) {
	page.Rows = synth.TargetRows
	page.MaxDescription = s.maxDescription

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		errors.InternalServerError(w, r, fmt.Errorf("render index: %w", err))
	}
}

func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch synth.KindOf(err) {
	case synth.KindInvalidCSV, synth.KindNoColumns, synth.KindMissingInput:
		return http.StatusBadRequest
	case synth.KindMissingCredential:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") || r.URL.Query().Get("format") == "json"
}
