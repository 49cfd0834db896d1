// Package server exposes the pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/models"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/rag"
)

// maxUploadBytes bounds multipart uploads held in memory.
const maxUploadBytes = 32 << 20

type Server struct {
	rag *rag.RAG
}

func New(r *rag.RAG) *Server {
	return &Server{rag: r}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rag/query", s.handleQuery)
	mux.HandleFunc("GET /rag/data", s.handleData)
	mux.HandleFunc("POST /rag/ingest/file", s.handleIngestFile)
	return mux
}

type contextItem struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type queryResponse struct {
	Answer   string        `json:"answer"`
	Contexts []contextItem `json:"contexts"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	source := r.URL.Query().Get("source")
	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "k must be an integer")
			return
		}
		k = parsed
	}

	result, err := s.rag.Query(r.Context(), q, k, source)
	if err != nil {
		writeFailure(w, err)
		return
	}

	contexts := make([]contextItem, len(result.Contexts))
	for i, c := range result.Contexts {
		contexts[i] = contextItem{ID: c.ID, Source: c.Source, Content: c.Content, Score: c.Score}
	}
	writeJSON(w, http.StatusOK, queryResponse{Answer: result.Answer, Contexts: contexts})
}

type dataResponse struct {
	Data []models.TableSnapshot `json:"data"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.rag.Data(r.Context(), r.URL.Query().Get("source"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if snapshots == nil {
		snapshots = []models.TableSnapshot{}
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: snapshots})
}

func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file")
		return
	}

	source := r.URL.Query().Get("source")
	result, err := s.rag.Ingest(r.Context(), source, header.Filename, data)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, rag.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
