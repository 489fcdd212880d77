package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"docqa/internal/config"
	"docqa/internal/models"
	"docqa/internal/parser"
	"docqa/internal/providers"
	"docqa/internal/storage"
	"docqa/internal/util"
)

// DocumentService is the question-answering facade behind the routes.
type DocumentService interface {
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)
	CreateDocument(ctx context.Context, name, text string) (models.Document, error)
	AnswerQuestion(ctx context.Context, documentID, question string) (string, error)
	FindSimilarChunks(ctx context.Context, documentID, question string) ([]models.ChunkResult, error)
	ListChunks(ctx context.Context, documentID string) ([]models.Chunk, error)
}

type Server struct {
	cfg    config.Config
	svc    DocumentService
	logger *slog.Logger
}

type similarChunk struct {
	ChunkID   int64   `json:"chunk_id"`
	ChunkText string  `json:"chunk_text"`
	Distance  float64 `json:"distance"`
}

func NewServer(cfg config.Config, svc DocumentService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, svc: svc, logger: logger}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/documents", s.handleRoot)
	mux.HandleFunc("/documents/", s.handleDocumentsScoped)
	mux.HandleFunc("/uploadfile/", s.handleUpload)
	mux.HandleFunc("/ask/", s.handleAsk)
	mux.HandleFunc("/find-similar-chunks/", s.handleFindSimilar)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/documents" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	docs, err := s.svc.ListDocuments(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDocumentsScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/documents/"), "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "chunks" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	chunks, err := s.svc.ListChunks(r.Context(), parts[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_id": parts[0], "chunks": chunks})
}

// handleUpload checks the extension before touching disk, then saves, parses
// and registers the document. Ingestion runs after the response.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	fh, ok := uploadedFile(r.MultipartForm.File)
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no file provided"))
		return
	}
	if err := parser.ValidateExtension(fh.Filename); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	path, err := saveUploadedFile(s.cfg.UploadDir, fh)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	text, err := parser.Parse(path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := filepath.Base(fh.Filename)
	doc, err := s.svc.CreateDocument(r.Context(), name, text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"info":        "File saved",
		"filename":    name,
		"document_id": doc.ID,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		DocumentID string `json:"document_id"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	if req.DocumentID == "" || strings.TrimSpace(req.Question) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("document_id and question are required"))
		return
	}
	answer, err := s.svc.AnswerQuestion(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"response": answer})
}

func (s *Server) handleFindSimilar(w http.ResponseWriter, r *http.Request) {
	documentID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/find-similar-chunks/"), "/")
	if documentID == "" || strings.Contains(documentID, "/") {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}
	results, err := s.svc.FindSimilarChunks(r.Context(), documentID, req.Question)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]similarChunk, 0, len(results))
	for _, c := range results {
		out = append(out, similarChunk{ChunkID: c.ID, ChunkText: c.Text, Distance: c.Distance})
	}
	writeJSON(w, http.StatusOK, out)
}

// fail logs err and answers with the status its type maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeErr(w, status, err)
}

func statusFor(err error) int {
	var (
		parseErr   *parser.ParseError
		embedErr   *providers.EmbeddingProviderError
		completeEr *providers.CompletionProviderError
	)
	switch {
	case errors.Is(err, parser.ErrUnsupportedExtension):
		return http.StatusBadRequest
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.As(err, &embedErr), errors.As(err, &completeEr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if _, err := util.WriteFileAtomic(finalPath, src); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return finalPath, nil
}

// uploadedFile prefers the "file" form field and falls back to any single file.
func uploadedFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	if v := m["file"]; len(v) > 0 {
		return v[0], true
	}
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}
