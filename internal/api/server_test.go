package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/models"
	"docqa/internal/providers"
	"docqa/internal/rag"
	"docqa/internal/storage"
	"docqa/internal/vector"

	"github.com/stretchr/testify/require"
)

const testDim = 16

type syncDispatcher struct{ p *rag.Pipeline }

func (d syncDispatcher) Submit(ctx context.Context, job rag.IngestJob) error {
	_, err := d.p.Ingest(ctx, job.DocumentID, job.Text)
	return err
}

type testEnv struct {
	srv   *httptest.Server
	store *storage.MemoryStore
	dir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Defaults()
	cfg.UploadDir = t.TempDir()
	cfg.ChunkSize = 40
	cfg.ChunkOverlap = 10

	store := storage.NewMemoryStore()
	mock := providers.NewMockProvider(testDim)
	emb := embedding.NewClient(mock, "mock", embedding.Options{Dimension: testDim})
	pipeline := rag.NewPipeline(emb, store, rag.PipelineOptions{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap, Concurrency: 2})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := rag.NewOrchestrator(emb, vector.NewSearcher(store, testDim, cfg.TopK), mock, "mock", rag.OrchestratorOptions{Recorder: store, Logger: logger})
	svc := rag.NewService(store, store, orch, syncDispatcher{p: pipeline}, logger)

	srv := httptest.NewServer(NewServer(cfg, svc, logger).Routes())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store, dir: cfg.UploadDir}
}

func upload(t *testing.T, url, name string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	resp, err := http.Post(url+"/uploadfile/", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestUploadAskAndFindSimilar(t *testing.T) {
	env := newTestEnv(t)
	text := "The lighthouse keeper logs every ship. Storms arrive in autumn. The lamp uses whale oil."

	resp := upload(t, env.srv.URL, "keeper.txt", []byte(text))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	up := decode[map[string]string](t, resp)
	require.Equal(t, "File saved", up["info"])
	docID := up["document_id"]
	require.NotEmpty(t, docID)
	_, err := os.Stat(env.dir + "/keeper.txt")
	require.NoError(t, err)

	resp, err = http.Get(env.srv.URL + "/")
	require.NoError(t, err)
	docs := decode[[]models.DocumentSummary](t, resp)
	require.Equal(t, []models.DocumentSummary{{ID: docID, Name: "keeper.txt"}}, docs)

	chunks, err := env.store.ListChunks(context.Background(), docID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	resp = postJSON(t, env.srv.URL+"/find-similar-chunks/"+docID, map[string]string{"question": chunks[1].Text})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	similar := decode[[]similarChunk](t, resp)
	require.Len(t, similar, len(chunks))
	require.Equal(t, chunks[1].ID, similar[0].ChunkID)
	require.Equal(t, chunks[1].Text, similar[0].ChunkText)

	resp = postJSON(t, env.srv.URL+"/ask/", map[string]string{"document_id": docID, "question": "What fuels the lamp?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answer := decode[map[string]string](t, resp)
	require.Contains(t, answer["response"], "What fuels the lamp?")

	resp, err = http.Get(env.srv.URL + "/documents/" + docID + "/chunks")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	env := newTestEnv(t)
	resp := upload(t, env.srv.URL, "setup.exe", []byte("MZ\x90\x00"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]map[string]string](t, resp)
	require.Equal(t, "DQ-API-4015", body["error"]["code"])

	docs, err := env.store.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Empty(t, docs)
	entries, err := os.ReadDir(env.dir)
	require.NoError(t, err)
	require.Empty(t, entries, "nothing may be written for a rejected upload")
}

func TestUploadCorruptPDF(t *testing.T) {
	env := newTestEnv(t)
	resp := upload(t, env.srv.URL, "broken.pdf", []byte("not a pdf"))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
	docs, _ := env.store.ListDocuments(context.Background())
	require.Empty(t, docs)
}

func TestAskUnknownDocumentStillAnswers(t *testing.T) {
	env := newTestEnv(t)
	resp := postJSON(t, env.srv.URL+"/ask/", map[string]string{"document_id": "no-such-doc", "question": "anything?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answer := decode[map[string]string](t, resp)
	require.Contains(t, answer["response"], fmt.Sprintf("grounded on %d characters", len(rag.SystemPromptPrefix)))
}

func TestAskValidation(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.srv.URL+"/ask/", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, env.srv.URL+"/ask/", map[string]string{"document_id": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(env.srv.URL + "/ask/")
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func TestListChunksUnknownDocument(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + "/documents/nope/chunks")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&rag.AnswerError{Stage: rag.StageEmbed, Err: providers.NewEmbeddingError("openai", errors.New("429"))}, http.StatusBadGateway},
		{&rag.AnswerError{Stage: rag.StageComplete, Err: providers.NewCompletionError("openai", errors.New("500"))}, http.StatusBadGateway},
		{&rag.AnswerError{Stage: rag.StageSearch, Err: &storage.PersistenceError{Op: "query", Err: errors.New("down")}}, http.StatusInternalServerError},
		{storage.ErrDocumentNotFound, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		require.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodOptions, env.srv.URL+"/ask/", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
