package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/algonotes/internal/attachments"
	"github.com/starford/algonotes/internal/postservice"
	"github.com/starford/algonotes/internal/render"
	"github.com/starford/algonotes/internal/testutil"
)

type testEnv struct {
	router     http.Handler
	contentDir string
	attach     *attachments.Store
}

// newTestEnv sets up a temp content dir, SQLite DB, service, and router.
// An empty token means auth is disabled.
func newTestEnv(t *testing.T, token string, events http.Handler) *testEnv {
	t.Helper()
	dir, store := testutil.TestContent(t)
	db := testutil.TestDB(t)
	svc := postservice.NewService(store, db, render.New(render.Options{}))
	attach := attachments.New(filepath.Join(dir, "attachments"))
	router := NewRouter(svc, RouterOptions{
		AuthEnabled: token != "",
		Token:       token,
		Events:      events,
		Attachments: attach,
	})
	return &testEnv{router: router, contentDir: dir, attach: attach}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

// pngData starts with the PNG signature so content sniffing accepts it.
var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDRfake")

func twoSumBody() map[string]any {
	return map[string]any{
		"title":       "Two Sum",
		"description": "hash map warm-up",
		"content":     "## Idea\n\nStore each `target - x` in a **map**.\n",
		"tags":        []string{"array", "hash"},
		"difficulty":  "easy",
		"date":        "2024-01-15",
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, "secret", nil)
	w := e.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"ok":true}` {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestCreateAndGetPost(t *testing.T) {
	e := newTestEnv(t, "", nil)

	w := e.do(t, http.MethodPost, "/posts", twoSumBody())
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[WriteResponse](t, w)
	if !created.Success || created.Slug != "two-sum" || created.Filename != "two-sum.md" {
		t.Fatalf("create = %+v", created)
	}

	w = e.do(t, http.MethodGet, "/posts/two-sum", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var post map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &post)
	if post["title"] != "Two Sum" || post["difficulty"] != "easy" || post["date"] != "2024-01-15" {
		t.Errorf("post = %v", post)
	}
	tags, _ := post["tags"].([]any)
	if len(tags) != 2 || tags[0] != "array" || tags[1] != "hash" {
		t.Errorf("tags = %v", post["tags"])
	}
	html, _ := post["html"].(string)
	for _, want := range []string{`<h2 id="idea">Idea</h2>`, "<code>target - x</code>", "<strong>map</strong>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q: %s", want, html)
		}
	}
}

func TestCreatePost_NonArrayTags(t *testing.T) {
	cases := map[string]struct {
		tags any
		want []string
	}{
		"string":     {"dp", nil},
		"number":     {7, nil},
		"mixed list": {[]any{"dp", 3, true, "greedy"}, []string{"dp", "greedy"}},
	}
	for name, c := range cases {
		e := newTestEnv(t, "", nil)
		body := twoSumBody()
		body["tags"] = c.tags
		if w := e.do(t, http.MethodPost, "/posts", body); w.Code != http.StatusOK {
			t.Fatalf("%s: create = %d, body = %s", name, w.Code, w.Body.String())
		}

		w := e.do(t, http.MethodGet, "/posts/two-sum", nil)
		var post struct {
			Tags []string `json:"tags"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &post)
		if post.Tags == nil {
			t.Errorf("%s: tags should be an empty list, not null", name)
		}
		if strings.Join(post.Tags, ",") != strings.Join(c.want, ",") {
			t.Errorf("%s: tags = %v, want %v", name, post.Tags, c.want)
		}
	}
}

func TestCreateDuplicate(t *testing.T) {
	e := newTestEnv(t, "", nil)
	if w := e.do(t, http.MethodPost, "/posts", twoSumBody()); w.Code != http.StatusOK {
		t.Fatalf("first create = %d", w.Code)
	}
	w := e.do(t, http.MethodPost, "/posts", twoSumBody())
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
	if decode[errResponse](t, w).Error == "" {
		t.Error("conflict should carry an error message")
	}
}

func TestCreateValidation(t *testing.T) {
	e := newTestEnv(t, "", nil)

	body := twoSumBody()
	delete(body, "title")
	w := e.do(t, http.MethodPost, "/posts", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing title = %d, want 400", w.Code)
	}
	if msg := decode[errResponse](t, w).Error; !strings.Contains(msg, "title") {
		t.Errorf("error = %q, should name the field", msg)
	}

	body = twoSumBody()
	body["difficulty"] = "extreme"
	if w := e.do(t, http.MethodPost, "/posts", body); w.Code != http.StatusBadRequest {
		t.Errorf("bad difficulty = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid json = %d, want 400", rec.Code)
	}
}

func TestUpdateRenamesPost(t *testing.T) {
	e := newTestEnv(t, "", nil)
	e.do(t, http.MethodPost, "/posts", twoSumBody())

	body := twoSumBody()
	body["title"] = "Two Sum (Sorted)"
	w := e.do(t, http.MethodPut, "/posts/two-sum", body)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d %s", w.Code, w.Body.String())
	}
	res := decode[WriteResponse](t, w)
	if res.Slug != "two-sum-sorted" || res.Filename != "two-sum-sorted.md" {
		t.Errorf("update = %+v", res)
	}

	if w := e.do(t, http.MethodGet, "/posts/two-sum", nil); w.Code != http.StatusNotFound {
		t.Errorf("old slug = %d, want 404", w.Code)
	}
	if _, err := os.Stat(filepath.Join(e.contentDir, "two-sum.md")); !os.IsNotExist(err) {
		t.Errorf("old file should be gone: %v", err)
	}
	if w := e.do(t, http.MethodGet, "/posts/two-sum-sorted", nil); w.Code != http.StatusOK {
		t.Errorf("new slug = %d, want 200", w.Code)
	}
}

func TestUpdatePost_NotFound(t *testing.T) {
	e := newTestEnv(t, "", nil)
	if w := e.do(t, http.MethodPut, "/posts/missing", twoSumBody()); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeletePost(t *testing.T) {
	e := newTestEnv(t, "", nil)
	e.do(t, http.MethodPost, "/posts", twoSumBody())

	w := e.do(t, http.MethodDelete, "/posts/two-sum", nil)
	if w.Code != http.StatusOK || !decode[SuccessResponse](t, w).Success {
		t.Fatalf("delete = %d %s", w.Code, w.Body.String())
	}
	if w := e.do(t, http.MethodGet, "/posts/two-sum", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := e.do(t, http.MethodDelete, "/posts/two-sum", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListPostsByTag(t *testing.T) {
	e := newTestEnv(t, "", nil)
	e.do(t, http.MethodPost, "/posts", twoSumBody())
	e.do(t, http.MethodPost, "/posts", map[string]any{
		"title": "Union Find", "content": "parents", "tags": []string{"Hash", "graph"},
	})

	w := e.do(t, http.MethodGet, "/posts?tag=hash", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	list := decode[PostListResponse](t, w)
	if len(list.Posts) != 1 || list.Posts[0].Slug != "two-sum" {
		t.Errorf("tag=hash = %+v", list.Posts)
	}
	for _, p := range list.Posts {
		found := false
		for _, tag := range p.Tags {
			found = found || tag == "hash"
		}
		if !found {
			t.Errorf("%s returned without tag", p.Slug)
		}
	}

	list = decode[PostListResponse](t, e.do(t, http.MethodGet, "/posts", nil))
	if len(list.Posts) != 2 {
		t.Errorf("unfiltered = %d posts", len(list.Posts))
	}
}

// The q filter matches raw markdown, including syntax characters.
func TestListPosts_QueryIncludesMarkdownSyntax(t *testing.T) {
	e := newTestEnv(t, "", nil)
	e.do(t, http.MethodPost, "/posts", twoSumBody())

	list := decode[PostListResponse](t, e.do(t, http.MethodGet, "/posts?q=**MAP**", nil))
	if len(list.Posts) != 1 {
		t.Errorf("q=**MAP** = %+v", list.Posts)
	}
	list = decode[PostListResponse](t, e.do(t, http.MethodGet, "/posts?q=nothing-like-this", nil))
	if list.Posts == nil || len(list.Posts) != 0 {
		t.Errorf("no match should be an empty list, got %#v", list.Posts)
	}
}

func TestNullableFields(t *testing.T) {
	e := newTestEnv(t, "", nil)
	testutil.WritePost(t, e.contentDir, "bare.md", "just a body")

	w := e.do(t, http.MethodGet, "/posts/bare", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"difficulty":null`, `"date":null`, `"tags":[]`, `"title":"bare"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

func TestTagsAndDifficultiesEndpoints(t *testing.T) {
	e := newTestEnv(t, "", nil)

	w := e.do(t, http.MethodGet, "/tags", nil)
	if strings.TrimSpace(w.Body.String()) != `{"tags":[]}` {
		t.Errorf("empty tags = %s", w.Body.String())
	}

	e.do(t, http.MethodPost, "/posts", twoSumBody())
	tags := decode[TagsResponse](t, e.do(t, http.MethodGet, "/tags", nil))
	if strings.Join(tags.Tags, ",") != "array,hash" {
		t.Errorf("tags = %v", tags.Tags)
	}
	diffs := decode[DifficultiesResponse](t, e.do(t, http.MethodGet, "/difficulties", nil))
	if strings.Join(diffs.Difficulties, ",") != "easy" {
		t.Errorf("difficulties = %v", diffs.Difficulties)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	e := newTestEnv(t, "", nil)
	w := e.do(t, http.MethodGet, "/posts/nonexistent", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get missing = %d, want 404", w.Code)
	}
}

// Auth tests.

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := newTestEnv(t, "secret", nil)
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	e := newTestEnv(t, "secret", nil)
	if w := e.do(t, http.MethodGet, "/posts", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	e := newTestEnv(t, "secret", nil)
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	e := newTestEnv(t, "", nil)
	if w := e.do(t, http.MethodGet, "/posts", nil); w.Code != http.StatusOK {
		t.Errorf("disabled auth = %d, want 200", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t, "secret", nil)
	req := httptest.NewRequest(http.MethodOptions, "/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Fatal("preflight must not be challenged")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Errorf("missing Access-Control-Allow-Origin, headers = %v", w.Header())
	}
}

// SSE endpoint auth tests.

// blockingEvents is a minimal SSE handler: writes headers and blocks until
// the request context ends.
var blockingEvents = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	e := newTestEnv(t, "secret", blockingEvents)
	if w := e.do(t, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	e := newTestEnv(t, "tok", blockingEvents)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

func TestSSEEvents_NotMountedWithoutHandler(t *testing.T) {
	e := newTestEnv(t, "", nil)
	if w := e.do(t, http.MethodGet, "/events", nil); w.Code == http.StatusOK {
		t.Error("events route should not exist without a handler")
	}
}

// Attachment tests.

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndServeAttachment(t *testing.T) {
	e := newTestEnv(t, "", nil)

	w := uploadFile(t, e.router, "graph.png", pngData)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[AttachmentUploadResponse](t, w)
	if resp.Filename != "graph.png" || resp.URL != "/attachments/graph.png" || resp.Size != int64(len(pngData)) {
		t.Errorf("resp = %+v", resp)
	}

	data, err := os.ReadFile(filepath.Join(e.attach.Dir(), "graph.png"))
	if err != nil {
		t.Fatalf("file not on disk: %v", err)
	}
	if string(data) != string(pngData) {
		t.Errorf("content mismatch")
	}

	ah := NewAttachmentHandler(e.attach)
	r := chi.NewRouter()
	r.Get("/attachments/{filename}", ah.ServeFile)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attachments/graph.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != string(pngData) {
		t.Errorf("serve = %d %q", rec.Code, rec.Body.String())
	}

	if w := uploadFile(t, e.router, "graph.png", pngData); w.Code != http.StatusConflict {
		t.Errorf("re-upload = %d, want 409", w.Code)
	}
}

func TestUploadAttachment_ContentMismatch(t *testing.T) {
	e := newTestEnv(t, "", nil)
	if w := uploadFile(t, e.router, "fake.png", []byte("not an image")); w.Code != http.StatusBadRequest {
		t.Errorf("mismatched upload = %d, want 400", w.Code)
	}
}

func TestUploadAttachment_NotAPostFile(t *testing.T) {
	e := newTestEnv(t, "", nil)
	if w := uploadFile(t, e.router, "sneaky.md", []byte("---\ntitle: x\n---")); w.Code != http.StatusBadRequest {
		t.Errorf("markdown upload = %d, want 400", w.Code)
	}
	if _, err := os.Stat(filepath.Join(e.contentDir, "sneaky.md")); err == nil {
		t.Error("upload must not create posts")
	}
}

func TestServeAttachment_NotFound(t *testing.T) {
	ah := NewAttachmentHandler(attachments.New(t.TempDir()))
	r := chi.NewRouter()
	r.Get("/attachments/{filename}", ah.ServeFile)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attachments/nope.png", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing attachment = %d, want 404", w.Code)
	}
}

func TestServeAttachment_TraversalBlocked(t *testing.T) {
	ah := NewAttachmentHandler(attachments.New(t.TempDir()))
	r := chi.NewRouter()
	r.Get("/attachments/{filename}", ah.ServeFile)

	for _, name := range []string{"../secret.png", "..%2Fsecret.png", ".hidden.png"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attachments/"+name, nil))
		// chi may not route the traversal paths at all (404), or our handler rejects (400).
		if w.Code == http.StatusOK {
			t.Errorf("traversal %q should not return 200", name)
		}
	}
}

func TestUploadAttachment_AuthProtected(t *testing.T) {
	e := newTestEnv(t, "secret", nil)
	if w := uploadFile(t, e.router, "x.png", pngData); w.Code != http.StatusUnauthorized {
		t.Errorf("upload no auth = %d, want 401", w.Code)
	}
}

func TestUploadAttachment_MissingFileField(t *testing.T) {
	e := newTestEnv(t, "", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("wrong", "data")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field = %d, want 400", w.Code)
	}
}
