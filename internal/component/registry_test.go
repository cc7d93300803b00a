package component

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type stub struct {
	name    string
	path    string
	initErr error
	deps    *Deps
}

func (s *stub) Name() string { return s.name }
func (s *stub) Init(d Deps) error {
	s.deps = &d
	return s.initErr
}
func (s *stub) Routes(r chi.Router) {
	r.Get(s.path, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func withRegistry(t *testing.T, cs ...Component) {
	t.Helper()
	mu.Lock()
	saved := registry
	registry = map[string]Component{}
	mu.Unlock()
	for _, c := range cs {
		Register(c)
	}
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func TestMount_SharesRouter(t *testing.T) {
	a := &stub{name: "b-second", path: "/api/b"}
	b := &stub{name: "a-first", path: "/api/a"}
	withRegistry(t, a, b)

	r := chi.NewRouter()
	if err := Mount(r, Deps{}); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	for _, p := range []string{"/api/a", "/api/b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("%s: %d", p, rec.Code)
		}
	}
	if a.deps == nil || b.deps == nil {
		t.Fatal("Init not called")
	}
	if all := All(); all[0].Name() != "a-first" {
		t.Fatalf("All not sorted: %s", all[0].Name())
	}
}

func TestMount_InitError(t *testing.T) {
	withRegistry(t, &stub{name: "x", path: "/x", initErr: errors.New("boom")})
	if err := Mount(chi.NewRouter(), Deps{}); err == nil {
		t.Fatal("init error swallowed")
	}
}

func TestError_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusConflict, "slug_taken", "Taken.", map[string]any{"slug": "milk"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d", rec.Code)
	}
	want := `{"error":"slug_taken","message":"Taken.","slug":"milk"}` + "\n"
	if rec.Body.String() != want {
		t.Fatalf("body %q", rec.Body.String())
	}
}
