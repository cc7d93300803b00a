package form

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func mustLoad(t *testing.T) {
	t.Helper()
	if err := LoadEmbedded(); err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
}

func TestLoadEmbedded_AllForms(t *testing.T) {
	mustLoad(t)
	for _, id := range []string{
		"auth/login", "catalog/category", "catalog/product",
		"catalog/branch", "catalog/branch-product", "catalog/branch-product-edit",
	} {
		if _, ok := GetFormDef(id); !ok {
			t.Errorf("form %s not registered", id)
		}
	}
}

func TestRegister_RejectsBadDefinitions(t *testing.T) {
	cases := map[string]string{
		"no id":        "fields:\n  - {name: a, label: A, type: text}\n",
		"bad pattern":  "id: x\nfields:\n  - {name: a, label: A, type: text, pattern: '('}\n",
		"unknown type": "id: x\nfields:\n  - {name: a, label: A, type: colour}\n",
		"dup field":    "id: x\nfields:\n  - {name: a, label: A, type: text}\n  - {name: a, label: B, type: text}\n",
		"min > max":    "id: x\nfields:\n  - {name: a, label: A, type: number, min: 5, max: 1}\n",
	}
	for name, doc := range cases {
		fsys := fstest.MapFS{"forms/x.yaml": {Data: []byte(doc)}}
		if err := Register(fsys, "forms"); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestValidateForm_Product(t *testing.T) {
	mustLoad(t)

	clean, errs := ValidateForm("catalog/product", map[string]string{
		"name":       "  Молоко 3.2%  ",
		"price":      "89,90",
		"categoryId": "4",
		"slug":       "moloko-3-2",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if clean.String("name") != "Молоко 3.2%" {
		t.Errorf("name = %q", clean.String("name"))
	}
	if clean.Float("price") != 89.9 || clean.Int("categoryId") != 4 {
		t.Errorf("numbers = %v %v", clean["price"], clean["categoryId"])
	}
	if clean.IntPtr("sortOrder") != nil {
		t.Error("absent sortOrder should be nil")
	}

	_, errs = ValidateForm("catalog/product", map[string]string{
		"name":       "",
		"price":      "-1",
		"categoryId": "x",
		"slug":       "Bad Slug",
	})
	got := map[string]bool{}
	for _, e := range errs {
		got[e.Name] = true
	}
	for _, f := range []string{"name", "price", "categoryId", "slug"} {
		if !got[f] {
			t.Errorf("no error for %s: %+v", f, errs)
		}
	}
}

func TestValidateForm_Checkbox(t *testing.T) {
	mustLoad(t)
	base := map[string]string{"name": "Main", "address": "1 Road"}

	clean, _ := ValidateForm("catalog/branch", base)
	if clean.BoolPtr("isActive") != nil {
		t.Error("absent checkbox should be nil")
	}
	base["isActive"] = "false"
	clean, _ = ValidateForm("catalog/branch", base)
	if p := clean.BoolPtr("isActive"); p == nil || *p {
		t.Error("isActive=false not honoured")
	}
	base["isActive"] = "on"
	clean, _ = ValidateForm("catalog/branch", base)
	if !clean.Bool("isActive") {
		t.Error("isActive=on not honoured")
	}
}

func TestHandleSubmit_JSON(t *testing.T) {
	mustLoad(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"branchId":1,"productId":2,"price":10.5,"stock":null,"isActive":true}`))
	req.Header.Set("Content-Type", "application/json")

	v, err := HandleSubmit("catalog/branch-product", req)
	if err != nil {
		t.Fatalf("HandleSubmit: %v", err)
	}
	if v.Float("price") != 10.5 || v.IntPtr("stock") != nil || !v.Bool("isActive") {
		t.Fatalf("values = %+v", v)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"price":{"x":1}}`))
	if _, err := HandleSubmit("catalog/branch-product", req); !IsValidationError(err) {
		t.Fatalf("nested value: %v", err)
	}
}

func TestHandleSubmit_MultipartKeepsFiles(t *testing.T) {
	mustLoad(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Kefir")
	_ = mw.WriteField("price", "1")
	_ = mw.WriteField("categoryId", "2")
	fw, _ := mw.CreateFormFile("images", "a.png")
	_, _ = fw.Write([]byte("PNG"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	v, err := HandleSubmit("catalog/product", req)
	if err != nil {
		t.Fatalf("HandleSubmit: %v", err)
	}
	if v.String("name") != "Kefir" {
		t.Errorf("name = %q", v.String("name"))
	}
	if fs := Files(req, "images"); len(fs) != 1 || fs[0].Filename != "a.png" {
		t.Errorf("files = %+v", fs)
	}
}

func TestCSRF_TokenRoundTrip(t *testing.T) {
	c := NewCSRF("0123456789abcdef0123456789abcdef")
	tok, err := c.Token("sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Verify(tok, "sess-1") {
		t.Fatal("fresh token rejected")
	}
	if c.Verify(tok, "sess-2") {
		t.Fatal("token accepted for another session")
	}
	if NewCSRF("another-secret-another-secret-xx").Verify(tok, "sess-1") {
		t.Fatal("token accepted under another secret")
	}

	c.now = func() time.Time { return time.Now().Add(MaxAge + time.Minute) }
	if c.Verify(tok, "sess-1") {
		t.Fatal("expired token accepted")
	}
}

func TestCSRF_Middleware(t *testing.T) {
	c := NewCSRF("0123456789abcdef0123456789abcdef")
	h := c.Middleware(func(*http.Request) string { return "s" })(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("GET blocked: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("POST without token: %d", rec.Code)
	}

	tok, _ := c.Token("s")
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set(HeaderName, tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE with token: %d", rec.Code)
	}
}
