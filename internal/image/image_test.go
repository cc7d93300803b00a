package image

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	name, entityType, entityID, imageType, body string
}

func imageServer(t *testing.T, failName string) (*httptest.Server, *[]upload) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []upload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/images/upload" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		raw, _ := io.ReadAll(f)
		u := upload{
			name:       hdr.Filename,
			entityType: r.FormValue("entityType"),
			entityID:   r.FormValue("entityId"),
			imageType:  r.FormValue("imageType"),
			body:       string(raw),
		}
		mu.Lock()
		got = append(got, u)
		mu.Unlock()
		if u.name == failName {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"externalId":"ext-`+u.name+`"}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestUpload_Multipart(t *testing.T) {
	srv, got := imageServer(t, "")
	c := New(srv.URL, srv.Client())

	img, err := c.Upload(context.Background(),
		File{Name: "a.png", ContentType: "image/png", Body: strings.NewReader("PNG")},
		Target{EntityType: EntityProduct, EntityID: "7", ImageType: TypeMain})
	require.NoError(t, err)
	assert.Equal(t, "ext-a.png", img.ExternalID)
	assert.Equal(t, "/api/images/images/ext-a.png", img.URL)
	assert.Equal(t, TypeMain, img.Type)

	require.Len(t, *got, 1)
	assert.Equal(t, upload{"a.png", EntityProduct, "7", TypeMain, "PNG"}, (*got)[0])
}

func TestUploadStaged_MainAndFailures(t *testing.T) {
	srv, got := imageServer(t, "b.png")
	c := New(srv.URL, srv.Client())

	res := c.UploadStaged(context.Background(), []Staged{
		{File: File{Name: "a.png", Body: strings.NewReader("a")}},
		{File: File{Name: "b.png", Body: strings.NewReader("b")}},
		{File: File{Name: "c.png", Body: strings.NewReader("c")}, Main: true},
	}, 42)

	require.Len(t, res, 3)
	assert.NotNil(t, res[0].Image)
	assert.Contains(t, res[1].Error, "413")
	assert.Nil(t, res[1].Image)
	assert.NotNil(t, res[2].Image)

	types := map[string]string{}
	for _, u := range *got {
		assert.Equal(t, "42", u.entityID)
		types[u.name] = u.imageType
	}
	assert.Equal(t, map[string]string{"a.png": TypeProduct, "b.png": TypeProduct, "c.png": TypeMain}, types)
}

func TestUploadStaged_FirstIsMainByDefault(t *testing.T) {
	srv, got := imageServer(t, "")
	c := New(srv.URL, srv.Client())

	c.UploadStaged(context.Background(), []Staged{
		{File: File{Name: "x.jpg", Body: strings.NewReader("x")}},
		{File: File{Name: "y.jpg", Body: strings.NewReader("y")}},
	}, 1)
	require.Len(t, *got, 2)
	assert.Equal(t, TypeMain, (*got)[0].imageType)
	assert.Equal(t, TypeProduct, (*got)[1].imageType)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "/api/images/images/abc", URL("abc"))
}
