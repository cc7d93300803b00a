// internal/image/image.go
//
// Image service client.
//
// Context
// -------
// Images are owned by a separate service.  The console uploads them with
// `POST /images/upload` (multipart: file, entityType, entityId, imageType)
// and links to them through the same-origin proxy, so the browser never
// needs the service's own address.
//
// Workflow
// --------
//   Product save succeeds → UploadStaged(ctx, files, productID)
//     • one upload per file, sequential, against "catalog.product"
//     • the file marked Main (or the first one) is typed "main"
//     • a failed upload is reported in its Result; the save stands.

package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/yanizio/catalog-console/internal/logger"
)

const (
	// EntityProduct is the entity type products are filed under.
	EntityProduct = "catalog.product"

	TypeMain    = "main"
	TypeProduct = "product"

	// ProxyPrefix is the console route the image service is proxied on.
	ProxyPrefix = "/api/images"
)

// Image is the service's record of an uploaded file.
type Image struct {
	ExternalID string `json:"externalId"`
	URL        string `json:"url,omitempty"`
	Type       string `json:"imageType,omitempty"`
}

// File is one upload.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Target names what an image belongs to.
type Target struct {
	EntityType string
	EntityID   string
	ImageType  string
}

// Client uploads to the image service at base.
type Client struct {
	base string
	http *http.Client
}

// New returns a client.  hc nil means http.DefaultClient.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// URL returns the same-origin address of an image.
func URL(externalID string) string {
	return ProxyPrefix + "/images/" + externalID
}

// Upload sends one file.
func (c *Client) Upload(ctx context.Context, f File, t Target) (Image, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return Image{}, err
	}
	if _, err := io.Copy(part, f.Body); err != nil {
		return Image{}, fmt.Errorf("image: read %s: %w", f.Name, err)
	}
	fields := [][2]string{
		{"entityType", t.EntityType},
		{"entityId", t.EntityID},
		{"imageType", t.ImageType},
	}
	for _, kv := range fields {
		if kv[1] == "" {
			continue
		}
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return Image{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/images/upload", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Image{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("image upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Image{}, fmt.Errorf("image upload: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var img Image
	if err := json.NewDecoder(resp.Body).Decode(&img); err != nil && err != io.EOF {
		return Image{}, fmt.Errorf("image upload: decode: %w", err)
	}
	if img.Type == "" {
		img.Type = t.ImageType
	}
	if img.URL == "" && img.ExternalID != "" {
		img.URL = URL(img.ExternalID)
	}
	return img, nil
}

/*──────────────────────────── staged uploads ──────────────────────────────*/

// Staged is a file held back until its product exists.
type Staged struct {
	File
	Main bool
}

// Result is the outcome of one staged upload.
type Result struct {
	Name  string `json:"name"`
	Image *Image `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

// UploadStaged uploads files for product id, in order.
func (c *Client) UploadStaged(ctx context.Context, files []Staged, productID int64) []Result {
	if len(files) == 0 {
		return nil
	}
	main := 0
	for i, f := range files {
		if f.Main {
			main = i
			break
		}
	}

	log := logger.FromContext(ctx)
	entity := strconv.FormatInt(productID, 10)
	out := make([]Result, 0, len(files))
	for i, f := range files {
		typ := TypeProduct
		if i == main {
			typ = TypeMain
		}
		img, err := c.Upload(ctx, f.File, Target{EntityType: EntityProduct, EntityID: entity, ImageType: typ})
		if err != nil {
			log.Warnw("staged upload failed", "product", productID, "file", f.Name, "err", err)
			out = append(out, Result{Name: f.Name, Error: err.Error()})
			continue
		}
		out = append(out, Result{Name: f.Name, Image: &img})
	}
	return out
}
