package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	assessment *Assessment
	err        error
	gotMime    string
	gotImage   []byte
}

func (s *stubClassifier) Analyze(ctx context.Context, image []byte, mimeType string) (*Assessment, error) {
	s.gotImage = image
	s.gotMime = mimeType
	if s.err != nil {
		return nil, s.err
	}
	return s.assessment, nil
}

func multipartImage(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestAnalyzeHandler_NoImage(t *testing.T) {
	h := &Handlers{Classifier: &stubClassifier{}}
	app := fiber.New()
	app.Post("/analyze", h.Analyze)

	req := httptest.NewRequest("POST", "/analyze", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeHandler_Success(t *testing.T) {
	stub := &stubClassifier{assessment: &Assessment{
		ProductName:       "CRT Monitor",
		ToxicityLevel:     "High",
		Recyclable:        true,
		HarmfulSubstances: []string{"Lead"},
		Components:        []string{"Glass"},
		ResellValue:       450,
		MarketEstimateMin: 360,
		MarketEstimateMax: 540,
	}}
	h := &Handlers{Classifier: stub}
	app := fiber.New()
	app.Post("/analyze", h.Analyze)

	body, contentType := multipartImage(t, "image", "crt.jpg", "image/jpeg", []byte("jpeg-bytes"))
	req := httptest.NewRequest("POST", "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, []byte("jpeg-bytes"), stub.gotImage)
	assert.Equal(t, "image/jpeg", stub.gotMime)

	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	data, _ := out["data"].(map[string]interface{})
	require.NotNil(t, data)
	assert.Equal(t, "CRT Monitor", data["product_name"])
	assert.Equal(t, "High", data["toxicity_level"])
}

func TestAnalyzeHandler_ClassifierFailure(t *testing.T) {
	h := &Handlers{Classifier: &stubClassifier{err: errors.New("upstream 429")}}
	app := fiber.New()
	app.Post("/analyze", h.Analyze)

	body, contentType := multipartImage(t, "image", "crt.jpg", "image/jpeg", []byte("x"))
	req := httptest.NewRequest("POST", "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
