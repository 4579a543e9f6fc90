package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/atlasocr/wasl/internal/extract"
	"github.com/atlasocr/wasl/internal/ocr/mock"
	"github.com/atlasocr/wasl/internal/server"
	"github.com/atlasocr/wasl/internal/template"
	"github.com/atlasocr/wasl/internal/testutil"
)

// receiptTemplate is the store served by the fixture. The scripted backend
// below answers every region with one word placed in the title band, so the
// required title.fr field resolves and the body date stays empty.
const receiptTemplate = `{
  "assoc_receipt": {
    "name": "Récépissé de dépôt",
    "name_ar": "وصل إيداع",
    "template_version": "1.0",
    "required_fields": ["title.fr"],
    "regions": {
      "title": {"fr": {"x": 0.0, "y": 0.0, "w": 1.0, "h": 0.25}},
      "body": {"date.fr": {"x": 0.0, "y": 0.5, "w": 0.5, "h": 0.2}}
    }
  }
}`

// serverFixture ties the httptest listener to the server behind it so
// cleanup can close both.
type serverFixture struct {
	http *httptest.Server
	srv  *server.Server
}

// theExtractionServerIsRunning starts the real handler stack over a scripted
// recognition backend.
func (testCtx *TestContext) theExtractionServerIsRunning() error {
	if testCtx.server != nil {
		return nil
	}

	store, err := template.ParseStore([]byte(receiptTemplate))
	if err != nil {
		return fmt.Errorf("failed to parse fixture templates: %w", err)
	}

	eng, err := extract.NewBuilder().
		WithStore(store).
		WithBackend(mock.Static(mock.Word("Commune", 90, 2, 2, 60, 20))).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build extraction engine: %w", err)
	}

	srv, err := server.NewServer(server.Config{CORSOrigin: "*", MaxUploadMB: 8, TimeoutSec: 10}, eng)
	if err != nil {
		_ = eng.Close()
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)

	testCtx.server = &serverFixture{http: ts, srv: srv}
	testCtx.ServerURL = ts.URL
	return nil
}

// stopServer shuts the fixture down. Safe to call when none is running.
func (testCtx *TestContext) stopServer() error {
	if testCtx.server == nil {
		return nil
	}
	testCtx.server.http.Close()
	err := testCtx.server.srv.Close()
	testCtx.server = nil
	testCtx.ServerURL = ""
	return err
}

// renderedPagePNG encodes a small rendered page as upload content.
func renderedPagePNG() ([]byte, error) {
	cfg := testutil.DefaultDocumentConfig()
	cfg.Size = testutil.PageSize{Width: 64, Height: 48}

	var buf bytes.Buffer
	if err := png.Encode(&buf, testutil.RenderDocument(cfg)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// iGET makes a GET request against the fixture.
func (testCtx *TestContext) iGET(endpoint string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(testCtx.ServerURL + endpoint)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	return testCtx.recordResponse(resp)
}

// iPOSTARenderedPageToWithTemplate uploads a rendered page together with a
// template_id form field.
func (testCtx *TestContext) iPOSTARenderedPageToWithTemplate(endpoint, templateID string) error {
	page, err := renderedPagePNG()
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return testCtx.postMultipart(endpoint, map[string]string{"template_id": templateID}, page)
}

// iPOSTARenderedPageTo uploads a rendered page without any form fields.
func (testCtx *TestContext) iPOSTARenderedPageTo(endpoint string) error {
	page, err := renderedPagePNG()
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return testCtx.postMultipart(endpoint, nil, page)
}

// iPOSTARequestWithoutAnImageTo sends a multipart body with no image part.
func (testCtx *TestContext) iPOSTARequestWithoutAnImageTo(endpoint string) error {
	return testCtx.postMultipart(endpoint, map[string]string{"template_id": "assoc_receipt"}, nil)
}

// postMultipart builds the form and performs the upload.
func (testCtx *TestContext) postMultipart(endpoint string, fields map[string]string, image []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "page.png")
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(image); err != nil {
			return fmt.Errorf("failed to write image data: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest(http.MethodPost, testCtx.ServerURL+endpoint, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return testCtx.recordResponse(resp)
}

// recordResponse stores status, body and headers for the verification steps.
func (testCtx *TestContext) recordResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPHeaders = make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			testCtx.LastHTTPHeaders[key] = values[0]
		}
	}
	return nil
}

// theResponseStatusShouldBe verifies the HTTP response status.
func (testCtx *TestContext) theResponseStatusShouldBe(expectedStatus int) error {
	if testCtx.LastHTTPStatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d\nResponse: %s",
			expectedStatus, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldBeValidJSON verifies the body parses as JSON.
func (testCtx *TestContext) theResponseShouldBeValidJSON() error {
	var js json.RawMessage
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w\nResponse: %s", err, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldContain verifies the body contains specific text.
func (testCtx *TestContext) theResponseShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, expectedText) {
		return fmt.Errorf("response does not contain '%s'\nResponse: %s", expectedText, testCtx.LastHTTPResponse)
	}
	return nil
}

// theExtractionShouldSucceed parses the body and checks the success flag.
func (testCtx *TestContext) theExtractionShouldSucceed() error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &resp); err != nil {
		return fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("extraction did not succeed: %s", resp.Error)
	}
	return nil
}

// theResponseShouldIncludeHeader verifies the named header is present.
func (testCtx *TestContext) theResponseShouldIncludeHeader(header string) error {
	if v, ok := testCtx.LastHTTPHeaders[header]; !ok || v == "" {
		return fmt.Errorf("response is missing header %s", header)
	}
	return nil
}

// RegisterServerSteps registers the server fixture and HTTP steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the extraction server is running$`, testCtx.theExtractionServerIsRunning)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I POST a rendered page to "([^"]*)" with template "([^"]*)"$`, testCtx.iPOSTARenderedPageToWithTemplate)
	sc.Step(`^I POST a rendered page to "([^"]*)"$`, testCtx.iPOSTARenderedPageTo)
	sc.Step(`^I POST a request without an image to "([^"]*)"$`, testCtx.iPOSTARequestWithoutAnImageTo)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should be valid JSON$`, testCtx.theResponseShouldBeValidJSON)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the extraction should succeed$`, testCtx.theExtractionShouldSucceed)
	sc.Step(`^the response should include a "([^"]*)" header$`, testCtx.theResponseShouldIncludeHeader)
}
