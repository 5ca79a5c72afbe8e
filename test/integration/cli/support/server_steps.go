package support

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pdfmerge/internal/capability"
	"github.com/MeKo-Tech/pdfmerge/internal/config"
	"github.com/MeKo-Tech/pdfmerge/internal/server"
)

// HTTPTestServerWrapper wraps an in-process merge server.
type HTTPTestServerWrapper struct {
	Server     *httptest.Server
	TestServer *server.Server
}

// startServer runs the merge API with cfg adjusted for the scenario.
func (testCtx *TestContext) startServer(adjust func(*config.Config)) error {
	if err := testCtx.StopServer(); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Convert.TempDir = testCtx.ArtifactDir
	cfg.Convert.Word.Enabled = false
	if adjust != nil {
		adjust(&cfg)
	}

	srv, err := server.NewServer(server.Config{App: cfg, Caps: capability.Detect(cfg), Version: "test"})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	testCtx.HTTPTestServer = &HTTPTestServerWrapper{Server: httptest.NewServer(mux), TestServer: srv}
	return nil
}

// StopServer stops the in-process server if one is running.
func (testCtx *TestContext) StopServer() error {
	if testCtx.HTTPTestServer == nil {
		return nil
	}
	testCtx.HTTPTestServer.Server.Close()
	err := testCtx.HTTPTestServer.TestServer.Close()
	testCtx.HTTPTestServer = nil
	return err
}

func (testCtx *TestContext) theMergeServerIsRunning() error {
	return testCtx.startServer(nil)
}

func (testCtx *TestContext) theMergeServerIsRunningWithRateLimit(perMinute int) error {
	return testCtx.startServer(func(cfg *config.Config) {
		cfg.Server.RateLimit.Enabled = true
		cfg.Server.RateLimit.RequestsPerMinute = perMinute
	})
}

func (testCtx *TestContext) serverURL(path string) (string, error) {
	if testCtx.HTTPTestServer == nil {
		return "", errors.New("server is not running")
	}
	return testCtx.HTTPTestServer.Server.URL + path, nil
}

func (testCtx *TestContext) do(req *http.Request) error {
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPBody = body
	testCtx.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

// iSendAGETRequestTo issues a GET against the running server.
func (testCtx *TestContext) iSendAGETRequestTo(path string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return testCtx.do(req)
}

// iUploadTo posts the comma-separated scenario files as multipart field.
func (testCtx *TestContext) iUploadTo(files, path, field string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range strings.Split(files, ",") {
		name = strings.TrimSpace(name)
		data, err := os.ReadFile(testCtx.Path(name))
		if err != nil {
			return fmt.Errorf("read fixture %s: %w", name, err)
		}
		part, err := writer.CreateFormFile(field, filepath.Base(name))
		if err != nil {
			return err
		}
		if _, err := part.Write(data); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return testCtx.do(req)
}

func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastHTTPStatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, testCtx.LastHTTPStatusCode, testCtx.LastHTTPBody)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, value string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != value {
		return fmt.Errorf("expected header %s to be %q, got %q", name, value, got)
	}
	return nil
}

func (testCtx *TestContext) theResponseBodyShouldContain(text string) error {
	if !bytes.Contains(testCtx.LastHTTPBody, []byte(text)) {
		return fmt.Errorf("response body does not contain %q: %s", text, testCtx.LastHTTPBody)
	}
	return nil
}

// theResponseJSONShouldBe compares a dotted JSON field with its printed form.
func (testCtx *TestContext) theResponseJSONShouldBe(field, want string) error {
	var data map[string]interface{}
	if err := json.Unmarshal(testCtx.LastHTTPBody, &data); err != nil {
		return fmt.Errorf("response is not JSON: %w: %s", err, testCtx.LastHTTPBody)
	}

	var current interface{} = data
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return fmt.Errorf("cannot navigate into %q of %s", part, field)
		}
		if current, ok = obj[part]; !ok {
			return fmt.Errorf("field %s not found in %s", field, testCtx.LastHTTPBody)
		}
	}

	if got := fmt.Sprint(current); got != want {
		return fmt.Errorf("expected %s to be %s, got %s", field, want, got)
	}
	return nil
}

// theResponseShouldBeSavedAs writes the last response body to a scenario file.
func (testCtx *TestContext) theResponseShouldBeSavedAs(name string) error {
	return os.WriteFile(testCtx.Path(name), testCtx.LastHTTPBody, 0o600)
}

// RegisterServerSteps registers HTTP API steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the merge server is running$`, testCtx.theMergeServerIsRunning)
	sc.Step(`^the merge server is running with a limit of (\d+) requests? per minute$`,
		testCtx.theMergeServerIsRunningWithRateLimit)
	sc.Step(`^I send a GET request to "([^"]*)"$`, testCtx.iSendAGETRequestTo)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)" as "([^"]*)"$`, testCtx.iUploadTo)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the response body should contain "([^"]*)"$`, testCtx.theResponseBodyShouldContain)
	sc.Step(`^the response JSON "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseJSONShouldBe)
	sc.Step(`^I save the response as "([^"]*)"$`, testCtx.theResponseShouldBeSavedAs)
}
