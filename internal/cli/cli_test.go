package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		extractNoEnhance, extractDraft, extractQuiet = false, false, false
		batchOut, batchWorkers, batchTypes = "", 0, nil
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// fakeOpenAI answers uploads, deletes and completions with fixed payloads.
func fakeOpenAI(t *testing.T, primary, search string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/files" && r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"id":"file-1"}`))
		case strings.HasPrefix(r.URL.Path, "/files/"):
			_, _ = w.Write([]byte(`{"deleted":true}`))
		case r.URL.Path == "/chat/completions":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			content := primary
			if _, ok := body["web_search_options"]; ok {
				content = search
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"content": content}}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("RETRY_MAX_ATTEMPTS", "1")
	t.Setenv("LOG_LEVEL", "ERROR")
}

func TestClassifyCommand(t *testing.T) {
	out, _, err := run(t, "classify", "Listing.pdf", "site_plan.png", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Listing.pdf\tListing Agreement\nsite_plan.png\tFloor Plan\nphoto.jpg\tOther\n", out)
}

func TestExtractCommand(t *testing.T) {
	fakeOpenAI(t,
		`{"propertyAddress":"12 Elm St","city":"Guelph","state":"ON","listPrice":"$799,000","title":"Family Home"}`,
		`{"bedrooms":"4","propertyType":"Detached house"}`)
	path := filepath.Join(t.TempDir(), "listing.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o644))

	out, stderr, err := run(t, "extract", "--draft", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "progress: 10%")
	assert.Contains(t, stderr, "progress: 100%")

	var got struct {
		Fields   map[string]string `json:"fields"`
		Enhanced []string          `json:"enhanced"`
		Draft    struct {
			Listing struct {
				ListPrice    string `json:"listPrice"`
				PropertyType string `json:"propertyType"`
			} `json:"listing"`
			AIPopulated []string `json:"ai_populated"`
			Percent     int      `json:"percent"`
		} `json:"draft"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Guelph", got.Fields["city"])
	assert.Equal(t, []string{"bedrooms", "propertyType"}, got.Enhanced)
	assert.Equal(t, "799000", got.Draft.Listing.ListPrice)
	assert.Equal(t, "Residential", got.Draft.Listing.PropertyType)
	assert.Contains(t, got.Draft.AIPopulated, "bedrooms")
	assert.Equal(t, 100, got.Draft.Percent)
}

func TestExtractCommand_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "listing.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o644))

	_, _, err := run(t, "extract", "-q", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestBatchCommand(t *testing.T) {
	fakeOpenAI(t, `{"listPrice":"500000"}`, `{}`)
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "a.png"), pngBytes, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "b.png"), pngBytes, 0o644))

	out, _, err := run(t, "batch", "--dir", docs, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 2 documents (0 failed)")

	f, err := excelize.OpenFile(filepath.Join(dir, "listings.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Listings")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestBatchCommand_UnknownType(t *testing.T) {
	_, _, err := run(t, "batch", "--dir", t.TempDir(), "--type", "Brochure")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Floor Plan")
}

func TestBatchCommand_TypeFilter(t *testing.T) {
	fakeOpenAI(t, `{"listPrice":"500000"}`, `{}`)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "floorplan.png"), pngBytes, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), pngBytes, 0o644))

	out, _, err := run(t, "batch", "--dir", dir, "--type", "floor plan", "-o", filepath.Join(t.TempDir(), "x.xlsx"))
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 1 documents (0 failed)")
}
