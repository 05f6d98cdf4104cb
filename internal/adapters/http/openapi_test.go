package http_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/ridemycity/internal/adapters/http"
)

// findOpenAPISpec locates api/openapi.yaml by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	t.Helper()
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	data, err := os.ReadFile(findOpenAPISpec(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}
	return spec
}

func TestOpenAPISpec(t *testing.T) {
	spec := loadSpec(t)
	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	for _, schema := range []string{
		"Ride", "AvoidZone", "Stats", "Boundary", "GeocodeResult",
		"Workspace", "DrawingView", "SaveResult", "MapSnapshot",
		"APIError", "Pagination",
	} {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}
}

// TestOpenAPI_CoversRoutes checks that every registered REST route is documented.
func TestOpenAPI_CoversRoutes(t *testing.T) {
	spec := loadSpec(t)

	app := setupApp(newEnv().deps)

	undocumented := map[string]bool{
		"/metrics":           true,
		"/docs":              true,
		"/docs/openapi.yaml": true,
		"/docs/openapi.json": true,
		"/ws":                true,
	}

	for _, r := range app.GetRoutes(true) {
		if r.Method == fiber.MethodHead || r.Method == fiber.MethodOptions || undocumented[r.Path] {
			continue
		}
		path := toOpenAPIPath(strings.TrimSuffix(r.Path, "/"))
		item := spec.Paths.Find(path)
		if item == nil {
			t.Errorf("route %s %s missing from spec (%s)", r.Method, r.Path, path)
			continue
		}
		if item.GetOperation(r.Method) == nil {
			t.Errorf("operation %s %s missing from spec", r.Method, path)
		}
	}
}

func TestOpenAPIInfo(t *testing.T) {
	spec := loadSpec(t)
	if spec.Info.Title != "RideMyCity API" {
		t.Errorf("expected title 'RideMyCity API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}
}

func TestDocs_ServesDocument(t *testing.T) {
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = findOpenAPISpec(t)
	t.Cleanup(func() { handler.OpenAPIPath = prev })

	app := setupApp(newEnv().deps)

	resp, body := doRequest(t, app, "GET", "/docs/openapi.json", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if body["openapi"] != "3.0.3" {
		t.Errorf("unexpected document version %v", body["openapi"])
	}

	resp, _ = doRequest(t, app, "GET", "/docs/openapi.yaml", "")
	if resp.Status != 200 || !strings.HasPrefix(resp.Header("Content-Type"), "application/yaml") {
		t.Errorf("unexpected yaml response %d %q", resp.Status, resp.Header("Content-Type"))
	}
}

func TestDocs_MissingDocument(t *testing.T) {
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { handler.OpenAPIPath = prev })

	resp, body := doRequest(t, setupApp(newEnv().deps), "GET", "/docs/openapi.json", "")
	if resp.Status != 404 || body["code"] != "not_found" {
		t.Errorf("expected 404 not_found, got %d %v", resp.Status, body)
	}
}

// toOpenAPIPath rewrites fiber ":param" segments as "{param}".
func toOpenAPIPath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}
