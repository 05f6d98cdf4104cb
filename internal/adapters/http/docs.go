package http

import (
	"context"
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// OpenAPIPath is where the API description is read from, relative to the
// working directory.
var OpenAPIPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>RideMyCity API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.json', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`

// apiDocument is the parsed description served under /docs.
type apiDocument struct {
	yaml []byte
	json []byte
}

// loadAPIDocument reads and validates the OpenAPI file once. A missing or
// invalid file is logged and leaves the docs routes answering 404.
func loadAPIDocument(path string) *apiDocument {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("openapi document unavailable", "path", path, "error", err)
		return nil
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		slog.Warn("openapi document unreadable", "path", path, "error", err)
		return nil
	}
	if err := doc.Validate(context.Background()); err != nil {
		slog.Warn("openapi document invalid", "path", path, "error", err)
		return nil
	}
	js, err := doc.MarshalJSON()
	if err != nil {
		slog.Warn("openapi document encode", "error", err)
		return nil
	}
	return &apiDocument{yaml: data, json: js}
}

// SetupDocs registers Swagger UI at /docs and the API description at
// /docs/openapi.yaml and /docs/openapi.json.
func SetupDocs(app *fiber.App) {
	doc := loadAPIDocument(OpenAPIPath)

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(swaggerUIHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if doc == nil {
			return errNotFound(c, "openapi document not available")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(doc.yaml)
	})

	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		if doc == nil {
			return errNotFound(c, "openapi document not available")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(doc.json)
	})
}
