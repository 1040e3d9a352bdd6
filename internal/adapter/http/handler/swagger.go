package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Ledger API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/swagger/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`

// APIDocs serves the OpenAPI document and a Swagger UI page for it.
type APIDocs struct {
	openAPI []byte
}

// NewAPIDocs wraps the OpenAPI YAML loaded at startup. A nil document
// makes both routes answer 404.
func NewAPIDocs(openAPI []byte) *APIDocs {
	return &APIDocs{openAPI: openAPI}
}

// Document serves the raw OpenAPI YAML.
func (d *APIDocs) Document(c *gin.Context) {
	if d.openAPI == nil {
		c.String(http.StatusNotFound, "OpenAPI document not loaded")
		return
	}
	c.Data(http.StatusOK, "application/x-yaml", d.openAPI)
}

// UI serves a Swagger UI page that loads /swagger/openapi.yaml.
func (d *APIDocs) UI(c *gin.Context) {
	if d.openAPI == nil {
		c.String(http.StatusNotFound, "OpenAPI document not loaded")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
}
