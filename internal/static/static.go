package static

import (
	"embed"
	"fmt"
)

//go:embed static/*
var StaticFS embed.FS

// GetSwaggerUI returns the Swagger UI page that renders /swagger.json.
func GetSwaggerUI() ([]byte, error) {
	page, err := StaticFS.ReadFile("static/swagger.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read swagger ui from embedded files: %w", err)
	}
	return page, nil
}
