package middleware

import (
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSConfig mirrors the relay's open-by-default policy: the frontend is
// embedded on arbitrary stream pages, so origins default to "*".
func CORSConfig(allowOrigins string) cors.Config {
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	return cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Cache-Control,Pragma,Authorization",
	}
}
