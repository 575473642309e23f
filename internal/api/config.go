package api

import (
	"toeic-web/internal/auth"
	"toeic-web/internal/logger"
	"toeic-web/internal/service"
)

// Config is what the HTTP layer needs from the rest of the server.
type Config struct {
	Services *service.Services
	Tokens   *auth.Tokens
	Log      *logger.Logger
}
