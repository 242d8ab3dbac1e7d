package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/drawguess-backend/internal/database"
	"github.com/scythe504/drawguess-backend/internal/game"
)

const Version = "2.0"

type Server struct {
	port           int
	allowedOrigins []string

	db       database.Service
	registry *game.Registry
	ws       http.Handler
}

type Options struct {
	Port           int
	AllowedOrigins []string
	DB             database.Service
	Registry       *game.Registry
	// WebSocket serves /ws/{roomId}.
	WebSocket http.Handler
}

func newServer(opts Options) *Server {
	db := opts.DB
	if db == nil {
		db = database.NewNoop()
	}
	return &Server{
		port:           opts.Port,
		allowedOrigins: opts.AllowedOrigins,
		db:             db,
		registry:       opts.Registry,
		ws:             opts.WebSocket,
	}
}

func NewServer(opts Options) *http.Server {
	s := newServer(opts)

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
