package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/scythe504/ludo-backend/internal/game"
)

type Server struct {
	port     int
	registry *game.Registry
}

func NewServer(registry *game.Registry) *http.Server {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port == 0 {
		port = 8000
	}

	newServer := &Server{
		port:     port,
		registry: registry,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", newServer.port),
		Handler:      newServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
