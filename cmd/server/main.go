package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vladimirvolkov/palmbreak/internal/config"
	"github.com/vladimirvolkov/palmbreak/internal/game"
	"github.com/vladimirvolkov/palmbreak/internal/middleware"
	"github.com/vladimirvolkov/palmbreak/internal/ws"
)

// securityHeaders wraps a handler with common security response headers.
// The page needs camera access and the CDN-hosted pose model, so media and
// wasm are allowed; everything else stays same-origin.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "camera=(self)")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' 'wasm-unsafe-eval' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss: https://cdn.jsdelivr.net https://storage.googleapis.com; img-src 'self' data: blob:; media-src 'self' blob:")
		next.ServeHTTP(w, r)
	})
}

// GameManager starts one room per accepted player.
type GameManager struct {
	ctx    context.Context
	hub    *ws.Hub
	cfg    game.Config
	mirror bool
}

func (gm *GameManager) CreateRoom(conn *ws.Conn) {
	room := game.NewRoom(conn, gm.cfg, gm.mirror)
	room.Start(gm.ctx)
	go func() {
		<-room.Done()
		gm.hub.RoomEnded()
	}()
}

func main() {
	configPath := flag.String("config", os.Getenv("PALMBREAK_CONFIG"), "path to a TOML config file")
	dumpConfig := flag.Bool("dump-config", false, "print the effective config as TOML and exit")
	flag.Parse()

	// Write logs to stdout so hosting platforms don't mark them as errors
	log.SetOutput(os.Stdout)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dumpConfig {
		if err := cfg.Write(os.Stdout); err != nil {
			log.Fatalf("config: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewIPRateLimiter(cfg.Server.MaxConnsPerIP, cfg.Server.MsgRate, time.Second)
	go limiter.Run(ctx)

	manager := &GameManager{ctx: ctx, cfg: cfg.Game, mirror: cfg.Input.Mirror}
	hub := ws.NewHub(manager, limiter, cfg.Server.AllowedOrigins, cfg.Server.MaxSessions)
	manager.hub = hub

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)

	// Health / stats endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(hub.Stats())
	})

	// Static files with no-cache headers (prevents stale JS in browser)
	fs := http.FileServer(http.Dir(cfg.Server.StaticDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           securityHeaders(mux),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Println("shutting down...")
		server.Close()
	}()

	log.Printf("palmbreak server starting on :%s (field %gx%g, %d Hz)",
		cfg.Server.Port, cfg.Game.FieldWidth, cfg.Game.FieldHeight, cfg.Game.TickRate)
	log.Printf("serving static files from %s", cfg.Server.StaticDir)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}
