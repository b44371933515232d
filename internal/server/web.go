package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	timeout = 10 * time.Second
	qrSize  = 256
)

var Version = "0.1.0"

type Config struct {
	// PublicURL is what /join.png encodes. Empty means ws://<request host>/ws.
	PublicURL string
	Bind      string
	Port      int
	Rules     Rules
	HitChance float64
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.HitChance < 0 || c.HitChance > 1 {
		return fmt.Errorf("invalid hit chance (must be between 0 and 1): %v", c.HitChance)
	}
	if c.Rules.Magazine < 1 || c.Rules.Health < 1 || c.Rules.Damage < 1 {
		return errors.New("magazine, health and damage must all be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

func NewRouter(cfg *Config, arena *Arena, log *slog.Logger) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		log.Error("handler panic", "path", r.URL.Path, "panic", i)
		http.Error(w, "server error", http.StatusInternalServerError)
	}

	mux.GET("/ws", HandleWebSocket(arena, log))
	mux.GET("/healthz", serveHealthCheck(arena))
	mux.GET("/version", serveVersion())
	mux.GET("/join.png", serveJoinCode(cfg, log))

	return mux
}

func serveHealthCheck(arena *Arena) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %d\n", arena.PlayerCount())
	}
}

func serveVersion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "lasertag v"+Version+"\n")
	}
}

// serveJoinCode renders the websocket endpoint as a QR code so phones can
// pick it up from a shared screen.
func serveJoinCode(cfg *Config, log *slog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		endpoint := cfg.PublicURL
		if endpoint == "" {
			scheme := "ws"
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				scheme = "wss"
			}
			endpoint = scheme + "://" + r.Host + "/ws"
		}

		png, err := qrcode.Encode(endpoint, qrcode.Medium, qrSize)
		if err != nil {
			log.Error("qr generation failed", "err", err)
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Join-Endpoint", endpoint)
		_, _ = w.Write(png)
	}
}

// Serve runs the referee until ctx is cancelled.
func Serve(ctx context.Context, cfg *Config, log *slog.Logger) error {
	var resolver HitResolver = NoHits{}
	if cfg.HitChance > 0 {
		resolver = NewRandomResolver(cfg.HitChance)
	}
	arena := NewArena(cfg.Rules, resolver, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(cfg, arena, log),
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: timeout,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", "ws://"+srv.Addr+"/ws", "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err, ok := <-errs:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
