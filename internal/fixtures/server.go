// Package fixtures serves review pages and images over HTTP for local
// development and tests.
package fixtures

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/hay-kot/reviewfeed/internal/core/review"
	"github.com/hay-kot/reviewfeed/internal/core/source"
)

//go:embed data/reviews.json
var sampleReviews []byte

// SwatchSize is the edge length of generated images.
const SwatchSize = 64

// Sample returns the built-in review page.
func Sample() (review.Page, error) {
	return review.Decode(sampleReviews)
}

// Options configures a Server.
type Options struct {
	// ImagesDir is served under /images/. Images are generated when empty.
	ImagesDir string
	// Delay is added before every /reviews response.
	Delay time.Duration
}

// Server serves a fixed review page in offset/limit windows.
type Server struct {
	page review.Page
	opts Options
	log  zerolog.Logger
}

// New creates a server for page.
func New(page review.Page, opts Options, log zerolog.Logger) *Server {
	return &Server{page: page, opts: opts, log: log}
}

// Routes returns the server's handler.
//
//	GET /health
//	GET /reviews?offset=N&limit=M
//	GET /images/{name}
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/reviews", s.reviewsHandler)

	if s.opts.ImagesDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(s.opts.ImagesDir))))
	} else {
		r.Get("/images/{name}", s.swatchHandler)
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error, 1)
	go func() {
		<-ctx.Done()

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdown <- srv.Shutdown(sctx)
	}()

	s.log.Info().Str("addr", addr).Int("reviews", len(s.page.Items)).Msg("fixture server started")

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdown; err != nil {
		return err
	}

	s.log.Info().Str("addr", addr).Msg("fixture server stopped")
	return nil
}

func (s *Server) reviewsHandler(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if s.opts.Delay > 0 {
		select {
		case <-time.After(s.opts.Delay):
		case <-r.Context().Done():
			return
		}
	}

	data, err := source.Slice(s.absolute(r), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// absolute rewrites host-relative image references against the request host
// so clients can fetch them.
func (s *Server) absolute(r *http.Request) review.Page {
	base := "http://" + r.Host
	if r.TLS != nil {
		base = "https://" + r.Host
	}

	resolve := func(ref string) string {
		if strings.HasPrefix(ref, "/") {
			return base + ref
		}
		return ref
	}

	out := review.Page{Count: s.page.Count, Items: make([]review.Review, len(s.page.Items))}
	for i, rv := range s.page.Items {
		rv.AvatarRef = resolve(rv.AvatarRef)
		if len(rv.PhotoRefs) > 0 {
			refs := make([]string, len(rv.PhotoRefs))
			for j, ref := range rv.PhotoRefs {
				refs[j] = resolve(ref)
			}
			rv.PhotoRefs = refs
		}
		out.Items[i] = rv
	}
	return out
}

func (s *Server) swatchHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	if err := png.Encode(w, Swatch(name)); err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("encode swatch")
	}
}

// Swatch returns a solid image whose color is derived from name.
func Swatch(name string) image.Image {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()

	c := color.RGBA{R: uint8(sum >> 16), G: uint8(sum >> 8), B: uint8(sum), A: 0xff}
	img := image.NewRGBA(image.Rect(0, 0, SwatchSize, SwatchSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
