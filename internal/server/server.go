// Package server exposes the cipher over HTTP.
package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gost28147/internal/charset"
	"gost28147/internal/crypto"
)

// HeaderIV carries a per-request IV as hex. Responses echo the IV used.
const HeaderIV = "X-Gost-IV"

const defaultMaxBody = 16 << 20

type HandlerError struct {
	Where  string
	What   string
	Err    error
	Status int
}

type Handler func(http.ResponseWriter, *http.Request) *HandlerError

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Where, e.What, e.Err)
}

func (fn Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		log.Printf("Error: %v", err.Error())
		http.Error(w, err.What, err.Status)
	}
}

// Options tunes the service.
type Options struct {
	MaxBody    int64
	LogRequest bool
}

// Server holds the shared cipher. Requests never mutate it.
type Server struct {
	cipher  *crypto.Cipher
	maxBody int64
	logReq  bool
}

func New(c *crypto.Cipher, opts Options) *Server {
	s := &Server{cipher: c, maxBody: opts.MaxBody, logReq: opts.LogRequest}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBody
	}
	return s
}

// Routes builds the router:
//
//	GET  /healthz
//	GET  /modes
//	POST /encrypt/{mode}[?charset=cp1251]
//	POST /decrypt/{mode}[?charset=cp1251]
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	if s.logReq {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/modes", Handler(s.modes))
	r.Method(http.MethodPost, "/encrypt/{mode}", s.crypt(crypto.Encrypt))
	r.Method(http.MethodPost, "/decrypt/{mode}", s.crypt(crypto.Decrypt))

	return r
}

func (s *Server) modes(w http.ResponseWriter, r *http.Request) *HandlerError {
	type modeInfo struct {
		Name   string `json:"name"`
		UsesIV bool   `json:"uses_iv"`
	}
	var list []modeInfo
	for _, m := range crypto.Modes {
		list = append(list, modeInfo{m.String(), m.UsesIV()})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		return &HandlerError{Where: "modes", What: "failed to encode", Err: err, Status: http.StatusInternalServerError}
	}
	return nil
}

func (s *Server) crypt(dir crypto.Direction) Handler {
	return func(w http.ResponseWriter, r *http.Request) *HandlerError {
		where := dir.String()

		mode, err := crypto.ParseMode(chi.URLParam(r, "mode"))
		if err != nil {
			return &HandlerError{Where: where, What: "unknown mode", Err: err, Status: http.StatusNotFound}
		}

		c := s.cipher
		if ivHex := r.Header.Get(HeaderIV); ivHex != "" {
			iv, err := hex.DecodeString(strings.TrimSpace(ivHex))
			if err != nil {
				return &HandlerError{Where: where, What: "malformed IV", Err: err, Status: http.StatusBadRequest}
			}
			c, err = c.WithIV(iv)
			if err != nil {
				return &HandlerError{Where: where, What: "IV must be 8 bytes", Err: err, Status: http.StatusBadRequest}
			}
		}

		cs := r.URL.Query().Get("charset")
		if _, err := charset.Lookup(cs); err != nil {
			return &HandlerError{Where: where, What: "unknown charset", Err: err, Status: http.StatusBadRequest}
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return &HandlerError{Where: where, What: "body too large", Err: err, Status: http.StatusRequestEntityTooLarge}
			}
			return &HandlerError{Where: where, What: "failed to read body", Err: err, Status: http.StatusBadRequest}
		}

		var out []byte
		if dir == crypto.Encrypt {
			if body, err = charset.Encode(cs, body); err != nil {
				return &HandlerError{Where: where, What: "text not representable in charset", Err: err, Status: http.StatusUnprocessableEntity}
			}
			out, err = c.EncryptBytes(mode, body)
		} else {
			out, err = c.DecryptBytes(mode, body)
			if err == nil {
				out, err = charset.Decode(cs, out)
			}
		}
		if err != nil {
			return &HandlerError{Where: where, What: "cipher failure", Err: err, Status: http.StatusInternalServerError}
		}

		h := w.Header()
		h.Set("Content-Type", "application/octet-stream")
		h.Set("X-Gost-Mode", mode.String())
		if mode.UsesIV() {
			iv := c.IV()
			h.Set(HeaderIV, hex.EncodeToString(iv[:]))
		}
		w.Write(out)
		return nil
	}
}
