package documents

import (
	"bytes"
	"errors"
	"io"
	"mindmap-share/core"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	ShareResponse struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}

	Options struct {
		// PublicURL is the externally visible base URL. When empty the
		// share URL is built from the request's scheme and host.
		PublicURL string
		// TrustProxyHeaders lets X-Forwarded-Proto pick the share URL scheme.
		// Only enable it behind a proxy that sets the header.
		TrustProxyHeaders bool
		MaxBodyBytes      int64
		Log               logrus.FieldLogger
	}
)

const (
	msgNoData      = "No data provided"
	msgInvalidJSON = "Invalid JSON"
	msgTooLarge    = "Payload too large"
	msgNotFound    = "Not found"
	msgSaveFailed  = "Failed to save"
	msgLoadFailed  = "Failed to load"
)

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

// HandleCreate persists the request body as a new mind-map and answers
// with its share token and viewer URL.
func HandleCreate(documentStore core.DocumentStore, opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		data := new(bytes.Buffer)
		body := io.Reader(r.Body)
		if opts.MaxBodyBytes > 0 {
			body = http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
		}
		if _, err := io.Copy(data, body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				renderError(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
				return
			}
			renderError(w, r, http.StatusBadRequest, msgNoData)
			return
		}
		if len(bytes.TrimSpace(data.Bytes())) == 0 {
			renderError(w, r, http.StatusBadRequest, msgNoData)
			return
		}

		payload, err := core.Parse(data.Bytes())
		if err != nil {
			renderError(w, r, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		id, err := documentStore.Create(r.Context(), payload)
		if err != nil {
			if errors.Is(err, core.ErrInvalidInput) {
				renderError(w, r, http.StatusBadRequest, msgNoData)
				return
			}
			log.WithField("error", err).Error("Failed to save mindmap")
			renderError(w, r, http.StatusInternalServerError, msgSaveFailed)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, ShareResponse{Token: id, URL: ViewURL(r, opts.PublicURL, id, opts.TrustProxyHeaders)})
	}
}

// HandleGet returns the stored document as JSON.
func HandleGet(documentStore core.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "token")
		document, err := documentStore.FindID(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				renderError(w, r, http.StatusNotFound, msgNotFound)
				return
			}
			renderError(w, r, http.StatusInternalServerError, msgLoadFailed)
			return
		}
		render.JSON(w, r, document.Payload)
	}
}

// ViewURL is the absolute URL of the read-only viewer for token.
// X-Forwarded-Proto is only consulted when trustProxy is set.
func ViewURL(r *http.Request, publicURL, token string, trustProxy bool) string {
	path := "/view/" + url.PathEscape(token)
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/") + path
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if trustProxy {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}
	}
	return scheme + "://" + r.Host + path
}
