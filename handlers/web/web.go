package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"mindmap-share/core"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	ModeEdit = "edit"
	ModeView = "view"
)

var (
	//go:embed templates/index.html
	templateFS embed.FS

	//go:embed static
	staticFS embed.FS

	page = template.Must(template.ParseFS(templateFS, "templates/index.html"))
)

// pageData is injected into the page script. InitialData is a core.Value,
// so html/template serializes it through its MarshalJSON.
type pageData struct {
	Mode        string
	InitialData core.Value
}

func renderPage(w http.ResponseWriter, data pageData) error {
	buf := new(bytes.Buffer)
	if err := page.Execute(buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

// HandleEditor serves the page in edit mode with no preloaded document.
func HandleEditor(log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := renderPage(w, pageData{Mode: ModeEdit}); err != nil {
			log.WithField("error", err).Error("Failed to render editor")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

// HandleView serves the read-only page with the shared document embedded.
func HandleView(documentStore core.DocumentStore, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "token")
		document, err := documentStore.FindID(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				http.Error(w, "Mindmap not found", http.StatusNotFound)
				return
			}
			log.WithFields(logrus.Fields{"document_id": id, "error": err}).Error("Failed to load mindmap")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if err := renderPage(w, pageData{Mode: ModeView, InitialData: document.Payload}); err != nil {
			log.WithFields(logrus.Fields{"document_id": id, "error": err}).Error("Failed to render viewer")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

// Static returns the embedded asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// HandleFile serves a single embedded asset, e.g. sw.js at the site root
// so the service worker scope covers the whole app.
func HandleFile(name, contentType string, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(Static(), name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write(data); err != nil {
			log.WithFields(logrus.Fields{"file": name, "error": err}).Debug("Failed to write asset")
		}
	}
}
