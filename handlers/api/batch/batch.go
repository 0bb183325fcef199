package batch

import (
	"errors"
	"fmt"
	"mindmap-share/core"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// MaxTokens caps the number of tokens resolved by one request.
const MaxTokens = 100

type (
	BatchGetRequest struct {
		Tokens []string `json:"tokens"`
	}

	FoundDocument struct {
		Token    string     `json:"token"`
		Document core.Value `json:"document"`
	}

	BatchGetResponse struct {
		Found    []FoundDocument `json:"found"`
		Missing  []string        `json:"missing"`
		ReadTime string          `json:"readTime"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}

	Options struct {
		MaxBodyBytes int64
	}
)

func (body *BatchGetRequest) Bind(r *http.Request) error {
	if len(body.Tokens) == 0 {
		return errors.New("no tokens provided")
	}
	if len(body.Tokens) > MaxTokens {
		return fmt.Errorf("at most %d tokens per request", MaxTokens)
	}
	return nil
}

// HandleBatchGet resolves several share tokens at once, e.g. for a client
// that keeps a list of maps it has shared. Unknown tokens are reported as
// missing; any storage failure fails the whole request.
func HandleBatchGet(documentStore core.DocumentStore, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if opts.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
		}
		data := &BatchGetRequest{}
		if err := render.Bind(r, data); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				render.Status(r, http.StatusRequestEntityTooLarge)
				render.JSON(w, r, errorResponse{Error: "Payload too large"})
				return
			}
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: err.Error()})
			return
		}

		resp := BatchGetResponse{
			Found:   []FoundDocument{},
			Missing: []string{},
		}
		seen := make(map[string]struct{}, len(data.Tokens))
		for _, key := range data.Tokens {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			document, err := documentStore.FindID(r.Context(), key)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					resp.Missing = append(resp.Missing, key)
					continue
				}
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, errorResponse{Error: "Failed to load"})
				return
			}
			resp.Found = append(resp.Found, FoundDocument{Token: key, Document: document.Payload})
		}
		resp.ReadTime = time.Now().UTC().Format(time.RFC3339)

		render.JSON(w, r, resp)
	}
}
