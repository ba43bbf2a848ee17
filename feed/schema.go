package feed

import (
	"encoding/json"
	"net/http"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of Snapshot frames
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	s := r.Reflect(&Snapshot{})
	s.Title = "holdout snapshot"
	s.Description = "Battlefield frame broadcast on the websocket feed"
	return s
}

// SchemaHandler serves Schema as JSON
func SchemaHandler() http.HandlerFunc {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/schema+json")
		w.Write(data)
	}
}
