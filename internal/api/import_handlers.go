package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "importBook",
		Method:        http.MethodPost,
		Path:          "/api/import",
		Summary:       "Import book by ISBN",
		Description:   "Fetches metadata for an ISBN from the configured sources, merges it, and persists the record",
		Tags:          []string{"Import"},
		DefaultStatus: http.StatusCreated,
	}, s.handleImport)
}

// ImportRequest is the request body for an ISBN import.
type ImportRequest struct {
	ISBN string `json:"isbn" doc:"ISBN-10 or ISBN-13 to import"`
}

// ImportInput wraps the import request for Huma.
type ImportInput struct {
	Body ImportRequest
}

// ImportResponse contains the result of an ISBN import.
type ImportResponse struct {
	Book    BookResponse `json:"book" doc:"Imported record"`
	Sources []string     `json:"sources" doc:"Sources that knew the ISBN"`
	Created bool         `json:"created" doc:"Whether a new row was created"`
	Message string       `json:"message" doc:"Replication status note"`
}

// ImportOutput wraps the import response for Huma.
type ImportOutput struct {
	Body ImportResponse
}

// replicaNote renders the outcome of one replica write. A failed
// write reads differently from one that never happened, so a degraded
// mirror shows up in the response instead of hiding behind "ignoré".
func replicaNote(name string, written bool, errText string) string {
	switch {
	case written:
		return name + ": ok"
	case errText != "":
		return name + ": échec: " + errText
	default:
		return name + ": ignoré"
	}
}

func (s *Server) handleImport(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	result, err := s.services.Import.Import(ctx, strings.TrimSpace(input.Body.ISBN))
	if err != nil {
		return nil, err
	}

	var notes []string
	if result.Report.Created {
		notes = append(notes, "livre importé")
	} else {
		notes = append(notes, "livre mis à jour")
	}
	notes = append(notes, replicaNote("index", result.Report.Indexed, result.Report.IndexError))
	notes = append(notes, replicaNote("miroir", result.Report.Mirrored, result.Report.MirrorError))

	return &ImportOutput{
		Body: ImportResponse{
			Book:    toBookResponse(&result.Book),
			Sources: result.Sources,
			Created: result.Report.Created,
			Message: strings.Join(notes, ", "),
		},
	}, nil
}
