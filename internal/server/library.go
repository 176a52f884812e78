package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lox/rangebook/internal/library"
)

type folderRequest struct {
	ParentID string `json:"parentId"`
	Name     string `json:"name"`
}

type libraryRangeRequest struct {
	Name string `json:"name"`
}

type libraryRangeResponse struct {
	library.Range
	Shape library.Shape `json:"shape"`
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	tree, err := s.library.Folders(r.Context())
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleAddFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	folder, err := s.library.AddFolder(r.Context(), req.ParentID, req.Name)
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, folder)
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	existed, err := s.library.DeleteFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": existed})
}

func (s *Server) handleToggleFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := s.library.ToggleFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, folder)
}

func (s *Server) handleAddLibraryRange(w http.ResponseWriter, r *http.Request) {
	var req libraryRangeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.library.AddRange(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleLibraryRange(w http.ResponseWriter, r *http.Request) {
	found, err := s.library.FindRange(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, libraryRangeResponse{Range: found, Shape: library.ShapeOf(found.Hands)})
}

func (s *Server) handleUpdateLibraryRange(w http.ResponseWriter, r *http.Request) {
	var req library.RangeUpdate
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.library.UpdateRange(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteLibraryRange(w http.ResponseWriter, r *http.Request) {
	existed, err := s.library.DeleteRange(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": existed})
}

func (s *Server) handleExportLibraryRange(w http.ResponseWriter, r *http.Request) {
	exported, err := s.library.ExportRange(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLibraryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, exported)
}

func (s *Server) writeLibraryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrFolderNotFound), errors.Is(err, library.ErrRangeNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, library.ErrInvalidName), errors.Is(err, library.ErrInvalidWeights):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("Library request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
