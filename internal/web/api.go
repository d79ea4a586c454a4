package web

import (
	"errors"
	"net/http"
	"strings"

	"boardview/internal/linkmeta"
	"boardview/internal/store"

	log "github.com/sirupsen/logrus"
)

type uploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// fileEntry is one row of GET /api/files. UploadedAt is Unix milliseconds.
type fileEntry struct {
	Filename    string `json:"filename"`
	UploadedAt  int64  `json:"uploadedAt"`
	DisplayName string `json:"displayName,omitempty"`
	BoardName   string `json:"boardName,omitempty"`
	Size        int64  `json:"size"`
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	info, err := s.saveUpload(w, r)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		http.Error(w, "No file uploaded.", http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), uploadStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Message: "File uploaded successfully", Filename: info.Name})
}

// saveUpload stores the multipart "file" field of r.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (store.FileInfo, error) {
	limit := s.cfg.MaxUploadBytes
	// Leave headroom for the multipart envelope; Save enforces the exact cap.
	envelope := limit + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, envelope)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return store.FileInfo{}, store.ErrTooLarge
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return store.FileInfo{}, http.ErrMissingFile
		}
		return store.FileInfo{}, err
	}
	defer f.Close()

	info, err := s.st().Save(r.Context(), hdr.Filename, f, limit)
	if err != nil {
		return store.FileInfo{}, err
	}
	s.log.WithFields(log.Fields{"file": info.Name, "size": info.Size}).Info("board uploaded")
	s.NotifyUploadsChanged()
	return info, nil
}

func uploadStatus(err error) int {
	if errors.Is(err, store.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) handleAPIFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.st().List(r.Context())
	if err != nil {
		s.log.WithError(err).Error("list uploads")
		http.Error(w, "Unable to scan directory", http.StatusInternalServerError)
		return
	}
	out := make([]fileEntry, 0, len(files))
	for _, f := range files {
		out = append(out, fileEntry{
			Filename:    f.Name,
			UploadedAt:  f.UploadedAt.UnixMilli(),
			DisplayName: f.DisplayName,
			BoardName:   f.BoardName,
			Size:        f.Size,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	doc, err := s.st().FetchExport(r.Context(), name)
	if err != nil {
		var pe *store.ParseError
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "File not found", http.StatusNotFound)
		case errors.As(err, &pe):
			http.Error(w, "Error parsing JSON", http.StatusInternalServerError)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAPILinkMeta(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Meta == nil {
		writeJSONError(w, http.StatusNotImplemented, "link metadata disabled")
		return
	}
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		writeJSONError(w, http.StatusBadRequest, "missing url")
		return
	}
	m, err := s.cfg.Meta.Lookup(r.Context(), target)
	if err != nil {
		if errors.Is(err, linkmeta.ErrNoMetadata) {
			writeJSON(w, http.StatusOK, linkmeta.Metadata{URL: target})
			return
		}
		s.log.WithError(err).WithField("url", target).Debug("link metadata lookup failed")
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}
