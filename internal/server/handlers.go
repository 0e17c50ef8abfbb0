package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alnah/go-mdpublish"
)

const (
	uploadField = "file"
	indexFile   = "index.html"
)

// uploadResponse is the body of a successful POST /upload.
type uploadResponse struct {
	OK         bool     `json:"ok"`
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	MdPath     string   `json:"md_path"`
	PublicBase string   `json:"public_base"`
	Source     string   `json:"source"`
	Assets     int      `json:"assets"`
	Missing    []string `json:"missing"`
	Preview    string   `json:"preview,omitempty"`
}

// convertRequest is the JSON body accepted by POST /api/convert.
type convertRequest struct {
	MdPath string `json:"md_path"`
}

// convertResponse is the body of a successful POST /api/convert.
type convertResponse struct {
	OK       bool   `json:"ok"`
	Output   string `json:"output"`
	Source   string `json:"source"`
	Provider string `json:"provider,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleUpload(c *gin.Context) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		s.respondError(c, s.uploadFieldError(c, err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", mdpublish.ErrStorage, err))
		return
	}
	defer f.Close()

	res, err := s.pub.Ingest(c.Request.Context(), mdpublish.Upload{Filename: fh.Filename, Body: f})
	if err != nil {
		s.respondError(c, err)
		return
	}

	missing := make([]string, 0, len(res.Missing))
	for _, ref := range res.Missing {
		missing = append(missing, ref.Path)
	}

	c.JSON(http.StatusOK, uploadResponse{
		OK:         true,
		ID:         res.ID,
		Kind:       res.Kind,
		MdPath:     res.DocumentPath,
		PublicBase: res.PublicBase,
		Source:     res.Source,
		Assets:     res.Assets,
		Missing:    missing,
		Preview:    res.PreviewURL,
	})
}

// uploadFieldError classifies a FormFile failure. A file part sent with an
// empty filename is parsed as a plain value, which is how it is told apart
// from a missing field.
func (s *Server) uploadFieldError(c *gin.Context, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: more than %d bytes", mdpublish.ErrUploadTooLarge, maxErr.Limit)
	}
	if c.Request.MultipartForm != nil {
		if _, ok := c.Request.MultipartForm.Value[uploadField]; ok {
			return mdpublish.ErrEmptyFilename
		}
	}
	return fmt.Errorf("%w: %s", mdpublish.ErrMissingUploadField, uploadField)
}

func (s *Server) handleConvert(c *gin.Context) {
	mdPath := strings.TrimSpace(c.PostForm("md_path"))
	if mdPath == "" && strings.HasPrefix(c.ContentType(), "application/json") {
		var req convertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, &httpError{Status: http.StatusBadRequest, Message: "invalid JSON body: " + err.Error()})
			return
		}
		mdPath = strings.TrimSpace(req.MdPath)
	}

	if mdPath != "" && !s.pub.OwnsDocument(mdPath) {
		s.respondError(c, fmt.Errorf("%w: %s", mdpublish.ErrDocumentOutsideUploads, mdPath))
		return
	}

	if s.newGenerator == nil {
		s.respondError(c, mdpublish.ErrNoGenerator)
		return
	}
	gen, err := s.newGenerator(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	res, err := s.pub.Convert(c.Request.Context(), gen, mdPath)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertResponse{
		OK:       true,
		Output:   res.Output,
		Source:   res.Source,
		Provider: s.cfg.Provider,
	})
}

// handleUploadFile serves a published file below the route prefix.
// A directory is served through its index.html when it has one.
func (s *Server) handleUploadFile(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		s.respondError(c, errNotFound)
		return
	}

	rel := c.Param("path")
	if s.pub.RoutePrefix() == "" {
		rel = c.Request.URL.Path
	}

	absolutePath, err := s.resolvePath(rel)
	if err != nil {
		s.respondError(c, err)
		return
	}

	info, err := os.Stat(absolutePath)
	if err == nil && info.IsDir() {
		absolutePath = filepath.Join(absolutePath, indexFile)
		info, err = os.Stat(absolutePath)
	}
	if err != nil || !info.Mode().IsRegular() {
		s.respondError(c, errNotFound)
		return
	}

	f, err := os.Open(absolutePath) // #nosec G304 -- contained by resolvePath
	if err != nil {
		s.respondError(c, errNotFound)
		return
	}
	defer f.Close()

	// ServeContent, unlike ServeFile, does not redirect ".../index.html".
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
