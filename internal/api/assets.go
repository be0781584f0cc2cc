package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/schoolportal/internal/models"
)

var (
	imagePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|svg|webp)$`)
	videoPattern = regexp.MustCompile(`(?i)\.(mp4|webm|ogg|avi|mov)$`)
)

type assetKind struct {
	dir        string
	pattern    *regexp.Regexp
	urlPrefix  string
	missingDir string
	missing    string
}

func (h *Handler) images() assetKind {
	return assetKind{
		dir:        filepath.Join(h.assetsDir, "images"),
		pattern:    imagePattern,
		urlPrefix:  "/api/assets/images/",
		missingDir: "Pasta de imagens não encontrada",
		missing:    "Imagem não encontrada",
	}
}

func (h *Handler) videos() assetKind {
	return assetKind{
		dir:        filepath.Join(h.assetsDir, "videos"),
		pattern:    videoPattern,
		urlPrefix:  "/api/assets/videos/",
		missingDir: "Pasta de vídeos não encontrada",
		missing:    "Vídeo não encontrado",
	}
}

// listAssets returns the files of k.dir whose names match k.pattern. A missing
// directory is not an error.
func (h *Handler) listAssets(k assetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := os.ReadDir(k.dir)
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusOK, Envelope{Success: true, Data: []models.Asset{}, Message: k.missingDir})
			return
		}
		if err != nil {
			h.logger.Error("listing assets", "dir", k.dir, "error", err)
			writeMessage(w, http.StatusInternalServerError, "Erro ao listar arquivos")
			return
		}

		assets := []models.Asset{}
		for _, e := range entries {
			if e.IsDir() || !k.pattern.MatchString(e.Name()) {
				continue
			}
			assets = append(assets, models.Asset{
				Filename: e.Name(),
				URL:      k.urlPrefix + e.Name(),
				Path:     filepath.Join(k.dir, e.Name()),
			})
		}
		writeData(w, assets)
	}
}

func (h *Handler) serveAsset(k assetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["filename"]
		if name == "" || name != filepath.Base(name) || name == ".." {
			writeMessage(w, http.StatusNotFound, k.missing)
			return
		}
		path := filepath.Join(k.dir, name)
		if !isFile(path) {
			writeMessage(w, http.StatusNotFound, k.missing)
			return
		}
		http.ServeFile(w, r, path)
	}
}

// logo serves logo.png, falling back to logo.svg.
func (h *Handler) logo(w http.ResponseWriter, r *http.Request) {
	dir := filepath.Join(h.assetsDir, "images")
	for _, name := range []string{"logo.png", "logo.svg"} {
		path := filepath.Join(dir, name)
		if isFile(path) {
			http.ServeFile(w, r, path)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Logo da escola não encontrado")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
