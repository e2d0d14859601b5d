package controllers

import (
	"net/http"
	"wxhm/internal/assets"
	"wxhm/internal/providers"
	"wxhm/internal/structures"
)

type FilesController struct {
	logger  providers.Logger
	shelf   assets.FileShelfInterface
	maxBody int64
}

type filesResponse struct {
	Files []string `json:"files"`
}

type fileResponse struct {
	File string `json:"file"`
}

func NewFilesController(conf *structures.Config, logger providers.Logger, shelf assets.FileShelfInterface) *FilesController {
	return &FilesController{
		logger:  logger,
		shelf:   shelf,
		maxBody: conf.MaxUploadBytes(),
	}
}

func (fc *FilesController) List(w http.ResponseWriter, r *http.Request) {
	files, err := fc.shelf.List()
	if err != nil {
		writeError(w, r, fc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

func (fc *FilesController) Upload(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readUpload(r, "file", fc.maxBody)
	if err != nil {
		writeError(w, r, fc.logger, err)
		return
	}
	name, err := fc.shelf.Save(filename, data)
	if err != nil {
		writeError(w, r, fc.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, fileResponse{File: name})
}

func (fc *FilesController) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("filename")
	if err := fc.shelf.Delete(name); err != nil {
		writeError(w, r, fc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, fileResponse{File: name})
}

func (fc *FilesController) Serve(w http.ResponseWriter, r *http.Request) {
	f, err := fc.shelf.Open(r.PathValue("name"))
	if err != nil {
		writeError(w, r, fc.logger, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
