package handler

import (
	"net/http"

	"github.com/picwall-dev/picwall/internal/middleware"
	"github.com/picwall-dev/picwall/internal/utils"
)

func (h *Handler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	name, upload, cleanup, err := h.parseUploadRequest(w, r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer cleanup()

	user := middleware.GetUserFromContext(r)
	picture, err := h.pictures.Upload(r.Context(), user, name, upload)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, toPictureResponse(picture))
}

func (h *Handler) GetPicture(w http.ResponseWriter, r *http.Request) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	picture, err := h.pictures.Get(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toPictureResponse(picture))
}

func (h *Handler) ListPictures(w http.ResponseWriter, r *http.Request) {
	pictures, err := h.pictures.List(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := make([]pictureResponse, 0, len(pictures))
	for i := range pictures {
		response = append(response, toPictureResponse(&pictures[i]))
	}
	utils.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) ListPictureCollages(w http.ResponseWriter, r *http.Request) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	collages, err := h.pictures.ListCollages(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := make([]collageResponse, 0, len(collages))
	for i := range collages {
		response = append(response, toCollageResponse(&collages[i]))
	}
	utils.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) DeletePicture(w http.ResponseWriter, r *http.Request) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := middleware.GetUserFromContext(r)
	if err := h.pictures.Delete(r.Context(), user, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
