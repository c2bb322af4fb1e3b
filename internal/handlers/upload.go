package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gul251/nutrimate-backend/internal/services"
)

var cloudinaryService *services.CloudinaryService

// InitCloudinaryService wires the upload backend at startup. Upload
// routes answer 503 until it succeeds.
func InitCloudinaryService(cloudName, apiKey, apiSecret string) error {
	service, err := services.NewCloudinaryService(cloudName, apiKey, apiSecret)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

const maxUploadSize = 10 << 20 // 10 MB

// UploadImage accepts a multipart image and returns its hosted URL.
// Used for catalog meal pictures.
func UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(r); !ok {
		writeUnauthenticated(w)
		return
	}

	if cloudinaryService == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	url, err := cloudinaryService.UploadFile(ctx, file, "nutrimate/meals")
	if err != nil {
		log.Printf("ERROR: upload failed for %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"url":     url,
	})
}
