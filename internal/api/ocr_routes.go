package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxReceiptBytes = 10 << 20 // 10 MB

type receiptJSONRequest struct {
	Image    string `json:"image"` // base64-encoded
	MimeType string `json:"mimeType"`
}

// handleAnalyzeReceipt accepts a receipt photo either as a multipart upload
// (field "image") or as a base64 JSON body. Vision failures never bubble up
// as server errors: the client gets a generic success:false payload and the
// user enters the details by hand.
func (s *Server) handleAnalyzeReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes)

	image, mimeType, err := readReceiptImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.vision == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "Receipt analysis is not available. Please enter details manually.",
		})
		return
	}

	fields, err := s.vision.AnalyzeReceipt(r.Context(), image, mimeType)
	if err != nil {
		fmt.Printf("Error analyzing receipt: %v\n", err)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "Could not analyze receipt. Please enter details manually.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"fields":  fields,
	})
}

func readReceiptImage(r *http.Request) (image []byte, mimeType string, err error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("image")
		if err != nil {
			return nil, "", fmt.Errorf("missing image upload")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image upload")
		}
		mt := header.Header.Get("Content-Type")
		if mt == "" {
			mt = "image/jpeg"
		}
		return data, mt, nil
	}

	var req receiptJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		return nil, "", fmt.Errorf("missing image upload")
	}
	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image data")
	}
	if req.MimeType == "" {
		req.MimeType = "image/jpeg"
	}
	return data, req.MimeType, nil
}
