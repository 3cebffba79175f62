package post

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/a-h/bedrockchat/bedrock"
	"github.com/a-h/bedrockchat/models"
)

// Parts larger than this are spooled to temporary files by ParseMultipartForm.
const maxMemory = 32 << 20

type chatForm struct {
	Message     string
	ModelID     string
	Attachments []bedrock.Attachment
}

func parseForm(r *http.Request) (form chatForm, err error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return parseMultipartForm(r)
	case "application/x-www-form-urlencoded":
		if err = r.ParseForm(); err != nil {
			return form, bodyError(err, "Failed to parse form")
		}
		form.Message = r.PostForm.Get("message")
		form.ModelID = r.PostForm.Get("modelId")
		return form, nil
	}
	// An empty body is a request without a message.
	var req models.ChatPostRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return form, bodyError(err, "Failed to decode body")
	}
	form.Message = req.Message
	form.ModelID = req.ModelID
	return form, nil
}

func parseMultipartForm(r *http.Request) (form chatForm, err error) {
	if err = r.ParseMultipartForm(maxMemory); err != nil {
		return form, bodyError(err, "Failed to parse form")
	}
	defer r.MultipartForm.RemoveAll()

	form.Message = first(r.MultipartForm.Value["message"])
	form.ModelID = first(r.MultipartForm.Value["modelId"])
	for _, fh := range r.MultipartForm.File["files"] {
		a, err := readAttachment(fh)
		if err != nil {
			return form, &bedrock.Error{
				Kind:    bedrock.AttachmentReadError,
				Message: fmt.Sprintf("Failed to read attachment %s", fh.Filename),
				Err:     err,
			}
		}
		form.Attachments = append(form.Attachments, a)
	}
	return form, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func readAttachment(fh *multipart.FileHeader) (a bedrock.Attachment, err error) {
	f, err := fh.Open()
	if err != nil {
		return a, err
	}
	defer f.Close()
	if a.Data, err = io.ReadAll(f); err != nil {
		return a, err
	}
	a.MediaType = fh.Header.Get("Content-Type")
	if a.MediaType == "" {
		a.MediaType = bedrock.DefaultMediaType
	}
	return a, nil
}

func bodyError(err error, msg string) *bedrock.Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		msg = fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)
	}
	return &bedrock.Error{
		Kind:    bedrock.InvalidInput,
		Message: msg,
		Err:     err,
	}
}
