package main

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

const maxUploadSizeBytes int64 = 10 * 1024 * 1024

const (
	mimePDF  = "application/pdf"
	mimeJPEG = "image/jpeg"
)

var extensionByMimeType = map[string]string{
	mimePDF:  ".pdf",
	mimeJPEG: ".jpg",
}

// uploadRule describes the single file field an endpoint accepts.
type uploadRule struct {
	Field          string
	Allowed        []string
	MissingMessage string
	TypeMessage    string
}

var (
	paginaActuarialUpload = uploadRule{
		Field:          "pagina_actuarial",
		Allowed:        []string{mimePDF},
		MissingMessage: "Archivo no enviado",
		TypeMessage:    "El archivo debe ser PDF",
	}
	comprobantePlanUpload = uploadRule{
		Field:          "comprobante",
		Allowed:        []string{mimePDF, mimeJPEG},
		MissingMessage: "No se envió archivo",
		TypeMessage:    "El archivo debe ser PDF o imagen",
	}
	comprobantePagoUpload = uploadRule{
		Field:          "comprobante",
		Allowed:        []string{mimePDF, mimeJPEG},
		MissingMessage: "Debe enviar un archivo",
		TypeMessage:    "El archivo debe ser de imagen o PDF",
	}
)

type upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// readUpload loads the file of rule.Field. The declared content type and the sniffed
// content must both be one of rule.Allowed.
func readUpload(c *gin.Context, rule uploadRule) (*upload, error) {
	header, err := c.FormFile(rule.Field)
	if err != nil {
		return nil, utils.NewBadRequestError(rule.MissingMessage)
	}
	if header.Size > maxUploadSizeBytes {
		return nil, utils.NewBadRequestError("El archivo supera el tamaño máximo permitido")
	}
	declared, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil || !allowedType(declared, rule.Allowed) {
		return nil, utils.NewBadRequestError(rule.TypeMessage)
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxUploadSizeBytes {
		return nil, utils.NewBadRequestError("El archivo supera el tamaño máximo permitido")
	}
	if !mimetype.Detect(data).Is(declared) {
		return nil, utils.NewBadRequestError(rule.TypeMessage)
	}
	return &upload{FileName: header.Filename, ContentType: declared, Data: data}, nil
}

func allowedType(contentType string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(contentType, a) {
			return true
		}
	}
	return false
}

// storeUpload writes the file under folder with a fresh name and returns its URL. JPEG
// proofs are re-encoded within utils.MaxProofImageSide.
func storeUpload(ctx context.Context, store utils.ContentStore, folder string, up *upload) (string, error) {
	data := up.Data
	if up.ContentType == mimeJPEG {
		normalized, err := utils.NormalizeJPEG(data, utils.MaxProofImageSide)
		if err != nil {
			return "", utils.NewBadRequestError("La imagen no es válida")
		}
		data = normalized
	}
	name := up.FileName
	ext := extensionByMimeType[up.ContentType]
	if !strings.EqualFold(filepath.Ext(name), ext) {
		name = ext
	}
	return store.Store(ctx, folder, utils.GenerateUniqueFilename(name), up.ContentType, data)
}

// discardUpload removes a stored file whose owning record could not be written.
func discardUpload(ctx context.Context, store utils.ContentStore, fileURL string) {
	if err := store.Delete(context.WithoutCancel(ctx), fileURL); err != nil {
		config.LogError(config.GetLogger(), "uploads.go", "discardUpload", "Delete orphan upload", fileURL, err)
		return
	}
	config.GetLogger().WithFields(logrus.Fields{"url": fileURL}).Info("[upload.discarded]")
}
