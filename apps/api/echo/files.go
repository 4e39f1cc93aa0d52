package echoapi

import (
	"bytes"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func attachment(ctx echo.Context, name, contentType string, content []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	return ctx.Stream(http.StatusOK, contentType, bytes.NewReader(content))
}

func sendPDF(ctx echo.Context, file report.File) error {
	return attachment(ctx, file.Name, mimePDF, file.Content)
}
