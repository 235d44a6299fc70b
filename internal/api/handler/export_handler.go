package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"siwes-logbook/internal/service"
)

// writeExport 以附件形式写出导出文件
func writeExport(c *gin.Context, file *service.ExportFile) {
	encodedFilename := url.QueryEscape(file.Filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"; filename*=UTF-8''`+encodedFilename)
	c.Data(http.StatusOK, file.ContentType, file.Body.Bytes())
}
