package respond

import (
	"mime"

	"github.com/gin-gonic/gin"
)

// JSON writes payload as the response body.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Attachment sends body as a download named fileName.
func Attachment(c *gin.Context, status int, fileName, contentType, body string) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	c.Data(status, contentType, []byte(body))
}
