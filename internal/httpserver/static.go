package httpserver

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html static/app.js
var staticFiles embed.FS

var (
	indexHTML = mustReadStatic("static/index.html")
	appJS     = mustReadStatic("static/app.js")
)

func mustReadStatic(name string) []byte {
	b, err := staticFiles.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return b
}

func indexHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func appScriptHandler(c *gin.Context) {
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", appJS)
}
