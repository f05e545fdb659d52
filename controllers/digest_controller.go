package controllers

import (
	"AlterMoodGo/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DigestController struct {
	digest *services.DigestScheduler
}

func NewDigestController(digest *services.DigestScheduler) *DigestController {
	return &DigestController{digest: digest}
}

// RunDigest 手动触发一次报表预热
func (dc *DigestController) RunDigest(c *gin.Context) {
	n, err := dc.digest.RunOnce(c.Request.Context())
	if err != nil {
		respondError(c, err, "报表预热失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": n})
}
