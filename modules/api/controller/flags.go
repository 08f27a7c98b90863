package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tryanzu/overflow/board/moderation"
)

type flagForm struct {
	ID        string `json:"id" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=question answer comment"`
	Reason    string `json:"reason" binding:"required"`
	FlaggedBy string `json:"flaggedBy" binding:"required"`
	Details   string `json:"details" binding:"max=255"`
}

// NewFlag endpoint.
func (api API) NewFlag(c *gin.Context) {
	var form flagForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonBindErr(c, http.StatusBadRequest, "Invalid flag request, check parameters", err)
		return
	}
	s, err := api.Engine.SubmitFlag(c, moderation.FlagRequest{
		PostID:    form.ID,
		PostType:  form.Type,
		Reason:    form.Reason,
		FlaggedBy: form.FlaggedBy,
		Details:   form.Details,
	})
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "okay", "flag": s.Flag, "duplicate": s.Duplicate})
}

// PendingFlags lists the moderation queue.
func (api API) PendingFlags(c *gin.Context) {
	list, err := api.Engine.PendingFlags(c.Query("username"))
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (api API) Flag(c *gin.Context) {
	f, err := api.Engine.GetFlag(c.Param("fid"), c.Query("username"))
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

type reviewForm struct {
	FlagID    string `json:"flagId" binding:"required"`
	Moderator string `json:"moderatorUsername" binding:"required"`
}

func (api API) ReviewFlag(c *gin.Context) {
	var form reviewForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonBindErr(c, http.StatusBadRequest, "Invalid review request, check parameters", err)
		return
	}
	msg, err := api.Engine.ReviewFlag(c, form.FlagID, form.Moderator)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type resolveForm struct {
	FlagID    string `json:"flagId" binding:"required"`
	Moderator string `json:"moderatorUsername" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

func (api API) ResolveFlag(c *gin.Context) {
	var form resolveForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonBindErr(c, http.StatusBadRequest, "Invalid resolve request, check parameters", err)
		return
	}
	msg, err := api.Engine.ResolveFlag(c, form.FlagID, form.Moderator, form.Action)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
