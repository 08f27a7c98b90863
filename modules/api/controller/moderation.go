package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type deleteForm struct {
	ID        string `json:"id" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Moderator string `json:"moderatorUsername" binding:"required"`
}

// DeletePost endpoint. A partial cascade still answers with the error so the
// caller knows the removal needs attention.
func (api API) DeletePost(c *gin.Context) {
	var form deleteForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonBindErr(c, http.StatusBadRequest, "Invalid delete request, check parameters", err)
		return
	}
	msg, err := api.Engine.DeletePost(c, form.ID, form.Type, form.Moderator)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type accountForm struct {
	Username  string `json:"username" binding:"required"`
	Moderator string `json:"moderatorUsername" binding:"required"`
}

type accountAction func(ctx context.Context, username, moderator string) (string, error)

func (api API) account(c *gin.Context, action accountAction) {
	var form accountForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonBindErr(c, http.StatusBadRequest, "Invalid request, check parameters", err)
		return
	}
	msg, err := action(c, form.Username, form.Moderator)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (api API) Ban(c *gin.Context) {
	api.account(c, api.Engine.BanUser)
}

func (api API) Unban(c *gin.Context) {
	api.account(c, api.Engine.UnbanUser)
}

func (api API) ShadowBan(c *gin.Context) {
	api.account(c, api.Engine.ShadowBanUser)
}

func (api API) UnshadowBan(c *gin.Context) {
	api.account(c, api.Engine.UnshadowBanUser)
}

func (api API) IsBanned(c *gin.Context) {
	username := c.Param("username")
	banned, err := api.Engine.IsUserBanned(username)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username, "isBanned": banned})
}
