package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tryanzu/overflow/board/posting"
)

// Questions by order.
func (api API) Questions(c *gin.Context) {
	list, err := api.Reader.Questions(
		c.Query("username"),
		c.Query("order"),
		queryInt(c, "offset", 0),
		queryInt(c, "limit", posting.DefaultLimit),
	)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "okay", "questions": list})
}

func (api API) Question(c *gin.Context) {
	tree, err := api.Reader.Question(c.Query("username"), c.Param("id"))
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

type questionForm struct {
	Author string `json:"author" binding:"required"`
	Title  string `json:"title" binding:"max=300"`
	Body   string `json:"body"`
}

// Ask endpoint. Title and body emptiness are checked after the ban gate.
func (api API) Ask(c *gin.Context) {
	var form questionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonBindErr(c, http.StatusBadRequest, "Invalid question, check parameters", err)
		return
	}
	q, err := api.Publisher.Ask(c, form.Author, form.Title, form.Body)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "okay", "question": q})
}

type answerForm struct {
	Author     string `json:"author" binding:"required"`
	QuestionID string `json:"questionId" binding:"required"`
	Body       string `json:"body"`
}

// Answer endpoint. Body emptiness is checked after the ban gate.
func (api API) Answer(c *gin.Context) {
	var form answerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonBindErr(c, http.StatusBadRequest, "Invalid answer, check parameters", err)
		return
	}
	a, err := api.Publisher.Answer(c, form.Author, form.QuestionID, form.Body)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "okay", "answer": a})
}

type commentForm struct {
	Author     string `json:"author" binding:"required"`
	ParentID   string `json:"parentId" binding:"required"`
	ParentType string `json:"parentType" binding:"required,oneof=question answer"`
	Body       string `json:"body"`
}

func (api API) Comment(c *gin.Context) {
	var form commentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonBindErr(c, http.StatusBadRequest, "Invalid comment, check parameters", err)
		return
	}
	comment, err := api.Publisher.Comment(c, form.Author, form.ParentID, form.ParentType, form.Body)
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "okay", "comment": comment})
}

func (api API) Collection(c *gin.Context) {
	view, err := api.Reader.Collection(c.Query("username"), c.Param("id"))
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
