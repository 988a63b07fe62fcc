package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"pqrssi-portal/middleware"
	"pqrssi-portal/services"

	"github.com/gin-gonic/gin"
)

// SubmitForm renders the new request form with the category list.
func (ctl *Controller) SubmitForm(c *gin.Context) {
	categories, err := ctl.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.HTML(http.StatusOK, "submit.html", gin.H{"Categories": categories})
}

func (ctl *Controller) Submit(c *gin.Context) {
	categoryID, err := formInt(c, "categoria_id")
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	_, err = ctl.requests.Submit(c.Request.Context(), middleware.CurrentIdentity(c),
		c.PostForm("tipo"),
		c.PostForm("descripcion"),
		categoryID,
	)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// ViewOwn lists the caller's requests.
func (ctl *Controller) ViewOwn(c *gin.Context) {
	rows, err := ctl.requests.ViewOwnRequests(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.HTML(http.StatusOK, "view.html", gin.H{"Requests": rows})
}

// History renders the status trajectory of one request.
func (ctl *Controller) History(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "Invalid request id")
		return
	}

	entries, err := ctl.requests.ViewHistory(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.HTML(http.StatusOK, "historial.html", gin.H{
		"RequestID": id,
		"History":   entries,
	})
}

func formInt(c *gin.Context, field string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(field)))
	if err != nil {
		return 0, services.ErrInvalidInput
	}
	return n, nil
}
