package controllers

import (
	"net/http"

	"pqrssi-portal/middleware"
	"pqrssi-portal/models"

	"github.com/gin-gonic/gin"
)

type adminRow struct {
	models.Request
	StatusName string
	Targets    []models.Status
}

// AdminDashboard lists every request with the statuses it can move to.
func (ctl *Controller) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	requests, err := ctl.requests.ViewAllRequests(ctx, middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	statuses, err := ctl.catalog.Statuses(ctx)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	names := make(map[int]string, len(statuses))
	for _, st := range statuses {
		names[st.StatusID] = st.Name
	}

	workflow := ctl.requests.Workflow()
	rows := make([]adminRow, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, adminRow{
			Request:    r,
			StatusName: names[r.StatusID],
			Targets:    workflow.Targets(r.StatusID, statuses),
		})
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{"Requests": rows})
}

// ChangeStatus applies an administrator's status change and returns to the dashboard.
func (ctl *Controller) ChangeStatus(c *gin.Context) {
	requestID, err := formInt(c, "pqrssi_id")
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	statusID, err := formInt(c, "estado_id")
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	err = ctl.requests.ChangeStatus(c.Request.Context(), middleware.CurrentIdentity(c), requestID, statusID, c.PostForm("comentario"))
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}
