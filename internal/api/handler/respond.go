package handler

import (
	"net/http"

	"medportal/internal/common"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// writeError renders err and logs anything that ends up as a server error.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	code := common.RespondWithServiceError(w, err)
	if code >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": chiMiddleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).Error("request failed")
	}
}
