package appointment

import (
	"errors"
	"net/http"

	"clinicops/database"
	"clinicops/services/access"
	"clinicops/services/scheduling"
	"clinicops/utils"
)

// HTTPStatus maps service errors onto response codes. Unknown errors are 500.
func HTTPStatus(err error) (int, string) {
	var verr *utils.ValidationError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &verr):
		return http.StatusBadRequest, "ValidationError"
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "NotFound"
	}

	kind, ok := scheduling.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "InternalError"
	}
	switch kind {
	case scheduling.InvalidInterval:
		return http.StatusBadRequest, string(kind)
	case scheduling.PractitionerUnavailable:
		return http.StatusNotFound, string(kind)
	case scheduling.SchedulingConflict, scheduling.IllegalTransition:
		return http.StatusConflict, string(kind)
	}
	return http.StatusInternalServerError, "InternalError"
}
