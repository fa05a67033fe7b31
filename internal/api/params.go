package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-be/internal/apperror"
	"storefront-be/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var (
	errInvalidID    = apperror.Validation("invalid id")
	errInvalidQuery = apperror.Validation("invalid query parameter")
	errInvalidDate  = apperror.Validation("dates must be YYYY-MM-DD or RFC3339")
)

func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, errInvalidID
	}
	return v, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	v, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return v, nil
}

// queryInt32 returns 0 when the parameter is absent.
func queryInt32(r *http.Request, name string) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, errInvalidQuery
	}
	return int32(v), nil
}

func queryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

func queryTime(r *http.Request, name string, endOfDay bool) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errInvalidDate
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func pagination(r *http.Request) (page, limit int32, err error) {
	if page, err = queryInt32(r, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt32(r, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// currentUser is only called behind RequireUser.
func currentUser(r *http.Request) uint {
	id, _ := auth.UserIDFrom(r.Context())
	return id
}
