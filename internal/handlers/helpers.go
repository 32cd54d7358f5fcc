package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/thammystudio/studio-crm/internal/services"
	xhttp "github.com/thammystudio/studio-crm/pkg/http"
	"github.com/thammystudio/studio-crm/pkg/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

// bind decodes and validates the request body. It writes the 400 response
// itself and reports whether the handler may continue.
func bind(ctx *xhttp.RequestCtx, dst any) bool {
	if len(ctx.PostBody()) > 0 {
		if err := readJSON(ctx, dst); err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
			return false
		}
	}
	if err := validate.Struct(dst); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps service sentinels onto status codes.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrReminderClosed), errors.Is(err, services.ErrConflict):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "path", string(ctx.Path()), "request_id", xhttp.RequestID(ctx), "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, "internal server error")
	}
}

func pathParam(ctx *xhttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryList(ctx *xhttp.RequestCtx, key string) []string {
	var out []string
	for _, part := range strings.Split(query(ctx, key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// queryInt returns 0 when key is absent and an error when it is not a
// non-negative integer.
func queryInt(ctx *xhttp.RequestCtx, key string) (int, error) {
	v := query(ctx, key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func queryTime(ctx *xhttp.RequestCtx, key string) (*time.Time, error) {
	v := query(ctx, key)
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be RFC3339 or YYYY-MM-DD", key)
	}
	return &t, nil
}

func queryBool(ctx *xhttp.RequestCtx, key string) (bool, error) {
	v := query(ctx, key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", key)
	}
	return b, nil
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// queryRange reads a [fromKey, toKey) window. The end is exclusive.
func queryRange(ctx *xhttp.RequestCtx, fromKey, toKey string) (from, to *time.Time, err error) {
	if from, err = queryTime(ctx, fromKey); err != nil {
		return nil, nil, err
	}
	if to, err = queryTime(ctx, toKey); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && !to.After(*from) {
		return nil, nil, fmt.Errorf("%s must be after %s", toKey, fromKey)
	}
	return from, to, nil
}

// page reads limit, offset and order from the query string.
func page(ctx *xhttp.RequestCtx) (limit, offset int, desc bool, err error) {
	if limit, err = queryInt(ctx, "limit"); err != nil {
		return 0, 0, false, err
	}
	if offset, err = queryInt(ctx, "offset"); err != nil {
		return 0, 0, false, err
	}
	switch order := strings.ToLower(query(ctx, "order")); order {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return 0, 0, false, fmt.Errorf("order must be asc or desc, got %q", order)
	}
	return limit, offset, desc, nil
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
