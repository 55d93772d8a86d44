package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alima/supply/internal/shared"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: hoja", shared.ErrStructural), http.StatusUnprocessableEntity, CodeStructural},
		{fmt.Errorf("%w: campo", shared.ErrValidation), http.StatusBadRequest, CodeValidation},
		{fmt.Errorf("%w: nombre", shared.ErrConflict), http.StatusConflict, CodeConflict},
		{fmt.Errorf("%w: lista", shared.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError, CodeUnexpected},
	}
	for _, tc := range cases {
		status, code := Classify(tc.err)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestRespondErrorHidesUnexpectedDetails(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	rr := httptest.NewRecorder()
	RespondError(rr, httptest.NewRequest(http.MethodGet, "/api/price-lists", nil), logger, errors.New("pq: password authentication failed"))

	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Nil(t, env.Data)
	require.Equal(t, CodeUnexpected, env.Error.Code)
	require.Equal(t, unexpectedMsg, env.Error.Msg)
	require.Contains(t, logs.String(), "password authentication failed")

	rr = httptest.NewRecorder()
	RespondError(rr, httptest.NewRequest(http.MethodGet, "/", nil), logger, fmt.Errorf("%w: ya existe", shared.ErrConflict))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, CodeConflict, env.Error.Code)
	require.Contains(t, env.Error.Msg, "ya existe")
}

type sampleRequest struct {
	Name  string   `json:"name" validate:"required"`
	Units []string `json:"unit_ids" validate:"required,min=1,dive,uuid"`
}

func TestDecodeValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Lista","unit_ids":["`+uuid.NewString()+`"]}`))
	var ok sampleRequest
	require.NoError(t, Decode(req, &ok))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","unit_ids":["x"]}`))
	var bad sampleRequest
	err := Decode(req, &bad)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "sampleRequest.Name")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Lista","extra":1}`))
	require.ErrorIs(t, Decode(req, &bad), shared.ErrValidation)
}

func TestActorPrefersContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := Actor(req)
	require.ErrorIs(t, err, shared.ErrValidation)

	want := shared.Actor{UserID: uuid.New(), BusinessID: uuid.New()}
	req = req.WithContext(shared.ContextWithActor(req.Context(), want))
	req.Header.Set(HeaderUserID, "not-a-uuid")
	got, err := Actor(req)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestReadUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "lista.xlsx")
	require.NoError(t, err)
	_, err = io.WriteString(part, "contenido")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	name, data, err := ReadUpload(httptest.NewRecorder(), req, 1<<20)
	require.NoError(t, err)
	require.Equal(t, "lista.xlsx", name)
	require.Equal(t, "contenido", string(data))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	_, _, err = ReadUpload(httptest.NewRecorder(), req, 1<<20)
	require.ErrorIs(t, err, shared.ErrValidation)
}
