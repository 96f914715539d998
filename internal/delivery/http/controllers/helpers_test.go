package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"inviteplanner/internal/delivery/http/helpers"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	return envelope
}

// decodeData re-decodes the envelope's data into dest.
func decodeData(t *testing.T, envelope helpers.APIResponse, dest any) {
	t.Helper()
	require.Nil(t, envelope.Error)
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(dataBytes, dest))
}
