// Copyright (c) 2026 Novika. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/novika/internal/platform/constants"
)

type corsConfig struct {
	development bool
	extra       []string
}

func (c corsConfig) IsDevelopment() bool { return c.development }

func (c corsConfig) ExtraOriginList() []string { return c.extra }

func corsResponse(cfg corsConfig, origin string) *httptest.ResponseRecorder {
	handler := CORS(cfg)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))
	request := httptest.NewRequest(http.MethodGet, "/api/v1/novels", nil)
	request.Header.Set(constants.HeaderOrigin, origin)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestCORS_FirstPartyOrigin(t *testing.T) {
	recorder := corsResponse(corsConfig{}, "https://reader.novika.app")
	assert.Equal(t, "https://reader.novika.app", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ExtraOrigin(t *testing.T) {
	cfg := corsConfig{extra: []string{"https://studio.example.com"}}

	recorder := corsResponse(cfg, "https://studio.example.com")
	assert.Equal(t, "https://studio.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_UnknownOriginInProduction(t *testing.T) {
	cfg := corsConfig{extra: []string{"https://studio.example.com"}}

	recorder := corsResponse(cfg, "https://evil.example.net")
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	recorder := corsResponse(corsConfig{development: true}, "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
}
