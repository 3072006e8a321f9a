package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type tokenJSON struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Value any    `json:"value"`
}

type tokenizeJSON struct {
	Count  int         `json:"count"`
	Tokens []tokenJSON `json:"tokens"`
}

func decodeTokens(t *testing.T, recorder *httptest.ResponseRecorder) tokenizeJSON {
	t.Helper()
	var resp tokenizeJSON
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	return resp
}

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name          string
		body          gin.H
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "EmptyBody",
			body: gin.H{},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				res, err := extractErrorFromBuffer(recorder.Body)
				require.NoError(t, err)
				require.Equal(t, ErrInvalidParams.Error(), res.Error)
				require.Len(t, res.Fields, 1)
				require.Equal(t, "text", res.Fields[0].FieldName)
				require.Equal(t, getBindingErrorMessage("required"), res.Fields[0].ErrorMessage)
			},
		},
		{
			name: "InvalidIndent",
			body: gin.H{"text": "x", "indent": -5},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				res, err := extractErrorFromBuffer(recorder.Body)
				require.NoError(t, err)
				require.Len(t, res.Fields, 1)
				require.Equal(t, "indent", res.Fields[0].FieldName)
				require.Equal(t, getBindingErrorMessage("min"), res.Fields[0].ErrorMessage)
			},
		},
		{
			name: "IndentTooLarge",
			body: gin.H{"text": "x", "indent": 17},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				res, err := extractErrorFromBuffer(recorder.Body)
				require.NoError(t, err)
				require.Len(t, res.Fields, 1)
				require.Equal(t, "indent", res.Fields[0].FieldName)
				require.Equal(t, getBindingErrorMessage("max"), res.Fields[0].ErrorMessage)
			},
		},
		{
			name: "EmptyText",
			body: gin.H{"text": ""},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.JSONEq(t, `{"count":0,"tokens":[]}`, recorder.Body.String())
			},
		},
		{
			name: "TextTooLarge",
			body: gin.H{"text": strings.Repeat("x", int(testConfig.MaxTextBytes)+1)},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
				res, err := extractErrorFromBuffer(recorder.Body)
				require.NoError(t, err)
				require.Contains(t, res.Error, ErrTextTooLarge.Error())
			},
		},
		{
			name: "OK",
			body: gin.H{"text": "if x:\n    y = 2\n"},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				resp := decodeTokens(t, recorder)
				require.Equal(t, len(resp.Tokens), resp.Count)

				var types []string
				for _, tok := range resp.Tokens {
					types = append(types, tok.Type)
				}
				require.Equal(t, []string{
					"KEYWORD", "SPACE", "IDENTIFIER", "PUNCTUATION", "NEWLINE",
					"INDENT", "IDENTIFIER", "SPACE", "OPERATOR", "SPACE", "NUMBER", "NEWLINE",
				}, types)
				require.Equal(t, 2.0, resp.Tokens[10].Value)
			},
		},
		{
			name: "NoIndent",
			body: gin.H{"text": "if x:\n    y\n", "indent": 0},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				resp := decodeTokens(t, recorder)
				for _, tok := range resp.Tokens {
					require.NotEqual(t, "INDENT", tok.Type)
				}
			},
		},
		{
			name: "SimplifySpaces",
			body: gin.H{"text": "'a   b'", "simplify_spaces": true},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				resp := decodeTokens(t, recorder)
				require.Equal(t, 1, resp.Count)
				require.Equal(t, "'a b'", resp.Tokens[0].Text)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := newTestService(t)
			recorder := doJSON(t, service, http.MethodPost, TokenizeURL, tc.body)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestTokenizeVariantsAreReused(t *testing.T) {
	service := newTestService(t)
	zero := 0
	yes := true

	require.Same(t, service.tokenizer, service.tokenizerFor(nil, nil))
	auto := service.tokenizer.Indent()
	require.Same(t, service.tokenizer, service.tokenizerFor(&auto, nil))

	variant := service.tokenizerFor(&zero, &yes)
	require.NotSame(t, service.tokenizer, variant)
	require.Same(t, variant, service.tokenizerFor(&zero, &yes))
	require.Equal(t, 0, variant.Indent())
	require.True(t, variant.SimplifySpaces())
	require.False(t, service.tokenizer.SimplifySpaces())
}

func TestTokenizeVariantsAreBounded(t *testing.T) {
	service := newTestService(t)

	for indent := 1; indent <= 16; indent++ {
		for _, simplify := range []bool{false, true} {
			body := gin.H{"text": "a\n  b\n", "indent": indent, "simplify_spaces": simplify}
			recorder := doJSON(t, service, http.MethodPost, TokenizeURL, body)
			require.Equal(t, http.StatusOK, recorder.Code)
			require.LessOrEqual(t, service.variants.Len(), maxVariants)
		}
	}
	require.Equal(t, maxVariants, service.variants.Len())

	// the most recent variants are still reused
	indent, simplify := 16, true
	last := service.tokenizerFor(&indent, &simplify)
	require.Same(t, last, service.tokenizerFor(&indent, &simplify))
	require.Equal(t, maxVariants, service.variants.Len())
}

func TestPingAndRequestID(t *testing.T) {
	service := newTestService(t)

	recorder := doJSON(t, service, http.MethodGet, PingURL, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "pong", recorder.Body.String())
	require.NotEmpty(t, recorder.Header().Get(RequestIDHeader))

	request, err := http.NewRequest(http.MethodGet, PingURL, nil)
	require.NoError(t, err)
	request.Header.Set(RequestIDHeader, "abc-123")
	recorder = httptest.NewRecorder()
	service.router.ServeHTTP(recorder, request)
	require.Equal(t, "abc-123", recorder.Header().Get(RequestIDHeader))
}
