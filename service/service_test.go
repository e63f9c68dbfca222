package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/sparqlassist/agent"
	"github.com/c360studio/sparqlassist/validation"
)

type fakeAsker struct {
	answer *agent.Answer
	err    error
}

func (f *fakeAsker) Ask(_ context.Context, _ string) (*agent.Answer, error) {
	return f.answer, f.err
}

type fakeValidator struct {
	results []validation.QueryValidationOutput
}

func (f *fakeValidator) ValidateMessage(_ context.Context, _ string) []validation.QueryValidationOutput {
	return f.results
}

func newTestService(asker Asker, validator Validator) *Service {
	return New(nil, asker, validator, prometheus.NewRegistry(), nil)
}

func TestHandleAsk(t *testing.T) {
	s := newTestService(&fakeAsker{
		answer: &agent.Answer{
			Message:  "here is your query",
			Attempts: 2,
			Validations: []validation.QueryValidationOutput{
				{EndpointURL: "https://sparql.uniprot.org/sparql"},
			},
		},
	}, &fakeValidator{})

	reply := s.handleAsk([]byte(`{"question": "list proteins"}`))

	var resp AskResponse
	require.NoError(t, json.Unmarshal(reply, &resp))
	assert.Empty(t, resp.Error)
	assert.True(t, resp.Valid)
	assert.Equal(t, 2, resp.Attempts)
	assert.Equal(t, "here is your query", resp.Message)
}

func TestHandleAskInvalidAnswer(t *testing.T) {
	s := newTestService(&fakeAsker{
		answer: &agent.Answer{
			Message:  "broken query",
			Attempts: 3,
			Validations: []validation.QueryValidationOutput{
				{
					EndpointURL: "https://sparql.uniprot.org/sparql",
					Errors:      []string{"subject ?x uses class <http://x> which is not in the endpoint schema"},
				},
			},
		},
	}, &fakeValidator{})

	var resp AskResponse
	require.NoError(t, json.Unmarshal(s.handleAsk([]byte(`{"question": "q"}`)), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Validations, 1)
	assert.NotEmpty(t, resp.Validations[0].Errors)
}

func TestHandleAskErrors(t *testing.T) {
	tests := []struct {
		name    string
		service *Service
		payload string
		want    string
	}{
		{
			name:    "malformed json",
			service: newTestService(&fakeAsker{}, &fakeValidator{}),
			payload: "{not json",
			want:    "malformed request",
		},
		{
			name:    "missing question",
			service: newTestService(&fakeAsker{}, &fakeValidator{}),
			payload: "{}",
			want:    "question is required",
		},
		{
			name:    "asker failure",
			service: newTestService(&fakeAsker{err: errors.New("model unavailable")}, &fakeValidator{}),
			payload: `{"question": "q"}`,
			want:    "model unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp AskResponse
			require.NoError(t, json.Unmarshal(tt.service.handleAsk([]byte(tt.payload)), &resp))
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestHandleValidate(t *testing.T) {
	s := newTestService(&fakeAsker{}, &fakeValidator{
		results: []validation.QueryValidationOutput{
			{EndpointURL: "https://sparql.rhea-db.org/sparql", Errors: []string{"issue one", "issue two"}},
		},
	})

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(s.handleValidate([]byte("{\"message\": \"```sparql\\n...\\n```\"}")), &resp))
	assert.Empty(t, resp.Error)
	require.Len(t, resp.Results, 1)
	assert.Len(t, resp.Results[0].Errors, 2)
}

func TestHandleValidateEmptyResultsIsNotNull(t *testing.T) {
	s := newTestService(&fakeAsker{}, &fakeValidator{})

	reply := s.handleValidate([]byte(`{"message": "no queries here"}`))
	assert.Contains(t, string(reply), `"results":[]`)
}

func TestHTTPHandlerHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(nil, &fakeAsker{answer: &agent.Answer{Attempts: 1}}, &fakeValidator{}, reg, nil)
	s.handleAsk([]byte(`{"question": "q"}`))

	handler := HTTPHandler(reg)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "sparqlassist_questions_total")
}
