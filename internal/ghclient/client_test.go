package ghclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockGraphQLServer replays a fixed sequence of raw JSON response bodies,
// one per request received, grounded on the teacher's httptest.Server-based
// MockLinearServer pattern (internal/testutil/mockserver.go).
func mockGraphQLServer(t *testing.T, bodies []string) *httptest.Server {
	t.Helper()
	i := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if i >= len(bodies) {
			t.Fatalf("unexpected extra request #%d", i+1)
		}
		body := bodies[i]
		i++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestDiscoverOpenProjectsFiltersClosed(t *testing.T) {
	srv := mockGraphQLServer(t, []string{
		`{"data":{"organization":{"projectsV2":{"nodes":[
			{"id":"P_1","number":1,"title":"Roadmap","closed":false},
			{"id":"P_2","number":2,"title":"Archived","closed":true}
		]}}}}`,
	})
	defer srv.Close()

	c := New("test-token", DefaultOptions())
	c.SetAPIURL(srv.URL)

	projects, err := c.DiscoverOpenProjects(context.Background(), "org", "acme")
	if err != nil {
		t.Fatalf("DiscoverOpenProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Number != 1 {
		t.Fatalf("expected one open project, got %+v", projects)
	}
}

func TestGraphQLWithBackoffRetriesRateLimitThenSucceeds(t *testing.T) {
	srv := mockGraphQLServer(t, []string{
		`{"errors":[{"message":"API rate limit exceeded","type":"RATE_LIMITED"}]}`,
		`{"data":{"organization":{"projectsV2":{"nodes":[]}}}}`,
	})
	defer srv.Close()

	c := New("test-token", DefaultOptions())
	c.SetAPIURL(srv.URL)

	var waited []int
	var result json.RawMessage
	err := c.GraphQLWithBackoff(context.Background(), queryListOrgProjects, map[string]any{"login": "acme"}, &result, func(sec int) {
		waited = append(waited, sec)
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if len(waited) != 1 || waited[0] != 1 {
		t.Errorf("expected one 1s backoff wait, got %v", waited)
	}
}

func TestGraphQLWithBackoffReturnsProjectNotFoundImmediately(t *testing.T) {
	srv := mockGraphQLServer(t, []string{
		`{"errors":[{"message":"Could not resolve to a ProjectV2","type":"NOT_FOUND","path":["organization","projectV2"]}]}`,
	})
	defer srv.Close()

	c := New("test-token", DefaultOptions())
	c.SetAPIURL(srv.URL)

	err := c.GraphQLWithBackoff(context.Background(), queryScanOrgProject, map[string]any{"org": "acme", "number": 99}, nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsProjectNotFound(err) {
		t.Errorf("expected IsProjectNotFound, got %v", err)
	}
}

func TestExtractOpName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{queryListOrgProjects, "ListOrgProjects"},
		{mutationSetSingleSelect, "SetSingleSelect"},
		{"", "unknown"},
		{"{ nameless }", "anonymous"},
	}
	for _, tc := range tests {
		if got := extractOpName(tc.query); got != tc.want {
			t.Errorf("extractOpName(%.20q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}
