package k8s

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeJob struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{Host: srv.URL, BearerToken: "tok"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func TestCreateJob(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody fakeJob

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"kind":"Job"}`))
	})

	err := c.CreateJob(context.Background(), "recordings", fakeJob{Kind: "Job", Name: "record-noaa-15"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if gotPath != "POST /apis/batch/v1/namespaces/recordings/jobs" {
		t.Errorf("request = %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("content-type = %q", gotContentType)
	}
	if gotBody.Name != "record-noaa-15" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestCreateJobConflict(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(Status{
			Kind:    "Status",
			Status:  "Failure",
			Message: `jobs.batch "record-noaa-15" already exists`,
			Reason:  "AlreadyExists",
			Code:    409,
		})
	})

	err := c.CreateJob(context.Background(), "recordings", fakeJob{Name: "record-noaa-15"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
	if !strings.Contains(err.Error(), "record-noaa-15") {
		t.Errorf("error should carry the server message, got %v", err)
	}
}

func TestCreateJobForbidden(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(Status{
			Message: `user "system:serviceaccount:default:predictor" cannot create resource "jobs"`,
			Reason:  "Forbidden",
			Code:    403,
		})
	})

	err := c.CreateJob(context.Background(), "recordings", fakeJob{})
	if err == nil || errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("err = %v, want forbidden failure", err)
	}
	if !strings.Contains(err.Error(), "cannot create resource") {
		t.Errorf("error should surface the server message, got %v", err)
	}
}

func TestCreateJobOpaqueError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := c.CreateJob(context.Background(), "recordings", fakeJob{})
	if err == nil || !strings.Contains(err.Error(), "HTTP 502") {
		t.Fatalf("err = %v, want HTTP 502", err)
	}
}

func TestCreateJobNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := NewClient(&Config{Host: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.CreateJob(context.Background(), "ns", fakeJob{}); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
}
