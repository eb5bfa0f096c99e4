package k8s

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrAlreadyExists reports a 409 from the API server: an object with the
// same name is already present. Deterministic job naming makes this the
// expected outcome when runs overlap, so callers treat it as benign.
var ErrAlreadyExists = errors.New("already exists")

// Status is the error document the API server returns on failure.
type Status struct {
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
	Code    int    `json:"code"`
}

// Client issues plain REST calls against one API server.
type Client struct {
	base       string
	token      string
	httpClient *http.Client
}

func NewClient(cfg *Config) (*Client, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: cfg.Insecure}

	if len(cfg.CAData) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(cfg.CAData) {
			return nil, errors.New("no usable certificates in CA bundle")
		}
		tlsCfg.RootCAs = pool
	}
	if len(cfg.ClientCertData) > 0 && len(cfg.ClientKeyData) > 0 {
		cert, err := tls.X509KeyPair(cfg.ClientCertData, cfg.ClientKeyData)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	return &Client{
		base:  strings.TrimRight(cfg.Host, "/"),
		token: cfg.BearerToken,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &http.Transport{TLSClientConfig: tlsCfg},
		},
	}, nil
}

// CreateJob POSTs a batch/v1 Job manifest into namespace. A 409 conflict
// comes back wrapped in ErrAlreadyExists.
func (c *Client) CreateJob(ctx context.Context, namespace string, job any) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	url := fmt.Sprintf("%s/apis/batch/v1/namespaces/%s/jobs", c.base, namespace)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var status Status
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(b, &status)

	if resp.StatusCode == http.StatusConflict {
		if status.Message != "" {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, status.Message)
		}
		return ErrAlreadyExists
	}
	if status.Message != "" {
		return fmt.Errorf("create job: HTTP %d: %s", resp.StatusCode, status.Message)
	}
	return fmt.Errorf("create job: HTTP %d", resp.StatusCode)
}
