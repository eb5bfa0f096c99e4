// Package k8s is a minimal Kubernetes REST client covering the one API
// surface the predictor needs: creating batch/v1 Jobs. Credentials resolve
// the way official clients do, in-cluster service account first, then a
// kubeconfig file.
package k8s

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotInCluster means the KUBERNETES_SERVICE_* environment of a pod is
// absent, so the service account path cannot apply.
var ErrNotInCluster = errors.New("not running inside a cluster")

const serviceAccountDir = "/var/run/secrets/kubernetes.io/serviceaccount"

// Config carries everything needed to reach and authenticate against an
// API server.
type Config struct {
	// Host is the API server base URL, e.g. https://10.96.0.1:443.
	Host string
	// BearerToken authenticates requests when set.
	BearerToken string
	// CAData is the PEM bundle used to verify the API server.
	CAData []byte
	// ClientCertData and ClientKeyData enable mTLS client auth when both
	// are present.
	ClientCertData []byte
	ClientKeyData  []byte
	// Insecure skips server certificate verification.
	Insecure bool
	// Namespace is the namespace the credentials default to, informational
	// here since job namespaces come from configuration.
	Namespace string
}

// InClusterConfig builds a Config from the pod's mounted service account
// and the KUBERNETES_SERVICE_* environment variables.
func InClusterConfig() (*Config, error) {
	return inClusterConfig(serviceAccountDir)
}

func inClusterConfig(dir string) (*Config, error) {
	host := os.Getenv("KUBERNETES_SERVICE_HOST")
	port := os.Getenv("KUBERNETES_SERVICE_PORT")
	if host == "" || port == "" {
		return nil, ErrNotInCluster
	}

	token, err := os.ReadFile(filepath.Join(dir, "token"))
	if err != nil {
		return nil, fmt.Errorf("read service account token: %w", err)
	}

	cfg := &Config{
		Host:        "https://" + net.JoinHostPort(host, port),
		BearerToken: strings.TrimSpace(string(token)),
	}
	if ca, err := os.ReadFile(filepath.Join(dir, "ca.crt")); err == nil {
		cfg.CAData = ca
	}
	if ns, err := os.ReadFile(filepath.Join(dir, "namespace")); err == nil {
		cfg.Namespace = strings.TrimSpace(string(ns))
	}
	return cfg, nil
}

// kubeconfig mirrors the subset of ~/.kube/config fields the client
// consumes.
type kubeconfig struct {
	CurrentContext string         `yaml:"current-context"`
	Clusters       []namedCluster `yaml:"clusters"`
	Contexts       []namedContext `yaml:"contexts"`
	Users          []namedUser    `yaml:"users"`
}

type namedCluster struct {
	Name    string `yaml:"name"`
	Cluster struct {
		Server                   string `yaml:"server"`
		CertificateAuthority     string `yaml:"certificate-authority"`
		CertificateAuthorityData string `yaml:"certificate-authority-data"`
		InsecureSkipTLSVerify    bool   `yaml:"insecure-skip-tls-verify"`
	} `yaml:"cluster"`
}

type namedContext struct {
	Name    string `yaml:"name"`
	Context struct {
		Cluster   string `yaml:"cluster"`
		User      string `yaml:"user"`
		Namespace string `yaml:"namespace"`
	} `yaml:"context"`
}

type namedUser struct {
	Name string `yaml:"name"`
	User struct {
		Token                 string `yaml:"token"`
		TokenFile             string `yaml:"tokenFile"`
		ClientCertificate     string `yaml:"client-certificate"`
		ClientCertificateData string `yaml:"client-certificate-data"`
		ClientKey             string `yaml:"client-key"`
		ClientKeyData         string `yaml:"client-key-data"`
	} `yaml:"user"`
}

// DefaultKubeconfigPath honors KUBECONFIG before falling back to
// ~/.kube/config. Empty when neither resolves.
func DefaultKubeconfigPath() string {
	if p := os.Getenv("KUBECONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kube", "config")
}

// FromKubeconfig loads the current-context cluster and user from a
// kubeconfig file.
func FromKubeconfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var kc kubeconfig
	if err := yaml.Unmarshal(b, &kc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if kc.CurrentContext == "" {
		return nil, fmt.Errorf("kubeconfig %s has no current-context", path)
	}

	var kctx *namedContext
	for i := range kc.Contexts {
		if kc.Contexts[i].Name == kc.CurrentContext {
			kctx = &kc.Contexts[i]
			break
		}
	}
	if kctx == nil {
		return nil, fmt.Errorf("kubeconfig %s: context %q not found", path, kc.CurrentContext)
	}

	var cluster *namedCluster
	for i := range kc.Clusters {
		if kc.Clusters[i].Name == kctx.Context.Cluster {
			cluster = &kc.Clusters[i]
			break
		}
	}
	if cluster == nil {
		return nil, fmt.Errorf("kubeconfig %s: cluster %q not found", path, kctx.Context.Cluster)
	}

	cfg := &Config{
		Host:      cluster.Cluster.Server,
		Insecure:  cluster.Cluster.InsecureSkipTLSVerify,
		Namespace: kctx.Context.Namespace,
	}

	if data := cluster.Cluster.CertificateAuthorityData; data != "" {
		ca, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decode certificate-authority-data: %w", err)
		}
		cfg.CAData = ca
	} else if file := cluster.Cluster.CertificateAuthority; file != "" {
		ca, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read certificate authority: %w", err)
		}
		cfg.CAData = ca
	}

	for i := range kc.Users {
		if kc.Users[i].Name != kctx.Context.User {
			continue
		}
		if err := applyUser(cfg, &kc.Users[i]); err != nil {
			return nil, err
		}
		break
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("kubeconfig %s: cluster %q has no server", path, kctx.Context.Cluster)
	}
	return cfg, nil
}

func applyUser(cfg *Config, u *namedUser) error {
	switch {
	case u.User.Token != "":
		cfg.BearerToken = u.User.Token
	case u.User.TokenFile != "":
		token, err := os.ReadFile(u.User.TokenFile)
		if err != nil {
			return fmt.Errorf("read token file: %w", err)
		}
		cfg.BearerToken = strings.TrimSpace(string(token))
	}

	if data := u.User.ClientCertificateData; data != "" {
		cert, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return fmt.Errorf("decode client-certificate-data: %w", err)
		}
		cfg.ClientCertData = cert
	} else if file := u.User.ClientCertificate; file != "" {
		cert, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read client certificate: %w", err)
		}
		cfg.ClientCertData = cert
	}

	if data := u.User.ClientKeyData; data != "" {
		key, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return fmt.Errorf("decode client-key-data: %w", err)
		}
		cfg.ClientKeyData = key
	} else if file := u.User.ClientKey; file != "" {
		key, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read client key: %w", err)
		}
		cfg.ClientKeyData = key
	}
	return nil
}

// ResolveConfig prefers the in-cluster service account and falls back to
// the kubeconfig at path, or the default location when path is empty.
func ResolveConfig(path string, logger *log.Logger) (*Config, error) {
	cfg, err := InClusterConfig()
	if err == nil {
		logger.Printf("k8s: using in-cluster configuration (namespace %q)", cfg.Namespace)
		return cfg, nil
	}
	if !errors.Is(err, ErrNotInCluster) {
		return nil, err
	}

	if path == "" {
		path = DefaultKubeconfigPath()
	}
	if path == "" {
		return nil, errors.New("no in-cluster environment and no kubeconfig found")
	}

	cfg, err = FromKubeconfig(path)
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}
	logger.Printf("k8s: using kubeconfig %s (server %s)", path, cfg.Host)
	return cfg, nil
}
