package f5xc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/logger"
	"github.com/infrascope/infrascope/internal/pkg/retry"
)

var fastRetry = retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, Multiplier: 1}

const originPoolList = `{
  "items": [
    {
      "metadata": {
        "name": "app-pool",
        "namespace": "prod",
        "labels": {"owner": "alice"}
      },
      "spec": {
        "port": 443,
        "origin_servers": [
          {"public_ip": {"ip": "203.0.113.10"}},
          {"public_name": {"dns_name": "app.example.com"}}
        ]
      }
    }
  ]
}`

// newTestCollector wires a collector against a local test server
func newTestCollector(t *testing.T, handler http.Handler) (*Collector, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := New(Config{
		BaseURL:   server.URL,
		APIToken:  "test-token",
		Namespace: "prod",
	}, fastRetry, logger.Nop())
	return c, server
}

func TestCollect_NormalizesPlatformObjects(t *testing.T) {
	var sawAuth string
	c, _ := newTestCollector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		if strings.Contains(r.URL.Path, "origin_pools") {
			fmt.Fprint(w, originPoolList)
			return
		}
		fmt.Fprint(w, `{"items": []}`)
	}))

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if sawAuth != "APIToken test-token" {
		t.Errorf("authorization header = %q", sawAuth)
	}
	if result.Completeness != model.CompletenessSuccess {
		t.Errorf("completeness = %s, want success", result.Completeness)
	}
	if len(result.Resources) != 1 {
		t.Fatalf("collected %d resources, want 1", len(result.Resources))
	}

	pool := result.Resources[0]
	if pool.Key.NativeID != "prod/origin_pools/app-pool" {
		t.Errorf("native id = %s", pool.Key.NativeID)
	}
	if pool.Type != model.TypeOriginPool {
		t.Errorf("type = %s, want %s", pool.Type, model.TypeOriginPool)
	}
	if pool.Tags["owner"] != "alice" {
		t.Errorf("tags = %v", pool.Tags)
	}
	if !pool.HasHint("203.0.113.10") {
		t.Error("origin server ip missing from identity hints")
	}
	if !pool.HasHint("app.example.com") {
		t.Error("origin server dns name missing from identity hints")
	}
	if pool.Attributes["namespace"] != "prod" {
		t.Errorf("namespace attribute = %v", pool.Attributes["namespace"])
	}
}

func TestCollect_FailingEndpointDegradesToPartial(t *testing.T) {
	c, _ := newTestCollector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "virtual_sites") {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"items": []}`)
	}))

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if result.Completeness != model.CompletenessPartial {
		t.Errorf("completeness = %s, want partial", result.Completeness)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", result.Warnings)
	}
	if result.Warnings[0].ID != "f5xc/virtual_sites" {
		t.Errorf("warning id = %s", result.Warnings[0].ID)
	}
}

func TestCollect_AllEndpointsFailedIsFatal(t *testing.T) {
	c, _ := newTestCollector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))

	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatal("Collect() error = nil, want error when every endpoint fails")
	}
}

func TestCollect_MalformedObjectIsSkippedWithWarning(t *testing.T) {
	c, _ := newTestCollector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "http_loadbalancers") {
			fmt.Fprint(w, `{"items": [
				{"metadata": {}, "spec": {}},
				{"metadata": {"name": "web-lb"}, "spec": {"domains": ["web.example.com"]}}
			]}`)
			return
		}
		fmt.Fprint(w, `{"items": []}`)
	}))

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(result.Resources) != 1 {
		t.Fatalf("collected %d resources, want 1", len(result.Resources))
	}
	if result.Resources[0].Name != "web-lb" {
		t.Errorf("name = %s", result.Resources[0].Name)
	}
	if !result.Resources[0].HasHint("web.example.com") {
		t.Error("domain missing from identity hints")
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v, want one for the unnamed object", result.Warnings)
	}
}

func TestCollect_SitesUseSystemNamespace(t *testing.T) {
	var sitesQuery string
	c, _ := newTestCollector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sites") && !strings.Contains(r.URL.Path, "virtual") {
			sitesQuery = r.URL.Path
		}
		fmt.Fprint(w, `{"items": []}`)
	}))

	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if sitesQuery != "/config/namespaces/system/sites" {
		t.Errorf("sites endpoint = %s, want system namespace", sitesQuery)
	}
}

func TestOriginDNSNames(t *testing.T) {
	spec := map[string]interface{}{
		"origin_servers": []interface{}{
			map[string]interface{}{"public_name": map[string]interface{}{"dns_name": "a.example.com"}},
			map[string]interface{}{"private_name": map[string]interface{}{"dns_name": "b.internal"}},
			map[string]interface{}{"private_ip": map[string]interface{}{"ip": "10.0.0.5"}},
		},
	}
	got := originDNSNames(spec)
	if len(got) != 2 || got[0] != "a.example.com" || got[1] != "b.internal" {
		t.Errorf("originDNSNames() = %v", got)
	}
}
