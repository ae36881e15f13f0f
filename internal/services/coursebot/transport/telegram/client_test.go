package telegram

import (
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPClientDirect(t *testing.T) {
	client, err := NewHTTPClient("", 7*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Timeout != 7*time.Second {
		t.Fatalf("timeout = %v", client.Timeout)
	}
}

func TestNewHTTPClientHTTPProxy(t *testing.T) {
	client, err := NewHTTPClient("http://proxy.internal:3128", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	transport := client.Transport.(*http.Transport)
	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/", nil)
	proxyURL, err := transport.Proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if proxyURL == nil || proxyURL.Host != "proxy.internal:3128" {
		t.Fatalf("proxy = %v", proxyURL)
	}
}

func TestNewHTTPClientSocksProxy(t *testing.T) {
	client, err := NewHTTPClient("socks5://127.0.0.1:1080", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	transport := client.Transport.(*http.Transport)
	if transport.Proxy != nil || transport.DialContext == nil {
		t.Fatal("expected socks dialer without http proxy")
	}
}

func TestNewHTTPClientRejectsUnknownScheme(t *testing.T) {
	if _, err := NewHTTPClient("ftp://proxy", time.Second); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
}
