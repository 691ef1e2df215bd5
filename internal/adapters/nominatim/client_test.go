package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
)

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/reverse" {
			t.Errorf("unexpected path %s", got)
		}
		if r.URL.Query().Get("format") != "jsonv2" {
			t.Errorf("expected jsonv2 format, got %s", r.URL.Query().Get("format"))
		}
		w.Write([]byte(`{"display_name":"1 Main St, Springfield"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second)
	res, err := c.Reverse(context.Background(), domain.Point{Lon: -122, Lat: 37})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != ports.GeocodeStatusOK {
		t.Errorf("expected OK, got %s", res.Status)
	}
	if len(res.Addresses) != 1 || res.Addresses[0] != "1 Main St, Springfield" {
		t.Errorf("unexpected addresses %v", res.Addresses)
	}
}

func TestReverseUnableToGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second)
	res, err := c.Reverse(context.Background(), domain.Point{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != ports.GeocodeStatusZeroResults {
		t.Errorf("expected ZERO_RESULTS, got %s", res.Status)
	}
}

func TestReverseServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second)
	res, err := c.Reverse(context.Background(), domain.Point{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != "HTTP_502" {
		t.Errorf("expected HTTP_502 status, got %s", res.Status)
	}
}
