package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubLink bool

func (l stubLink) Connected() bool { return bool(l) }

func newTestClient(geocodeURL, forecastURL string, link Link) *Client {
	return NewClient(ClientConfig{
		GeocodeBaseURL:  geocodeURL,
		ForecastBaseURL: forecastURL,
		UserAgent:       "roundstation/test",
		Timeout:         2 * time.Second,
	}, link)
}

func TestFetchNotConnected(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, stubLink(false))
	_, err := c.Fetch(context.Background(), "Prague")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v; want ErrNotConnected", err)
	}
	if hits != 0 {
		t.Errorf("server was hit %d times; want no network I/O", hits)
	}
}

func TestFetchEmptyGeocodeResult(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer geo.Close()

	var forecastHits int
	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forecastHits++
	}))
	defer fc.Close()

	c := newTestClient(geo.URL, fc.URL, stubLink(true))
	_, err := c.Fetch(context.Background(), "Nowhere")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v; want ErrNoResult", err)
	}
	if forecastHits != 0 {
		t.Errorf("forecast endpoint hit %d times after empty geocode; want 0", forecastHits)
	}
}

func TestFetchGeocodeNon200(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer geo.Close()

	c := newTestClient(geo.URL, geo.URL, stubLink(true))
	_, err := c.Fetch(context.Background(), "Prague")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v; want ErrNoResult", err)
	}
}

func TestFetchForecastNon200(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"50.0874654","lon":"14.4212535"}]`))
	}))
	defer geo.Close()

	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer fc.Close()

	c := newTestClient(geo.URL, fc.URL, stubLink(true))
	snap, err := c.Fetch(context.Background(), "Prague")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v; want ErrNoResult", err)
	}
	if snap != (Snapshot{}) {
		t.Errorf("snapshot = %+v; want zero value on failure", snap)
	}
}

func TestFetchMalformedForecast(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"50.1","lon":"14.4"}]`))
	}))
	defer geo.Close()

	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": not-json`))
	}))
	defer fc.Close()

	c := newTestClient(geo.URL, fc.URL, stubLink(true))
	if _, err := c.Fetch(context.Background(), "Prague"); !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v; want ErrParse", err)
	}
}

func TestFetchMissingCurrentBlock(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"50.1","lon":"14.4"}]`))
	}))
	defer geo.Close()

	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 50.1}`))
	}))
	defer fc.Close()

	c := newTestClient(geo.URL, fc.URL, stubLink(true))
	if _, err := c.Fetch(context.Background(), "Prague"); !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v; want ErrParse", err)
	}
}

func TestFetchSuccess(t *testing.T) {
	const lat = "50.08804399999999" // precision must survive verbatim
	const lon = "14.42076596748456"

	var geoQuery, geoUA string
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		geoQuery = r.URL.RawQuery
		geoUA = r.Header.Get("User-Agent")
		w.Write([]byte(`[{"lat":"` + lat + `","lon":"` + lon + `"}]`))
	}))
	defer geo.Close()

	var fcQuery string
	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fcQuery = r.URL.RawQuery
		w.Write([]byte(`{"current":{"temperature_2m":21.4,"relative_humidity_2m":55,"wind_speed_10m":12.3,"weather_code":61}}`))
	}))
	defer fc.Close()

	c := newTestClient(geo.URL, fc.URL, stubLink(true))
	snap, err := c.Fetch(context.Background(), "Ústí nad Labem")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if !strings.Contains(geoQuery, "q=%C3%9Ast%C3%AD%20nad%20Labem") {
		t.Errorf("geocode query = %q; want percent-encoded place with %%20 spaces", geoQuery)
	}
	if !strings.Contains(geoQuery, "format=json") || !strings.Contains(geoQuery, "limit=1") {
		t.Errorf("geocode query = %q; want format=json and limit=1", geoQuery)
	}
	if geoUA != "roundstation/test" {
		t.Errorf("User-Agent = %q; want roundstation/test", geoUA)
	}

	if !strings.Contains(fcQuery, "latitude="+lat) || !strings.Contains(fcQuery, "longitude="+lon) {
		t.Errorf("forecast query = %q; want verbatim coordinates %s,%s", fcQuery, lat, lon)
	}

	if snap.CityLabel != "Usti nad Labem" {
		t.Errorf("CityLabel = %q; want diacritics stripped", snap.CityLabel)
	}
	if snap.TemperatureC != 21.4 {
		t.Errorf("TemperatureC = %v; want 21.4", snap.TemperatureC)
	}
	if snap.HumidityPct != 55 {
		t.Errorf("HumidityPct = %d; want 55", snap.HumidityPct)
	}
	if snap.WindKph != 12.3 {
		t.Errorf("WindKph = %v; want 12.3", snap.WindKph)
	}
	if snap.Code != 61 || snap.Condition != "Rainy" {
		t.Errorf("Code/Condition = %d/%q; want 61/Rainy", snap.Code, snap.Condition)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt is zero; want fetch time recorded")
	}
}
