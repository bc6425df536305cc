package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adzone/adserver/internal/config"
	"github.com/adzone/adserver/internal/events"
	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/http/handlers"
	"github.com/adzone/adserver/internal/metrics"
	"github.com/adzone/adserver/internal/models"
	"github.com/adzone/adserver/internal/repositories/sqlite"
	"github.com/adzone/adserver/internal/selection"
	"github.com/adzone/adserver/internal/services"
	"github.com/adzone/adserver/internal/templates"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	log := zap.NewNop()

	stores, err := sqlite.NewStores(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("NewStores: %v", err)
	}
	t.Cleanup(stores.Close)

	tmpl, err := templates.NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	reg := prometheus.NewRegistry()
	bus := events.NewLocalBus()
	sel := selection.NewSelector(cfg.Selection(), stores.Events, log,
		selection.WithRandomSource(selection.NewSeededSource(42)))
	validate := dto.NewValidator()

	zoneSvc := services.NewZoneService(stores.Zones, bus, log)
	adSvc := services.NewAdService(stores.Ads, stores.Zones, bus, log)
	servingSvc := services.NewServingService(services.ServingDeps{
		Zones:        stores.Zones,
		Ads:          stores.Ads,
		Events:       stores.Events,
		Selector:     sel,
		Metrics:      metrics.New(reg),
		Publisher:    bus,
		SmartlinkURL: cfg.SmartlinkURL,
	}, log)
	analyticsSvc := services.NewAnalyticsService(stores.Ads, stores.Events, sel.Aggregator())

	app := NewApp()
	SetupRouter(app, cfg, log, nil, reg, Handlers{
		Zones:   handlers.NewZoneHandler(zoneSvc, validate, log),
		Ads:     handlers.NewAdHandler(adSvc, validate, log),
		Stats:   handlers.NewStatsHandler(analyticsSvc, log),
		Serving: handlers.NewServingHandler(servingSvc, adSvc, zoneSvc, tmpl, validate, cfg.SiteHost, log),
		Admin:   handlers.NewAdminHandler(cfg, zoneSvc, adSvc, analyticsSvc, tmpl, validate, log),
		Public:  handlers.NewPublicHandler(cfg, tmpl, log),
		WS:      handlers.NewWSHub(cfg, bus, log),
	})
	return app
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret:           "test-secret",
		SelectionWindowDays: 7,
		BlogDir:             t.TempDir(),
		SiteFilesDir:        t.TempDir(),
		StaticDir:           t.TempDir(),
		ToolsDir:            t.TempDir(),
		SiteHost:            "ads.example",
		Region:              "ams",
	}
}

func do(t *testing.T, app *fiber.App, method, target, contentType, body string, headers ...string) (int, string, map[string][]string) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), resp.Header
}

func createZone(t *testing.T, app *fiber.App) models.Zone {
	t.Helper()
	status, body, _ := do(t, app, "POST", "/zones/", fiber.MIMEApplicationJSON, `{"name":"top","width":728,"height":90}`)
	if status != fiber.StatusOK {
		t.Fatalf("create zone: %d %s", status, body)
	}
	var z models.Zone
	if err := json.Unmarshal([]byte(body), &z); err != nil {
		t.Fatalf("decode zone: %v", err)
	}
	return z
}

func createAd(t *testing.T, app *fiber.App, zoneID int64, html string) models.Ad {
	t.Helper()
	payload := fmt.Sprintf(`{"zone_id":%d,"html":%q,"url":"https://advertiser.example"}`, zoneID, html)
	status, body, _ := do(t, app, "POST", "/ads/", fiber.MIMEApplicationJSON, payload)
	if status != fiber.StatusOK {
		t.Fatalf("create ad: %d %s", status, body)
	}
	var a models.Ad
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		t.Fatalf("decode ad: %v", err)
	}
	return a
}

func TestZoneAndAdCRUD(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	z := createZone(t, app)
	a := createAd(t, app, z.ID, "<b>hello</b>")
	if a.Weight != 1 || !a.IsActive {
		t.Errorf("ad defaults not applied: %+v", a)
	}

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"get zone", "GET", fmt.Sprintf("/zones/%d", z.ID), "", 200},
		{"missing zone", "GET", "/zones/999", "", 404},
		{"bad zone id", "GET", "/zones/abc", "", 400},
		{"update zone", "PUT", fmt.Sprintf("/zones/%d", z.ID), `{"name":"wide","width":970,"height":250}`, 200},
		{"invalid zone body", "POST", "/zones/", `{"width":10}`, 400},
		{"ad for unknown zone", "POST", "/ads/", `{"zone_id":999,"html":"x","url":"https://x.example"}`, 400},
		{"ad with bad url", "POST", "/ads/", fmt.Sprintf(`{"zone_id":%d,"html":"x","url":"nope"}`, z.ID), 400},
		{"get ad", "GET", fmt.Sprintf("/ads/%d", a.ID), "", 200},
		{"missing ad", "GET", "/ads/999", "", 404},
		{"list ads", "GET", "/ads/", "", 200},
		{"delete ad", "DELETE", fmt.Sprintf("/ads/%d", a.ID), "", 200},
		{"delete ad again", "DELETE", fmt.Sprintf("/ads/%d", a.ID), "", 404},
		{"delete zone", "DELETE", fmt.Sprintf("/zones/%d", z.ID), "", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := do(t, app, tt.method, tt.target, fiber.MIMEApplicationJSON, tt.body)
			if status != tt.want {
				t.Errorf("status = %d, want %d (body %s)", status, tt.want, body)
			}
		})
	}
}

func TestRenderAndClick(t *testing.T) {
	cfg := testConfig(t)
	cfg.SmartlinkURL = "https://smart.example/go"
	app := newTestApp(t, cfg)

	status, body, _ := do(t, app, "GET", "/render", "", "")
	if status != fiber.StatusNotFound || !strings.Contains(body, "Zone 1 not found") {
		t.Fatalf("render without zones: %d %s", status, body)
	}

	z := createZone(t, app)
	status, body, _ = do(t, app, "GET", fmt.Sprintf("/render?zone=%d", z.ID), "", "")
	if status != fiber.StatusNotFound || !strings.Contains(body, "has no ads") {
		t.Fatalf("render empty zone: %d %s", status, body)
	}

	a := createAd(t, app, z.ID, `<img src="/b.png">`)
	status, body, hdr := do(t, app, "GET", fmt.Sprintf("/render?zone=%d", z.ID), "", "")
	if status != fiber.StatusOK {
		t.Fatalf("render: %d %s", status, body)
	}
	if !strings.Contains(body, fmt.Sprintf(`href="/click?id=%d"`, a.ID)) || !strings.Contains(body, `<img src="/b.png">`) {
		t.Errorf("unexpected snippet: %s", body)
	}
	if got := hdr["X-Robots-Tag"]; len(got) == 0 || got[0] != "noindex, nofollow" {
		t.Errorf("X-Robots-Tag = %v", got)
	}

	status, _, hdr = do(t, app, "GET", fmt.Sprintf("/click?id=%d", a.ID), "", "")
	if status != fiber.StatusFound {
		t.Fatalf("click status = %d, want 302", status)
	}
	if got := hdr["Location"]; len(got) == 0 || got[0] != cfg.SmartlinkURL {
		t.Errorf("Location = %v", got)
	}

	status, _, _ = do(t, app, "GET", "/click?id=999", "", "")
	if status != fiber.StatusNotFound {
		t.Errorf("click unknown ad status = %d, want 404", status)
	}

	status, body, _ = do(t, app, "GET", "/api/stats.json", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("stats: %d", status)
	}
	var stats []models.AdWindowStats
	if err := json.Unmarshal([]byte(body), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Impressions != 1 || stats[0].Clicks != 1 || stats[0].CTR != 100 {
		t.Errorf("stats = %+v", stats)
	}

	_, body, _ = do(t, app, "GET", "/metrics", "", "")
	if !strings.Contains(body, "adserver_clicks_total 1") {
		t.Errorf("metrics missing click counter")
	}
}

func TestRenderInactiveZone(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	z := createZone(t, app)
	a := createAd(t, app, z.ID, "x")

	status, _, _ := do(t, app, "POST", fmt.Sprintf("/admin/ads/%d/disable", a.ID), "", "")
	if status != fiber.StatusSeeOther {
		t.Fatalf("disable status = %d, want 303", status)
	}
	status, body, _ := do(t, app, "GET", fmt.Sprintf("/render?zone=%d", z.ID), "", "")
	if status != fiber.StatusNotFound || !strings.Contains(body, "none are active") {
		t.Errorf("render inactive zone: %d %s", status, body)
	}
}

func TestAdminRequiresKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminKey = "k3y"
	app := newTestApp(t, cfg)

	if status, _, _ := do(t, app, "GET", "/admin/zones", "", ""); status != fiber.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", status)
	}
	if status, _, _ := do(t, app, "GET", "/admin/zones", "", "", "X-ADMIN-KEY", "k3y"); status != fiber.StatusOK {
		t.Errorf("with key status = %d, want 200", status)
	}

	status, body, _ := do(t, app, "POST", "/admin/login", fiber.MIMEApplicationJSON, `{"admin_key":"k3y"}`)
	if status != fiber.StatusOK {
		t.Fatalf("login: %d %s", status, body)
	}
	var login dto.LoginResponse
	if err := json.Unmarshal([]byte(body), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if status, _, _ := do(t, app, "GET", "/admin/analytics?days=30", "", "", "Authorization", "Bearer "+login.Token); status != fiber.StatusOK {
		t.Errorf("bearer analytics status = %d, want 200", status)
	}
	if status, _, _ := do(t, app, "GET", "/admin/analytics?days=120", "", "", "X-ADMIN-KEY", "k3y"); status != fiber.StatusBadRequest {
		t.Errorf("days out of range status = %d, want 400", status)
	}

	if status, _, _ := do(t, app, "POST", "/admin/login", fiber.MIMEApplicationJSON, `{"admin_key":"wrong"}`); status != fiber.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", status)
	}

	if status, _, _ := do(t, app, "GET", "/admin/debug/region", "", ""); status != fiber.StatusOK {
		t.Errorf("region should be public, status = %d", status)
	}
}

func TestAdminForms(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	form := url.Values{"name": {"side"}, "width": {"300"}, "height": {"250"}}
	status, _, hdr := do(t, app, "POST", "/admin/zones", fiber.MIMEApplicationForm, form.Encode())
	if status != fiber.StatusSeeOther || hdr["Location"][0] != "/admin/zones" {
		t.Fatalf("create zone form: %d %v", status, hdr["Location"])
	}

	form = url.Values{"zone_id": {"1"}, "html": {"<i>ad</i>"}, "url": {"https://x.example"}, "weight": {"3"}}
	status, _, _ = do(t, app, "POST", "/admin/ads", fiber.MIMEApplicationForm, form.Encode())
	if status != fiber.StatusSeeOther {
		t.Fatalf("create ad form status = %d", status)
	}

	status, body, _ := do(t, app, "GET", "/admin/ads?zone=1", "", "")
	if status != fiber.StatusOK || !strings.Contains(body, "&lt;i&gt;ad&lt;/i&gt;") {
		t.Errorf("admin ads page: %d", status)
	}

	form = url.Values{"zone_id": {"1"}, "html": {"<u>rent</u>"}, "url": {"https://r.example"}}
	status, _, hdr = do(t, app, "POST", "/ads/rent", fiber.MIMEApplicationForm, form.Encode())
	if status != fiber.StatusSeeOther || hdr["Location"][0] != "/ads/rent?success=true" {
		t.Errorf("rental: %d %v", status, hdr["Location"])
	}

	status, body, _ = do(t, app, "GET", "/ads/rent?success=true", "", "")
	if status != fiber.StatusOK || !strings.Contains(body, "your ad was submitted") {
		t.Errorf("rent page: %d", status)
	}

	status, _, _ = do(t, app, "POST", "/admin/zones/1/delete", "", "")
	if status != fiber.StatusSeeOther {
		t.Errorf("delete zone form status = %d", status)
	}
}

func TestPublicPages(t *testing.T) {
	cfg := testConfig(t)
	cfg.IndexNowKey = "abc123"
	if err := os.WriteFile(filepath.Join(cfg.SiteFilesDir, "ads.txt"), []byte("adsterra.com, 1, DIRECT"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.BlogDir, "blog_ctr.html"),
		[]byte(`<html><head><title>CTR tips</title></head><body>{{.Year}}</body></html>`), 0o644); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, cfg)

	tests := []struct {
		target string
		want   int
		body   string
	}{
		{"/", 200, "AdZone"},
		{"/stats", 200, "/api/stats.json"},
		{"/publisher", 200, "ads.example"},
		{"/blog", 200, "CTR tips"},
		{"/blog/ctr", 200, "<body>"},
		{"/blog/missing", 404, `"available_posts":["ctr"]`},
		{"/ads.txt", 200, "adsterra.com"},
		{"/robots.txt", 404, "not found"},
		{"/abc123.txt", 200, "abc123"},
		{"/embed.js?zone=3", 200, "var zone = 3;"},
		{"/healthz", 200, `"ok":true`},
		{"/stats.json", 200, `"ads":[]`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			status, body, _ := do(t, app, "GET", tt.target, "", "")
			if status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
			if !strings.Contains(body, tt.body) {
				t.Errorf("body missing %q: %s", tt.body, body)
			}
		})
	}
}

func TestRecordImpressionDirect(t *testing.T) {
	// the selector appends through the shared event store
	stores, err := sqlite.NewStores("file:direct?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("NewStores: %v", err)
	}
	defer stores.Close()
	ctx := context.Background()
	z := &models.Zone{Name: "z", Width: 1, Height: 1}
	if err := stores.Zones.Create(ctx, z); err != nil {
		t.Fatal(err)
	}
	a := &models.Ad{ZoneID: z.ID, HTML: "x", URL: "https://x.example", Weight: 1, IsActive: true}
	if err := stores.Ads.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	sel := selection.NewSelector(selection.DefaultConfig(), stores.Events, zap.NewNop())
	if err := sel.RecordImpression(ctx, a.ID); err != nil {
		t.Fatalf("RecordImpression: %v", err)
	}
	imps, _, err := sel.Aggregator().RangeCounts(ctx, 7)
	if err != nil {
		t.Fatalf("RangeCounts: %v", err)
	}
	if imps[a.ID] != 1 {
		t.Errorf("impressions = %d, want 1", imps[a.ID])
	}
}
