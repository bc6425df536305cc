package templates

import (
	"bytes"
	"strings"
	"testing"

	"github.com/adzone/adserver/internal/models"
)

func TestManagerRendersEveryPage(t *testing.T) {
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	page := NewPage("ads.example")
	zones := []models.Zone{{ID: 1, Name: "top", Width: 728, Height: 90}}
	tests := []struct {
		name string
		data any
		want string
	}{
		{"public/index.html", page, "AdZone"},
		{"public/stats.html", page, "/api/stats.json"},
		{"public/publisher.html", page, "ads.example/embed.js"},
		{"public/blog_index.html", BlogIndexPage{Page: page, Posts: []BlogPost{{Slug: "ctr", Title: "Raising CTR"}}}, `href="/blog/ctr"`},
		{"ads/rent.html", RentPage{Page: page, Zones: zones, Success: true}, "your ad was submitted"},
		{"admin/home.html", page, "/admin/analytics"},
		{"admin/analytics.html", AnalyticsPage{Page: page, Days: 7, Rows: []models.AdPerformance{{AdID: 3, CTR: 0.125}}}, "12.50%"},
		{"admin/zones.html", ZonesPage{Page: page, Zones: zones}, "728x90"},
		{"admin/ads.html", AdsPage{Page: page, Zones: zones, Ads: []models.Ad{{ID: 9, ZoneID: 1, HTML: "<b>x</b>"}}, ZoneFilter: 1}, " selected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := m.Render(&buf, tt.name, tt.data); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q", tt.want)
			}
		})
	}
}

func TestRenderUnknownPage(t *testing.T) {
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Render(&bytes.Buffer{}, "missing.html", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRenderSnippetKeepsAdHTML(t *testing.T) {
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	var buf bytes.Buffer
	if err := m.RenderSnippet(&buf, "/click?id=5", `<img src="/banner.png">`); err != nil {
		t.Fatalf("RenderSnippet: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `href="/click?id=5"`) {
		t.Errorf("click url missing: %s", out)
	}
	if !strings.Contains(out, `<img src="/banner.png">`) {
		t.Errorf("ad html was escaped: %s", out)
	}
}

func TestRenderEmbedJS(t *testing.T) {
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	tests := []struct {
		zone int64
		want string
	}{
		{0, "var zone = 1;"},
		{4, "var zone = 4;"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := m.RenderEmbedJS(&buf, tt.zone); err != nil {
			t.Fatalf("RenderEmbedJS: %v", err)
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("zone %d: output missing %q", tt.zone, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate(3, "abcdef"); got != "abc..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate(10, "abc"); got != "abc" {
		t.Errorf("truncate short = %q", got)
	}
}
