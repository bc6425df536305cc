package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adzone/adserver/internal/config"
	"github.com/adzone/adserver/internal/http/dto"
	"github.com/adzone/adserver/internal/seo"
	"github.com/adzone/adserver/internal/templates"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PublicHandler struct {
	cfg  *config.Config
	tmpl *templates.Manager
	log  *zap.Logger
}

func NewPublicHandler(cfg *config.Config, tmpl *templates.Manager, log *zap.Logger) *PublicHandler {
	return &PublicHandler{cfg: cfg, tmpl: tmpl, log: log}
}

func (h *PublicHandler) page(c *fiber.Ctx, name string, data any) error {
	c.Type("html", "utf-8")
	if err := h.tmpl.Render(c, name, data); err != nil {
		h.log.Error("template render failed", zap.String("template", name), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to render page")
	}
	return nil
}

func (h *PublicHandler) Home(c *fiber.Ctx) error {
	return h.page(c, "public/index.html", templates.NewPage(h.cfg.SiteHost))
}

func (h *PublicHandler) Stats(c *fiber.Ctx) error {
	return h.page(c, "public/stats.html", templates.NewPage(h.cfg.SiteHost))
}

func (h *PublicHandler) Publisher(c *fiber.Ctx) error {
	return h.page(c, "public/publisher.html", templates.NewPage(h.cfg.SiteHost))
}

func (h *PublicHandler) BlogIndex(c *fiber.Ctx) error {
	posts, err := seo.ListPosts(h.cfg.BlogDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		h.log.Error("failed to list blog posts", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list posts")
	}
	data := templates.BlogIndexPage{Page: templates.NewPage(h.cfg.SiteHost)}
	for _, p := range posts {
		data.Posts = append(data.Posts, templates.BlogPost{Slug: p.Slug, Title: p.Title})
	}
	return h.page(c, "public/blog_index.html", data)
}

type blogPostData struct {
	Published string
	Year      int
}

// BlogPost executes blog_<slug>.html from the blog directory as a template.
func (h *PublicHandler) BlogPost(c *fiber.Ctx) error {
	slug := c.Params("slug")
	path, err := seo.PostPath(h.cfg.BlogDir, slug)
	if err == nil {
		_, err = os.Stat(path)
	}
	if err != nil {
		available := []string{}
		posts, _ := seo.ListPosts(h.cfg.BlogDir)
		for _, p := range posts {
			available = append(available, p.Slug)
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.BlogNotFoundResponse{
			Error:          "Blog post '" + slug + "' not found",
			AvailablePosts: available,
		})
	}

	tmpl, err := template.New(filepath.Base(path)).Funcs(templates.FuncMap()).ParseFiles(path)
	if err != nil {
		h.log.Error("failed to parse blog post", zap.String("slug", slug), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to render post")
	}
	now := time.Now()
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, blogPostData{Published: now.Format(time.DateOnly), Year: now.Year()}); err != nil {
		h.log.Error("failed to render blog post", zap.String("slug", slug), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to render post")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// SiteFile serves a root-level text file such as ads.txt from SITE_FILES_DIR.
func (h *PublicHandler) SiteFile(name, contentType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := os.ReadFile(filepath.Join(h.cfg.SiteFilesDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return errorJSON(c, fiber.StatusNotFound, name+" not found")
		}
		if err != nil {
			h.log.Error("failed to read site file", zap.String("file", name), zap.Error(err))
			return errorJSON(c, fiber.StatusInternalServerError, "failed to read "+name)
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(data)
	}
}

func (h *PublicHandler) IndexNowKey(c *fiber.Ctx) error {
	return c.SendString(h.cfg.IndexNowKey)
}
