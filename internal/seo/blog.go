package seo

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	blogPrefix = "blog_"
	blogSuffix = ".html"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Post is one blog page on disk, stored as blog_<slug>.html.
type Post struct {
	Slug  string
	Title string
}

// ValidSlug rejects anything that could escape the blog directory.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// PostPath returns the file backing slug inside dir.
func PostPath(dir, slug string) (string, error) {
	if !ValidSlug(slug) {
		return "", fmt.Errorf("invalid slug %q", slug)
	}
	return filepath.Join(dir, blogPrefix+slug+blogSuffix), nil
}

// ListPosts returns the posts in dir sorted by slug. Titles come from the
// page <title>, then the first <h1>, then the slug.
func ListPosts(dir string) ([]Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var posts []Post
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, blogPrefix) || !strings.HasSuffix(name, blogSuffix) {
			continue
		}
		slug := strings.TrimSuffix(strings.TrimPrefix(name, blogPrefix), blogSuffix)
		if slug == "index" || slug == "base" || !ValidSlug(slug) {
			continue
		}
		posts = append(posts, Post{Slug: slug, Title: postTitle(filepath.Join(dir, name), slug)})
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Slug < posts[j].Slug })
	return posts, nil
}

func postTitle(path, fallback string) string {
	f, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return fallback
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return fallback
}
