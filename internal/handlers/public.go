// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"

	"sitebuilder/internal/cache"
	"sitebuilder/internal/content"
	"sitebuilder/internal/middleware"
	"sitebuilder/internal/models"
	"sitebuilder/internal/storage"
	"sitebuilder/internal/store"
	"sitebuilder/internal/video"
)

// MsgEmptyPage is flashed when a visitor opens a page without content.
const MsgEmptyPage = "Esta página todavía no tiene contenido."

// Public groups handlers for the public-facing site. Responses that every
// visitor shares are kept in the Valkey site cache, which content events
// clear.
type Public struct {
	db      *sql.DB
	content *content.Service
	media   storage.Storage
	cache   *cache.Site
}

// NewPublic creates the public handler group. media and siteCache may be
// nil.
func NewPublic(svc *content.Service, media storage.Storage, siteCache *cache.Site) *Public {
	return &Public{db: svc.DB(), content: svc, media: media, cache: siteCache}
}

// NavSubCategory is a dropdown entry under a navigation category.
type NavSubCategory struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NavCategory is a dropdown shown when hovering a page.
type NavCategory struct {
	Name          string           `json:"name"`
	SubCategories []NavSubCategory `json:"subcategories"`
}

// NavItem is one public page in the navigation bar.
type NavItem struct {
	Title      string        `json:"title"`
	Slug       string        `json:"slug"`
	IsHome     bool          `json:"is_home"`
	Categories []NavCategory `json:"categories"`
}

// ArticleView is an article with resolved media URLs.
type ArticleView struct {
	models.Article
	ImageURL string `json:"image_url,omitempty"`
	VideoSrc string `json:"video_src,omitempty"`
}

// SubCategoryView is a subcategory with resolved media URLs.
type SubCategoryView struct {
	models.SubCategory
	ImageURL string `json:"image_url,omitempty"`
	VideoSrc string `json:"video_src,omitempty"`
}

// CategoryView is a category with its public subcategories.
type CategoryView struct {
	models.Category
	SubCategories []SubCategoryView `json:"subcategories"`
}

// PageView is a public page with the categories attached to it and the
// articles of its type.
type PageView struct {
	Page       *models.Page   `json:"page"`
	Categories []CategoryView `json:"categories"`
	Articles   []ArticleView  `json:"articles"`
}

// LayoutView is the site layout with the logo URL resolved.
type LayoutView struct {
	Title   string `json:"title"`
	LogoURL string `json:"logo_url,omitempty"`
}

// Home serves the home page. It is 404 until a public page is marked as
// home.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.serveCached(w, r, cache.HomeKey, func(ctx context.Context) (any, error) {
		home, err := store.NewPageStore(p.db).FindHome(ctx)
		if err != nil {
			return nil, err
		}
		if home == nil || !home.Public {
			return nil, fmt.Errorf("home page: %w", store.ErrNotFound)
		}
		return p.pageView(ctx, home)
	})
}

// Page serves a public page by slug. A page without visible content sends
// the visitor back to the home page with a message.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	if cached, ok := p.cache.Get(ctx, cache.PageKey(slug)); ok {
		writeRaw(w, cached)
		return
	}

	page, err := store.NewPageStore(p.db).FindBySlug(ctx, slug)
	if err != nil {
		fail(w, r, err)
		return
	}
	if page == nil || !page.Public || page.IsHome {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if !content.HasVisibleText(page.Content) {
		redirectWithMessage(w, "/", MsgEmptyPage)
		return
	}

	view, err := p.pageView(ctx, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	p.store(w, r, cache.PageKey(slug), view)
}

// Nav serves the navigation: public pages in order, each with its public
// categories and their public subcategories.
func (p *Public) Nav(w http.ResponseWriter, r *http.Request) {
	p.serveCached(w, r, cache.NavKey, func(ctx context.Context) (any, error) {
		pages, err := store.NewPageStore(p.db).ListPublic(ctx)
		if err != nil {
			return nil, err
		}
		cats := store.NewCategoryStore(p.db)
		subs := store.NewSubCategoryStore(p.db)

		items := make([]NavItem, 0, len(pages))
		for _, pg := range pages {
			item := NavItem{Title: pg.Title, Slug: pg.Slug, IsHome: pg.IsHome, Categories: []NavCategory{}}
			attached, err := cats.ListForPage(ctx, pg.ID)
			if err != nil {
				return nil, err
			}
			for _, c := range attached {
				nc := NavCategory{Name: c.Name, SubCategories: []NavSubCategory{}}
				children, err := subs.ListPublicByCategory(ctx, c.ID)
				if err != nil {
					return nil, err
				}
				for _, s := range children {
					nc.SubCategories = append(nc.SubCategories, NavSubCategory{Name: s.Name, Slug: s.Slug})
				}
				item.Categories = append(item.Categories, nc)
			}
			items = append(items, item)
		}
		return items, nil
	})
}

// Articles serves the public articles whose category is public, newest
// first.
func (p *Public) Articles(w http.ResponseWriter, r *http.Request) {
	p.serveCached(w, r, cache.ArticlesKey, func(ctx context.Context) (any, error) {
		arts, err := store.NewArticleStore(p.db).ListPublic(ctx)
		if err != nil {
			return nil, err
		}
		return p.articleViews(arts), nil
	})
}

// Layout serves the site title and logo.
func (p *Public) Layout(w http.ResponseWriter, r *http.Request) {
	p.serveCached(w, r, cache.LayoutKey, func(ctx context.Context) (any, error) {
		l, err := p.content.Layout(ctx)
		if err != nil {
			return nil, err
		}
		return LayoutView{Title: l.Title, LogoURL: p.mediaURL(l.Logo)}, nil
	})
}

// Messages returns and clears the pending flash message.
func (p *Public) Messages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": middleware.PopFlash(w, r)})
}

// Media streams a stored file. Backends that return seekable files get
// byte-range support from http.ServeContent.
func (p *Public) Media(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if p.media == nil || key == "" {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	rc, err := p.media.Open(r.Context(), key)
	if errors.Is(err, storage.ErrNotExist) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		slog.Warn("media open failed", "key", key, "error", err)
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, path.Base(key), time.Time{}, rs)
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		slog.Debug("media copy interrupted", "key", key, "error", err)
	}
}

// serveCached answers from the cache or builds, caches and sends the
// response.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, key string, build func(context.Context) (any, error)) {
	if cached, ok := p.cache.Get(r.Context(), key); ok {
		writeRaw(w, cached)
		return
	}
	v, err := build(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	p.store(w, r, key, v)
}

// store encodes v, caches it under key and sends it.
func (p *Public) store(w http.ResponseWriter, r *http.Request, key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		fail(w, r, err)
		return
	}
	p.cache.Set(r.Context(), key, body)
	writeRaw(w, body)
}

func (p *Public) pageView(ctx context.Context, page *models.Page) (*PageView, error) {
	view := &PageView{Page: page, Categories: []CategoryView{}, Articles: []ArticleView{}}

	cats, err := store.NewCategoryStore(p.db).ListForPage(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	subs := store.NewSubCategoryStore(p.db)
	for _, c := range cats {
		children, err := subs.ListPublicByCategory(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		cv := CategoryView{Category: c, SubCategories: make([]SubCategoryView, 0, len(children))}
		for _, s := range children {
			cv.SubCategories = append(cv.SubCategories, SubCategoryView{
				SubCategory: s,
				ImageURL:    p.mediaURL(s.Image),
				VideoSrc:    p.videoSrc(s.VideoURL, s.VideoFile),
			})
		}
		view.Categories = append(view.Categories, cv)
	}

	if page.TypeID != nil {
		arts, err := store.NewArticleStore(p.db).ListPublicByType(ctx, *page.TypeID)
		if err != nil {
			return nil, err
		}
		view.Articles = p.articleViews(arts)
	}
	return view, nil
}

func (p *Public) articleViews(arts []models.Article) []ArticleView {
	out := make([]ArticleView, 0, len(arts))
	for _, a := range arts {
		out = append(out, ArticleView{
			Article:  a,
			ImageURL: p.mediaURL(a.Image),
			VideoSrc: p.videoSrc(a.VideoURL, a.VideoFile),
		})
	}
	return out
}

// videoSrc is the playable source: the uploaded file when present, else
// the external URL converted to its embed form.
func (p *Public) videoSrc(url, file string) string {
	if file != "" {
		return p.mediaURL(file)
	}
	return video.EmbedURL(url)
}

func (p *Public) mediaURL(key string) string {
	if key == "" || p.media == nil {
		return ""
	}
	return p.media.URL(key)
}
