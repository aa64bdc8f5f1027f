// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package maintenance

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sitebuilder/internal/models"
	"sitebuilder/internal/slug"
	"sitebuilder/internal/store"
)

// crud adapts typed store and service functions to ops.
type crud[T any] struct {
	name   string
	list   func(context.Context, store.ListQuery) ([]T, error)
	find   func(context.Context, uuid.UUID) (*T, error)
	save   func(context.Context, *T) error
	remove func(context.Context, uuid.UUID) error
	// prepare sets the ID of a decoded value and, on create, its creator.
	prepare func(v *T, id uuid.UUID, creator *uuid.UUID)
}

func (c crud[T]) ops() ops {
	return ops{
		list: func(ctx context.Context, q store.ListQuery) (any, error) {
			items, err := c.list(ctx, q)
			if err != nil {
				return nil, err
			}
			if items == nil {
				items = []T{}
			}
			return items, nil
		},
		get: func(ctx context.Context, id uuid.UUID) (any, error) {
			return c.load(ctx, id)
		},
		create: func(ctx context.Context, body []byte, actor *models.Identity) (any, error) {
			var v T
			if err := decode(body, &v); err != nil {
				return nil, err
			}
			var creator *uuid.UUID
			if actor != nil {
				creator = &actor.Account.ID
			}
			c.prepare(&v, uuid.Nil, creator)
			if err := c.save(ctx, &v); err != nil {
				return nil, err
			}
			return &v, nil
		},
		update: func(ctx context.Context, id uuid.UUID, body []byte) (any, error) {
			v, err := c.load(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := decode(body, v); err != nil {
				return nil, err
			}
			c.prepare(v, id, nil)
			if err := c.save(ctx, v); err != nil {
				return nil, err
			}
			return v, nil
		},
		delete: c.remove,
	}
}

func (c crud[T]) load(ctx context.Context, id uuid.UUID) (*T, error) {
	v, err := c.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%s %s: %w", c.name, id, store.ErrNotFound)
	}
	return v, nil
}

func (r *Registry) registerAll() {
	db := r.svc.DB()
	pages := store.NewPageStore(db)
	cats := store.NewCategoryStore(db)
	subs := store.NewSubCategoryStore(db)
	types := store.NewTypeStore(db)
	arts := store.NewArticleStore(db)

	r.register(&Entity{
		Name:        "page",
		Label:       "Páginas",
		Description: "Páginas del sitio. La página de inicio no tiene slug.",
		Searchable:  []string{"title"},
		Sortable:    []string{"title", "slug", "sort_order", "public", "is_home", "created_at", "updated_at"},
		Fields: []Field{
			{Name: "title", Label: "Título", Kind: KindText, Required: true, MaxLen: models.PageTitleMax},
			{Name: "content", Label: "Contenido", Kind: KindRichText},
			{Name: "sort_order", Label: "Orden", Kind: KindInt},
			{Name: "slug", Label: "Slug", Kind: KindSlug, MaxLen: slug.MaxLen},
			{Name: "public", Label: "Público", Kind: KindBool},
			{Name: "type_id", Label: "Tipo", Kind: KindRef, Ref: "type"},
			{Name: "is_home", Label: "Página de inicio", Kind: KindBool},
		},
		ops: crud[models.Page]{
			name: "page", list: pages.List, find: pages.FindByID, save: r.svc.SavePage, remove: r.svc.DeletePage,
			prepare: func(p *models.Page, id uuid.UUID, creator *uuid.UUID) {
				p.ID = id
				if id == uuid.Nil {
					p.CreatedBy = creator
				}
			},
		}.ops(),
	})

	r.register(&Entity{
		Name:        "category",
		Label:       "Categorías",
		Description: "Agrupan subcategorías y artículos bajo una o más páginas.",
		Searchable:  []string{"name"},
		Sortable:    []string{"name", "description", "public", "created_at"},
		Fields: []Field{
			{Name: "name", Label: "Nombre", Kind: KindText, Required: true, MaxLen: models.CategoryNameMax},
			{Name: "description", Label: "Descripción", Kind: KindTextArea, Required: true, MaxLen: models.DescriptionMax},
			{Name: "public", Label: "Público", Kind: KindBool},
			{Name: "page_ids", Label: "Páginas", Kind: KindRefs, Ref: "page"},
		},
		ops: crud[models.Category]{
			name: "category", list: cats.List, find: cats.FindByID, save: r.svc.SaveCategory, remove: r.svc.DeleteCategory,
			prepare: func(c *models.Category, id uuid.UUID, creator *uuid.UUID) {
				c.ID = id
				if id == uuid.Nil {
					c.CreatedBy = creator
				}
			},
		}.ops(),
	})

	r.register(&Entity{
		Name:        "subcategory",
		Label:       "Subcategorías",
		Description: "Pertenecen a una categoría y listan sus artículos.",
		Searchable:  []string{"name"},
		Sortable:    []string{"name", "description", "slug", "use_thumbnail", "public", "created_at"},
		Fields: []Field{
			{Name: "name", Label: "Nombre", Kind: KindText, Required: true, MaxLen: models.SubCategoryNameMax},
			{Name: "description", Label: "Descripción", Kind: KindTextArea, MaxLen: models.DescriptionMax},
			{Name: "category_id", Label: "Categoría", Kind: KindRef, Required: true, Ref: "category"},
			{Name: "slug", Label: "Slug", Kind: KindSlug, MaxLen: slug.MaxLen},
			{Name: "image", Label: "Imagen", Kind: KindFile},
			{Name: "use_thumbnail", Label: "Miniatura del video", Kind: KindBool},
			{Name: "video_url", Label: "URL de video", Kind: KindURL},
			{Name: "video_file", Label: "Archivo de video", Kind: KindFile},
			{Name: "public", Label: "Público", Kind: KindBool},
		},
		ops: crud[models.SubCategory]{
			name: "subcategory", list: subs.List, find: subs.FindByID, save: r.svc.SaveSubCategory, remove: r.svc.DeleteSubCategory,
			prepare: func(s *models.SubCategory, id uuid.UUID, creator *uuid.UUID) {
				s.ID = id
				if id == uuid.Nil {
					s.CreatedBy = creator
				}
			},
		}.ops(),
	})

	r.register(&Entity{
		Name:        "type",
		Label:       "Tipos",
		Description: "Relacionan las páginas con los artículos que muestran.",
		Searchable:  []string{"name"},
		Sortable:    []string{"name", "slug", "public", "created_at"},
		Fields: []Field{
			{Name: "name", Label: "Nombre", Kind: KindText, Required: true, MaxLen: models.TypeNameMax},
			{Name: "slug", Label: "Slug", Kind: KindSlug, MaxLen: slug.MaxLen},
			{Name: "public", Label: "Público", Kind: KindBool},
		},
		ops: crud[models.Type]{
			name: "type", list: types.List, find: types.FindByID, save: r.svc.SaveType, remove: r.svc.DeleteType,
			prepare: func(t *models.Type, id uuid.UUID, creator *uuid.UUID) {
				t.ID = id
				if id == uuid.Nil {
					t.CreatedBy = creator
				}
			},
		}.ops(),
	})

	r.register(&Entity{
		Name:        "article",
		Label:       "Artículos",
		Description: "Se muestran dentro de una categoría y subcategoría; su tipo decide en qué páginas aparecen.",
		Searchable:  []string{"title"},
		Sortable:    []string{"title", "use_thumbnail", "public", "created_at", "updated_at"},
		Fields: []Field{
			{Name: "title", Label: "Título", Kind: KindText, Required: true, MaxLen: models.ArticleTitleMax},
			{Name: "content", Label: "Contenido", Kind: KindRichText, Required: true, MaxLen: models.ArticleContentMax},
			{Name: "image", Label: "Imagen", Kind: KindFile},
			{Name: "use_thumbnail", Label: "Miniatura del video", Kind: KindBool},
			{Name: "video_url", Label: "URL de video", Kind: KindURL},
			{Name: "video_file", Label: "Archivo de video", Kind: KindFile},
			{Name: "public", Label: "Público", Kind: KindBool},
			{Name: "category_id", Label: "Categoría", Kind: KindRef, Ref: "category"},
			{Name: "subcategory_id", Label: "Subcategoría", Kind: KindRef, Ref: "subcategory"},
			{Name: "type_id", Label: "Tipo", Kind: KindRef, Ref: "type"},
		},
		ops: crud[models.Article]{
			name: "article", list: arts.List, find: arts.FindByID, save: r.svc.SaveArticle, remove: r.svc.DeleteArticle,
			prepare: func(a *models.Article, id uuid.UUID, creator *uuid.UUID) {
				a.ID = id
				if id == uuid.Nil {
					a.CreatedBy = uuid.Nil
					if creator != nil {
						a.CreatedBy = *creator
					}
				}
			},
		}.ops(),
	})

	r.register(&Entity{
		Name:        "layout",
		Label:       "Diseño",
		Description: "Título y logo del sitio. Existe una sola instancia.",
		Fields: []Field{
			{Name: "title", Label: "Título", Kind: KindText, Required: true, MaxLen: models.LayoutTitleMax},
			{Name: "logo", Label: "Logo", Kind: KindFile},
		},
		Singleton: true,
	})
}
