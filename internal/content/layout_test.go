package content

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"sitebuilder/internal/models"
)

func TestLayout_GetOrCreate(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Layout(ctx)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if first.Title != models.DefaultLayoutTitle {
		t.Errorf("default title = %q", first.Title)
	}
	second, err := svc.Layout(ctx)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second Layout created a new row: %s vs %s", second.ID, first.ID)
	}
}

func TestSaveLayout(t *testing.T) {
	svc, _, bus := newService(t)
	ctx := context.Background()
	media := newMemStorage()
	Register(bus, nil, media)

	l := &models.Layout{Title: "Mi tienda", Logo: "logos/a.png"}
	if err := svc.SaveLayout(ctx, l); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	l.Logo = "logos/b.png"
	if err := svc.SaveLayout(ctx, l); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if d := media.Deleted(); !slices.Equal(d, []string{"logos/a.png"}) {
		t.Errorf("deleted = %v", d)
	}

	got, err := svc.Layout(ctx)
	if err != nil || got.Title != "Mi tienda" || got.Logo != "logos/b.png" || got.ID != l.ID {
		t.Errorf("Layout() = %+v, %v", got, err)
	}

	if err := svc.DeleteLayout(ctx); err != nil {
		t.Fatalf("DeleteLayout: %v", err)
	}
	if d := media.Deleted(); !slices.Equal(d, []string{"logos/a.png", "logos/b.png"}) {
		t.Errorf("deleted = %v", d)
	}
	fresh, err := svc.Layout(ctx)
	if err != nil || fresh.Title != models.DefaultLayoutTitle || fresh.Logo != "" {
		t.Errorf("recreated layout = %+v, %v", fresh, err)
	}
	// Deleting twice is a no-op.
	if err := svc.DeleteLayout(ctx); err != nil {
		t.Fatalf("DeleteLayout: %v", err)
	}
	if err := svc.DeleteLayout(ctx); err != nil {
		t.Errorf("DeleteLayout without a row = %v", err)
	}
}

func TestSaveLayout_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	err := svc.SaveLayout(context.Background(), &models.Layout{Title: strings.Repeat("x", models.LayoutTitleMax+1)})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}
