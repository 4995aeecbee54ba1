package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/IAmRubenNavarro/doula-life/internal/catalog/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/catalog/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:catalogsvc%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.CatalogService{}); err != nil {
		t.Fatal(err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX ux_services_slug ON services (slug)`).Error; err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateGeneratesSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	price := 120.0
	created, err := svc.Create(ctx, domain.CreateServiceRequest{
		Title:       "Birth Doula Consultation",
		ServiceType: domain.TypeConsulting,
		Price:       &price,
	})
	assert.NoError(t, err)
	assert.Equal(t, "birth-doula-consultation", created.Slug)
	assert.True(t, created.IsActive)

	// Same title produces the same slug.
	_, err = svc.Create(ctx, domain.CreateServiceRequest{
		Title:       "Birth Doula Consultation",
		ServiceType: domain.TypeConsulting,
	})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	negative := -5.0
	tests := []struct {
		name        string
		req         domain.CreateServiceRequest
		expectedErr error
	}{
		{
			name:        "empty title",
			req:         domain.CreateServiceRequest{Title: "  ", ServiceType: domain.TypeConsulting},
			expectedErr: domain.ErrInvalidTitle,
		},
		{
			name:        "bad type",
			req:         domain.CreateServiceRequest{Title: "Thing", ServiceType: "massage"},
			expectedErr: domain.ErrInvalidServiceType,
		},
		{
			name:        "negative price",
			req:         domain.CreateServiceRequest{Title: "Thing", ServiceType: domain.TypeTraining, Price: &negative},
			expectedErr: domain.ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateServiceRequest{
		Title:       "Postpartum Support",
		ServiceType: domain.TypeConsulting,
	})
	assert.NoError(t, err)

	title := "Postpartum Support Package"
	inactive := false
	updated, err := svc.Update(ctx, domain.UpdateServiceRequest{
		ID:       created.ID.String(),
		Title:    &title,
		IsActive: &inactive,
	})
	assert.NoError(t, err)
	assert.Equal(t, "postpartum-support-package", updated.Slug)
	assert.False(t, updated.IsActive)

	got, err := svc.GetByID(ctx, domain.GetServiceRequest{ID: created.ID.String()})
	assert.NoError(t, err)
	assert.Equal(t, title, got.Title)

	assert.NoError(t, svc.Delete(ctx, domain.DeleteServiceRequest{ID: created.ID.String()}))

	_, err = svc.GetByID(ctx, domain.GetServiceRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, domain.DeleteServiceRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFiltersByTypeAndActive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	inactive := false
	for _, req := range []domain.CreateServiceRequest{
		{Title: "Consultation A", ServiceType: domain.TypeConsulting},
		{Title: "Consultation B", ServiceType: domain.TypeConsulting, IsActive: &inactive},
		{Title: "Doula Training", ServiceType: domain.TypeTraining},
	} {
		_, err := svc.Create(ctx, req)
		assert.NoError(t, err)
	}

	all, err := svc.List(ctx, domain.ListServiceRequest{})
	assert.NoError(t, err)
	assert.Len(t, all.Services, 3)

	consulting, err := svc.List(ctx, domain.ListServiceRequest{ServiceType: domain.TypeConsulting})
	assert.NoError(t, err)
	assert.Len(t, consulting.Services, 2)

	active, err := svc.List(ctx, domain.ListServiceRequest{ServiceType: domain.TypeConsulting, ActiveOnly: true})
	assert.NoError(t, err)
	assert.Len(t, active.Services, 1)
	assert.Equal(t, "Consultation A", active.Services[0].Title)

	_, err = svc.List(ctx, domain.ListServiceRequest{ServiceType: "unknown"})
	assert.ErrorIs(t, err, domain.ErrInvalidServiceType)
}
