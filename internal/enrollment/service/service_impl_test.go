package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/IAmRubenNavarro/doula-life/internal/enrollment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:enrollsvc%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Enrollment{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	return svc, node
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	userID := node.Generate()
	trainingID := node.Generate()

	created, err := svc.Create(ctx, domain.CreateEnrollmentRequest{
		UserID:     userID.String(),
		TrainingID: trainingID.String(),
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, created.PaymentStatus)
	assert.Nil(t, created.PassedAssessment)

	got, err := svc.GetByID(ctx, domain.GetEnrollmentRequest{ID: created.ID.String()})
	assert.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, trainingID, got.TrainingID)
}

func TestCreateValidation(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	valid := node.Generate().String()

	_, err := svc.Create(ctx, domain.CreateEnrollmentRequest{UserID: "nope", TrainingID: valid})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = svc.Create(ctx, domain.CreateEnrollmentRequest{UserID: valid, TrainingID: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidTraining)

	_, err = svc.Create(ctx, domain.CreateEnrollmentRequest{UserID: valid, TrainingID: valid, PaymentStatus: "sponsored"})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)
}

func TestUpdatePaymentStatusAndAssessment(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateEnrollmentRequest{
		UserID:     node.Generate().String(),
		TrainingID: node.Generate().String(),
	})
	assert.NoError(t, err)

	paid := domain.PaymentStatusPaid
	passed := true
	updated, err := svc.Update(ctx, domain.UpdateEnrollmentRequest{
		ID:               created.ID.String(),
		PaymentStatus:    &paid,
		PassedAssessment: &passed,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, updated.PaymentStatus)

	got, err := svc.GetByID(ctx, domain.GetEnrollmentRequest{ID: created.ID.String()})
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus)
	if assert.NotNil(t, got.PassedAssessment) {
		assert.True(t, *got.PassedAssessment)
	}

	unknown := node.Generate()
	_, err = svc.Update(ctx, domain.UpdateEnrollmentRequest{ID: unknown.String(), PaymentStatus: &paid})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	alice := node.Generate()
	bob := node.Generate()
	training := node.Generate()

	for _, req := range []domain.CreateEnrollmentRequest{
		{UserID: alice.String(), TrainingID: training.String()},
		{UserID: alice.String(), TrainingID: node.Generate().String(), PaymentStatus: domain.PaymentStatusPaid},
		{UserID: bob.String(), TrainingID: training.String()},
	} {
		_, err := svc.Create(ctx, req)
		assert.NoError(t, err)
	}

	byUser, err := svc.List(ctx, domain.ListEnrollmentRequest{UserID: alice.String()})
	assert.NoError(t, err)
	assert.Len(t, byUser.Enrollments, 2)

	byTraining, err := svc.List(ctx, domain.ListEnrollmentRequest{TrainingID: training.String()})
	assert.NoError(t, err)
	assert.Len(t, byTraining.Enrollments, 2)

	paid, err := svc.List(ctx, domain.ListEnrollmentRequest{PaymentStatus: domain.PaymentStatusPaid})
	assert.NoError(t, err)
	assert.Len(t, paid.Enrollments, 1)
}

func TestDelete(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateEnrollmentRequest{
		UserID:     node.Generate().String(),
		TrainingID: node.Generate().String(),
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, domain.DeleteEnrollmentRequest{ID: created.ID.String()}))

	_, err = svc.GetByID(ctx, domain.GetEnrollmentRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, domain.DeleteEnrollmentRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
