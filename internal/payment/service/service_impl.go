package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/clock"
	"github.com/IAmRubenNavarro/doula-life/internal/config"
	obsmetrics "github.com/IAmRubenNavarro/doula-life/internal/observability/metrics"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/adapters"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Registry    *adapters.Registry
	Cfg         config.Config
	PaymentsCfg *config.PaymentsConfigHolder
	Clock       clock.Clock         `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

// Service is the payment orchestrator: it opens charges on a provider,
// owns the local payment record, and folds verified webhook events back
// into it.
type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	registry    *adapters.Registry
	cfg         config.Config
	paymentsCfg *config.PaymentsConfigHolder
	clock       clock.Clock
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		registry:    p.Registry,
		cfg:         p.Cfg,
		paymentsCfg: p.PaymentsCfg,
		clock:       clk,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.CreatePaymentResponse, error) {
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if provider == "" {
		return domain.CreatePaymentResponse{}, domain.ErrInvalidProvider
	}
	if !domain.ValidProvider(provider) || !s.registry.ProviderExists(provider) {
		return domain.CreatePaymentResponse{}, domain.ErrProviderNotFound
	}
	if req.Amount <= 0 {
		return domain.CreatePaymentResponse{}, domain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return domain.CreatePaymentResponse{}, domain.ErrInvalidCurrency
	}

	links, err := s.parseLinks(req)
	if err != nil {
		return domain.CreatePaymentResponse{}, err
	}

	returnURL := strings.TrimSpace(req.ReturnURL)
	cancelURL := strings.TrimSpace(req.CancelURL)
	if provider == domain.ProviderPayPal {
		if returnURL == "" || cancelURL == "" {
			return domain.CreatePaymentResponse{}, domain.ErrMissingRedirectURLs
		}
		if !absoluteURL(returnURL) || !absoluteURL(cancelURL) {
			return domain.CreatePaymentResponse{}, domain.ErrInvalidRequest
		}
	}

	adapter, err := s.newAdapter(provider)
	if err != nil {
		return domain.CreatePaymentResponse{}, err
	}

	paymentID := s.genID.Generate()
	metadata := metadataBag(links)

	handle, err := adapter.CreatePayment(ctx, domain.ProviderCreateRequest{
		AmountCents:    int64(math.Round(req.Amount * 100)),
		AmountMajor:    req.Amount,
		Currency:       currency,
		Description:    paymentDescription(req.Description, metadata),
		Metadata:       metadata,
		ReturnURL:      returnURL,
		CancelURL:      cancelURL,
		IdempotencyKey: paymentID.String(),
	})
	if err != nil {
		return domain.CreatePaymentResponse{}, err
	}

	now := s.clock.Now().UTC()
	reference := strings.TrimSpace(handle.Reference)
	payment := domain.Payment{
		ID:            paymentID,
		UserID:        links.UserID,
		Amount:        req.Amount,
		Currency:      currency,
		Provider:      provider,
		Status:        domain.StatusPending,
		ServiceID:     links.ServiceID,
		AppointmentID: links.AppointmentID,
		TrainingID:    links.TrainingID,
		Metadata:      metadataJSON(metadata),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if reference != "" {
		payment.ExternalReference = &reference
	}

	insert := func() error {
		_, err := s.repo.Insert(ctx, s.db, &payment)
		return err
	}
	if err := db.CriticalRetry.Do(ctx, s.log, "payments.insert", insert); err != nil {
		// The provider object already exists; the webhook path rebuilds the
		// row from event metadata, so the client still gets its handle.
		s.log.Error("failed to persist pending payment",
			zap.String("provider", provider),
			zap.String("payment_id", paymentID.String()),
			zap.String("external_reference", reference),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)),
		)
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentCreated(ctx, provider, currency)
	}
	s.log.Info("payment created",
		zap.String("provider", provider),
		zap.String("payment_id", paymentID.String()),
		zap.String("external_reference", reference),
		zap.Float64("amount", req.Amount),
		zap.String("currency", currency),
	)

	return domain.CreatePaymentResponse{
		Provider:          provider,
		PaymentID:         paymentID,
		ExternalReference: reference,
		Status:            domain.StatusAwaitingConfirmation,
		ClientSecret:      handle.ClientSecret,
		ApprovalURL:       handle.ApprovalURL,
	}, nil
}

func (s *Service) CapturePayPal(ctx context.Context, req domain.CapturePaymentRequest) (domain.CapturePaymentResponse, error) {
	reference := strings.TrimSpace(req.PaymentID)
	payerID := strings.TrimSpace(req.PayerID)
	if reference == "" || payerID == "" {
		return domain.CapturePaymentResponse{}, domain.ErrInvalidRequest
	}

	adapter, err := s.newAdapter(domain.ProviderPayPal)
	if err != nil {
		return domain.CapturePaymentResponse{}, err
	}

	result, err := adapter.Capture(ctx, domain.CaptureRequest{
		Reference: reference,
		PayerID:   payerID,
	})
	if err != nil {
		return domain.CapturePaymentResponse{}, err
	}

	// The execute response is authoritative confirmation; fold it into the
	// local record without waiting for the webhook.
	s.applyCapture(ctx, result)

	return domain.CapturePaymentResponse{
		Status:    "success",
		PaymentID: result.Reference,
		PayerID:   result.PayerID,
		Amount:    result.Amount,
		Currency:  result.Currency,
		State:     result.State,
	}, nil
}

func (s *Service) applyCapture(ctx context.Context, result *domain.CaptureResult) {
	reference := strings.TrimSpace(result.Reference)
	if reference == "" {
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(result.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := s.clock.Now().UTC()
	payment := domain.Payment{
		ID:                s.genID.Generate(),
		Amount:            result.Amount,
		Currency:          currency,
		Provider:          domain.ProviderPayPal,
		Status:            domain.StatusCompleted,
		ExternalReference: &reference,
		Metadata:          metadataJSON(nil),
		LastEventAt:       &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	apply := func() error { return s.repo.ApplyEvent(ctx, s.db, &payment) }
	if err := db.CriticalRetry.Do(ctx, s.log, "payments.apply_capture", apply); err != nil {
		s.log.Error("failed to mark captured payment completed",
			zap.String("external_reference", reference),
			zap.Error(err),
		)
	}
}

// ProcessEvent reconciles one verified, normalized provider event. The
// event ledger insert is the idempotency gate: a re-delivered event either
// resumes an interrupted run or reports ErrEventAlreadyProcessed.
func (s *Service) ProcessEvent(ctx context.Context, event *domain.PaymentEvent, payload []byte) error {
	if event == nil {
		return domain.ErrInvalidEvent
	}
	event.Provider = strings.ToLower(strings.TrimSpace(event.Provider))
	if event.Provider == "" {
		return domain.ErrInvalidProvider
	}
	if !json.Valid(payload) {
		return domain.ErrInvalidPayload
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	received := domain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}
	if event.ExternalReference != "" {
		reference := event.ExternalReference
		received.ExternalReference = &reference
	}

	inserted := false
	insert := func() error {
		var err error
		inserted, err = s.repo.InsertEvent(ctx, s.db, &received)
		return err
	}
	if err := db.CriticalRetry.Do(ctx, s.log, "payment_events.insert", insert); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	stored := &received
	if !inserted {
		var err error
		stored, err = s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		if stored == nil {
			return domain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			return domain.ErrEventAlreadyProcessed
		}
	}

	if err := s.applyEvent(ctx, event, now); err != nil {
		return err
	}

	mark := func() error { return s.repo.MarkProcessed(ctx, s.db, stored.ID, now) }
	if err := db.CriticalRetry.Do(ctx, s.log, "payment_events.mark_processed", mark); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	if inserted && s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentEvent(ctx, event.Provider, event.Type)
	}

	return nil
}

func validateEvent(event *domain.PaymentEvent) error {
	event.ProviderEventID = strings.TrimSpace(event.ProviderEventID)
	if event.ProviderEventID == "" {
		return domain.ErrInvalidEvent
	}
	event.Type = strings.TrimSpace(event.Type)
	if event.Type == "" {
		return domain.ErrInvalidEvent
	}
	event.ExternalReference = strings.TrimSpace(event.ExternalReference)
	event.Currency = strings.ToUpper(strings.TrimSpace(event.Currency))
	if event.OccurredAt.IsZero() {
		return domain.ErrInvalidEvent
	}

	switch event.Type {
	case domain.EventTypePaymentSucceeded, domain.EventTypeRefunded:
		if event.Amount <= 0 {
			return domain.ErrInvalidAmount
		}
		if event.Currency == "" {
			return domain.ErrInvalidCurrency
		}
	case domain.EventTypePaymentFailed:
	default:
		return domain.ErrInvalidEvent
	}

	// Refunds are recorded against whatever reference the resource carried;
	// status-bearing events must name the payment they settle.
	if event.Type != domain.EventTypeRefunded && event.ExternalReference == "" {
		return domain.ErrInvalidEvent
	}
	return nil
}

func (s *Service) applyEvent(ctx context.Context, event *domain.PaymentEvent, now time.Time) error {
	status, ok := domain.EventStatus(event.Type)
	if !ok {
		// Refund events live in the ledger only.
		return nil
	}

	reference := event.ExternalReference
	occurredAt := event.OccurredAt.UTC()
	currency := event.Currency
	if currency == "" {
		currency = "USD"
	}

	payment := domain.Payment{
		ID:                s.genID.Generate(),
		UserID:            event.Links.UserID,
		Amount:            event.Amount,
		Currency:          currency,
		Provider:          event.Provider,
		Status:            status,
		ExternalReference: &reference,
		ServiceID:         event.Links.ServiceID,
		AppointmentID:     event.Links.AppointmentID,
		TrainingID:        event.Links.TrainingID,
		Metadata:          metadataJSON(metadataBag(event.Links)),
		LastEventAt:       &occurredAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	apply := func() error { return s.repo.ApplyEvent(ctx, s.db, &payment) }
	if err := db.CriticalRetry.Do(ctx, s.log, "payments.apply_event", apply); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) (domain.ListPaymentResponse, error) {
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		return domain.ListPaymentResponse{}, domain.ErrInvalidStatus
	}
	if req.Provider != "" && !domain.ValidProvider(strings.ToLower(req.Provider)) {
		return domain.ListPaymentResponse{}, domain.ErrInvalidProvider
	}

	filter := domain.ListPaymentFilter{
		Status:   req.Status,
		Provider: strings.ToLower(req.Provider),
	}
	if req.UserID != "" {
		id, err := s.parseID(req.UserID)
		if err != nil {
			return domain.ListPaymentResponse{}, err
		}
		filter.UserID = id.String()
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var items []*domain.Payment
	list := func() error {
		var err error
		items, err = s.repo.List(ctx, s.db, filter, pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  int(pageSize),
		})
		return err
	}
	if err := db.DefaultRetry.Do(ctx, s.log, "payments.list", list); err != nil {
		return domain.ListPaymentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(payment *domain.Payment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        payment.ID.String(),
			CreatedAt: payment.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}

	resp := domain.ListPaymentResponse{Payments: payments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPaymentRequest) (domain.Payment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Payment{}, err
	}

	var item *domain.Payment
	find := func() error {
		var err error
		item, err = s.repo.FindByID(ctx, s.db, id)
		return err
	}
	if err := db.DefaultRetry.Do(ctx, s.log, "payments.find", find); err != nil {
		return domain.Payment{}, err
	}
	if item == nil {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return *item, nil
}

// Update only moves status and subject links. Amount, currency, provider
// and external reference are immutable once the row exists, and a status
// can never step back to pending.
func (s *Service) Update(ctx context.Context, req domain.UpdatePaymentRequest) (domain.Payment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Payment{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if item == nil {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}

	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !domain.ValidStatus(status) {
			return domain.Payment{}, domain.ErrInvalidStatus
		}
		if domain.StatusRegresses(item.Status, status) {
			return domain.Payment{}, domain.ErrStatusRegression
		}
		item.Status = status
	}
	if req.ServiceID != nil {
		link, err := s.parseLink(*req.ServiceID)
		if err != nil {
			return domain.Payment{}, err
		}
		item.ServiceID = link
	}
	if req.AppointmentID != nil {
		link, err := s.parseLink(*req.AppointmentID)
		if err != nil {
			return domain.Payment{}, err
		}
		item.AppointmentID = link
	}
	if req.TrainingID != nil {
		link, err := s.parseLink(*req.TrainingID)
		if err != nil {
			return domain.Payment{}, err
		}
		item.TrainingID = link
	}
	item.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.Payment{}, domain.ErrInvalidReference
		}
		return domain.Payment{}, err
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeletePaymentRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (s *Service) newAdapter(provider string) (domain.PaymentAdapter, error) {
	return s.registry.NewAdapter(provider, adapters.BuildConfig(s.cfg, s.paymentsCfg.Get(), provider))
}

func (s *Service) parseLinks(req domain.CreatePaymentRequest) (domain.SubjectLinks, error) {
	links := domain.SubjectLinks{}
	if req.UserID != "" {
		id, err := s.parseID(req.UserID)
		if err != nil {
			return links, err
		}
		links.UserID = &id
	}
	if req.ServiceID != "" {
		id, err := s.parseID(req.ServiceID)
		if err != nil {
			return links, err
		}
		links.ServiceID = &id
	}
	if req.AppointmentID != "" {
		id, err := s.parseID(req.AppointmentID)
		if err != nil {
			return links, err
		}
		links.AppointmentID = &id
	}
	if req.TrainingID != "" {
		id, err := s.parseID(req.TrainingID)
		if err != nil {
			return links, err
		}
		links.TrainingID = &id
	}
	return links, nil
}

func (s *Service) parseLink(value string) (*snowflake.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := s.parseID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func metadataBag(links domain.SubjectLinks) map[string]string {
	bag := map[string]string{}
	if links.UserID != nil {
		bag["user_id"] = links.UserID.String()
	}
	if links.ServiceID != nil {
		bag["service_id"] = links.ServiceID.String()
	}
	if links.AppointmentID != nil {
		bag["appointment_id"] = links.AppointmentID.String()
	}
	if links.TrainingID != nil {
		bag["training_id"] = links.TrainingID.String()
	}
	return bag
}

func metadataJSON(bag map[string]string) datatypes.JSON {
	if len(bag) == 0 {
		return datatypes.JSON([]byte(`{}`))
	}
	encoded, err := json.Marshal(bag)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(encoded)
}

func paymentDescription(custom string, metadata map[string]string) string {
	if custom = strings.TrimSpace(custom); custom != "" {
		return custom
	}
	subject := metadata["service_id"]
	if subject == "" {
		subject = "general"
	}
	return "Doula Life payment - " + subject
}

func absoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
