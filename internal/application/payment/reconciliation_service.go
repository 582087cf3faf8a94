package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome is the acknowledgment returned for an accepted delivery
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeIgnored          Outcome = "ignored"
)

// WebhookResult describes what one delivery did
type WebhookResult struct {
	Outcome            Outcome
	EventID            string
	PaymentID          *uuid.UUID
	Status             payment.Status
	Transitioned       bool
	FulfillmentCreated bool
}

// ReconciliationConfig contains configuration for ReconciliationService
type ReconciliationConfig struct {
	ProviderTimeout time.Duration
	LockTimeout     time.Duration
}

// DefaultReconciliationConfig returns default configuration
func DefaultReconciliationConfig() ReconciliationConfig {
	return ReconciliationConfig{
		ProviderTimeout: 10 * time.Second,
		LockTimeout:     5 * time.Second,
	}
}

// ReconciliationService applies provider payment status to local payments
// and refreshes the affected ledger months.
type ReconciliationService struct {
	scope      appledger.TransactionScope
	verifier   *payment.SignatureVerifier
	provider   payment.ProviderClient
	classifier *appledger.ClassificationService
	snapshots  *appledger.SnapshotService
	locker     PaymentLocker
	cfg        ReconciliationConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewReconciliationService creates a new ReconciliationService.
// A nil locker falls back to the database row lock alone.
func NewReconciliationService(
	scope appledger.TransactionScope,
	verifier *payment.SignatureVerifier,
	provider payment.ProviderClient,
	classifier *appledger.ClassificationService,
	snapshots *appledger.SnapshotService,
	locker PaymentLocker,
	logger *zap.Logger,
	cfg ReconciliationConfig,
) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = noopLocker{}
	}
	defaults := DefaultReconciliationConfig()
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaults.ProviderTimeout
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaults.LockTimeout
	}
	return &ReconciliationService{
		scope:      scope,
		verifier:   verifier,
		provider:   provider,
		classifier: classifier,
		snapshots:  snapshots,
		locker:     locker,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// HandleWebhook verifies, deduplicates and reconciles one delivery.
// Errors carry payment.ErrInvalidSignature, payment.ErrInvalidPayload or a retryable code.
func (s *ReconciliationService) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if err := s.verifier.Verify(body, signature); err != nil {
		return nil, err
	}
	n, err := payment.ParseNotification(body)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("event_id", n.EventID), zap.String("resource_id", n.ResourceID))

	if !n.IsPayment() {
		log.Debug("Ignoring non-payment notification", zap.String("type", n.Type))
		return &WebhookResult{Outcome: OutcomeIgnored, EventID: n.EventID}, nil
	}

	if replay, err := s.replayed(ctx, n.EventID); err != nil || replay != nil {
		return replay, err
	}

	doc, err := s.fetch(ctx, n.ResourceID)
	if err != nil {
		log.Warn("Provider fetch failed", zap.Error(err))
		return nil, err
	}

	local, err := s.resolve(ctx, doc.ExternalReference)
	if err != nil {
		return nil, err
	}
	if local == nil {
		log.Info("No local payment for provider document", zap.String("external_reference", doc.ExternalReference))
		if err := s.recordOnly(ctx, n.EventID, nil); err != nil {
			return nil, err
		}
		return &WebhookResult{Outcome: OutcomeIgnored, EventID: n.EventID}, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTimeout)
	unlock, err := s.locker.Lock(lockCtx, local.ID.String())
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrPaymentBusy, err)
	}
	defer unlock()

	result, err := s.apply(ctx, n.EventID, local.ID, *doc)
	if err != nil {
		log.Error("Reconciliation failed", zap.String("payment_id", local.ID.String()), zap.Error(err))
		return nil, err
	}
	log.Info("Webhook reconciled",
		zap.String("payment_id", local.ID.String()),
		zap.String("outcome", string(result.Outcome)),
		zap.String("status", string(result.Status)),
		zap.Bool("transitioned", result.Transitioned),
	)
	return result, nil
}

// replayed acknowledges an event whose payment already reached a terminal status
func (s *ReconciliationService) replayed(ctx context.Context, eventID string) (*WebhookResult, error) {
	var result *WebhookResult
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		delivery, err := repos.Deliveries().FindByEventID(ctx, eventID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if delivery.PaymentID == nil {
			return nil
		}
		p, err := repos.Payments().FindByID(ctx, *delivery.PaymentID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !p.IsTerminal() {
			return nil
		}
		if _, err := repos.Deliveries().Record(ctx, eventID, &p.ID, s.now()); err != nil {
			return err
		}
		result = &WebhookResult{Outcome: OutcomeAlreadyProcessed, EventID: eventID, PaymentID: &p.ID, Status: p.Status}
		return nil
	})
	return result, err
}

func (s *ReconciliationService) fetch(ctx context.Context, resourceID string) (*payment.ProviderPayment, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()
	doc, err := s.provider.FetchPayment(fetchCtx, resourceID)
	if err != nil {
		if errors.Is(err, payment.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
	}
	return doc, nil
}

// resolve finds the local payment of an external reference; nil when there is none
func (s *ReconciliationService) resolve(ctx context.Context, ref string) (*payment.Payment, error) {
	var local *payment.Payment
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		p, err := repos.Payments().FindByReference(ctx, ref)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		local = p
		return err
	})
	return local, err
}

func (s *ReconciliationService) recordOnly(ctx context.Context, eventID string, paymentID *uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		_, err := repos.Deliveries().Record(ctx, eventID, paymentID, s.now())
		return err
	})
}

// apply runs the locked transition, follow-ups, delivery record and ledger refresh in one transaction
func (s *ReconciliationService) apply(ctx context.Context, eventID string, paymentID uuid.UUID, doc payment.ProviderPayment) (*WebhookResult, error) {
	result := &WebhookResult{EventID: eventID, PaymentID: &paymentID}

	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		now := s.now()
		p, err := repos.Payments().LockByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.IsTerminal() {
			result.Outcome = OutcomeAlreadyProcessed
			result.Status = p.Status
			_, err := repos.Deliveries().Record(ctx, eventID, &p.ID, now)
			return err
		}

		changed, err := p.Apply(doc, now)
		if err != nil {
			return err
		}
		if changed {
			if err := repos.Payments().UpdateStatus(ctx, p, payment.StatusPending); err != nil {
				return err
			}
			created, err := s.followUp(ctx, repos, p, now)
			if err != nil {
				return err
			}
			result.FulfillmentCreated = created
		}
		result.Outcome = OutcomeOK
		result.Status = p.Status
		result.Transitioned = changed

		if _, err := repos.Deliveries().Record(ctx, eventID, &p.ID, now); err != nil {
			return err
		}
		return s.refreshLedger(ctx, repos, p)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// followUp moves the paid target and creates the order's fulfillment request
func (s *ReconciliationService) followUp(ctx context.Context, repos appledger.TransactionalRepositories, p *payment.Payment, now time.Time) (bool, error) {
	targets := repos.BillingTargets()
	var err error
	created := false

	switch {
	case p.Reference.Kind == payment.TargetOrder && p.Status == payment.StatusCompleted:
		created, err = repos.Fulfillments().CreateIfAbsent(ctx, payment.NewFulfillmentRequest(p, now))
		if err != nil {
			return false, err
		}
		err = targets.SetOrderStatus(ctx, p.Reference.ID, payment.TargetStatusPaid, now)
	case p.Reference.Kind == payment.TargetOrder && p.Status == payment.StatusFailed:
		err = targets.SetOrderStatus(ctx, p.Reference.ID, payment.TargetStatusFailed, now)
	case p.Reference.Kind == payment.TargetBudget && p.Status == payment.StatusCompleted:
		err = targets.SetBudgetStatus(ctx, p.Reference.ID, payment.TargetStatusPaid, now)
	}

	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Payment target not found",
			zap.String("payment_id", p.ID.String()),
			zap.String("reference", p.Reference.String()),
		)
		return created, nil
	}
	return created, err
}

// refreshLedger reclassifies the months touched by the payment.
// Budget payments also rebuild the snapshot and tax figures.
func (s *ReconciliationService) refreshLedger(ctx context.Context, repos appledger.TransactionalRepositories, p *payment.Payment) error {
	if _, err := repos.Clinics().FindByID(ctx, p.ClinicID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Skipping ledger refresh for unknown clinic",
				zap.String("payment_id", p.ID.String()),
				zap.String("clinic_id", p.ClinicID.String()),
			)
			return nil
		}
		return err
	}

	for _, month := range paymentMonths(p) {
		var err error
		if p.Reference.Kind == payment.TargetBudget && s.snapshots != nil {
			_, err = s.snapshots.BuildIn(ctx, repos, p.ClinicID, month)
		} else {
			_, _, err = s.classifier.ClassifyIn(ctx, repos, p.ClinicID, month)
		}
		if err != nil {
			return fmt.Errorf("refresh %s: %w", month.Format("2006-01"), err)
		}
	}
	return nil
}

// paymentMonths is the month of the relevant date, plus the creation month when it differs
func paymentMonths(p *payment.Payment) []time.Time {
	months := []time.Time{ledger.MonthOf(p.RelevantDate())}
	if created := ledger.MonthOf(p.CreatedAt); !created.Equal(months[0]) {
		months = append(months, created)
	}
	return months
}
