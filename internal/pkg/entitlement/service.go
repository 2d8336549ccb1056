package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/mrgoonie/docobo/app/models"
	"github.com/mrgoonie/docobo/app/repository"
	"github.com/mrgoonie/docobo/internal/pkg/metrics"
	"github.com/mrgoonie/docobo/internal/pkg/webhook"
)

// Effector applies the external access-grant side effect. Both calls
// are idempotent and must never panic past the state machine.
type Effector interface {
	Grant(ctx context.Context, guildID, userID, roleID string) error
	Revoke(ctx context.Context, guildID, userID, roleID string) error
}

// sideEffect is what a state transition requires after the row mutation.
type sideEffect int

const (
	effectNone sideEffect = iota
	effectGrant
	effectRevoke
)

// errTerminalState aborts an UpdateLocked mutation when the row turned
// terminal between the unlocked read and the locked re-read.
var errTerminalState = errors.New("subscription in terminal state")

// Service is the entitlement state machine: it applies normalized
// webhook events to subscription rows and drives the role effector. It
// is the sole writer of ledger completion for the events it processes.
type Service struct {
	repos    *repository.Repositories
	effector Effector
}

// NewService creates an entitlement service from injected repositories
// and a role effector.
func NewService(repos *repository.Repositories, effector Effector) *Service {
	return &Service{repos: repos, effector: effector}
}

// ProcessPolarEvent records, transitions and completes a single Polar
// event. Every outcome, including failure, ends in exactly one ledger
// completion; only the returned error tells the worker what to log.
func (s *Service) ProcessPolarEvent(ctx context.Context, rawPayload []byte, event webhook.PolarEvent) error {
	eventType := webhook.NormalizePolarEventType(event.Type)
	log.Infof("processing polar event %s (%s)", event.ID, event.Type)

	err := s.repos.WebhookEvent.Create(&models.WebhookEvent{
		ExternalEventID: event.ID,
		Provider:        models.PaymentProviderPolar,
		EventType:       string(eventType),
		RawPayload:      string(rawPayload),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			log.Infof("duplicate polar event %s, skipping", event.ID)
			metrics.DuplicateDeliveries.WithLabelValues(models.PaymentProviderPolar).Inc()
			return nil
		}
		return err
	}

	procErr := s.applyPolarEvent(ctx, event.ID, eventType, event.Data.ID)
	s.complete(models.PaymentProviderPolar, event.ID, procErr)
	return procErr
}

func (s *Service) applyPolarEvent(ctx context.Context, eventID string, eventType webhook.EventType, subscriptionID string) error {
	switch eventType {
	case webhook.EventSubscriptionCreated:
		// Activation is driven by the subscription.active event.
		log.Infof("subscription created: %s", subscriptionID)
		return nil
	case webhook.EventSubscriptionActive:
		return s.transition(ctx, eventID, subscriptionID, models.SubscriptionStatusActive, effectGrant, false)
	case webhook.EventSubscriptionCanceled:
		// Access persists until period end; no revoke yet.
		return s.transition(ctx, eventID, subscriptionID, models.SubscriptionStatusCancelled, effectNone, true)
	case webhook.EventSubscriptionRevoked:
		return s.transition(ctx, eventID, subscriptionID, models.SubscriptionStatusRevoked, effectRevoke, false)
	case webhook.EventOrderPaid:
		log.Infof("order paid: %s", subscriptionID)
		return nil
	case webhook.EventOrderRefunded:
		return s.transition(ctx, eventID, subscriptionID, models.SubscriptionStatusRefunded, effectRevoke, false)
	default:
		log.Warnf("unhandled polar event type %s for %s", eventType, subscriptionID)
		return nil
	}
}

// transition looks up the subscription, mutates it under a row lock and
// runs the required side effect. "Not found" and "already terminal" are
// benign no-ops: the event may concern an entity this system never
// tracked, or a re-delivery after the subscription ended.
func (s *Service) transition(ctx context.Context, eventID, externalSubscriptionID, newStatus string, effect sideEffect, cancelAtPeriodEnd bool) error {
	sub, err := s.repos.Subscription.GetByExternalID(models.PaymentProviderPolar, externalSubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("subscription not found for %s event: %s", newStatus, externalSubscriptionID)
			metrics.NoopTransitions.WithLabelValues("not_found").Inc()
			return nil
		}
		return err
	}
	if sub.IsTerminal() {
		log.Infof("subscription %s already %s, ignoring %s event", externalSubscriptionID, sub.Status, newStatus)
		metrics.NoopTransitions.WithLabelValues("terminal").Inc()
		return nil
	}

	if err := s.repos.WebhookEvent.AttachSubscription(eventID, sub.ID); err != nil {
		log.Warnf("failed to attach subscription %d to event %s: %v", sub.ID, eventID, err)
	}

	if _, err := s.repos.Subscription.UpdateLocked(sub.ID, func(locked *models.Subscription) error {
		if locked.IsTerminal() {
			return errTerminalState
		}
		locked.Status = newStatus
		if cancelAtPeriodEnd {
			locked.CancelAtPeriodEnd = true
		}
		return nil
	}); err != nil {
		if errors.Is(err, errTerminalState) {
			metrics.NoopTransitions.WithLabelValues("terminal").Inc()
			return nil
		}
		return err
	}

	return s.runEffect(ctx, effect, sub)
}

// ProcessSepayTransaction records a bank transfer, resolves its
// reference code to a purchase and creates the subscription. Resolution
// failures are a merchant reconciliation problem, not a transient
// fault: the ledger entry completes and nothing is retried.
func (s *Service) ProcessSepayTransaction(ctx context.Context, rawPayload []byte, txn webhook.SepayTransaction) error {
	eventID := txn.ExternalEventID()
	log.Infof("processing sepay transaction %s", eventID)

	err := s.repos.WebhookEvent.Create(&models.WebhookEvent{
		ExternalEventID: eventID,
		Provider:        models.PaymentProviderSepay,
		EventType:       string(webhook.EventPaymentIn),
		RawPayload:      string(rawPayload),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			log.Infof("duplicate sepay transaction %s, skipping", eventID)
			metrics.DuplicateDeliveries.WithLabelValues(models.PaymentProviderSepay).Inc()
			return nil
		}
		return err
	}

	procErr := s.applySepayPayment(ctx, eventID, txn)
	s.complete(models.PaymentProviderSepay, eventID, procErr)
	return procErr
}

func (s *Service) applySepayPayment(ctx context.Context, eventID string, txn webhook.SepayTransaction) error {
	ref, ok := webhook.ParseReferenceCode(txn.ReferenceCode)
	if !ok {
		log.Warnf("could not parse reference code: %q", txn.ReferenceCode)
		return nil
	}

	paidRole, err := s.repos.PaidRole.GetActiveByGuildAndRole(ref.GuildID, ref.RoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("paid role not found for guild %s, role %s", ref.GuildID, ref.RoleID)
			return nil
		}
		return err
	}

	if txn.TransferAmount < paidRole.PriceUsd {
		return fmt.Errorf("insufficient payment: received %.2f, expected %.2f", txn.TransferAmount, paidRole.PriceUsd)
	}

	member, err := s.repos.Member.GetOrCreate(ref.UserID, paidRole.GuildID, "")
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"gateway":         txn.Gateway,
		"transactionDate": txn.TransactionDate,
		"transferAmount":  txn.TransferAmount,
		"referenceCode":   txn.ReferenceCode,
	})
	if err != nil {
		return err
	}

	sub := &models.Subscription{
		MemberID:               member.ID,
		PaidRoleID:             paidRole.ID,
		Provider:               models.PaymentProviderSepay,
		ExternalSubscriptionID: eventID,
		Status:                 models.SubscriptionStatusActive,
		MetadataJSON:           string(metadata),
	}
	if err := s.repos.Subscription.Create(sub); err != nil {
		return err
	}
	if err := s.repos.WebhookEvent.AttachSubscription(eventID, sub.ID); err != nil {
		log.Warnf("failed to attach subscription %d to event %s: %v", sub.ID, eventID, err)
	}

	if paidRole.Guild == nil {
		return fmt.Errorf("paid role %d has no guild loaded", paidRole.ID)
	}
	return s.grant(ctx, paidRole.Guild.GuildID, member.UserID, paidRole.RoleID)
}

// runEffect resolves the relations loaded on the subscription into an
// effector call. Effector failures are reported, not retried: the
// ledger row keeps the error for operator reconciliation.
func (s *Service) runEffect(ctx context.Context, effect sideEffect, sub *models.Subscription) error {
	if effect == effectNone {
		return nil
	}
	if sub.Member == nil || sub.PaidRole == nil || sub.PaidRole.Guild == nil {
		return fmt.Errorf("subscription %d missing relations for side effect", sub.ID)
	}

	guildID := sub.PaidRole.Guild.GuildID
	userID := sub.Member.UserID
	roleID := sub.PaidRole.RoleID

	if effect == effectGrant {
		return s.grant(ctx, guildID, userID, roleID)
	}
	return s.revoke(ctx, guildID, userID, roleID)
}

func (s *Service) grant(ctx context.Context, guildID, userID, roleID string) error {
	if err := s.effector.Grant(ctx, guildID, userID, roleID); err != nil {
		metrics.EffectorCalls.WithLabelValues("grant", "error").Inc()
		return fmt.Errorf("grant role %s to user %s: %w", roleID, userID, err)
	}
	metrics.EffectorCalls.WithLabelValues("grant", "ok").Inc()
	log.Infof("granted role %s to user %s in guild %s", roleID, userID, guildID)
	return nil
}

func (s *Service) revoke(ctx context.Context, guildID, userID, roleID string) error {
	if err := s.effector.Revoke(ctx, guildID, userID, roleID); err != nil {
		metrics.EffectorCalls.WithLabelValues("revoke", "error").Inc()
		return fmt.Errorf("revoke role %s from user %s: %w", roleID, userID, err)
	}
	metrics.EffectorCalls.WithLabelValues("revoke", "ok").Inc()
	log.Infof("revoked role %s from user %s in guild %s", roleID, userID, guildID)
	return nil
}

// complete is the single place ledger completion happens for an event.
func (s *Service) complete(provider, eventID string, procErr error) {
	errMsg := ""
	if procErr != nil {
		errMsg = procErr.Error()
		metrics.EventsFailed.WithLabelValues(provider).Inc()
	} else {
		metrics.EventsProcessed.WithLabelValues(provider).Inc()
	}
	if err := s.repos.WebhookEvent.Complete(eventID, errMsg); err != nil {
		log.Errorf("failed to complete ledger entry %s: %v", eventID, err)
	}
}
