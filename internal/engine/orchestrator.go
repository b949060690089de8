package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daveenci-ai/leadchat-backend/internal/models"
	"github.com/daveenci-ai/leadchat-backend/internal/repository"
)

// Orchestrator composes the engine per inbound message: extraction →
// stage update → generation, and on finalize: qualification →
// persistence handoff. All per-session mutual exclusion lives in the
// context store.
type Orchestrator struct {
	store     *ContextStore
	extractor *Extractor
	stages    StageController
	generator *Generator
	qualifier *Qualifier
	summaries repository.SummaryRepository
	log       *logrus.Logger
}

// NewOrchestrator wires the engine components together.
func NewOrchestrator(store *ContextStore, extractor *Extractor, generator *Generator, qualifier *Qualifier, summaries repository.SummaryRepository, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		extractor: extractor,
		generator: generator,
		qualifier: qualifier,
		summaries: summaries,
		log:       log,
	}
}

// PostMessage processes one user turn and returns the assistant reply
// together with the stage the turn left the conversation in. The session
// is created on its first message. Turns for the same session are
// applied strictly in arrival order.
func (o *Orchestrator) PostMessage(ctx context.Context, sessionID, text string) (*models.LLMResponse, models.Stage, error) {
	if !o.store.Has(sessionID) {
		if _, err := o.store.Create(sessionID); err != nil && !errors.Is(err, ErrDuplicateSession) {
			return nil, "", err
		}
	}

	var (
		resp  *models.LLMResponse
		stage models.Stage
	)
	err := o.store.Update(sessionID, func(c *models.LLMContext) error {
		ext := o.extractor.Extract(c, text)

		if ext.EmailFound {
			o.recordPriorVisits(ctx, c)
		}

		if next := o.stages.NextForTurn(c, ext); next != c.Stage {
			if err := o.stages.Advance(c, next); err != nil {
				return err
			}
		}

		// Offer the call to action once contact details surface during
		// qualification; booking is entered only on that first offer.
		if c.Stage == models.StageQualification && c.UserInfo.HasContact() && !c.CallToActionOffered {
			c.CallToActionOffered = true
			if err := o.stages.Advance(c, models.StageBooking); err != nil {
				return err
			}
		}

		resp = o.generator.Generate(ctx, c, text)

		if len(ext.Conflicts) > 0 {
			resp.Reasoning = joinNonEmpty(resp.Reasoning, strings.Join(ext.Conflicts, "; "))
		}

		c.Append(
			models.NewMessage(models.SenderUser, text),
			models.NewMessage(models.SenderBot, resp.Content),
		)
		stage = c.Stage
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return resp, stage, nil
}

// FinalizeSession closes a session, distills it into a ChatSummary and
// hands the record to persistence. On a save failure the computed
// summary is still returned alongside the error; retrying the save is
// safe because summaries are immutable.
func (o *Orchestrator) FinalizeSession(ctx context.Context, sessionID string) (*models.ChatSummary, error) {
	var summary *models.ChatSummary
	err := o.store.Update(sessionID, func(c *models.LLMContext) error {
		// Summarize before closing so next_step reflects the stage the
		// conversation actually ended in.
		summary = o.qualifier.Summarize(c)
		if c.Stage != models.StageAbandoned {
			if err := o.stages.Advance(c, models.StageClosed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := o.store.Close(sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return summary, err
	}

	id, err := o.summaries.Save(ctx, summary)
	if err != nil {
		o.log.WithField("session_id", sessionID).WithError(err).Error("failed to persist chat summary")
		return summary, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	summary.ID = id

	o.log.WithFields(logrus.Fields{
		"session_id":    sessionID,
		"summary_id":    id,
		"qualification": summary.LeadQualification,
	}).Info("session finalized")

	return summary, nil
}

// GetContext returns a read-only snapshot of a session's context.
func (o *Orchestrator) GetContext(sessionID string) (*models.LLMContext, error) {
	return o.store.Snapshot(sessionID)
}

// SweepAbandoned marks sessions idle past maxIdle as abandoned,
// summarizes them as re-engagement candidates and releases their
// contexts. Returns the number of sessions swept.
func (o *Orchestrator) SweepAbandoned(ctx context.Context, maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	swept := 0

	for _, id := range o.store.IdleSince(cutoff) {
		var summary *models.ChatSummary
		err := o.store.Update(id, func(c *models.LLMContext) error {
			if err := o.stages.Advance(c, models.StageAbandoned); err != nil {
				return err
			}
			summary = o.qualifier.Summarize(c)
			return nil
		})
		if err != nil {
			continue
		}

		if err := o.store.Close(id); err != nil {
			continue
		}

		if _, err := o.summaries.Save(ctx, summary); err != nil {
			o.log.WithField("session_id", id).WithError(err).Error("failed to persist abandoned-session summary")
		}
		swept++
	}

	if swept > 0 {
		o.log.WithField("count", swept).Info("abandoned sessions swept")
	}
	return swept
}

// recordPriorVisits asks the summary store how often this contact has
// chatted before. Lookup failure is non-fatal.
func (o *Orchestrator) recordPriorVisits(ctx context.Context, c *models.LLMContext) {
	lookupCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, err := o.summaries.CountPriorVisits(lookupCtx, c.UserInfo.Email)
	if err != nil {
		o.log.WithField("session_id", c.SessionID).WithError(err).Warn("prior-visit lookup failed")
		return
	}
	c.UserInfo.PreviousVisits = &count
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "; ")
}
