package engine

import (
	"fmt"

	"github.com/daveenci-ai/leadchat-backend/internal/models"
)

// stageRank orders the forward path of the funnel. Abandoned sits
// outside the ordering; it is a terminal side exit.
var stageRank = map[models.Stage]int{
	models.StageGreeting:      0,
	models.StageDiscovery:     1,
	models.StageQualification: 2,
	models.StageBooking:       3,
	models.StageClosed:        4,
}

// StageController enforces the conversation stage machine:
// greeting → discovery → qualification → booking → closed, with a
// single allowed qualification → discovery revisit and a terminal
// abandoned state reachable from any non-closed stage.
type StageController struct{}

// Validate reports whether the context may move to the target stage.
// The context is not modified.
func (StageController) Validate(c *models.LLMContext, to models.Stage) error {
	from := c.Stage
	if from == to {
		return nil
	}

	switch from {
	case models.StageClosed, models.StageAbandoned:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStageTransition, from, to)
	}

	if to == models.StageAbandoned {
		return nil
	}

	if to == models.StageBooking && !c.CallToActionOffered {
		return fmt.Errorf("%w: booking requires an offered call to action", ErrInvalidStageTransition)
	}

	// The one permitted regression: qualification back to discovery,
	// at most once per session.
	if from == models.StageQualification && to == models.StageDiscovery {
		if c.DiscoveryRevisited {
			return fmt.Errorf("%w: discovery already revisited", ErrInvalidStageTransition)
		}
		return nil
	}

	if stageRank[to] < stageRank[from] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStageTransition, from, to)
	}

	return nil
}

// Advance moves the context to the target stage after validation.
func (s StageController) Advance(c *models.LLMContext, to models.Stage) error {
	if err := s.Validate(c, to); err != nil {
		return err
	}
	if c.Stage == models.StageQualification && to == models.StageDiscovery {
		c.DiscoveryRevisited = true
	}
	c.Stage = to
	return nil
}

// NextForTurn recommends the stage after a user turn, based on what the
// extractor just found. It never recommends booking, closed or
// abandoned; those are entered only through their dedicated paths.
func (s StageController) NextForTurn(c *models.LLMContext, ext Extraction) models.Stage {
	switch c.Stage {
	case models.StageGreeting:
		return models.StageDiscovery
	case models.StageDiscovery:
		signals := len(c.ServicesDiscussed) + len(c.PainPoints)
		if signals >= 2 || (signals >= 1 && c.UserInfo.HasContact()) {
			return models.StageQualification
		}
	case models.StageQualification:
		if len(ext.NewPainPoints) > 0 && !c.DiscoveryRevisited {
			return models.StageDiscovery
		}
	}
	return c.Stage
}
