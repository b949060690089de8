package engine

import (
	"fmt"
	"strings"

	"github.com/daveenci-ai/leadchat-backend/internal/models"
)

// Weights for the lead score. The call-to-action weight dominates on
// purpose: an offered booking is the strongest buy signal we see.
// Values are a starting calibration, not ground truth; tune them
// against real transcripts.
type Weights struct {
	Service      int
	PainPoint    int
	CallToAction int
	Contact      int
}

// DefaultWeights is the shipped calibration.
var DefaultWeights = Weights{
	Service:      1,
	PainPoint:    1,
	CallToAction: 4,
	Contact:      2,
}

// Qualifier distills a finished (or partial) context into a durable
// ChatSummary with a Hot/Warm/Cold label. Everything here is
// deterministic; the prose digest is templated so a summary exists even
// when generation is down.
type Qualifier struct {
	weights Weights
}

// NewQualifier creates a qualifier with the given weights.
func NewQualifier(weights Weights) *Qualifier {
	return &Qualifier{weights: weights}
}

// Score computes the raw weighted lead score persisted with each
// summary. The label rules ignore it; dashboards use it to rank leads
// within a tier.
func (q *Qualifier) Score(c *models.LLMContext) int {
	score := len(c.ServicesDiscussed)*q.weights.Service + len(c.PainPoints)*q.weights.PainPoint
	if c.CallToActionOffered {
		score += q.weights.CallToAction
	}
	if c.UserInfo.HasContact() {
		score += q.weights.Contact
	}
	return score
}

// Qualify maps a context onto the three-tier label. The rules are
// monotonic: adding a service or pain point never lowers the label.
func (q *Qualifier) Qualify(c *models.LLMContext) models.LeadQualification {
	services := len(c.ServicesDiscussed)
	pains := len(c.PainPoints)
	contact := c.UserInfo.HasContact()

	switch {
	case c.CallToActionOffered, services >= 2 && pains >= 1 && contact:
		return models.LeadHot
	case contact, services+pains >= 1:
		return models.LeadWarm
	default:
		return models.LeadCold
	}
}

// Summarize composes the CRM record for a session.
func (q *Qualifier) Summarize(c *models.LLMContext) *models.ChatSummary {
	contact := models.ContactInfo{
		Name:        c.UserInfo.Name,
		Email:       c.UserInfo.Email,
		Phone:       c.UserInfo.Phone,
		CompanyName: c.UserInfo.Company,
	}.Normalize()

	return &models.ChatSummary{
		InteractionDate:     c.UpdatedAt,
		Contact:             contact,
		ContactName:         contact.Name,
		ContactEmail:        contact.Email,
		ContactPhone:        contact.Phone,
		ContactCompany:      contact.CompanyName,
		ChatSummary:         q.digest(c, contact),
		ServicesDiscussed:   append([]string(nil), c.ServicesDiscussed...),
		KeyPainPoints:       append([]string(nil), c.PainPoints...),
		CallToActionOffered: c.CallToActionOffered,
		NextStep:            nextStep(c.Stage),
		LeadScore:           q.Score(c),
		LeadQualification:   q.Qualify(c),
	}
}

// digest is the templated prose summary.
func (q *Qualifier) digest(c *models.LLMContext, contact models.ContactInfo) string {
	var sb strings.Builder

	who := "Visitor"
	if contact.Name != "" {
		who = contact.Name
	}
	if contact.CompanyName != "" {
		who += " from " + contact.CompanyName
	}
	turns := len(c.History) / 2
	sb.WriteString(fmt.Sprintf("%s chatted for %d turn(s), ending in the %s stage.", who, turns, c.Stage))

	if len(c.ServicesDiscussed) > 0 {
		sb.WriteString(" Services discussed: " + strings.Join(c.ServicesDiscussed, ", ") + ".")
	}
	if len(c.PainPoints) > 0 {
		sb.WriteString(" Pain points raised: " + strings.Join(c.PainPoints, ", ") + ".")
	}

	switch {
	case contact.Email != "" && contact.Phone != "":
		sb.WriteString(" Contact on file: email and phone.")
	case contact.Email != "":
		sb.WriteString(" Contact on file: email.")
	case contact.Phone != "":
		sb.WriteString(" Contact on file: phone.")
	default:
		sb.WriteString(" No contact details captured.")
	}

	if c.CallToActionOffered {
		sb.WriteString(" A call to action was offered.")
	}
	if c.UserInfo.PreviousVisits != nil && *c.UserInfo.PreviousVisits > 0 {
		sb.WriteString(fmt.Sprintf(" Returning visitor (%d prior conversation(s)).", *c.UserInfo.PreviousVisits))
	}

	return sb.String()
}

// nextStep maps the final stage onto the follow-up recommendation.
func nextStep(stage models.Stage) string {
	switch stage {
	case models.StageBooking:
		return "awaiting scheduled call"
	case models.StageQualification, models.StageDiscovery:
		return "needs follow-up outreach"
	default:
		return "re-engagement candidate"
	}
}
