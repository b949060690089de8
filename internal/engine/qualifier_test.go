package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/daveenci-ai/leadchat-backend/internal/models"
)

func TestQualifier_Labels(t *testing.T) {
	q := NewQualifier(DefaultWeights)

	tests := []struct {
		name     string
		build    func(*models.LLMContext)
		expected models.LeadQualification
	}{
		{
			name:     "empty context is cold",
			build:    func(c *models.LLMContext) {},
			expected: models.LeadCold,
		},
		{
			name: "single service is warm",
			build: func(c *models.LLMContext) {
				c.ServicesDiscussed = []string{"seo"}
			},
			expected: models.LeadWarm,
		},
		{
			name: "contact alone is warm",
			build: func(c *models.LLMContext) {
				c.UserInfo.Email = "a@b.com"
			},
			expected: models.LeadWarm,
		},
		{
			name: "two services one pain point and contact is hot",
			build: func(c *models.LLMContext) {
				c.ServicesDiscussed = []string{"seo", "analytics"}
				c.PainPoints = []string{"losing leads"}
				c.UserInfo.Email = "a@b.com"
			},
			expected: models.LeadHot,
		},
		{
			name: "offered call to action is hot",
			build: func(c *models.LLMContext) {
				c.CallToActionOffered = true
			},
			expected: models.LeadHot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.NewLLMContext("s1")
			tt.build(c)
			assert.Equal(t, tt.expected, q.Qualify(c))
		})
	}
}

func TestQualifier_Score(t *testing.T) {
	c := models.NewLLMContext("s1")
	c.ServicesDiscussed = []string{"seo", "analytics"}
	c.PainPoints = []string{"losing leads"}
	c.UserInfo.Email = "a@b.com"
	c.CallToActionOffered = true

	// 2 services + 1 pain point + contact (2) + call to action (4)
	assert.Equal(t, 9, NewQualifier(DefaultWeights).Score(c))

	heavy := NewQualifier(Weights{Service: 10, PainPoint: 1, CallToAction: 4, Contact: 2})
	assert.Equal(t, 27, heavy.Score(c))
}

func TestQualifier_Monotonic(t *testing.T) {
	q := NewQualifier(DefaultWeights)

	bases := []*models.LLMContext{
		models.NewLLMContext("a"),
		{SessionID: "b", UserInfo: models.UserInfo{Email: "a@b.com"}},
		{SessionID: "c", ServicesDiscussed: []string{"seo"}, PainPoints: []string{"too slow"}},
		{SessionID: "d", ServicesDiscussed: []string{"seo", "analytics"}, UserInfo: models.UserInfo{Phone: "555"}},
	}

	for _, base := range bases {
		before := q.Qualify(base).Rank()

		withService := base.Clone()
		withService.ServicesDiscussed = append(withService.ServicesDiscussed, "web design")
		assert.GreaterOrEqual(t, q.Qualify(withService).Rank(), before)

		withPain := base.Clone()
		withPain.PainPoints = append(withPain.PainPoints, "manual work")
		assert.GreaterOrEqual(t, q.Qualify(withPain).Rank(), before)
	}
}

func TestQualifier_SummarizeComposesRecord(t *testing.T) {
	q := NewQualifier(DefaultWeights)

	c := models.NewLLMContext("s1")
	c.Stage = models.StageBooking
	c.CallToActionOffered = true
	c.ServicesDiscussed = []string{"marketing automation", "crm integration"}
	c.PainPoints = []string{"losing leads"}
	c.UserInfo = models.UserInfo{Name: " Jane ", Email: "Jane@Example.com", Company: "Acme"}
	c.History = []models.Turn{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
		{Role: models.RoleUser, Content: "need automation"},
		{Role: models.RoleAssistant, Content: "sure"},
	}
	c.UpdatedAt = time.Now()

	s := q.Summarize(c)

	assert.Equal(t, models.LeadHot, s.LeadQualification)
	assert.Equal(t, "awaiting scheduled call", s.NextStep)
	assert.Equal(t, "Jane", s.ContactName)
	assert.Equal(t, "jane@example.com", s.ContactEmail)
	assert.Equal(t, models.ContactInfo{
		Name:        "Jane",
		Email:       "jane@example.com",
		CompanyName: "Acme",
	}, s.Contact)
	// 2 services + 1 pain point + contact (2) + call to action (4)
	assert.Equal(t, 9, s.LeadScore)
	assert.Equal(t, []string{"marketing automation", "crm integration"}, []string(s.ServicesDiscussed))
	assert.Equal(t, []string{"losing leads"}, []string(s.KeyPainPoints))
	assert.True(t, s.CallToActionOffered)
	assert.Contains(t, s.ChatSummary, "Jane from Acme")
	assert.Contains(t, s.ChatSummary, "2 turn(s)")
	assert.Contains(t, s.ChatSummary, "call to action was offered")
}

func TestQualifier_NextStepMapping(t *testing.T) {
	tests := []struct {
		stage    models.Stage
		expected string
	}{
		{models.StageBooking, "awaiting scheduled call"},
		{models.StageQualification, "needs follow-up outreach"},
		{models.StageDiscovery, "needs follow-up outreach"},
		{models.StageGreeting, "re-engagement candidate"},
		{models.StageClosed, "re-engagement candidate"},
		{models.StageAbandoned, "re-engagement candidate"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, nextStep(tt.stage), "stage %s", tt.stage)
	}
}

func TestQualifier_SummaryAlwaysHasProse(t *testing.T) {
	q := NewQualifier(DefaultWeights)

	s := q.Summarize(models.NewLLMContext("s1"))

	assert.NotEmpty(t, s.ChatSummary)
	assert.Contains(t, s.ChatSummary, "No contact details captured")
	assert.Equal(t, models.LeadCold, s.LeadQualification)
}
