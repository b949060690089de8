package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// LeadQualification is the three-tier sales-readiness label.
type LeadQualification string

const (
	LeadCold LeadQualification = "Cold"
	LeadWarm LeadQualification = "Warm"
	LeadHot  LeadQualification = "Hot"
)

// Rank orders labels so callers can compare Cold < Warm < Hot.
func (l LeadQualification) Rank() int {
	switch l {
	case LeadHot:
		return 2
	case LeadWarm:
		return 1
	default:
		return 0
	}
}

// ContactInfo is the normalized contact block stored with a summary.
type ContactInfo struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

// Normalize trims all fields and lowercases the email.
func (c ContactInfo) Normalize() ContactInfo {
	return ContactInfo{
		Name:        strings.TrimSpace(c.Name),
		Email:       strings.ToLower(strings.TrimSpace(c.Email)),
		Phone:       strings.TrimSpace(c.Phone),
		CompanyName: strings.TrimSpace(c.CompanyName),
	}
}

// Value serializes the contact block for the JSONB column.
func (c ContactInfo) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan deserializes the contact block from the JSONB column.
func (c *ContactInfo) Scan(value interface{}) error {
	if value == nil {
		*c = ContactInfo{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan contact info: expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, c)
}

// ChatSummary is the durable CRM record distilled from a finished
// session. Rows are append-only; a corrected summary is a new record.
type ChatSummary struct {
	ID                  string            `json:"id" db:"id"`
	InteractionDate     time.Time         `json:"interaction_date" db:"interaction_date"`
	Contact             ContactInfo       `json:"contact_info" db:"contact_info"`
	ContactName         string            `json:"contact_name" db:"contact_name"`
	ContactEmail        string            `json:"contact_email" db:"contact_email"`
	ContactPhone        string            `json:"contact_phone" db:"contact_phone"`
	ContactCompany      string            `json:"contact_company" db:"contact_company"`
	ChatSummary         string            `json:"chat_summary" db:"chat_summary"`
	ServicesDiscussed   pq.StringArray    `json:"services_discussed" db:"services_discussed"`
	KeyPainPoints       pq.StringArray    `json:"key_pain_points" db:"key_pain_points"`
	CallToActionOffered bool              `json:"call_to_action_offered" db:"call_to_action_offered"`
	NextStep            string            `json:"next_step" db:"next_step"`
	LeadScore           int               `json:"lead_score" db:"lead_score"`
	LeadQualification   LeadQualification `json:"lead_qualification" db:"lead_qualification"`
	CreatedAt           time.Time         `json:"created_at" db:"created_at"`
}
