package agent

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeHistory struct {
	summary *PurchaseSummary
	err     error
}

func (f *fakeHistory) PurchaseSummary(customerID uuid.UUID) (*PurchaseSummary, error) {
	return f.summary, f.err
}

func hasTag(profile CustomerProfile, tag string) bool {
	for _, t := range profile.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func TestClassifyNilCustomerIsLead(t *testing.T) {
	c := NewProfileClassifier(&fakeHistory{})

	profile := c.Classify(nil)
	if profile.Type != ProfileLead {
		t.Errorf("Classify(nil) type = %s, expected lead", profile.Type)
	}
	if !hasTag(profile, "sem_cadastro") {
		t.Errorf("Classify(nil) tags = %v, expected sem_cadastro", profile.Tags)
	}
}

func TestClassifyLookupErrorDegradesToLead(t *testing.T) {
	c := NewProfileClassifier(&fakeHistory{err: errors.New("connection refused")})
	id := uuid.New()

	profile := c.Classify(&id)
	if profile.Type != ProfileLead {
		t.Errorf("type = %s, expected lead on lookup error", profile.Type)
	}
	if !hasTag(profile, "erro_perfil") {
		t.Errorf("tags = %v, expected erro_perfil", profile.Tags)
	}
}

func TestClassifyThresholds(t *testing.T) {
	recent := time.Now().Add(-10 * 24 * time.Hour)
	old := time.Now().Add(-200 * 24 * time.Hour)

	tests := []struct {
		name     string
		summary  PurchaseSummary
		wantType string
	}{
		{"no purchases", PurchaseSummary{OrderCount: 0}, ProfileNovo},
		{"few purchases", PurchaseSummary{OrderCount: 3, AverageTicket: 800, LastOrderAt: &recent}, ProfileRegular},
		{"many purchases low ticket", PurchaseSummary{OrderCount: 15, AverageTicket: 900, LastOrderAt: &recent}, ProfileRegular},
		{"few purchases high ticket", PurchaseSummary{OrderCount: 4, AverageTicket: 9000, LastOrderAt: &recent}, ProfileRegular},
		{"vip", PurchaseSummary{OrderCount: 11, AverageTicket: 5001, LastOrderAt: &recent}, ProfileVIP},
		{"boundary count not vip", PurchaseSummary{OrderCount: 10, AverageTicket: 9000, LastOrderAt: &recent}, ProfileRegular},
		{"boundary ticket not vip", PurchaseSummary{OrderCount: 20, AverageTicket: 5000, LastOrderAt: &old}, ProfileRegular},
	}

	for _, test := range tests {
		summary := test.summary
		c := NewProfileClassifier(&fakeHistory{summary: &summary})
		id := uuid.New()

		profile := c.Classify(&id)
		if profile.Type != test.wantType {
			t.Errorf("%s: type = %s, expected %s", test.name, profile.Type, test.wantType)
		}
	}
}

func TestClassifyAdditiveTags(t *testing.T) {
	recent := time.Now().Add(-5 * 24 * time.Hour)
	summary := PurchaseSummary{
		CustomerName:  "Hospital Santa Clara",
		OrderCount:    12,
		AverageTicket: 7500,
		LastOrderAt:   &recent,
	}
	c := NewProfileClassifier(&fakeHistory{summary: &summary})
	id := uuid.New()

	profile := c.Classify(&id)
	if profile.Type != ProfileVIP {
		t.Fatalf("type = %s, expected vip", profile.Type)
	}
	for _, tag := range []string{"vip", "ticket_alto", "frequente", "ativo_recente"} {
		if !hasTag(profile, tag) {
			t.Errorf("missing tag %s in %v", tag, profile.Tags)
		}
	}
	if profile.Name != "Hospital Santa Clara" {
		t.Errorf("name = %q", profile.Name)
	}
}

func TestClassifyInactiveTag(t *testing.T) {
	old := time.Now().Add(-365 * 24 * time.Hour)
	summary := PurchaseSummary{OrderCount: 2, AverageTicket: 400, LastOrderAt: &old}
	c := NewProfileClassifier(&fakeHistory{summary: &summary})
	id := uuid.New()

	profile := c.Classify(&id)
	if !hasTag(profile, "inativo") {
		t.Errorf("tags = %v, expected inativo after a year without orders", profile.Tags)
	}
	if hasTag(profile, "ativo_recente") {
		t.Errorf("tags = %v, ativo_recente should not coexist with inativo", profile.Tags)
	}
}

func TestClassifyNeverOrderedHasNoRecencyTags(t *testing.T) {
	summary := PurchaseSummary{OrderCount: 0}
	c := NewProfileClassifier(&fakeHistory{summary: &summary})
	id := uuid.New()

	profile := c.Classify(&id)
	if profile.DaysSinceOrder != daysNever {
		t.Errorf("DaysSinceOrder = %d, expected %d", profile.DaysSinceOrder, daysNever)
	}
	if hasTag(profile, "inativo") || hasTag(profile, "ativo_recente") {
		t.Errorf("recency tags on a customer that never ordered: %v", profile.Tags)
	}
}
