package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrialExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	assert.True(t, (&Tenant{Plan: PlanTrial, TrialEndsAt: &past}).TrialExpired(now))
	assert.False(t, (&Tenant{Plan: PlanTrial, TrialEndsAt: &future}).TrialExpired(now))

	// No trial end set means the trial never lapses.
	assert.False(t, (&Tenant{Plan: PlanTrial}).TrialExpired(now))

	// Paid plans keep their TrialEndsAt from the upgrade but it no longer applies.
	assert.False(t, (&Tenant{Plan: PlanProfessional, TrialEndsAt: &past}).TrialExpired(now))
}

func TestSubscriptionExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Tenant{Plan: PlanEnterprise, SubscriptionEndsAt: &past}).SubscriptionExpired(now))
	assert.False(t, (&Tenant{Plan: PlanEnterprise, SubscriptionEndsAt: &future}).SubscriptionExpired(now))
	assert.False(t, (&Tenant{Plan: PlanEnterprise}).SubscriptionExpired(now))
}
