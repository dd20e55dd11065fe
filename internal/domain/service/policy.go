package service

import (
	"fmt"
	"time"
)

// AckPolicy decides which tier notifications an acknowledged participant still receives.
// Participants that never acknowledged always receive every tier, and everyone receives
// the final notice, so a policy is only consulted for acknowledged participants.
type AckPolicy interface {
	Name() string
	// Admit reports whether a participant who acknowledged at ackAt gets the tier notice.
	Admit(tier int, tiers []int, ackAt, scheduledAt time.Time) bool
	// Suppressed lists the tiers an acknowledgment made with minutesRemaining left silences.
	Suppressed(tiers []int, minutesRemaining int) []int
}

const (
	PolicyLastTier = "last-tier"
	PolicyNextTier = "next-tier"
)

// NewAckPolicy returns the policy registered under name.
func NewAckPolicy(name string) (AckPolicy, error) {
	switch name {
	case PolicyLastTier, "":
		return lastTierPolicy{}, nil
	case PolicyNextTier:
		return nextTierPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown acknowledgment policy %q", name)
}

// lastTierPolicy silences every tier except the smallest one.
type lastTierPolicy struct{}

func (lastTierPolicy) Name() string { return PolicyLastTier }

func (lastTierPolicy) Admit(tier int, tiers []int, _, _ time.Time) bool {
	return len(tiers) > 0 && tier == tiers[len(tiers)-1]
}

func (lastTierPolicy) Suppressed(tiers []int, minutesRemaining int) []int {
	var out []int
	for i, t := range tiers {
		if i == len(tiers)-1 {
			break
		}
		if t <= minutesRemaining {
			out = append(out, t)
		}
	}
	return out
}

// nextTierPolicy silences only the first tier that fires after the acknowledgment.
type nextTierPolicy struct{}

func (nextTierPolicy) Name() string { return PolicyNextTier }

func (nextTierPolicy) Admit(tier int, tiers []int, ackAt, scheduledAt time.Time) bool {
	for _, t := range tiers {
		at := scheduledAt.Add(-time.Duration(t) * time.Minute)
		if !ackAt.After(at) {
			return t != tier
		}
	}
	return true
}

func (nextTierPolicy) Suppressed(tiers []int, minutesRemaining int) []int {
	for _, t := range tiers {
		if t <= minutesRemaining {
			return []int{t}
		}
	}
	return nil
}
