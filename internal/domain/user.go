package domain

import "strings"

// UserPlan enumerates billing plans, ordered from cheapest to most capable.
type UserPlan string

const (
	UserPlanFree   UserPlan = "FREE"
	UserPlanIndie  UserPlan = "INDIE"
	UserPlanPro    UserPlan = "PRO"
	UserPlanStudio UserPlan = "STUDIO"
)

var planRank = map[UserPlan]int{
	UserPlanFree:   0,
	UserPlanIndie:  1,
	UserPlanPro:    2,
	UserPlanStudio: 3,
}

// ParseUserPlan normalizes s. Unknown or empty plans fall back to FREE.
func ParseUserPlan(s string) UserPlan {
	p := UserPlan(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := planRank[p]; ok {
		return p
	}
	return UserPlanFree
}

// Includes reports whether plan p grants everything min grants.
func (p UserPlan) Includes(min UserPlan) bool {
	return planRank[ParseUserPlan(string(p))] >= planRank[ParseUserPlan(string(min))]
}

// Identity is what the external auth collaborator tells us about a caller.
type Identity struct {
	UserID string
	Plan   UserPlan
	Locale string
}
