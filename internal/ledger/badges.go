package ledger

type BadgeID string

const (
	BadgeFirstSession    BadgeID = "first_session"
	BadgeTenSessions     BadgeID = "ten_sessions"
	BadgeFiftySessions   BadgeID = "fifty_sessions"
	BadgeHundredSessions BadgeID = "hundred_sessions"
	BadgeDailyGoal       BadgeID = "daily_goal"
	BadgeStreak3         BadgeID = "streak_3"
	BadgeStreak7         BadgeID = "streak_7"
)

type Badge struct {
	ID    BadgeID `json:"id"`
	Title string  `json:"title"`
}

type badgeRule struct {
	badge Badge
	earn  func(lifetime, today, goal, streak int) bool
}

var badgeRules = []badgeRule{
	{Badge{BadgeFirstSession, "First focus session"}, func(n, _, _, _ int) bool { return n >= 1 }},
	{Badge{BadgeTenSessions, "10 sessions"}, func(n, _, _, _ int) bool { return n >= 10 }},
	{Badge{BadgeFiftySessions, "50 sessions"}, func(n, _, _, _ int) bool { return n >= 50 }},
	{Badge{BadgeHundredSessions, "100 sessions"}, func(n, _, _, _ int) bool { return n >= 100 }},
	{Badge{BadgeDailyGoal, "Daily goal reached"}, func(_, today, goal, _ int) bool { return goal > 0 && today >= goal }},
	{Badge{BadgeStreak3, "3-day streak"}, func(_, _, _, streak int) bool { return streak >= 3 }},
	{Badge{BadgeStreak7, "7-day streak"}, func(_, _, _, streak int) bool { return streak >= 7 }},
}

// Achievements returns the earned badges in a fixed order.
func Achievements(lifetime, today, dailyGoal, streakDays int) []Badge {
	out := make([]Badge, 0, len(badgeRules))
	for _, rule := range badgeRules {
		if rule.earn(lifetime, today, dailyGoal, streakDays) {
			out = append(out, rule.badge)
		}
	}
	return out
}

// AllBadges lists every badge, earned or not.
func AllBadges() []Badge {
	out := make([]Badge, 0, len(badgeRules))
	for _, rule := range badgeRules {
		out = append(out, rule.badge)
	}
	return out
}
