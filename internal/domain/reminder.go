package domain

const (
	ReminderTypeLoan       = "loan"
	ReminderTypeFertilizer = "fertilizer"
	ReminderTypeGeneral    = "general"
)

// Reminder is a scheduled due-date notification, optionally tied to
// the loan or crop that spawned it. RelatedID is a lookup key, not an
// ownership relation. Reminders are append-only in practice: the due
// check never flips IsCompleted.
type Reminder struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Date        string `json:"date"` // calendar day, YYYY-MM-DD
	Type        string `json:"type"`
	RelatedID   string `json:"relatedId,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
}
