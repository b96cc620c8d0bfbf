package models

// Intent is the coarse category of what the user wants. Closed set;
// anything the classifier cannot place lands on IntentGeneral.
type Intent string

const (
	IntentContact   Intent = "contact"
	IntentDonations Intent = "donations"
	IntentEvents    Intent = "events"
	IntentGeneral   Intent = "general"
	IntentUnknown   Intent = "unknown"
)

// Valid reports whether i is a member of the closed intent set.
func (i Intent) Valid() bool {
	switch i {
	case IntentContact, IntentDonations, IntentEvents, IntentGeneral, IntentUnknown:
		return true
	}
	return false
}
