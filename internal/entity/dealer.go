package entity

type DealerProfile struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"` // WhatsApp number, digits only
}

// Automation holds the dealer's opt-in switches. Every flag defaults to off.
type Automation struct {
	AutoReply bool `json:"autoReply"`
}

type DealerPreference struct {
	DealerProfileID string     `json:"dealer_profile_id"`
	Automation      Automation `json:"automation"`
}
