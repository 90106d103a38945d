package domain

import "time"

// Integration names toggled from the settings page
const (
	IntegrationZoom     = "zoom"
	IntegrationBitrix   = "bitrix24"
	IntegrationPayments = "payments"
	IntegrationChatBot  = "chatbot"
)

// KnownIntegrations список поддерживаемых интеграций
var KnownIntegrations = []string{
	IntegrationZoom,
	IntegrationBitrix,
	IntegrationPayments,
	IntegrationChatBot,
}

// IntegrationToggle is the on/off state of one external integration
type IntegrationToggle struct {
	Name      string
	Enabled   bool
	UpdatedAt time.Time
}

// IsKnownIntegration returns true if name is a supported integration
func IsKnownIntegration(name string) bool {
	for _, known := range KnownIntegrations {
		if known == name {
			return true
		}
	}
	return false
}
