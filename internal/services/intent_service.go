package services

import (
	"strings"

	"github.com/vea-connect/messaging/internal/models"
)

// IntentService maps raw message text to one of the closed intents,
// using the conversation's last intent to keep multi-turn flows
// coherent: a flow already in "donations" stays there unless a strong
// competing keyword appears.
type IntentService interface {
	Classify(text string, ctx *models.ConversationContext) models.Intent
}

type intentService struct {
	keywords map[models.Intent][]string
}

func NewIntentService() IntentService {
	return &intentService{keywords: defaultKeywords()}
}

// defaultKeywords covers Spanish first (the deployed audience) plus
// common English equivalents.
func defaultKeywords() map[models.Intent][]string {
	return map[models.Intent][]string{
		models.IntentDonations: {
			"donar", "donacion", "donación", "donativo", "ofrenda", "diezmo",
			"aportar", "transferencia", "cuenta", "donate", "donation", "giving",
		},
		models.IntentEvents: {
			"evento", "eventos", "actividad", "reunion", "reunión", "servicio",
			"culto", "horario", "calendario", "event", "events", "schedule",
		},
		models.IntentContact: {
			"contacto", "contactar", "telefono", "teléfono", "correo",
			"direccion", "dirección", "ubicacion", "ubicación", "pastor",
			"ministerio", "contact", "phone", "address", "email",
		},
	}
}

func (s *intentService) Classify(text string, ctx *models.ConversationContext) models.Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return models.IntentUnknown
	}

	// Fixed evaluation order keeps score ties deterministic.
	order := []models.Intent{models.IntentDonations, models.IntentEvents, models.IntentContact}

	best := models.IntentGeneral
	bestScore := 0
	for _, intent := range order {
		score := 0
		for _, w := range s.keywords[intent] {
			if strings.Contains(normalized, w) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = intent, score
		}
	}

	// No keyword evidence: stay in the current flow if there is one,
	// otherwise classification is ambiguous and lands on general.
	if bestScore == 0 {
		if ctx != nil && ctx.LastIntent != models.IntentUnknown && ctx.LastIntent != "" {
			return ctx.LastIntent
		}
		return models.IntentGeneral
	}
	return best
}
