package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vea-connect/messaging/internal/models"
	"gorm.io/datatypes"
)

type mockTemplateRepo struct {
	rows []models.Template
	err  error
}

func (m *mockTemplateRepo) ListActive(_ context.Context, category, language string) ([]models.Template, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Template
	for _, r := range m.rows {
		if r.Category == category && (language == "" || r.Language == language) && r.IsActive {
			out = append(out, r)
		}
	}
	// Mirror the repo contract: most recently updated first.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].UpdatedAt.After(out[i].UpdatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func tpl(name, category string, updated time.Time, body string, params ...string) models.Template {
	raw := []byte("[]")
	if len(params) > 0 {
		raw = []byte(`["` + params[0] + `"`)
		for _, p := range params[1:] {
			raw = append(raw, []byte(`,"`+p+`"`)...)
		}
		raw = append(raw, ']')
	}
	return models.Template{
		ID:             name,
		Name:           name,
		Language:       "es",
		Category:       category,
		Body:           body,
		ParameterNames: datatypes.JSON(raw),
		IsActive:       true,
		UpdatedAt:      updated,
	}
}

func TestResolveRendersSlots(t *testing.T) {
	repo := &mockTemplateRepo{rows: []models.Template{
		tpl("donations_info", "donations", time.Now(), "Dona a {{bank_name}}, cuenta {{account_number}}", "bank_name", "account_number"),
	}}
	svc := NewTemplateService(repo, NewStaticLookup(nil))

	got, err := svc.Resolve(context.Background(), models.IntentDonations, "es", map[string]string{
		"bank_name":      "Banco Azteca",
		"account_number": "1234",
	})
	require.NoError(t, err)
	require.Equal(t, "donations_info", got.Name)
	require.Equal(t, "Dona a Banco Azteca, cuenta 1234", got.Text)
}

func TestResolveFillsFromLookup(t *testing.T) {
	repo := &mockTemplateRepo{rows: []models.Template{
		tpl("donations_info", "donations", time.Now(), "Cuenta: {{account_number}}", "account_number"),
	}}
	lookup := NewStaticLookup(map[string]map[string]string{
		"donations": {"account_number": "9876"},
	})
	svc := NewTemplateService(repo, lookup)

	got, err := svc.Resolve(context.Background(), models.IntentDonations, "es", nil)
	require.NoError(t, err)
	require.Equal(t, "Cuenta: 9876", got.Text)
}

func TestResolveMissingParameterIsNotFound(t *testing.T) {
	repo := &mockTemplateRepo{rows: []models.Template{
		tpl("donations_info", "donations", time.Now(), "Cuenta: {{account_number}}", "account_number"),
	}}
	svc := NewTemplateService(repo, NewStaticLookup(nil))

	_, err := svc.Resolve(context.Background(), models.IntentDonations, "es", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestResolveNoTemplatesIsNotFound(t *testing.T) {
	svc := NewTemplateService(&mockTemplateRepo{}, NewStaticLookup(nil))

	_, err := svc.Resolve(context.Background(), models.IntentEvents, "es", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestResolveGeneralIntentSkipsTemplates(t *testing.T) {
	svc := NewTemplateService(&mockTemplateRepo{}, NewStaticLookup(nil))

	_, err := svc.Resolve(context.Background(), models.IntentGeneral, "es", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestResolveDeterministicSelection(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockTemplateRepo{rows: []models.Template{
		tpl("generic", "events", base.Add(2*time.Hour), "Eventos esta semana"),
		tpl("specific", "events", base, "Evento {{event_name}} el {{event_date}}", "event_name", "event_date"),
	}}
	svc := NewTemplateService(repo, NewStaticLookup(nil))

	slots := map[string]string{"event_name": "Jóvenes", "event_date": "viernes"}
	for i := 0; i < 5; i++ {
		got, err := svc.Resolve(context.Background(), models.IntentEvents, "es", slots)
		require.NoError(t, err)
		// Most specific (most parameters) wins over most recent.
		require.Equal(t, "specific", got.Name)
	}
}

func TestResolveRecencyBreaksTies(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockTemplateRepo{rows: []models.Template{
		tpl("older", "events", base, "Agenda vieja"),
		tpl("newer", "events", base.Add(time.Hour), "Agenda nueva"),
	}}
	svc := NewTemplateService(repo, NewStaticLookup(nil))

	got, err := svc.Resolve(context.Background(), models.IntentEvents, "es", nil)
	require.NoError(t, err)
	require.Equal(t, "newer", got.Name)
}

func TestResolveRepoErrorSurfaces(t *testing.T) {
	svc := NewTemplateService(&mockTemplateRepo{err: errors.New("db down")}, NewStaticLookup(nil))

	_, err := svc.Resolve(context.Background(), models.IntentEvents, "es", nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTemplateNotFound)
}
