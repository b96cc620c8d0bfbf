package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/vea-connect/messaging/internal/models"
	pgrepo "github.com/vea-connect/messaging/internal/repositories/postgres"
	"github.com/vea-connect/messaging/internal/utils"
)

// ErrTemplateNotFound means no active template could be fully rendered
// for the intent. Recoverable: the caller falls through to RAG.
var ErrTemplateNotFound = errors.New("no matching template")

// RenderedTemplate is the result of a successful template resolution.
type RenderedTemplate struct {
	Name string
	Text string
}

// TemplateService matches an intent plus slot values to a registered
// structured message template. Selection is deterministic: the most
// specific active template (most declared parameters) for the
// intent+language wins, ties broken by most-recently-updated.
type TemplateService interface {
	Resolve(ctx context.Context, intent models.Intent, language string, slots map[string]string) (*RenderedTemplate, error)
}

type templateService struct {
	templates pgrepo.TemplateRepo
	lookup    LookupService
}

func NewTemplateService(templates pgrepo.TemplateRepo, lookup LookupService) TemplateService {
	return &templateService{templates: templates, lookup: lookup}
}

func (s *templateService) Resolve(ctx context.Context, intent models.Intent, language string, slots map[string]string) (*RenderedTemplate, error) {
	const op = "TemplateService.Resolve"

	if intent == models.IntentGeneral || intent == models.IntentUnknown {
		return nil, ErrTemplateNotFound
	}

	rows, err := s.templates.ListActive(ctx, string(intent), language)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "template lookup failed", err)
	}
	if len(rows) == 0 {
		return nil, ErrTemplateNotFound
	}

	// Rows arrive most-recently-updated first; a stable scan picking
	// the highest parameter count preserves the recency tie-break.
	best := -1
	bestParams := -1
	paramsByRow := make([][]string, len(rows))
	for i, row := range rows {
		params, err := parameterNames(row)
		if err != nil {
			continue
		}
		paramsByRow[i] = params
		if len(params) > bestParams {
			best, bestParams = i, len(params)
		}
	}
	if best < 0 {
		return nil, ErrTemplateNotFound
	}

	tpl := rows[best]
	values, ok := s.fillParameters(ctx, intent, paramsByRow[best], slots)
	if !ok {
		// Missing required parameters must never produce a malformed
		// outbound message.
		return nil, ErrTemplateNotFound
	}

	return &RenderedTemplate{Name: tpl.Name, Text: render(tpl.Body, values)}, nil
}

// fillParameters sources every declared parameter from the context
// slots first, then from the data collaborator.
func (s *templateService) fillParameters(ctx context.Context, intent models.Intent, params []string, slots map[string]string) (map[string]string, bool) {
	values := make(map[string]string, len(params))
	var fetched map[string]string

	for _, p := range params {
		if v, ok := slots[p]; ok && v != "" {
			values[p] = v
			continue
		}
		if fetched == nil && s.lookup != nil {
			if m, err := s.lookup.Lookup(ctx, string(intent), p); err == nil {
				fetched = m
			} else {
				fetched = map[string]string{}
			}
		}
		if v, ok := fetched[p]; ok && v != "" {
			values[p] = v
			continue
		}
		return nil, false
	}
	return values, true
}

func parameterNames(tpl models.Template) ([]string, error) {
	if len(tpl.ParameterNames) == 0 {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal(tpl.ParameterNames, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// render substitutes {{name}} placeholders in the template body.
func render(body string, values map[string]string) string {
	out := body
	for name, val := range values {
		out = strings.ReplaceAll(out, "{{"+name+"}}", val)
	}
	return out
}
