package dashboard

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/eduquery-api/internal/render"
)

// SummaryItem is one labelled figure shown above a panel table.
type SummaryItem struct {
	Label string
	Value string
}

// AnalyticsSection is one rendered analytics panel.
type AnalyticsSection struct {
	Key      string
	Title    string
	Panel    render.Panel
	Summary  []SummaryItem
	CacheHit bool
}

type sectionDef struct {
	key    string
	title  string
	limit  int
	footer func(render.Truncation) string
	admin  bool
}

var analyticsSections = []sectionDef{
	{key: "schools-by-zone", title: "Schools by Zone", limit: -1},
	{key: "schools-subject-count", title: "Subject Count per School", limit: render.SubjectCountLimit, footer: render.Truncation.SchoolsFooter},
	{key: "above-average-subjects", title: "Above-Average Subject Offerings", limit: render.AboveAverageLimit, footer: render.Truncation.SchoolsFooter},
	{key: "cca-participation", title: "CCA Participation", limit: -1},
	{key: "data-completeness", title: "Data Completeness", limit: render.CompletenessLimit, footer: render.Truncation.SchoolsFooter},
	{key: "zone-comparison", title: "Zone Comparison", limit: -1},
	{key: "popular", title: "Popular Searches", limit: -1, admin: true},
	{key: "logs", title: "Activity Logs", limit: render.ActivityLogLimit, footer: render.Truncation.ActivitiesFooter, admin: true},
}

func (h *Handler) analytics(c *fiber.Ctx) error {
	session := sessionFrom(c)

	defs := make([]sectionDef, 0, len(analyticsSections))
	for _, def := range analyticsSections {
		if def.admin && !session.Admin() {
			continue
		}
		defs = append(defs, def)
	}

	sections := make([]AnalyticsSection, len(defs))
	group, ctx := errgroup.WithContext(h.callContext(c))
	for i, def := range defs {
		i, def := i, def
		group.Go(func() error {
			section, err := h.loadSection(ctx, session, def)
			if err != nil {
				return err
			}
			sections[i] = section
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		if handled, resp := h.interrupt(c, err); handled {
			return resp
		}
		return err
	}

	data := fiber.Map{
		"Title":    "Analytics - EduQuery",
		"User":     session.User,
		"Admin":    session.Admin(),
		"Sections": sections,
	}
	return c.Render("analytics", data, layout)
}

// loadSection renders one panel. Only session failures are returned; other failures become an error panel.
func (h *Handler) loadSection(ctx context.Context, session Session, def sectionDef) (AnalyticsSection, error) {
	section := AnalyticsSection{Key: def.key, Title: def.title}

	var (
		records []render.Record
		summary render.Record
		err     error
	)
	switch def.key {
	case "popular":
		records, err = h.client.PopularSearches(ctx, session)
	case "logs":
		records, err = h.client.ActivityLogs(ctx, session)
	default:
		var panel AnalyticsPanel
		panel, err = h.client.Analytics(ctx, session, def.key)
		records, summary, section.CacheHit = panel.Records, panel.Summary, panel.CacheHit
	}
	if err != nil {
		if isSessionFailure(err) {
			return section, err
		}
		h.logger.Warn().Err(err).Str("panel", def.key).Msg("failed to load analytics panel")
		section.Panel = render.ErrorPanel(def.title, userMessage(err, "Admin privileges required to view this panel"))
		return section, nil
	}

	truncation := render.Truncate(def.limit, len(records))
	table := render.BuildTable(render.Head(records, truncation.Shown), render.Options{Placeholder: render.PlaceholderDash})
	section.Panel = render.TablePanel(def.title, table)
	if section.Panel.State == render.StateEmpty {
		section.Panel = render.EmptyPanel(def.title, "No data available")
	}
	if def.footer != nil {
		section.Panel.Footer = def.footer(truncation)
	}
	for _, field := range summary {
		section.Summary = append(section.Summary, SummaryItem{Label: render.Label(field.Key), Value: render.FormatValue(field.Value)})
	}
	return section, nil
}

func isSessionFailure(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrUnauthorized)
}
