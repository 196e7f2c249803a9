package dashboard

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduquery-api/internal/middleware"
	"github.com/noah-isme/eduquery-api/internal/render"
	"github.com/noah-isme/eduquery-api/internal/search"
)

const (
	layout        = "layouts/main"
	resultsTarget = "results"
)

var zoneOptions = []string{"NORTH", "SOUTH", "EAST", "WEST", "CENTRAL"}

var lookupTitles = map[render.View]string{
	render.ViewAll:          "Schools",
	render.ViewSubjects:     "Subjects Offered",
	render.ViewCCAs:         "CCAs",
	render.ViewProgrammes:   "MOE Programmes",
	render.ViewDistinctives: "Distinctive Programmes",
}

// Handler serves the server-rendered dashboard. Every data call goes through the API client.
type Handler struct {
	client      *Client
	generations *Generations
	logger      zerolog.Logger
	now         func() time.Time
}

// NewHandler constructs the dashboard handler.
func NewHandler(client *Client, logger zerolog.Logger) *Handler {
	return &Handler{
		client:      client,
		generations: NewGenerations(),
		logger:      logger.With().Str("component", "dashboard").Logger(),
		now:         time.Now,
	}
}

// Register attaches the dashboard pages. /login here is the page; the API login is a POST.
func (h *Handler) Register(router fiber.Router) {
	router.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/dashboard") })
	router.Get("/login", h.loginPage)
	router.Post("/session", h.login)

	dash := router.Group("/dashboard")
	dash.Get("/logout", h.logout)
	dash.Get("", h.bootstrapToken, h.requireSession, h.home)
	dash.Get("/analytics", h.requireSession, h.analytics)
	dash.Post("/search/advanced", h.requireSession, h.advancedSearch)
	dash.Post("/schools", h.requireSession, h.createSchool)
	dash.Post("/schools/:id", h.requireSession, h.updateSchool)
	dash.Post("/schools/:id/delete", h.requireSession, h.deleteSchool)
}

func (h *Handler) loginPage(c *fiber.Ctx) error {
	if _, ok := LoadSession(c, h.now()); ok {
		return c.Redirect("/dashboard")
	}
	return c.Render("login", fiber.Map{
		"Title":    "Login - EduQuery",
		"Error":    c.Query("error"),
		"Username": "",
	}, layout)
}

func (h *Handler) login(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return h.renderLogin(c, fiber.StatusBadRequest, username, "Username and password are required")
	}

	session, redirect, err := h.client.Login(h.callContext(c), username, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidLogin):
			return h.renderLogin(c, fiber.StatusUnauthorized, username, "Invalid username or password")
		case errors.Is(err, ErrTooManyRequests):
			return h.renderLogin(c, fiber.StatusTooManyRequests, username, "Too many login attempts. Please wait a minute and try again.")
		default:
			h.log(c).Error().Err(err).Msg("login call failed")
			return h.renderLogin(c, fiber.StatusBadGateway, username, userMessage(err, ""))
		}
	}

	StoreSession(c, session)
	if redirect == "" || !strings.HasPrefix(redirect, "/") {
		redirect = "/dashboard"
	}
	return c.Redirect(redirect)
}

func (h *Handler) renderLogin(c *fiber.Ctx, status int, username, message string) error {
	return c.Status(status).Render("login", fiber.Map{
		"Title":    "Login - EduQuery",
		"Error":    message,
		"Username": username,
	}, layout)
}

func (h *Handler) logout(c *fiber.Ctx) error {
	if session, ok := LoadSession(c, h.now()); ok {
		h.generations.Forget(session.Token + ":" + resultsTarget)
	}
	ClearSession(c)
	return c.Redirect("/login")
}

// bootstrapToken accepts ?token= once, stores it and strips it from the address bar.
func (h *Handler) bootstrapToken(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Next()
	}
	session, err := ParseSession(token)
	if err != nil || !session.Valid(h.now()) {
		ClearSession(c)
		return h.redirectExpired(c)
	}
	StoreSession(c, session)
	return c.Redirect("/dashboard")
}

func (h *Handler) requireSession(c *fiber.Ctx) error {
	session, ok := LoadSession(c, h.now())
	if !ok {
		if c.Cookies(SessionCookie) != "" {
			ClearSession(c)
			return h.redirectExpired(c)
		}
		return c.Redirect("/login")
	}
	c.Locals("session", session)
	return c.Next()
}

func (h *Handler) redirectExpired(c *fiber.Ctx) error {
	return c.Redirect("/login?error=" + url.QueryEscape("Session expired"))
}

func sessionFrom(c *fiber.Ctx) Session {
	session, _ := c.Locals("session").(Session)
	return session
}

func (h *Handler) home(c *fiber.Ctx) error {
	session := sessionFrom(c)
	view := render.View(c.Query("view"))
	name := strings.TrimSpace(c.Query("name"))

	data := h.pageData(c, session)
	data["View"] = string(view)
	data["Name"] = name

	if _, known := lookupTitles[view]; known {
		ticket := h.generations.Begin(session.Token+":"+resultsTarget, session.ExpiresAt)
		records, err := h.lookup(c, session, view, name)
		if err == nil {
			err = ticket.Check()
		}
		if err != nil {
			if handled, resp := h.interrupt(c, err); handled {
				return resp
			}
			data["Results"] = render.ErrorPanel(lookupTitles[view], userMessage(err, "Viewing this data requires an account"))
		} else {
			table := render.BuildTable(records, render.Options{View: view, Admin: session.Admin(), Placeholder: render.PlaceholderFor(view)})
			table.Filter = name
			data["Results"] = render.TablePanel(lookupTitles[view], table)
			if editID := c.Query("edit"); editID != "" && session.Admin() {
				if editing := editingValues(records, editID); editing != nil {
					data["Editing"] = editing
				} else if _, pending := data["Notice"]; !pending {
					data["Notice"] = &Notice{Kind: NoticeInfo, Message: "School " + editID + " is not in the current results. Search for it by name to edit it."}
				}
			}
		}
	}

	return c.Render("dashboard", data, layout)
}

func (h *Handler) lookup(c *fiber.Ctx, session Session, view render.View, name string) ([]render.Record, error) {
	if view == render.ViewAll {
		return h.client.SearchByName(h.callContext(c), session, name)
	}
	return h.client.Lookup(h.callContext(c), session, view, name)
}

func (h *Handler) advancedSearch(c *fiber.Ctx) error {
	session := sessionFrom(c)
	data := h.pageData(c, session)
	data["View"] = string(render.ViewAdvanced)

	var criteria search.Criteria
	if err := c.BodyParser(&criteria); err != nil {
		data["Notice"] = &Notice{Kind: NoticeError, Message: "Invalid search form"}
		return c.Status(fiber.StatusBadRequest).Render("dashboard", data, layout)
	}
	data["Criteria"] = criteria.Map()

	ticket := h.generations.Begin(session.Token+":"+resultsTarget, session.ExpiresAt)
	result, err := h.client.AdvancedSearch(h.callContext(c), criteria)
	if err == nil {
		err = ticket.Check()
	}
	if err != nil {
		if handled, resp := h.interrupt(c, err); handled {
			return resp
		}
		if errors.Is(err, ErrEmptyCriteria) {
			data["Notice"] = &Notice{Kind: NoticeError, Message: "Please fill at least one search field"}
			return c.Status(fiber.StatusBadRequest).Render("dashboard", data, layout)
		}
		data["Results"] = render.ErrorPanel("Advanced Search", userMessage(err, ""))
		return c.Render("dashboard", data, layout)
	}

	table := render.BuildTable(result.Records, render.Options{
		View:           render.ViewAdvanced,
		Admin:          session.Admin(),
		Placeholder:    render.PlaceholderFor(render.ViewAdvanced),
		BlankAsMissing: true,
	})
	panel := render.TablePanel("Advanced Search", table)
	if panel.State == render.StateEmpty {
		panel = render.EmptyPanel("Advanced Search", "No schools match your criteria")
	}
	data["Results"] = panel
	data["ResultCount"] = result.Count
	return c.Render("dashboard", data, layout)
}

func (h *Handler) createSchool(c *fiber.Ctx) error {
	session := sessionFrom(c)
	if !session.Admin() {
		return h.flashRedirect(c, NoticeError, "Admin privileges required to add schools", "/dashboard")
	}

	var form schoolForm
	if err := c.BodyParser(&form); err != nil {
		return h.flashRedirect(c, NoticeError, "Invalid school form", "/dashboard")
	}
	if missing := form.missingRequired(); missing != "" {
		return h.flashRedirect(c, NoticeError, missing+" is required", "/dashboard")
	}

	if err := h.client.CreateSchool(h.callContext(c), session, form.request(nil)); err != nil {
		if handled, resp := h.interrupt(c, err); handled {
			return resp
		}
		return h.flashRedirect(c, NoticeError, userMessage(err, "Admin privileges required to add schools"), "/dashboard")
	}
	return h.flashRedirect(c, NoticeSuccess, "School added successfully", "/dashboard?view=all")
}

func (h *Handler) updateSchool(c *fiber.Ctx) error {
	session := sessionFrom(c)
	if !session.Admin() {
		return h.flashRedirect(c, NoticeError, "Admin privileges required to edit schools", "/dashboard")
	}
	back := resultsLocation(c.FormValue("filter"))
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return h.flashRedirect(c, NoticeError, "Invalid school id", back)
	}

	var form schoolForm
	if err := c.BodyParser(&form); err != nil {
		return h.flashRedirect(c, NoticeError, "Invalid school form", back)
	}
	if missing := form.missingRequired(); missing != "" {
		return h.flashRedirect(c, NoticeError, missing+" is required", back)
	}

	if err := h.client.UpdateSchool(h.callContext(c), session, uint(id), form.request(postedField(c))); err != nil {
		if handled, resp := h.interrupt(c, err); handled {
			return resp
		}
		return h.flashRedirect(c, NoticeError, userMessage(err, "Admin privileges required to edit schools"), back)
	}
	return h.flashRedirect(c, NoticeSuccess, "School updated successfully", back)
}

func (h *Handler) deleteSchool(c *fiber.Ctx) error {
	session := sessionFrom(c)
	if !session.Admin() {
		return h.flashRedirect(c, NoticeError, "Admin privileges required to delete schools", "/dashboard")
	}
	back := resultsLocation(c.FormValue("filter"))
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return h.flashRedirect(c, NoticeError, "Invalid school id", back)
	}

	if err := h.client.DeleteSchool(h.callContext(c), session, uint(id)); err != nil {
		if handled, resp := h.interrupt(c, err); handled {
			return resp
		}
		return h.flashRedirect(c, NoticeError, userMessage(err, "Admin privileges required to delete schools"), back)
	}
	return h.flashRedirect(c, NoticeSuccess, "School deleted successfully", back)
}

// resultsLocation is the school list the admin came from.
func resultsLocation(filter string) string {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return "/dashboard?view=all"
	}
	return "/dashboard?view=all&name=" + url.QueryEscape(filter)
}

// pageData collects what every dashboard page shows: the account, a pending notice and the school total.
func (h *Handler) pageData(c *fiber.Ctx, session Session) fiber.Map {
	total := render.PlaceholderDash
	if count, err := h.client.Stats(h.callContext(c), session); err == nil {
		total = strconv.FormatInt(count, 10)
	} else {
		h.log(c).Warn().Err(err).Msg("failed to load school total")
	}

	data := fiber.Map{
		"Title":        "Dashboard - EduQuery",
		"User":         session.User,
		"Admin":        session.Admin(),
		"TotalSchools": total,
		"Zones":        zoneOptions,
		"Criteria":     map[string]string{},
		"View":         "",
		"Name":         "",
	}
	if notice := popFlash(c); notice != nil {
		data["Notice"] = notice
	}
	return data
}

// interrupt handles errors that end the request instead of rendering in place.
func (h *Handler) interrupt(c *fiber.Ctx, err error) (bool, error) {
	switch {
	case isSessionFailure(err):
		ClearSession(c)
		return true, h.redirectExpired(c)
	case errors.Is(err, ErrStaleResponse):
		return true, c.Status(fiber.StatusConflict).SendString(err.Error())
	}
	h.log(c).Warn().Err(err).Msg("dashboard call failed")
	return false, nil
}

func (h *Handler) flashRedirect(c *fiber.Ctx, kind, message, location string) error {
	setFlash(c, Notice{Kind: kind, Message: message})
	return c.Redirect(location)
}

// callContext carries the request context and the browser address to the API.
func (h *Handler) callContext(c *fiber.Ctx) context.Context {
	return WithClientIP(c.UserContext(), c.IP())
}

func (h *Handler) log(c *fiber.Ctx) *zerolog.Logger {
	logger := middleware.RequestLogger(h.logger, c)
	return &logger
}

// userMessage is the text shown for a failed call. forbidden is the role-specific 403 message.
func userMessage(err error, forbidden string) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, ErrForbidden):
		if forbidden == "" {
			return "Admin privileges required"
		}
		return forbidden
	case errors.Is(err, ErrConnection):
		return "connection error"
	case errors.Is(err, ErrEmptyCriteria):
		return "Please fill at least one search field"
	case errors.Is(err, ErrTooManyRequests):
		return "Too many requests. Please wait a moment and try again."
	default:
		return "Something went wrong"
	}
}

// editingValues prefills the edit form from the row being edited.
func editingValues(records []render.Record, id string) map[string]string {
	for _, record := range records {
		value, ok := record.Get("school_id")
		if !ok || render.FormatValue(value) != id {
			continue
		}
		values := make(map[string]string, len(record))
		for _, field := range record {
			values[field.Key] = render.FormatValue(field.Value)
		}
		return values
	}
	return nil
}
