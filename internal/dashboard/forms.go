package dashboard

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduquery-api/internal/dto"
)

// FlashCookie carries a one-shot notice across a redirect.
const FlashCookie = "eduquery_flash"

// Notice kinds.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// Notice is a message shown once at the top of a page.
type Notice struct {
	Kind    string
	Message string
}

// schoolForm mirrors the add and edit school forms.
type schoolForm struct {
	SchoolName       string `form:"school_name"`
	Address          string `form:"address"`
	PostalCode       string `form:"postal_code"`
	ZoneCode         string `form:"zone_code"`
	MainlevelCode    string `form:"mainlevel_code"`
	PrincipalName    string `form:"principal_name"`
	VPName           string `form:"vp_name"`
	EmailAddress     string `form:"email_address"`
	FaxNo            string `form:"fax_no"`
	TypeCode         string `form:"type_code"`
	NatureCode       string `form:"nature_code"`
	SessionCode      string `form:"session_code"`
	DGPCode          string `form:"dgp_code"`
	MothertongueCode string `form:"mothertongue_code"`
	BusDesc          string `form:"bus_desc"`
	MRTDesc          string `form:"mrt_desc"`
	AutonomousInd    string `form:"autonomous_ind"`
	GiftedInd        string `form:"gifted_ind"`
	IPInd            string `form:"ip_ind"`
	SAPInd           string `form:"sap_ind"`
}

// missingRequired names the first blank core field, if any.
func (f schoolForm) missingRequired() string {
	required := []struct {
		label string
		value string
	}{
		{"School name", f.SchoolName},
		{"Address", f.Address},
		{"Postal code", f.PostalCode},
		{"Zone", f.ZoneCode},
		{"Main level", f.MainlevelCode},
		{"Principal name", f.PrincipalName},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return field.label
		}
	}
	return ""
}

// request converts the form. A blank optional field is sent as "" when submitted
// reports its key, which clears the column on update, and is left out otherwise.
func (f schoolForm) request(submitted func(key string) bool) dto.SchoolRequest {
	optional := func(key, value string) *string {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" && (submitted == nil || !submitted(key)) {
			return nil
		}
		return &trimmed
	}
	return dto.SchoolRequest{
		SchoolName:       strings.TrimSpace(f.SchoolName),
		Address:          strings.TrimSpace(f.Address),
		PostalCode:       strings.TrimSpace(f.PostalCode),
		ZoneCode:         strings.ToUpper(strings.TrimSpace(f.ZoneCode)),
		MainlevelCode:    strings.TrimSpace(f.MainlevelCode),
		PrincipalName:    strings.TrimSpace(f.PrincipalName),
		VPName:           optional("vp_name", f.VPName),
		EmailAddress:     optional("email_address", f.EmailAddress),
		FaxNo:            optional("fax_no", f.FaxNo),
		TypeCode:         optional("type_code", f.TypeCode),
		NatureCode:       optional("nature_code", f.NatureCode),
		SessionCode:      optional("session_code", f.SessionCode),
		DGPCode:          optional("dgp_code", f.DGPCode),
		MothertongueCode: optional("mothertongue_code", f.MothertongueCode),
		BusDesc:          optional("bus_desc", f.BusDesc),
		MRTDesc:          optional("mrt_desc", f.MRTDesc),
		AutonomousInd:    optional("autonomous_ind", f.AutonomousInd),
		GiftedInd:        optional("gifted_ind", f.GiftedInd),
		IPInd:            optional("ip_ind", f.IPInd),
		SAPInd:           optional("sap_ind", f.SAPInd),
	}
}

// postedField reports whether the form body carried key, even blank.
func postedField(c *fiber.Ctx) func(key string) bool {
	return func(key string) bool {
		if c.Request().PostArgs().Has(key) {
			return true
		}
		if form, err := c.MultipartForm(); err == nil {
			_, ok := form.Value[key]
			return ok
		}
		return false
	}
}

func setFlash(c *fiber.Ctx, notice Notice) {
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    url.QueryEscape(notice.Kind + "|" + notice.Message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// popFlash reads and clears the pending notice.
func popFlash(c *fiber.Ctx) *Notice {
	raw := c.Cookies(FlashCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{Name: FlashCookie, Value: "", Path: "/", Expires: time.Unix(0, 0), HTTPOnly: true})

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(decoded, "|")
	if !ok || message == "" {
		return nil
	}
	return &Notice{Kind: kind, Message: message}
}
