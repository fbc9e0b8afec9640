package settings

import (
	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
)

type Settings struct {
	AcademyName    string `json:"academyName"`
	AcademyAddress string `json:"academyAddress"`
	AcademyPhone   string `json:"academyPhone"`
	AcademyEmail   string `json:"academyEmail"`
	CurrentYear    string `json:"currentYear"` // eg: 2024-2025
	Logo           string `json:"logo"`        // data URL or URL
}

// UISettings is the front-end preferences document; it is stored as is.
type UISettings map[string]interface{}

// Defaults returns the settings of a fresh install.
func Defaults() Settings {
	return Settings{
		AcademyName:    "Najm Plus Academy",
		AcademyAddress: "",
		AcademyPhone:   "",
		AcademyEmail:   "",
		CurrentYear:    "2024-2025",
	}
}

// MergeDefaults fills the empty fields of s with the default values.
func MergeDefaults(s Settings) Settings {
	return merge(Defaults(), s)
}

// merge returns base with the non-empty fields of upd.
func merge(base, upd Settings) Settings {
	if upd.AcademyName != "" {
		base.AcademyName = upd.AcademyName
	}
	if upd.AcademyAddress != "" {
		base.AcademyAddress = upd.AcademyAddress
	}
	if upd.AcademyPhone != "" {
		base.AcademyPhone = upd.AcademyPhone
	}
	if upd.AcademyEmail != "" {
		base.AcademyEmail = upd.AcademyEmail
	}
	if upd.CurrentYear != "" {
		base.CurrentYear = upd.CurrentYear
	}
	if upd.Logo != "" {
		base.Logo = upd.Logo
	}
	return base
}

// UpdateSettings defines what information may be provided to modify the Settings.
// Empty fields keep their current value.
type UpdateSettings struct {
	AcademyName    string `json:"academyName"`
	AcademyAddress string `json:"academyAddress"`
	AcademyPhone   string `json:"academyPhone"`
	AcademyEmail   string `json:"academyEmail" validate:"omitempty,email"`
	CurrentYear    string `json:"currentYear" validate:"omitempty,schoolyear"`
	Logo           string `json:"logo"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	us.AcademyName = core.CleanString(us.AcademyName)
	us.AcademyAddress = core.CleanString(us.AcademyAddress)
	us.AcademyPhone = core.CleanString(us.AcademyPhone)
	us.AcademyEmail = core.CleanString(us.AcademyEmail, true /* lower */)
	us.CurrentYear = core.CleanString(us.CurrentYear)
	return validate.Struct(us)
}
