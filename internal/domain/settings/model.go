// Package settings holds the process-wide application settings singleton.
package settings

// ClinicInfo is the clinic letterhead shown on printable documents. The logo
// is an embedded base64 string and must survive persistence round trips
// unchanged.
type ClinicInfo struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Slogan  *string `json:"slogan,omitempty"`
	Logo    *string `json:"logo,omitempty"`
}

// AppSettings is the singleton configuration record. It is created with
// defaults on first run and replaced wholesale on every save.
type AppSettings struct {
	MedicationsURL string      `json:"medications_url"`
	ClinicInfo     *ClinicInfo `json:"clinic_info,omitempty"`
}

// Default returns the settings synthesized when no settings record has been
// persisted yet.
func Default() AppSettings {
	slogan := "ULTRASONIDO MEDICO DIAGNOSTICO"
	return AppSettings{
		MedicationsURL: "",
		ClinicInfo: &ClinicInfo{
			Name:    "ULTRAMED",
			Address: "AVENIDA 12 DE OCTUBRE SN, COL. VICENTE GUERRERO, OCOZOCOAUTLA",
			Phone:   "",
			Slogan:  &slogan,
		},
	}
}
