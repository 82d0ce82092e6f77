package scraper

const (
	CapitolOffice  = "Capitol Office"
	DistrictOffice = "District Office"
)

// AssignUnlabeledPhone places a phone number the page gives without
// saying which office it belongs to. It goes to the capitol office when
// that office has no phone yet and to the district office otherwise,
// creating the office when needed.
func AssignUnlabeledPhone(offices []Office, phone string) []Office {
	if phone == "" {
		return offices
	}
	target := DistrictOffice
	capitol := findOffice(offices, CapitolOffice)
	if capitol < 0 || offices[capitol].Phone == "" {
		target = CapitolOffice
	}

	i := findOffice(offices, target)
	if i < 0 {
		return append(offices, Office{Note: target, Phone: phone})
	}
	if offices[i].Phone == "" {
		offices[i].Phone = phone
		return offices
	}
	return append(offices, Office{Note: target, Phone: phone})
}

func findOffice(offices []Office, note string) int {
	for i, o := range offices {
		if o.Note == note {
			return i
		}
	}
	return -1
}
