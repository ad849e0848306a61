package destination

import "strings"

// countryNames maps ISO 3166-1 alpha-2 codes to display names for the
// markets the supplier covers. The supplier's country-info call returns
// only ids and city names, so the country name is resolved here.
var countryNames = map[string]string{
	"AE": "United Arab Emirates",
	"US": "United States",
	"GB": "United Kingdom",
	"FR": "France",
	"DE": "Germany",
	"IT": "Italy",
	"ES": "Spain",
	"NL": "Netherlands",
	"BE": "Belgium",
	"CH": "Switzerland",
	"AT": "Austria",
	"SE": "Sweden",
	"NO": "Norway",
	"DK": "Denmark",
	"FI": "Finland",
	"PL": "Poland",
	"CZ": "Czech Republic",
	"HU": "Hungary",
	"RO": "Romania",
	"BG": "Bulgaria",
	"GR": "Greece",
	"PT": "Portugal",
	"IE": "Ireland",
	"LU": "Luxembourg",
	"MT": "Malta",
	"CY": "Cyprus",
	"EE": "Estonia",
	"LV": "Latvia",
	"LT": "Lithuania",
	"SI": "Slovenia",
	"SK": "Slovakia",
	"HR": "Croatia",
	"CA": "Canada",
	"AU": "Australia",
	"NZ": "New Zealand",
	"JP": "Japan",
	"KR": "South Korea",
	"CN": "China",
	"IN": "India",
	"TH": "Thailand",
	"SG": "Singapore",
	"MY": "Malaysia",
	"ID": "Indonesia",
	"PH": "Philippines",
	"VN": "Vietnam",
	"RU": "Russian Federation",
	"BR": "Brazil",
	"AR": "Argentina",
	"CL": "Chile",
	"CO": "Colombia",
	"PE": "Peru",
	"MX": "Mexico",
	"ZA": "South Africa",
	"EG": "Egypt",
	"MA": "Morocco",
	"TN": "Tunisia",
	"TR": "Turkey",
	"IL": "Israel",
	"SA": "Saudi Arabia",
	"KW": "Kuwait",
	"QA": "Qatar",
	"BH": "Bahrain",
	"OM": "Oman",
	"JO": "Jordan",
	"LB": "Lebanon",
}

// CountryName resolves an ISO-2 country code to its display name.
// Unknown codes fall back to the code itself.
func CountryName(code string) string {
	if name, ok := countryNames[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}
