package reference

// countryNames lists ISO-2 codes with their ISO-3 code and the English names
// seen in the warehouse.
var countryNames = map[string][]string{
	"AF": {"AFG", "AFGHANISTAN"},
	"AU": {"AUS", "AUSTRALIA"},
	"BR": {"BRA", "BRAZIL"},
	"BY": {"BLR", "BELARUS"},
	"CA": {"CAN", "CANADA"},
	"CH": {"CHE", "SWITZERLAND"},
	"CN": {"CHN", "CHINA", "PEOPLES REPUBLIC OF CHINA", "PEOPLE'S REPUBLIC OF CHINA"},
	"CO": {"COL", "COLOMBIA"},
	"CU": {"CUB", "CUBA"},
	"DE": {"DEU", "GERMANY"},
	"DK": {"DNK", "DENMARK"},
	"EG": {"EGY", "EGYPT"},
	"ES": {"ESP", "SPAIN"},
	"FR": {"FRA", "FRANCE"},
	"GB": {"GBR", "UK", "UNITED KINGDOM", "GREAT BRITAIN", "ENGLAND"},
	"HK": {"HKG", "HONG KONG"},
	"IN": {"IND", "INDIA"},
	"IQ": {"IRQ", "IRAQ"},
	"IR": {"IRN", "IRAN", "ISLAMIC REPUBLIC OF IRAN"},
	"IT": {"ITA", "ITALY"},
	"JP": {"JPN", "JAPAN"},
	"KP": {"PRK", "NORTH KOREA", "DEMOCRATIC PEOPLE'S REPUBLIC OF KOREA", "DPRK"},
	"KR": {"KOR", "SOUTH KOREA", "REPUBLIC OF KOREA"},
	"MX": {"MEX", "MEXICO"},
	"NG": {"NGA", "NIGERIA"},
	"NI": {"NIC", "NICARAGUA"},
	"NL": {"NLD", "NETHERLANDS"},
	"NO": {"NOR", "NORWAY"},
	"PA": {"PAN", "PANAMA"},
	"PK": {"PAK", "PAKISTAN"},
	"RU": {"RUS", "RUSSIA", "RUSSIAN FEDERATION"},
	"SA": {"SAU", "SAUDI ARABIA"},
	"SE": {"SWE", "SWEDEN"},
	"SY": {"SYR", "SYRIA", "SYRIAN ARAB REPUBLIC"},
	"TR": {"TUR", "TURKEY", "TURKIYE"},
	"UA": {"UKR", "UKRAINE"},
	"US": {"USA", "UNITED STATES", "UNITED STATES OF AMERICA", "US OF A", "AMERICA"},
	"VE": {"VEN", "VENEZUELA"},
	"ZA": {"ZAF", "SOUTH AFRICA"},
}

func defaultCountryAliases() map[string]string {
	aliases := make(map[string]string, len(countryNames)*3)
	for code, names := range countryNames {
		aliases[code] = code
		for _, n := range names {
			aliases[n] = code
		}
	}
	return aliases
}
