package validators

// CountryCode describes the national number lengths accepted after a
// country calling code.
type CountryCode struct {
	Countries []string
	MinLength int
	MaxLength int
}

// countryCodes is read-only after package initialisation.
var countryCodes = map[string]CountryCode{
	"+1":   {Countries: []string{"US", "CA"}, MinLength: 10, MaxLength: 10},
	"+7":   {Countries: []string{"RU", "KZ"}, MinLength: 10, MaxLength: 10},
	"+20":  {Countries: []string{"EG"}, MinLength: 10, MaxLength: 10},
	"+27":  {Countries: []string{"ZA"}, MinLength: 9, MaxLength: 9},
	"+30":  {Countries: []string{"GR"}, MinLength: 10, MaxLength: 10},
	"+31":  {Countries: []string{"NL"}, MinLength: 9, MaxLength: 9},
	"+32":  {Countries: []string{"BE"}, MinLength: 8, MaxLength: 9},
	"+33":  {Countries: []string{"FR"}, MinLength: 9, MaxLength: 9},
	"+34":  {Countries: []string{"ES"}, MinLength: 9, MaxLength: 9},
	"+36":  {Countries: []string{"HU"}, MinLength: 8, MaxLength: 9},
	"+39":  {Countries: []string{"IT"}, MinLength: 9, MaxLength: 11},
	"+40":  {Countries: []string{"RO"}, MinLength: 9, MaxLength: 9},
	"+41":  {Countries: []string{"CH"}, MinLength: 9, MaxLength: 9},
	"+43":  {Countries: []string{"AT"}, MinLength: 10, MaxLength: 13},
	"+44":  {Countries: []string{"GB"}, MinLength: 10, MaxLength: 10},
	"+45":  {Countries: []string{"DK"}, MinLength: 8, MaxLength: 8},
	"+46":  {Countries: []string{"SE"}, MinLength: 7, MaxLength: 10},
	"+47":  {Countries: []string{"NO"}, MinLength: 8, MaxLength: 8},
	"+48":  {Countries: []string{"PL"}, MinLength: 9, MaxLength: 9},
	"+49":  {Countries: []string{"DE"}, MinLength: 10, MaxLength: 11},
	"+51":  {Countries: []string{"PE"}, MinLength: 9, MaxLength: 9},
	"+52":  {Countries: []string{"MX"}, MinLength: 10, MaxLength: 10},
	"+53":  {Countries: []string{"CU"}, MinLength: 8, MaxLength: 8},
	"+54":  {Countries: []string{"AR"}, MinLength: 10, MaxLength: 11},
	"+55":  {Countries: []string{"BR"}, MinLength: 10, MaxLength: 11},
	"+56":  {Countries: []string{"CL"}, MinLength: 9, MaxLength: 9},
	"+57":  {Countries: []string{"CO"}, MinLength: 10, MaxLength: 10},
	"+58":  {Countries: []string{"VE"}, MinLength: 10, MaxLength: 10},
	"+60":  {Countries: []string{"MY"}, MinLength: 9, MaxLength: 10},
	"+61":  {Countries: []string{"AU"}, MinLength: 9, MaxLength: 9},
	"+62":  {Countries: []string{"ID"}, MinLength: 9, MaxLength: 12},
	"+63":  {Countries: []string{"PH"}, MinLength: 10, MaxLength: 10},
	"+64":  {Countries: []string{"NZ"}, MinLength: 8, MaxLength: 10},
	"+65":  {Countries: []string{"SG"}, MinLength: 8, MaxLength: 8},
	"+66":  {Countries: []string{"TH"}, MinLength: 9, MaxLength: 9},
	"+81":  {Countries: []string{"JP"}, MinLength: 10, MaxLength: 10},
	"+82":  {Countries: []string{"KR"}, MinLength: 9, MaxLength: 10},
	"+84":  {Countries: []string{"VN"}, MinLength: 9, MaxLength: 10},
	"+86":  {Countries: []string{"CN"}, MinLength: 11, MaxLength: 11},
	"+90":  {Countries: []string{"TR"}, MinLength: 10, MaxLength: 10},
	"+91":  {Countries: []string{"IN"}, MinLength: 10, MaxLength: 10},
	"+92":  {Countries: []string{"PK"}, MinLength: 10, MaxLength: 10},
	"+93":  {Countries: []string{"AF"}, MinLength: 9, MaxLength: 9},
	"+94":  {Countries: []string{"LK"}, MinLength: 9, MaxLength: 9},
	"+95":  {Countries: []string{"MM"}, MinLength: 8, MaxLength: 10},
	"+98":  {Countries: []string{"IR"}, MinLength: 10, MaxLength: 10},
	"+211": {Countries: []string{"SS"}, MinLength: 9, MaxLength: 9},
	"+212": {Countries: []string{"MA"}, MinLength: 9, MaxLength: 9},
	"+213": {Countries: []string{"DZ"}, MinLength: 9, MaxLength: 9},
	"+216": {Countries: []string{"TN"}, MinLength: 8, MaxLength: 8},
	"+218": {Countries: []string{"LY"}, MinLength: 9, MaxLength: 9},
	"+220": {Countries: []string{"GM"}, MinLength: 7, MaxLength: 7},
	"+221": {Countries: []string{"SN"}, MinLength: 9, MaxLength: 9},
	"+222": {Countries: []string{"MR"}, MinLength: 8, MaxLength: 8},
	"+223": {Countries: []string{"ML"}, MinLength: 8, MaxLength: 8},
	"+224": {Countries: []string{"GN"}, MinLength: 9, MaxLength: 9},
	"+225": {Countries: []string{"CI"}, MinLength: 10, MaxLength: 10},
	"+226": {Countries: []string{"BF"}, MinLength: 8, MaxLength: 8},
	"+227": {Countries: []string{"NE"}, MinLength: 8, MaxLength: 8},
	"+228": {Countries: []string{"TG"}, MinLength: 8, MaxLength: 8},
	"+229": {Countries: []string{"BJ"}, MinLength: 8, MaxLength: 10},
	"+230": {Countries: []string{"MU"}, MinLength: 8, MaxLength: 8},
	"+231": {Countries: []string{"LR"}, MinLength: 7, MaxLength: 9},
	"+232": {Countries: []string{"SL"}, MinLength: 8, MaxLength: 8},
	"+233": {Countries: []string{"GH"}, MinLength: 9, MaxLength: 9},
	"+234": {Countries: []string{"NG"}, MinLength: 10, MaxLength: 10},
	"+235": {Countries: []string{"TD"}, MinLength: 8, MaxLength: 8},
	"+236": {Countries: []string{"CF"}, MinLength: 8, MaxLength: 8},
	"+237": {Countries: []string{"CM"}, MinLength: 9, MaxLength: 9},
	"+238": {Countries: []string{"CV"}, MinLength: 7, MaxLength: 7},
	"+239": {Countries: []string{"ST"}, MinLength: 7, MaxLength: 7},
	"+240": {Countries: []string{"GQ"}, MinLength: 9, MaxLength: 9},
	"+241": {Countries: []string{"GA"}, MinLength: 7, MaxLength: 8},
	"+242": {Countries: []string{"CG"}, MinLength: 9, MaxLength: 9},
	"+243": {Countries: []string{"CD"}, MinLength: 9, MaxLength: 9},
	"+244": {Countries: []string{"AO"}, MinLength: 9, MaxLength: 9},
	"+245": {Countries: []string{"GW"}, MinLength: 7, MaxLength: 9},
	"+248": {Countries: []string{"SC"}, MinLength: 7, MaxLength: 7},
	"+249": {Countries: []string{"SD"}, MinLength: 9, MaxLength: 9},
	"+250": {Countries: []string{"RW"}, MinLength: 9, MaxLength: 9},
	"+251": {Countries: []string{"ET"}, MinLength: 9, MaxLength: 9},
	"+252": {Countries: []string{"SO"}, MinLength: 8, MaxLength: 9},
	"+253": {Countries: []string{"DJ"}, MinLength: 8, MaxLength: 8},
	"+254": {Countries: []string{"KE"}, MinLength: 9, MaxLength: 10},
	"+255": {Countries: []string{"TZ"}, MinLength: 9, MaxLength: 9},
	"+256": {Countries: []string{"UG"}, MinLength: 9, MaxLength: 9},
	"+257": {Countries: []string{"BI"}, MinLength: 8, MaxLength: 8},
	"+258": {Countries: []string{"MZ"}, MinLength: 9, MaxLength: 9},
	"+260": {Countries: []string{"ZM"}, MinLength: 9, MaxLength: 9},
	"+261": {Countries: []string{"MG"}, MinLength: 9, MaxLength: 9},
	"+262": {Countries: []string{"RE", "YT"}, MinLength: 9, MaxLength: 9},
	"+263": {Countries: []string{"ZW"}, MinLength: 9, MaxLength: 9},
	"+264": {Countries: []string{"NA"}, MinLength: 9, MaxLength: 9},
	"+265": {Countries: []string{"MW"}, MinLength: 9, MaxLength: 9},
	"+266": {Countries: []string{"LS"}, MinLength: 8, MaxLength: 8},
	"+267": {Countries: []string{"BW"}, MinLength: 8, MaxLength: 8},
	"+268": {Countries: []string{"SZ"}, MinLength: 8, MaxLength: 8},
	"+269": {Countries: []string{"KM"}, MinLength: 7, MaxLength: 7},
	"+291": {Countries: []string{"ER"}, MinLength: 7, MaxLength: 7},
	"+297": {Countries: []string{"AW"}, MinLength: 7, MaxLength: 7},
	"+298": {Countries: []string{"FO"}, MinLength: 6, MaxLength: 6},
	"+299": {Countries: []string{"GL"}, MinLength: 6, MaxLength: 6},
	"+350": {Countries: []string{"GI"}, MinLength: 8, MaxLength: 8},
	"+351": {Countries: []string{"PT"}, MinLength: 9, MaxLength: 9},
	"+352": {Countries: []string{"LU"}, MinLength: 9, MaxLength: 9},
	"+353": {Countries: []string{"IE"}, MinLength: 9, MaxLength: 9},
	"+354": {Countries: []string{"IS"}, MinLength: 7, MaxLength: 7},
	"+355": {Countries: []string{"AL"}, MinLength: 9, MaxLength: 9},
	"+356": {Countries: []string{"MT"}, MinLength: 8, MaxLength: 8},
	"+357": {Countries: []string{"CY"}, MinLength: 8, MaxLength: 8},
	"+358": {Countries: []string{"FI"}, MinLength: 9, MaxLength: 10},
	"+359": {Countries: []string{"BG"}, MinLength: 9, MaxLength: 9},
	"+370": {Countries: []string{"LT"}, MinLength: 8, MaxLength: 8},
	"+371": {Countries: []string{"LV"}, MinLength: 8, MaxLength: 8},
	"+372": {Countries: []string{"EE"}, MinLength: 7, MaxLength: 8},
	"+373": {Countries: []string{"MD"}, MinLength: 8, MaxLength: 8},
	"+374": {Countries: []string{"AM"}, MinLength: 8, MaxLength: 8},
	"+375": {Countries: []string{"BY"}, MinLength: 9, MaxLength: 9},
	"+376": {Countries: []string{"AD"}, MinLength: 6, MaxLength: 6},
	"+377": {Countries: []string{"MC"}, MinLength: 8, MaxLength: 9},
	"+378": {Countries: []string{"SM"}, MinLength: 10, MaxLength: 10},
	"+380": {Countries: []string{"UA"}, MinLength: 9, MaxLength: 9},
	"+381": {Countries: []string{"RS"}, MinLength: 8, MaxLength: 9},
	"+382": {Countries: []string{"ME"}, MinLength: 8, MaxLength: 8},
	"+383": {Countries: []string{"XK"}, MinLength: 8, MaxLength: 8},
	"+385": {Countries: []string{"HR"}, MinLength: 8, MaxLength: 9},
	"+386": {Countries: []string{"SI"}, MinLength: 8, MaxLength: 8},
	"+387": {Countries: []string{"BA"}, MinLength: 8, MaxLength: 8},
	"+389": {Countries: []string{"MK"}, MinLength: 8, MaxLength: 8},
	"+420": {Countries: []string{"CZ"}, MinLength: 9, MaxLength: 9},
	"+421": {Countries: []string{"SK"}, MinLength: 9, MaxLength: 9},
	"+423": {Countries: []string{"LI"}, MinLength: 7, MaxLength: 7},
	"+500": {Countries: []string{"FK"}, MinLength: 5, MaxLength: 5},
	"+501": {Countries: []string{"BZ"}, MinLength: 7, MaxLength: 7},
	"+502": {Countries: []string{"GT"}, MinLength: 8, MaxLength: 8},
	"+503": {Countries: []string{"SV"}, MinLength: 8, MaxLength: 8},
	"+504": {Countries: []string{"HN"}, MinLength: 8, MaxLength: 8},
	"+505": {Countries: []string{"NI"}, MinLength: 8, MaxLength: 8},
	"+506": {Countries: []string{"CR"}, MinLength: 8, MaxLength: 8},
	"+507": {Countries: []string{"PA"}, MinLength: 8, MaxLength: 8},
	"+509": {Countries: []string{"HT"}, MinLength: 8, MaxLength: 8},
	"+591": {Countries: []string{"BO"}, MinLength: 8, MaxLength: 8},
	"+592": {Countries: []string{"GY"}, MinLength: 7, MaxLength: 7},
	"+593": {Countries: []string{"EC"}, MinLength: 9, MaxLength: 9},
	"+595": {Countries: []string{"PY"}, MinLength: 9, MaxLength: 9},
	"+597": {Countries: []string{"SR"}, MinLength: 7, MaxLength: 7},
	"+598": {Countries: []string{"UY"}, MinLength: 8, MaxLength: 8},
	"+670": {Countries: []string{"TL"}, MinLength: 8, MaxLength: 8},
	"+673": {Countries: []string{"BN"}, MinLength: 7, MaxLength: 7},
	"+674": {Countries: []string{"NR"}, MinLength: 7, MaxLength: 7},
	"+675": {Countries: []string{"PG"}, MinLength: 8, MaxLength: 8},
	"+676": {Countries: []string{"TO"}, MinLength: 7, MaxLength: 7},
	"+677": {Countries: []string{"SB"}, MinLength: 7, MaxLength: 7},
	"+678": {Countries: []string{"VU"}, MinLength: 7, MaxLength: 7},
	"+679": {Countries: []string{"FJ"}, MinLength: 7, MaxLength: 7},
	"+680": {Countries: []string{"PW"}, MinLength: 7, MaxLength: 7},
	"+685": {Countries: []string{"WS"}, MinLength: 7, MaxLength: 7},
	"+686": {Countries: []string{"KI"}, MinLength: 8, MaxLength: 8},
	"+691": {Countries: []string{"FM"}, MinLength: 7, MaxLength: 7},
	"+692": {Countries: []string{"MH"}, MinLength: 7, MaxLength: 7},
	"+850": {Countries: []string{"KP"}, MinLength: 10, MaxLength: 10},
	"+852": {Countries: []string{"HK"}, MinLength: 8, MaxLength: 8},
	"+853": {Countries: []string{"MO"}, MinLength: 8, MaxLength: 8},
	"+855": {Countries: []string{"KH"}, MinLength: 8, MaxLength: 9},
	"+856": {Countries: []string{"LA"}, MinLength: 10, MaxLength: 10},
	"+880": {Countries: []string{"BD"}, MinLength: 10, MaxLength: 10},
	"+886": {Countries: []string{"TW"}, MinLength: 9, MaxLength: 9},
	"+960": {Countries: []string{"MV"}, MinLength: 7, MaxLength: 7},
	"+961": {Countries: []string{"LB"}, MinLength: 7, MaxLength: 8},
	"+962": {Countries: []string{"JO"}, MinLength: 9, MaxLength: 9},
	"+963": {Countries: []string{"SY"}, MinLength: 9, MaxLength: 9},
	"+964": {Countries: []string{"IQ"}, MinLength: 10, MaxLength: 10},
	"+965": {Countries: []string{"KW"}, MinLength: 8, MaxLength: 8},
	"+966": {Countries: []string{"SA"}, MinLength: 9, MaxLength: 9},
	"+967": {Countries: []string{"YE"}, MinLength: 9, MaxLength: 9},
	"+968": {Countries: []string{"OM"}, MinLength: 8, MaxLength: 8},
	"+970": {Countries: []string{"PS"}, MinLength: 9, MaxLength: 9},
	"+971": {Countries: []string{"AE"}, MinLength: 9, MaxLength: 9},
	"+972": {Countries: []string{"IL"}, MinLength: 9, MaxLength: 9},
	"+973": {Countries: []string{"BH"}, MinLength: 8, MaxLength: 8},
	"+974": {Countries: []string{"QA"}, MinLength: 8, MaxLength: 8},
	"+975": {Countries: []string{"BT"}, MinLength: 8, MaxLength: 8},
	"+976": {Countries: []string{"MN"}, MinLength: 8, MaxLength: 8},
	"+977": {Countries: []string{"NP"}, MinLength: 10, MaxLength: 10},
	"+992": {Countries: []string{"TJ"}, MinLength: 9, MaxLength: 9},
	"+993": {Countries: []string{"TM"}, MinLength: 8, MaxLength: 8},
	"+994": {Countries: []string{"AZ"}, MinLength: 9, MaxLength: 9},
	"+995": {Countries: []string{"GE"}, MinLength: 9, MaxLength: 9},
	"+996": {Countries: []string{"KG"}, MinLength: 9, MaxLength: 9},
	"+998": {Countries: []string{"UZ"}, MinLength: 9, MaxLength: 9},
}

// maxCountryCodeDigits bounds the longest-prefix search.
const maxCountryCodeDigits = 4

// LookupCountryCode returns the table entry for a "+NNN" code.
func LookupCountryCode(code string) (CountryCode, bool) {
	cc, ok := countryCodes[code]
	if !ok {
		return CountryCode{}, false
	}
	cc.Countries = append([]string(nil), cc.Countries...)
	return cc, true
}

// SupportedCountryCodeCount reports the size of the table.
func SupportedCountryCodeCount() int {
	return len(countryCodes)
}
