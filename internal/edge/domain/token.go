package domain

// Token is a literal marker in served HTML.
type Token string

const (
	TokenConfigs      Token = "{{CONFIGS}}"
	TokenConfigsShort Token = "{{CONFIGS_SHORT}}"
	TokenThemes       Token = "{{THEMES}}"
	TokenMotions      Token = "{{MOTIONS}}"
	TokenJSBytes      Token = "{{JS_BYTES}}"
)

// AllTokens lists every marker the renderer replaces.
var AllTokens = []Token{
	TokenConfigs,
	TokenConfigsShort,
	TokenThemes,
	TokenMotions,
	TokenJSBytes,
}

// Substitution is one marker and the text it becomes.
type Substitution struct {
	Token Token
	Value string
}

// Substitutions computes the replacement text for every marker.
func (f *Formatter) Substitutions(s StatsRecord) []Substitution {
	configs := s.Configs()
	return []Substitution{
		{Token: TokenConfigs, Value: f.FormatWithCommas(configs)},
		{Token: TokenConfigsShort, Value: f.FormatK(configs)},
		{Token: TokenThemes, Value: f.Format(s.Themes())},
		{Token: TokenMotions, Value: f.Format(s.Motions())},
		{Token: TokenJSBytes, Value: f.Format(s.JSBytes())},
	}
}
