// Package i18n holds the user-facing message catalog. The product surface
// is Spanish-first; English variants exist for clients that ask for them.
package i18n

import "golang.org/x/text/language"

var supported = []language.Tag{
	language.Spanish, // default
	language.English,
}

var matcher = language.NewMatcher(supported)

// Locale normalizes a requested locale (an Accept-Language value or a bare
// tag) to one of the supported locales, defaulting to Spanish.
func Locale(requested string) string {
	if requested == "" {
		return "es"
	}
	tags, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(tags) == 0 {
		return "es"
	}
	_, idx, _ := matcher.Match(tags...)
	if supported[idx] == language.English {
		return "en"
	}
	return "es"
}

// Message keys.
const (
	MsgWelcomeBack         = "welcome_back"
	MsgAccountCreated      = "account_created"
	MsgInsufficientCredits = "insufficient_credits"
	MsgConnectivityError   = "connectivity_error"
	MsgAPIKeySaved         = "api_key_saved"
	MsgAPIKeyInvalid       = "api_key_invalid"
	MsgCreditsAdded        = "credits_added"
	MsgUnknownAccount      = "unknown_account"
	MsgWrongPassword       = "wrong_password"
	MsgEmailTaken          = "email_taken"
)

var catalog = map[string]map[string]string{
	"es": {
		MsgWelcomeBack:         "¡Bienvenido de nuevo!",
		MsgAccountCreated:      "¡Cuenta creada! Tienes 100 créditos gratuitos 🎉",
		MsgInsufficientCredits: "Sin créditos suficientes. ¡Recarga para continuar!",
		MsgConnectivityError:   "❌ Error al conectar con la IA. Verifica tu API Key en la configuración.",
		MsgAPIKeySaved:         "API Key guardada ✓",
		MsgAPIKeyInvalid:       "API Key inválida (debe iniciar con sk-ant-)",
		MsgCreditsAdded:        "créditos añadidos 🎉",
		MsgUnknownAccount:      "No existe una cuenta con este email",
		MsgWrongPassword:       "Contraseña incorrecta",
		MsgEmailTaken:          "Este email ya está registrado",
	},
	"en": {
		MsgWelcomeBack:         "Welcome back!",
		MsgAccountCreated:      "Account created! You have 100 free credits 🎉",
		MsgInsufficientCredits: "Not enough credits. Top up to continue!",
		MsgConnectivityError:   "❌ Could not reach the AI. Check your API Key in the settings.",
		MsgAPIKeySaved:         "API Key saved ✓",
		MsgAPIKeyInvalid:       "Invalid API Key (must start with sk-ant-)",
		MsgCreditsAdded:        "credits added 🎉",
		MsgUnknownAccount:      "No account exists for this email",
		MsgWrongPassword:       "Wrong password",
		MsgEmailTaken:          "This email is already registered",
	},
}

// T resolves a message key for a locale, falling back to Spanish and then to
// the key itself.
func T(locale, key string) string {
	if msgs, ok := catalog[locale]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog["es"][key]; ok {
		return msg
	}
	return key
}
