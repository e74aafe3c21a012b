package tts

// voiceAliases каталог витринных голосов: пользователю показываются
// понятные идентификаторы, синтезатору передается реальное имя голоса.
var voiceAliases = map[string]string{
	"en-IN-Female":   "Kore",
	"en-IN-Male":     "Charon",
	"en-US-Female":   "Leda",
	"en-US-Male":     "Puck",
	"en-GB-Female":   "Aoede",
	"en-GB-Male":     "Orus",
	"en-AU-Female":   "Despina",
	"en-AU-Male":     "Enceladus",
	"calm-female":    "Callirrhoe",
	"calm-male":      "Iapetus",
	"bright-female":  "Autonoe",
	"bright-male":    "Zephyr",
	"deep-male":      "Algieba",
	"warm-female":    "Sulafat",
	"crisp-female":   "Erinome",
	"crisp-male":     "Algenib",
	"story-female":   "Laomedeia",
	"story-male":     "Rasalgethi",
	"news-female":    "Schedar",
	"news-male":      "Achernar",
	"soft-female":    "Vindemiatrix",
	"soft-male":      "Achird",
	"upbeat-female":  "Pulcherrima",
	"upbeat-male":    "Sadachbia",
	"serious-male":   "Gacrux",
	"serious-female": "Alnilam",
}

// голоса по умолчанию для настроений напоминания
const (
	defaultVoice  = "Kore"
	urgentVoice   = "Fenrir"
	cheerfulVoice = "Puck"
)

// ResolveVoice выбирает реальное имя голоса по витринному идентификатору.
// Пустой идентификатор разрешается по настроению напоминания.
func ResolveVoice(voiceID string, mood string) string {
	if voiceID != "" {
		if real, ok := voiceAliases[voiceID]; ok {
			return real
		}
		return voiceID
	}
	switch mood {
	case "urgent":
		return urgentVoice
	case "cheerful":
		return cheerfulVoice
	default:
		return defaultVoice
	}
}
