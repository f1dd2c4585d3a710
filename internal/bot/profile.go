package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

// The /perfil conversation is an explicit three-state machine. Nothing is
// persisted until the final state validates; abandoning the conversation
// leaves the stored profile untouched.
type profileState int

const (
	stateKeywords profileState = iota
	stateCountry
	stateJobType
)

type profileSession struct {
	state    profileState
	keywords []string
	country  string
}

var countryButtons = [][]string{
	{"🇲🇽 Mexico", "🇨🇴 Colombia"},
	{"🇦🇷 Argentina", "🇵🇪 Peru"},
	{"🇨🇱 Chile", "🇧🇷 Brazil"},
	{"🇺🇸 USA", "🇨🇦 Canada"},
	{"🇬🇧 UK", "🇪🇸 Spain"},
}

var jobTypeButtons = [][]string{
	{"🤝 Contract", "💼 Fulltime"},
	{"⏰ Parttime", "🎓 Internship"},
	{"➡️ Cualquiera"},
}

const keywordExamples = "📚 *Ejemplos:*\n\n" +
	"🖥️ Tecnología: `Desarrollador Python, Django, remoto`\n" +
	"💼 Negocios: `Contador, impuestos, México`\n" +
	"🏥 Salud: `Enfermero, hospitales, fulltime`\n" +
	"🎨 Creatividad: `Diseñador gráfico, Adobe, freelance`\n" +
	"📊 Datos: `Analista de datos, Python, looker`\n" +
	"🏗️ Ingeniería: `Ingeniero civil, proyectos, presencial`"

func (b *Bot) hasSession(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.sessions[chatID]
	return ok
}

// startProfile opens (or restarts) a /perfil conversation.
func (b *Bot) startProfile(chatID int64, name string) {
	b.mu.Lock()
	b.sessions[chatID] = &profileSession{state: stateKeywords}
	b.mu.Unlock()

	welcome := fmt.Sprintf(
		"¡Hola %s! 👋\n\n"+
			"Voy a configurar tu perfil para buscar **vacantes personalizadas**.\n\n"+
			"**Paso 1/3: ¿Qué keywords buscas?**\n\n"+
			"Escribe **palabras clave separadas por comas**.\n\n"+
			"**Formato recomendado:**\n"+
			"1️⃣ *Puesto/Rol* (ej: Desarrollador, Contador, Enfermero)\n"+
			"2️⃣ *Skill/Especialidad* (ej: Python, impuestos, hospitales)\n"+
			"3️⃣ *Modalidad* (ej: remoto, fulltime, contract)\n\n"+
			"%s\n\n"+
			"**Tu turno:** Escribe tus keywords (mínimo %d, máximo %d)",
		name, keywordExamples, types.MinKeywords, types.MaxKeywords)

	b.sendOrLog(chatID, welcome)
}

// handleProfileMessage advances the conversation with one user message.
func (b *Bot) handleProfileMessage(chatID int64, telegramID, name, text string) {
	b.mu.Lock()
	session, ok := b.sessions[chatID]
	b.mu.Unlock()
	if !ok {
		return
	}

	switch session.state {
	case stateKeywords:
		b.collectKeywords(chatID, session, text)
	case stateCountry:
		b.collectCountry(chatID, session, text)
	case stateJobType:
		b.collectJobType(chatID, telegramID, name, session, text)
	}
}

func (b *Bot) collectKeywords(chatID int64, session *profileSession, text string) {
	var keywords []string
	for _, kw := range strings.Split(text, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	if len(keywords) == 0 {
		b.sendOrLog(chatID, "❌ Por favor escribe al menos una palabra clave.\n\nEjemplo: `Python, remoto, contract`")
		return
	}
	if len(keywords) > types.MaxKeywords {
		b.sendOrLog(chatID, fmt.Sprintf(
			"❌ Máximo %d keywords. Escribiste %d.\n\nIntenta con menos palabras.",
			types.MaxKeywords, len(keywords)))
		return
	}

	session.keywords = keywords
	session.state = stateCountry
	slog.Info("keywords guardadas", "keywords", strings.Join(keywords, ","))

	msg := "✅ Perfecto!\n\n**Paso 2/3: ¿En qué país buscas?**\n\nSelecciona uno de los botones."
	if err := b.reply.SendKeyboard(chatID, msg, countryButtons); err != nil {
		slog.Error("no se pudo enviar teclado de países", "error", err)
	}
}

func (b *Bot) collectCountry(chatID int64, session *profileSession, text string) {
	country, ok := types.NormalizeCountry(stripEmojis(text))
	if !ok {
		b.sendOrLog(chatID, fmt.Sprintf(
			"❌ País no válido: %s\n\nVálidos: %s",
			text, strings.Join(types.CountryNames(), ", ")))
		return
	}

	session.country = country
	session.state = stateJobType
	slog.Info("país guardado", "country", country)

	msg := "✅ Excelente!\n\n**Paso 3/3: ¿Qué tipo de empleo? (Opcional)**\n\n" +
		"Si no tienes preferencia, presiona \"Cualquiera ➡️\""
	if err := b.reply.SendKeyboard(chatID, msg, jobTypeButtons); err != nil {
		slog.Error("no se pudo enviar teclado de tipos", "error", err)
	}
}

func (b *Bot) collectJobType(chatID int64, telegramID, name string, session *profileSession, text string) {
	cleaned := strings.ToLower(stripEmojis(text))

	var jobType string
	if strings.Contains(cleaned, "cualquiera") {
		jobType = ""
	} else if normalized, ok := types.NormalizeJobType(cleaned); ok {
		jobType = normalized
	} else {
		b.sendOrLog(chatID, fmt.Sprintf(
			"❌ Tipo inválido: %s\n\nVálidos: %s",
			text, strings.Join(types.ValidJobTypes, ", ")))
		return
	}

	// Conversation complete: validate and persist the whole profile at once.
	b.mu.Lock()
	delete(b.sessions, chatID)
	b.mu.Unlock()

	if err := b.saveProfile(telegramID, name, session.keywords, session.country, jobType); err != nil {
		slog.Error("error guardando usuario", "telegram_id", telegramID, "error", err)
		b.sendOrLog(chatID, fmt.Sprintf("❌ Error al guardar perfil.\n\nDetalles: %s",
			truncateRunes(err.Error(), 100)))
		return
	}

	jobTypeDisplay := "Cualquiera"
	if jobType != "" {
		jobTypeDisplay = strings.ToUpper(jobType[:1]) + jobType[1:]
	}
	success := fmt.Sprintf(
		"✅ *¡Perfil guardado exitosamente!*\n\n"+
			"📌 **Keywords:** %s\n"+
			"🌍 **País:** %s\n"+
			"💼 **Tipo:** %s\n\n"+
			"🚀 Ahora usa /vacantes para buscar empleos personalizados para ti.",
		strings.Join(session.keywords, ", "), session.country, jobTypeDisplay)

	if err := b.reply.SendInlineButton(chatID, success, "🔍 Buscar ahora /vacantes", callbackVacantes); err != nil {
		slog.Error("no se pudo enviar confirmación de perfil", "error", err)
	}

	slog.Info("perfil guardado", "telegram_id", telegramID)
}

func (b *Bot) saveProfile(telegramID, name string, keywords []string, country, jobType string) error {
	user, err := types.NewUser(telegramID, name, keywords, country, jobType)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if b.users.UserExists(ctx, telegramID) {
		return b.users.UpdateUser(ctx, telegramID, user.Keywords, user.Country, user.JobType)
	}
	return b.users.CreateUser(ctx, user)
}

// stripEmojis drops the flag/icon prefixes the reply keyboards put in front
// of button labels.
func stripEmojis(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
