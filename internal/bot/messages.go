package bot

import (
	"fmt"
	"strings"
)

// User-facing texts. Telegram Markdown with emoji is the display convention
// the whole bot honors.

func msgStart(name string) string {
	return fmt.Sprintf(
		"¡Hola %s! 👋\n\n"+
			"Bienvenido a *MiPrimeraChamba.tech*\n\n"+
			"Con `/perfil` configuras tus preferencias de búsqueda.\n"+
			"Con `/vacantes` obtienes vacantes personalizadas (configura tu perfil primero).\n\n"+
			"Usa `/help` para más información.", name)
}

const msgHelp = "📋 **Comandos disponibles:**\n\n" +
	"`/start` - Inicia el bot\n" +
	"`/help` - Muestra esta ayuda\n" +
	"`/perfil` - Configura tu perfil (keywords, país)\n" +
	"`/vacantes` - Busca vacantes personalizadas\n\n" +
	"**Cómo funciona el flujo:**\n\n" +
	"*1️⃣ Paso 1 - Configurar perfil:*\n" +
	"• Usa `/perfil`\n" +
	"• Escribe tus keywords (ej: python, remote, contract)\n" +
	"• Elige país\n\n" +
	"*2️⃣ Paso 2 - Buscar empleos:*\n" +
	"• Usa `/vacantes`\n" +
	"• Espera unos segundos\n\n" +
	"*3️⃣ Paso 3 - Recibe resultados:*\n" +
	"• 🎯 *TOP 5 empleos personalizados* (mejor match según tu perfil)\n" +
	"• 📊 *CSV con TODOS los empleos* (para seguimiento y análisis)\n\n" +
	"**Cómo usar los resultados:**\n" +
	"• Aplica primero a los TOP 5 (ya están filtrados para ti)\n" +
	"• Descarga el CSV para hacer seguimiento de tus aplicaciones\n" +
	"• Analiza el mercado laboral: salarios, empresas, tendencias\n\n" +
	"💡 *Pro tip:* Cambia keywords en `/perfil` para nuevas búsquedas"

const msgUnknownCommand = "No conozco ese comando. Usa `/help` para ver los disponibles."

const msgNoProfile = "❌ No tienes perfil configurado.\n\n" +
	"Primero haz /perfil para decirme:\n" +
	"• Qué keywords buscas\n" +
	"• En qué país\n" +
	"• Qué tipo de empleo\n\n" +
	"Luego vuelve a usar /vacantes"

const msgNoKeywords = "❌ Tu perfil no tiene keywords.\n\n" +
	"Usa /perfil para agregar: python, remote, contract, etc."

const msgNoResults = "😞 No encontramos empleos con tus criterios.\n\n" +
	"💡 Intenta:\n" +
	"• /perfil con keywords más específicas\n" +
	"• 'Senior Python Developer' en lugar de solo 'python'\n" +
	"• Incluir ubicación: 'Remote USA'"

const msgNoScoredResults = "😞 No hay resultados después de personalizar.\n\n" +
	"Intenta /perfil con keywords diferentes."

func msgSearching(name string) string {
	return fmt.Sprintf(
		"🔍 *%s*, buscamos en todas las plataformas por ti\n"+
			"para encontrar el match ideal para tu perfil...\n\n"+
			"⏳ Un momento, por favor...", name)
}

func msgProgressFirst(name string) string {
	return fmt.Sprintf(
		"⏳ *%s*, casi listos!\n\n"+
			"Estamos analizando Indeed, LinkedIn y Glassdoor\n"+
			"para traerte los mejores matches...", name)
}

func msgProgressSecond(name string) string {
	return fmt.Sprintf(
		"🚀 *%s*, última verificación!\n\n"+
			"Estamos armando tu lista personalizada\n"+
			"con los mejores empleos que encontramos...", name)
}

func msgTopHeader(count int, keywords []string, country string) string {
	return fmt.Sprintf(
		"🎯 *TOP %d empleos personalizados*\n\n"+
			"Basado en: %s\nPaís: %s",
		count, strings.Join(keywords, ", "), country)
}

func msgSummary(top, total int) string {
	return fmt.Sprintf(
		"✅ ¡Búsqueda completada!\n\n"+
			"📊 **Resumen:**\n"+
			"• TOP %d personalizados 👆 (mejor match)\n"+
			"• %d más en el CSV 📥 (para análisis)\n\n"+
			"💡 **Cómo usar:**\n"+
			"1. Aplica a los TOP %d (ya están filtrados)\n"+
			"2. Descarga el CSV para hacer seguimiento\n"+
			"3. Analiza el mercado laboral offline\n"+
			"4. Estudia salarios y empresas",
		top, total-top, top)
}

func msgCSVCaption(total int) string {
	return fmt.Sprintf("📋 CSV con %d empleos | Descárgalo para hacer seguimiento", total)
}

const msgCSVHowTo = "📊 **Cómo usar el CSV:**\n\n" +
	"1. Descárgalo en tu computadora\n" +
	"2. Ábrelo en Excel o Google Sheets\n" +
	"3. Agrega una columna 'Aplicado' (Sí/No) para hacer seguimiento\n" +
	"4. Filtra por empresa, tipo de empleo, ubicación\n" +
	"5. Estudia el mercado: salarios, tendencias\n\n" +
	"💡 Los TOP 5 de arriba son los que más matchean. Empieza por esos.\n" +
	"💡 ¿Más búsquedas? Usa `/perfil` con otros keywords"

func msgGenericError(err error) string {
	return fmt.Sprintf(
		"⚠️ Error buscando empleos.\n\n"+
			"Detalles: %s\n\n"+
			"Intenta más tarde o usa /help", truncateRunes(err.Error(), 100))
}

// truncateRunes shortens s to at most n characters. Slicing by bytes would
// split multi-byte runes and Telegram rejects invalid UTF-8.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
