package domain

// Model identifiers. ModelImageAI exists in the cost table only and has no
// chat surface.
const (
	ModelRobloxAI  = "roblox-ai"
	ModelCodeAI    = "code-ai"
	ModelGeneralAI = "general-ai"
	ModelDebugAI   = "debug-ai"
	ModelImageAI   = "image-ai"
)

// DefaultMessageCost applies to unrecognized model identifiers.
const DefaultMessageCost = 2

// MessageCosts maps a model to its per-message credit cost.
var MessageCosts = map[string]int{
	ModelRobloxAI:  3,
	ModelCodeAI:    2,
	ModelGeneralAI: 2,
	ModelImageAI:   8,
	ModelDebugAI:   2,
}

// ModelMeta describes one chat model as presented to clients.
type ModelMeta struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Subtitle string `json:"subtitle"`
	Cost     int    `json:"cost"`
}

// ChatModels lists the four chat-capable models in display order.
var ChatModels = []ModelMeta{
	{ID: ModelRobloxAI, Name: "Roblox Studio AI", Icon: "🎮", Subtitle: "Especialista en Lua, Studio & APIs", Cost: 3},
	{ID: ModelCodeAI, Name: "Code AI", Icon: "⌨️", Subtitle: "Programación general", Cost: 2},
	{ID: ModelGeneralAI, Name: "General AI", Icon: "🤖", Subtitle: "Asistente de propósito general", Cost: 2},
	{ID: ModelDebugAI, Name: "Debug AI", Icon: "🐛", Subtitle: "Detección y corrección de errores", Cost: 2},
}

// ChatModel returns the metadata for a model id, falling back to the Roblox
// specialist when the id is unknown.
func ChatModel(id string) ModelMeta {
	for _, m := range ChatModels {
		if m.ID == id {
			return m
		}
	}
	return ChatModels[0]
}

// SystemPrompts holds the per-model system instruction sent upstream.
var SystemPrompts = map[string]string{
	ModelRobloxAI: `Eres StudioAI, un asistente de IA especializado en Roblox Studio y desarrollo de juegos en Roblox.
Tu conocimiento incluye:
- Lua y Luau (el lenguaje de scripting de Roblox)
- Roblox Studio: interfaz, herramientas, workspace, explorer
- Servicios de Roblox: DataStoreService, RemoteEvents, RemoteFunctions, TweenService, RunService, Players, etc.
- Scripting: Scripts, LocalScripts, ModuleScripts y sus diferencias
- Arquitectura cliente-servidor en Roblox
- Sistemas de juego: leaderstats, inventarios, shops, combat, vehicles
- UIs con ScreenGui, Frame, TextLabel, TextButton, ImageLabel
- Física de Roblox: BasePart, Anchored, CanCollide, assemblies
- Buenas prácticas, optimización y seguridad en Roblox
- Roblox APIs: HttpService, MessagingService, MarketplaceService

Responde siempre en español a menos que el usuario escriba en otro idioma.
Cuando escribas código Lua/Luau, usa bloques de código con ` + "```lua" + `.
Sé conciso, claro y práctico. Proporciona ejemplos de código cuando sea relevante.`,

	ModelCodeAI: `Eres StudioAI Code, un asistente experto en programación. Ayudas con múltiples lenguajes incluyendo JavaScript, Python, TypeScript, Lua, C#, y más. Responde en español. Usa bloques de código apropiados.`,

	ModelGeneralAI: `Eres StudioAI, un asistente de IA útil y amable. Responde en español con claridad y precisión.`,

	ModelDebugAI: `Eres StudioAI Debug, especializado en encontrar y corregir errores de código. Analiza código, identifica bugs y explica las correcciones. Responde en español. Usa bloques de código para mostrar la solución.`,
}

// SystemPrompt returns the instruction for a model id, defaulting to the
// general-purpose persona.
func SystemPrompt(id string) string {
	if p, ok := SystemPrompts[id]; ok {
		return p
	}
	return SystemPrompts[ModelGeneralAI]
}
