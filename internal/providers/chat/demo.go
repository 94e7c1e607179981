package chat

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"server/internal/domain"
)

const demoDefaultDelay = 800 * time.Millisecond

// DemoResponder serves canned answers when no API key is configured,
// simulating upstream latency with an artificial delay.
type DemoResponder struct {
	// Delay is the base artificial latency; up to ~700ms of jitter is added.
	// Zero keeps the default. Tests set it negative to disable the wait.
	Delay time.Duration
}

func (d *DemoResponder) Respond(ctx context.Context, req Request) (string, error) {
	if err := d.wait(ctx); err != nil {
		return "", err
	}

	var lastUser string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == domain.RoleUser {
			lastUser = req.Messages[i].Content
			break
		}
	}
	return demoAnswer(req.ModelID, lastUser), nil
}

func (d *DemoResponder) wait(ctx context.Context) error {
	delay := d.Delay
	if delay == 0 {
		delay = demoDefaultDelay
	}
	if delay < 0 {
		return nil
	}
	delay += time.Duration(rand.Int63n(int64(700 * time.Millisecond)))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func demoAnswer(modelID, userText string) string {
	if modelID != domain.ModelRobloxAI {
		return demoGenericAnswer
	}
	lower := strings.ToLower(userText)
	switch {
	case strings.Contains(lower, "datastore"):
		return demoDataStoreAnswer
	case strings.Contains(lower, "leaderstats") || strings.Contains(lower, "stats"):
		return demoLeaderstatsAnswer
	default:
		return demoRobloxGreeting
	}
}

const demoDataStoreAnswer = "Aquí te muestro cómo usar **DataStoreService** en Roblox para guardar datos de jugadores:\n\n" +
	"```lua\n" +
	"local DataStoreService = game:GetService(\"DataStoreService\")\n" +
	"local playerDataStore = DataStoreService:GetDataStore(\"PlayerData\")\n\n" +
	"-- Guardar datos\n" +
	"local function saveData(player, data)\n" +
	"    local success, err = pcall(function()\n" +
	"        playerDataStore:SetAsync(tostring(player.UserId), data)\n" +
	"    end)\n" +
	"    if not success then\n" +
	"        warn(\"Error al guardar datos: \" .. err)\n" +
	"    end\n" +
	"end\n\n" +
	"-- Cargar datos\n" +
	"local function loadData(player)\n" +
	"    local success, data = pcall(function()\n" +
	"        return playerDataStore:GetAsync(tostring(player.UserId))\n" +
	"    end)\n" +
	"    if success and data then\n" +
	"        return data\n" +
	"    end\n" +
	"    return { coins = 0, level = 1 } -- valores por defecto\n" +
	"end\n\n" +
	"-- Conectar eventos de jugadores\n" +
	"game.Players.PlayerAdded:Connect(function(player)\n" +
	"    local data = loadData(player)\n" +
	"    -- Aplicar datos al jugador...\n" +
	"end)\n\n" +
	"game.Players.PlayerRemoving:Connect(function(player)\n" +
	"    -- saveData(player, datosDelJugador)\n" +
	"end)\n" +
	"```\n\n" +
	"> ⚠️ Nota: Esta es una demostración. Agrega tu **API Key de Anthropic** en la configuración para respuestas completas y personalizadas."

const demoLeaderstatsAnswer = "Para crear un sistema de **leaderstats** en Roblox Studio, usa este Script en ServerScriptService:\n\n" +
	"```lua\n" +
	"local Players = game:GetService(\"Players\")\n\n" +
	"Players.PlayerAdded:Connect(function(player)\n" +
	"    -- Crear carpeta leaderstats\n" +
	"    local leaderstats = Instance.new(\"Folder\")\n" +
	"    leaderstats.Name = \"leaderstats\"\n" +
	"    leaderstats.Parent = player\n\n" +
	"    -- Añadir estadísticas\n" +
	"    local coins = Instance.new(\"IntValue\")\n" +
	"    coins.Name = \"Monedas\"\n" +
	"    coins.Value = 0\n" +
	"    coins.Parent = leaderstats\n\n" +
	"    local level = Instance.new(\"IntValue\")\n" +
	"    level.Name = \"Nivel\"\n" +
	"    level.Value = 1\n" +
	"    level.Parent = leaderstats\n" +
	"end)\n" +
	"```\n\n" +
	"Las leaderstats aparecen automáticamente en el leaderboard del juego. ¡Listo!\n\n" +
	"> ⚠️ Agrega tu API Key para respuestas más detalladas."

const demoRobloxGreeting = "Hola! Soy el **Roblox Studio AI**. 🎮\n\n" +
	"Puedo ayudarte con:\n" +
	"- Scripts de Lua/Luau\n" +
	"- DataStoreService y persistencia de datos\n" +
	"- RemoteEvents y comunicación cliente-servidor\n" +
	"- GUIs y interfaces de usuario\n" +
	"- Sistemas de juego (inventarios, monedas, levels)\n" +
	"- Optimización y buenas prácticas\n\n" +
	"> ⚠️ Esta es una demostración. Para respuestas completas con IA real, agrega tu **API Key de Anthropic** (la puedes obtener en [console.anthropic.com](https://console.anthropic.com)) en la sección de Configuración del panel izquierdo."

const demoGenericAnswer = "Modo **demostración**. Para usar el AI con respuestas reales, agrega tu API Key de Anthropic en la configuración del panel izquierdo. Puedes obtener una en [console.anthropic.com](https://console.anthropic.com)."
