package bot

import "strings"

// CommandParser парсит команды с префиксами !, . и /.
// Понимает форму /command@botname (Telegram подставляет её
// при выборе команды из подсказок).
type CommandParser struct {
	validPrefixes []string
	botName       string // без @, для отрезания суффикса
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser(botName string) *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
		botName:       strings.TrimPrefix(botName, "@"),
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])

	// /paid@NoMercyZoneBot -> /paid (чужие @бот-суффиксы игнорируем целиком)
	if at := strings.Index(command, "@"); at >= 0 {
		suffix := command[at+1:]
		if p.botName != "" && suffix != strings.ToLower(p.botName) {
			return "", nil, false
		}
		command = command[:at]
		if command == "" {
			return "", nil, false
		}
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
