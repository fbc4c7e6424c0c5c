package bot

// Command constants for Telegram bot commands.
const (
	CommandStart   = "/start"
	CommandHelp    = "/help"
	CommandBalance = "/balance"
	CommandReset   = "/reset"
	CommandAudio   = "/audio"
)
