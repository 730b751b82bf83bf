package commands

// TelegramCommands contains all commands for the Telegram bot
const (
	// Main commands
	Start  = "/start"
	Cancel = "Cancel"

	// Navigation commands
	ReturnToMainMenu = "Return to Main Menu"

	// Administrator commands
	AddMember     = "Add Member"
	MemberInfo    = "Member Info"
	EnableMember  = "Enable Member"
	DisableMember = "Disable Member"
	DeleteMember  = "Delete Member"
	Inbounds      = "Inbounds"
	UsageReport   = "Usage Report"

	// Inbound toggle command prefix, e.g. "/toggle 3"
	TogglePrefix = "/toggle"

	// Confirmation commands
	Confirm = "Confirm"
)
